package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/esgtools/esgkeeper/internal/flagx"
	"github.com/esgtools/esgkeeper/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Duration fields accept both "15m" strings and integer nanoseconds.
// After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN        *string         `json:"database_dsn"`
	RemoteAPIBaseURL   *string         `json:"remote_api_base_url"`
	RemoteEnabled      *bool           `json:"remote_enabled"`
	AllowLocalFallback *bool           `json:"allow_local_fallback"`
	RemoteTimeout      *timex.Duration `json:"remote_timeout"`
	SecretKey          *string         `json:"secret_key"`
	SessionTimeout     *timex.Duration `json:"session_timeout"`
	LockoutThreshold   *int            `json:"lockout_threshold"`
	LockoutDuration    *timex.Duration `json:"lockout_duration"`
	S3RootUser         *string         `json:"s3_root_user"`
	S3RootPassword     *string         `json:"s3_root_password"`
	S3Bucket           *string         `json:"s3_bucket"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
	AdminIdentity      *string         `json:"admin_identity"`
	AdminEmail         *string         `json:"admin_email"`
	AdminPassword      *string         `json:"admin_password"`
}

// parseJson overlays configuration values from the JSON file named by the
// -c/-config flags, when present. Absent fields keep their current values.
// An unreadable or malformed file panics: a half-applied config is worse
// than no startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RemoteAPIBaseURL, c.RemoteAPIBaseURL)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.AdminIdentity, c.AdminIdentity)
	setString(&config.AdminEmail, c.AdminEmail)
	setString(&config.AdminPassword, c.AdminPassword)

	if c.RemoteEnabled != nil {
		config.RemoteEnabled = *c.RemoteEnabled
	}
	if c.AllowLocalFallback != nil {
		config.AllowLocalFallback = *c.AllowLocalFallback
	}
	if c.LockoutThreshold != nil {
		config.LockoutThreshold = *c.LockoutThreshold
	}
	if c.RemoteTimeout != nil {
		config.RemoteTimeout = time.Duration(c.RemoteTimeout.Duration)
	}
	if c.SessionTimeout != nil {
		config.SessionTimeout = time.Duration(c.SessionTimeout.Duration)
	}
	if c.LockoutDuration != nil {
		config.LockoutDuration = time.Duration(c.LockoutDuration.Duration)
	}
}
