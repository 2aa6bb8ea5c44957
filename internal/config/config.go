// Package config handles configuration for the record-keeper,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings.
//
// Fields:
//   - DatabaseDSN: local relational store. "postgres://..." selects the pgx
//     driver; anything else is treated as an SQLite file path.
//   - RemoteAPIBaseURL: base URL of the remote API (versioned under /api/v1).
//   - RemoteEnabled / AllowLocalFallback: default FallbackPolicy values.
//   - RemoteTimeout: upper bound on a single remote call.
//   - SecretKey: HMAC secret for signing session bearer tokens (HS256).
//   - SessionTimeout: inactivity-independent hard session lifetime.
//   - LockoutThreshold / LockoutDuration: failed-login lockout policy.
//   - S3*: object storage settings for assessment evidence.
//   - Admin*: one-time bootstrap credential seeded at startup.
type Config struct {
	DatabaseDSN        string
	RemoteAPIBaseURL   string
	RemoteEnabled      bool
	AllowLocalFallback bool
	RemoteTimeout      time.Duration
	SecretKey          string
	SessionTimeout     time.Duration
	LockoutThreshold   int
	LockoutDuration    time.Duration
	S3RootUser         string
	S3RootPassword     string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	AdminIdentity      string
	AdminEmail         string
	AdminPassword      string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "esgkeeper.db"
	c.RemoteAPIBaseURL = "http://localhost:3000"
	c.RemoteEnabled = false
	c.AllowLocalFallback = true
	c.RemoteTimeout = 30 * time.Second
	c.SecretKey = "secretKey"
	c.SessionTimeout = 2 * time.Hour
	c.LockoutThreshold = 3
	c.LockoutDuration = 15 * time.Minute
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "evidence"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.AdminIdentity = "admin"
	c.AdminEmail = "admin@example.com"
	c.AdminPassword = "admin123"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
