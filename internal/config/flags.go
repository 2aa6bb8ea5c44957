package config

import (
	"flag"
	"os"
	"time"

	"github.com/esgtools/esgkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   database DSN (postgres:// or SQLite file path)
//	-a string   remote API base URL
//	-r          enable remote-first loading
//	-f          allow local fallback on recoverable remote failure
//	-s string   session token HMAC secret key
//	-t int      session timeout, minutes
//	-l int      lockout duration, minutes
//	-n int      failed-attempt threshold before lockout
//
// Duration flags are accepted as integers in minutes and converted to
// time.Duration values. Args are filtered first via flagx.FilterArgs so the
// parse does not collide with flags owned by other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-a", "-r", "-f", "-s", "-t", "-l", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RemoteAPIBaseURL, "a", config.RemoteAPIBaseURL, "remote API base URL")
	fs.BoolVar(&config.RemoteEnabled, "r", config.RemoteEnabled, "prefer the remote API for data loads")
	fs.BoolVar(&config.AllowLocalFallback, "f", config.AllowLocalFallback, "fall back to the local store on remote failure")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.LockoutThreshold, "n", config.LockoutThreshold, "failed attempts before lockout")

	sessionTimeout := fs.Int("t", int(config.SessionTimeout.Minutes()), "session_timeout (in minutes)")
	lockoutDuration := fs.Int("l", int(config.LockoutDuration.Minutes()), "lockout_duration (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTimeout = time.Duration(*sessionTimeout) * time.Minute
	config.LockoutDuration = time.Duration(*lockoutDuration) * time.Minute
}
