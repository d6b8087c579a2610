package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset or
// malformed values leave the current value untouched.
//
// Recognized variables:
//
//	HTTP_ADDR             bind address for the HTTP endpoints
//	DATABASE_DSN          PostgreSQL DSN
//	XERO_CLIENT_ID        OAuth client id
//	XERO_CLIENT_SECRET    OAuth client secret
//	XERO_REDIRECT_URI     OAuth redirect URI
//	SYNC_INTERVAL_HOURS   hours between scheduled syncs
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("HTTP_ADDR"); ok {
		config.EndpointAddrHTTP = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("XERO_CLIENT_ID"); ok {
		config.XeroClientID = v
	}
	if v, ok := os.LookupEnv("XERO_CLIENT_SECRET"); ok {
		config.XeroClientSecret = v
	}
	if v, ok := os.LookupEnv("XERO_REDIRECT_URI"); ok {
		config.XeroRedirectURI = v
	}
	if v, ok := os.LookupEnv("SYNC_INTERVAL_HOURS"); ok {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			config.SyncInterval = time.Duration(hours) * time.Hour
		}
	}
}
