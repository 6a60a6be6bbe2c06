// Package env reads ad-hoc process environment variables that live outside
// the envconfig structs in pkg/config.
package env

import "os"

const prefix = "LOJASOCIAL_"

// Get looks the key up with the project prefix first, then bare, and falls
// back to the provided default. LOG_FORMAT therefore answers to both
// LOJASOCIAL_LOG_FORMAT and LOG_FORMAT.
func Get(key, fallback string) string {
	if val := os.Getenv(prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
