package util

import "os"

// Env returns the environment variable value, or fallback when it is empty.
// The boolean reports whether the environment supplied the value.
func Env(key, fallback string) (string, bool) {
	if value := os.Getenv(key); value != "" {
		return value, true
	}
	return fallback, false
}
