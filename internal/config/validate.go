package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLiteDSN) == "" {
			return fmt.Errorf("storage.sqlite_dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q (got %q)", DriverMemory, DriverSQLite, c.Storage.Driver)
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0 (got %s)", c.Server.ShutdownTimeout)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}
