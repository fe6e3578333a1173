package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Seed    SeedConfig    `yaml:"seed"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"PEDALBOARD_ADDR"             env-default:":8080"`
	StaticDir       string        `yaml:"static_dir"       env:"PEDALBOARD_STATIC_DIR"       env-default:"web/dist"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PEDALBOARD_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// StorageConfig selects the pedalboard store backend.
type StorageConfig struct {
	Driver    string `yaml:"driver"     env:"PEDALBOARD_STORAGE_DRIVER" env-default:"memory"`
	SQLiteDSN string `yaml:"sqlite_dsn" env:"PEDALBOARD_SQLITE_DSN"     env-default:"file:pedalboard?mode=memory&cache=shared"`
}

// SeedConfig controls loading of the sample pedalboards at startup.
type SeedConfig struct {
	Enabled bool `yaml:"enabled" env:"PEDALBOARD_SEED" env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)
