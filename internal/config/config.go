// Package config defines the application configuration and its defaults.
// All default values live here so there is a single source of truth.
package config

// Default values applied when neither the config file nor environment
// variables set a key.
const (
	// DefaultPort is the port the API server binds to.
	DefaultPort = 8080

	// DefaultDatabasePath is where the SQLite database file is created.
	DefaultDatabasePath = ".kadai/kadai.db"

	// DefaultLogLevel is the zerolog level used when none is configured.
	DefaultLogLevel = "info"
)

// DefaultCORSOrigins are the browser origins allowed by default, covering
// the common local frontend dev servers.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port        int      `mapstructure:"port" validate:"gte=1,lte=65535"`
	CORSOrigins []string `mapstructure:"corsOrigins"`
}

// DatabaseConfig holds the storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LogConfig holds the logging settings. File is optional; when empty, logs
// go to stdout.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic"`
	File  string `mapstructure:"file"`
}

// Config is the unified application configuration, populated by viper from
// file, environment and flags.
type Config struct {
	Verbose  bool           `mapstructure:"verbose"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}
