// Package config holds the application configuration and its loader.
package config

// Config is the root configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Batch    BatchConfig    `yaml:"batch"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR, FATAL.
	Level string `yaml:"level"`
}

// DatabaseConfig selects and parameterizes the metadata and target store.
type DatabaseConfig struct {
	// Driver is one of sqlite, postgres, mysql.
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// DSN overrides the assembled connection string when set.
	DSN string `yaml:"dsn"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// BatchConfig tunes job execution.
type BatchConfig struct {
	ChunkSize        int    `yaml:"chunk-size"`
	Concurrency      int    `yaml:"concurrency"`
	QueueCapacity    int    `yaml:"queue-capacity"`
	RetryMaxAttempts int    `yaml:"retry-max-attempts"`
	SkipLimit        int    `yaml:"skip-limit"`
	InputFile        string `yaml:"input-file"`
}

// NewDefaultConfig returns the configuration used when no file overrides
// a setting.
func NewDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO"},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Database: "ripline.db",
		},
		Server: ServerConfig{Address: ":8080"},
		Batch: BatchConfig{
			ChunkSize:        10,
			Concurrency:      1,
			RetryMaxAttempts: 1,
		},
	}
}
