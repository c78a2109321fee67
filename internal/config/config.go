package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"strings"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
)

// Config holds the core runtime configuration values.  Each field
// corresponds to an environment variable.  The DB fields are only
// consulted when StorageDriver is "mysql".
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	StorageDriver string // "memory" (default) or "mysql"
	SeedFixtures  bool   // load the fixture catalog at startup
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
}

// Load reads configuration values from environment variables and returns a
// Config.  Missing values fall back to defaults suitable for local
// development; call Validate before using the result.
func Load() Config {
	return Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "5000"),
		StorageDriver: strings.ToLower(envStr("STORAGE_DRIVER", DriverMemory)),
		SeedFixtures:  envBool("SEED_FIXTURES", true),
		DBUser:        envStr("DB_USER", ""),
		DBPass:        envStr("DB_PASS", ""),
		DBHost:        envStr("DB_HOST", ""),
		DBPort:        envStr("DB_PORT", "3306"),
		DBName:        envStr("DB_NAME", ""),
	}
}

// IsDev reports whether the application runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development" || c.Env == "local"
}

// Validate checks that the configuration is usable.  Every problem is
// reported, not just the first.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("APP_PORT must not be empty"))
	}
	switch c.StorageDriver {
	case DriverMemory:
	case DriverMySQL:
		for key, v := range map[string]string{"DB_USER": c.DBUser, "DB_HOST": c.DBHost, "DB_PORT": c.DBPort, "DB_NAME": c.DBName} {
			if v == "" {
				errs = append(errs, fmt.Errorf("missing required env var for mysql storage: %s", key))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	return errors.Join(errs...)
}
