package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite / postgres
	Path         string `mapstructure:"path"`
	DSN          string `mapstructure:"dsn"`
	LogMode      bool   `mapstructure:"log_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	Issuer        string `mapstructure:"issuer"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text / json
}

type AppSubConfig struct {
	Name            string `mapstructure:"name"`
	Version         string `mapstructure:"version"`
	DefaultPageSize int    `mapstructure:"default_page_size"`
	MaxPageSize     int    `mapstructure:"max_page_size"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppSubConfig   `mapstructure:"app"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/finflow.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	// keys without a real default are still registered so env overrides reach Unmarshal
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "finflow")
	v.SetDefault("jwt.expire_minutes", 30)

	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.encryption_key", "")

	v.SetDefault("backup.dir", "./data/backups")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("app.name", "FinFlow API")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.default_page_size", 100)
	v.SetDefault("app.max_page_size", 1000)
}

// Load reads configuration from the given file path (e.g. "config.yaml").
// If path is empty, "config.yaml" in the working directory is used when present;
// a missing default file is not an error, defaults and env apply instead.
// Environment overrides use the FINFLOW_ prefix, e.g. FINFLOW_SERVER_PORT=9000.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("FINFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server port %d: must be between 1 and 65535", c.Server.Port))
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			problems = append(problems, "database path cannot be empty when using sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			problems = append(problems, "database dsn cannot be empty when using postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid database driver %q: must be sqlite or postgres", c.Database.Driver))
	}

	if c.JWT.Secret == "" {
		problems = append(problems, "jwt secret is required")
	}
	if c.JWT.ExpireMinutes <= 0 {
		problems = append(problems, fmt.Sprintf("invalid jwt expire_minutes %d: must be positive", c.JWT.ExpireMinutes))
	}

	// bcrypt accepts 4..31
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		problems = append(problems, fmt.Sprintf("invalid bcrypt cost %d: must be between 4 and 31", c.Security.BcryptCost))
	}

	if c.Backup.Dir == "" {
		problems = append(problems, "backup dir cannot be empty")
	}

	if c.App.MaxPageSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid max_page_size %d: must be at least 1", c.App.MaxPageSize))
	}
	if c.App.DefaultPageSize < 1 || c.App.DefaultPageSize > c.App.MaxPageSize {
		problems = append(problems, fmt.Sprintf("invalid default_page_size %d: must be between 1 and max_page_size", c.App.DefaultPageSize))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be text or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
