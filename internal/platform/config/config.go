package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "DOGMEAL"

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Energy  EnergyConfig  `mapstructure:"energy"`
}

type AppConfig struct {
	Name string `mapstructure:"name" validate:"required"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type StorageConfig struct {
	Driver     string `mapstructure:"driver" validate:"oneof=memory postgres sqlite"`
	DSN        string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

type EngineConfig struct {
	// scan_order | most_restrictive
	OverridePrecedence string `mapstructure:"override_precedence" validate:"oneof=scan_order most_restrictive"`
	// vacío => tablas embebidas
	TablesPath string `mapstructure:"tables_path"`
	BatchLimit int    `mapstructure:"batch_limit" validate:"min=1,max=64"`
}

type EnergyConfig struct {
	// vacío => el request debe traer energy
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Load lee config de archivo (opcional) + env. path vacío busca config.yaml en
// "." y "./config"; si no existe se usan defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// compat con el despliegue actual: PORT y DB_DSN sin prefijo
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("storage.dsn", envPrefix+"_STORAGE_DSN", "DB_DSN")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dog-meal-planner")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.sqlite_path", "dogmeal.db")

	v.SetDefault("engine.override_precedence", "scan_order")
	v.SetDefault("engine.tables_path", "")
	v.SetDefault("engine.batch_limit", 4)

	v.SetDefault("energy.base_url", "")
	v.SetDefault("energy.api_key", "")
	v.SetDefault("energy.timeout", "5s")
}
