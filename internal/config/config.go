// Package config carga la configuración del servicio desde YAML, con
// overrides por variables de entorno para despliegues contenedorizados.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"` // puerto HTTP (default: 8080)
}

type DBConfig struct {
	// DSN de Postgres. Vacío => store en memoria (dev/tests).
	DSN string `yaml:"dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error (default: info)
	Format string `yaml:"format"` // text|json (default: text)
	App    string `yaml:"app"`    // nombre en los logs (default: farm-husbandry)
}

// Load lee el archivo YAML (si path no es vacío), aplica defaults y
// overrides de entorno, y valida.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.setDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Default devuelve la configuración con valores por defecto (más overrides
// de entorno).
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	cfg.applyEnv()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.App == "" {
		c.Log.App = "farm-husbandry"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Addr devuelve la dirección de escucha HTTP.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
