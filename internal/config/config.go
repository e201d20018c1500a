// Package config carga la configuración desde YAML con overrides por env.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	Auth struct {
		Session struct {
			CookieName string `yaml:"cookie_name"`
			TTL        string `yaml:"ttl"`
		} `yaml:"session"`
		ServiceToken struct {
			// Secret se toma SIEMPRE de env (SERVICE_TOKEN_SECRET), nunca de YAML.
			Issuer   string `yaml:"issuer"`
			Audience string `yaml:"audience"`
			TTL      string `yaml:"ttl"`
		} `yaml:"service_token"`
	} `yaml:"auth"`

	Support struct {
		AccessTTL string `yaml:"access_ttl"` // duración de un grant aprobado
	} `yaml:"support"`

	Rate struct {
		Enabled bool   `yaml:"enabled"`
		Driver  string `yaml:"driver"` // "redis" | "memory"
		Window  string `yaml:"window"`
		Max     int    `yaml:"max"`
		// Límites específicos para endpoints sensibles de superadmin
		Sensitive struct {
			Window string `yaml:"window"`
			Max    int    `yaml:"max"`
		} `yaml:"sensitive"`
	} `yaml:"rate"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		From     string `yaml:"from"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		TLSMode  string `yaml:"tls_mode"`
	} `yaml:"smtp"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee el YAML (si path existe), aplica defaults y luego overrides de env.
// Un path vacío o inexistente no es error: todo puede venir por env.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	c.applyDefaults()
	c.applyEnv()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8084"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}
	if c.Auth.Session.CookieName == "" {
		c.Auth.Session.CookieName = "cg_session"
	}
	if c.Auth.Session.TTL == "" {
		c.Auth.Session.TTL = "12h"
	}
	if c.Auth.ServiceToken.Issuer == "" {
		c.Auth.ServiceToken.Issuer = "caregate"
	}
	if c.Auth.ServiceToken.Audience == "" {
		c.Auth.ServiceToken.Audience = "caregate-api"
	}
	if c.Auth.ServiceToken.TTL == "" {
		c.Auth.ServiceToken.TTL = "10m"
	}
	if c.Support.AccessTTL == "" {
		c.Support.AccessTTL = "4h"
	}
	if c.Rate.Driver == "" {
		c.Rate.Driver = "memory"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.Max == 0 {
		c.Rate.Max = 120
	}
	if c.Rate.Sensitive.Window == "" {
		c.Rate.Sensitive.Window = "1m"
	}
	if c.Rate.Sensitive.Max == 0 {
		c.Rate.Sensitive.Max = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "cg:"
	}
}

func (c *Config) applyEnv() {
	if v := env("APP_ENV"); v != "" {
		c.App.Env = v
	}
	if v := env("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := env("DATABASE_URL"); v != "" {
		c.Storage.DSN = v
	}
	if v := env("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := env("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := env("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}
	if v := env("SESSION_COOKIE_NAME"); v != "" {
		c.Auth.Session.CookieName = v
	}
	if v := env("RATE_DRIVER"); v != "" {
		c.Rate.Driver = v
	}
	if v := env("RATE_ENABLED"); v != "" {
		c.Rate.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := env("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := env("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = n
		}
	}
	if v := env("SMTP_FROM"); v != "" {
		c.SMTP.From = v
	}
	if v := env("SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := env("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// ServiceTokenSecret lee el secret compartido de env. Vacío => los service
// tokens quedan deshabilitados (el resolver lo trata como error de config
// si llega un Bearer).
func ServiceTokenSecret() []byte {
	if v := env("SERVICE_TOKEN_SECRET"); v != "" {
		return []byte(v)
	}
	return nil
}

// IsProd reporta si el entorno es productivo.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}

// MustDuration parsea una duración de config. Las duraciones de config ya
// pasaron defaults, así que un parse error es un typo del operador: se
// reporta con el campo para que sea obvio.
func MustDuration(field, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: duración inválida %q", field, raw)
	}
	return d, nil
}
