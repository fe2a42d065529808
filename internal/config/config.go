// Package config loads relay and client settings from defaults, an optional
// config file, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. PLUGIN_CREATOR_SERVER_ADDR.
const EnvPrefix = "PLUGIN_CREATOR"

// Credential variables kept under their historical names.
const (
	EnvEmailUser     = "EMAIL_USER"
	EnvEmailPassword = "EMAIL_APP_PASSWORD"
)

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Email  EmailConfig  `mapstructure:"email"`
	Relay  RelayConfig  `mapstructure:"relay"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Client ClientConfig `mapstructure:"client"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

// SMTPConfig describes the outbound mail server.
type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	AuthType   string `mapstructure:"auth_type"`
	TLS        bool   `mapstructure:"tls"`
	TLSMode    string `mapstructure:"tls_mode"`
	SkipVerify bool   `mapstructure:"skip_verify"`
}

// EmailConfig holds the mail transport and the fixed addresses used for
// review notifications.
type EmailConfig struct {
	SMTP       SMTPConfig `mapstructure:"smtp"`
	From       string     `mapstructure:"from"`
	ReviewTeam []string   `mapstructure:"review_team"`
}

type RelayConfig struct {
	Path             string `mapstructure:"path"`
	MaxUploadBytes   int64  `mapstructure:"max_upload_bytes"`
	RateLimitPerHour int    `mapstructure:"rate_limit_per_hour"`
	Subject          string `mapstructure:"subject"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ClientConfig is used by the wizard and CLI when talking to a relay.
type ClientConfig struct {
	RelayURL string `mapstructure:"relay_url"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("email.smtp.host", "smtp.gmail.com")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.user", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.auth_type", "plain")
	v.SetDefault("email.smtp.tls", true)
	v.SetDefault("email.smtp.tls_mode", "starttls")
	v.SetDefault("email.smtp.skip_verify", false)
	v.SetDefault("email.from", `"Plugin Team" <no-reply@example.com>`)
	v.SetDefault("email.review_team", []string{"plugins@example.com"})

	v.SetDefault("relay.path", "/api/send-email")
	v.SetDefault("relay.max_upload_bytes", int64(10<<20))
	v.SetDefault("relay.rate_limit_per_hour", 0)
	v.SetDefault("relay.subject", "New Plugin Submission")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("client.relay_url", "http://localhost:8080")
}

// Load reads configuration. path may be empty, in which case only defaults,
// .env and the environment apply. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("email.smtp.user", EnvPrefix+"_EMAIL_SMTP_USER", EnvEmailUser); err != nil {
		return nil, err
	}
	if err := v.BindEnv("email.smtp.password", EnvPrefix+"_EMAIL_SMTP_PASSWORD", EnvEmailPassword); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Email.ReviewTeam = splitList(c.Email.ReviewTeam)
	c.CORS.AllowedOrigins = splitList(c.CORS.AllowedOrigins)
	if c.Relay.Path == "" {
		c.Relay.Path = "/api/send-email"
	}
}

// splitList accepts both proper lists and a single comma separated value,
// which is what list settings look like when they come from the environment.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
