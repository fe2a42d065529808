package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp isolates Load from any .env file in the package directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	td := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(td))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	return td
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv(EnvEmailUser, "")
	t.Setenv(EnvEmailPassword, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "smtp.gmail.com", cfg.Email.SMTP.Host)
	assert.Equal(t, 587, cfg.Email.SMTP.Port)
	assert.Equal(t, TLSModeStartTLS, cfg.Email.EffectiveTLSMode())
	assert.Equal(t, []string{"plugins@example.com"}, cfg.Email.ReviewTeam)
	assert.Equal(t, "/api/send-email", cfg.Relay.Path)
	assert.EqualValues(t, 10<<20, cfg.Relay.MaxUploadBytes)
	assert.Equal(t, 0, cfg.Relay.RateLimitPerHour)
	assert.False(t, cfg.Email.HasCredentials())
	assert.ErrorIs(t, cfg.Email.CheckCredentials(), ErrMissingCredentials)
}

func TestLoadCredentialsFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv(EnvEmailUser, "team@example.com")
	t.Setenv(EnvEmailPassword, "app-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "team@example.com", cfg.Email.SMTP.User)
	assert.Equal(t, "app-secret", cfg.Email.SMTP.Password)
	assert.NoError(t, cfg.Email.CheckCredentials())
}

func TestLoadCredentialsFromDotEnv(t *testing.T) {
	td := chdirTemp(t)
	// t.Setenv registers cleanup; unset so godotenv does not skip the keys.
	t.Setenv(EnvEmailUser, "")
	t.Setenv(EnvEmailPassword, "")
	require.NoError(t, os.Unsetenv(EnvEmailUser))
	require.NoError(t, os.Unsetenv(EnvEmailPassword))
	require.NoError(t, os.WriteFile(filepath.Join(td, ".env"),
		[]byte("EMAIL_USER=dotenv@example.com\nEMAIL_APP_PASSWORD=from-file\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv@example.com", cfg.Email.SMTP.User)
	assert.Equal(t, "from-file", cfg.Email.SMTP.Password)
}

func TestLoadFromYAMLFileAndPrefixedEnv(t *testing.T) {
	td := chdirTemp(t)
	b := []byte("server:\n  addr: \":9999\"\nemail:\n  review_team:\n    - a@example.com\n    - b@example.com\n  smtp:\n    tls_mode: smtps\n    port: 465\n")
	path := filepath.Join(td, "plugin-creator.yaml")
	require.NoError(t, os.WriteFile(path, b, 0o600))
	t.Setenv("PLUGIN_CREATOR_RELAY_RATE_LIMIT_PER_HOUR", "12")
	t.Setenv("PLUGIN_CREATOR_CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Email.ReviewTeam)
	assert.Equal(t, TLSModeSMTPS, cfg.Email.EffectiveTLSMode())
	assert.Equal(t, 465, cfg.Email.SMTP.Port)
	assert.Equal(t, 12, cfg.Relay.RateLimitPerHour)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadMissingConfigFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEffectiveTLSMode(t *testing.T) {
	tests := []struct {
		mode string
		tls  bool
		want string
	}{
		{"", false, TLSModeNone},
		{"", true, TLSModeStartTLS},
		{"auto", true, TLSModeStartTLS},
		{"STARTTLS", false, TLSModeStartTLS},
		{"implicit", false, TLSModeSMTPS},
		{"off", true, TLSModeNone},
		{"bogus", false, TLSModeNone},
	}
	for _, tt := range tests {
		cfg := &EmailConfig{SMTP: SMTPConfig{TLSMode: tt.mode, TLS: tt.tls}}
		assert.Equal(t, tt.want, cfg.EffectiveTLSMode(), "mode=%q tls=%v", tt.mode, tt.tls)
	}

	var nilCfg *EmailConfig
	assert.Equal(t, TLSModeNone, nilCfg.EffectiveTLSMode())
}
