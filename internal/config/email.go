package config

import (
	"errors"
	"strings"
)

// TLS modes understood by the SMTP transport.
const (
	TLSModeNone     = "none"
	TLSModeStartTLS = "starttls"
	TLSModeSMTPS    = "smtps"
)

// ErrMissingCredentials is reported at dispatch time when no mail account is configured.
var ErrMissingCredentials = errors.New("mail transport credentials not configured (set " + EnvEmailUser + " and " + EnvEmailPassword + ")")

// EffectiveTLSMode normalizes the TLS mode for outbound SMTP connections.
// An empty or unknown mode falls back to the TLS boolean.
func (c *EmailConfig) EffectiveTLSMode() string {
	if c == nil {
		return TLSModeNone
	}
	switch strings.ToLower(strings.TrimSpace(c.SMTP.TLSMode)) {
	case "starttls", "tls":
		return TLSModeStartTLS
	case "smtps", "implicit", "tls_implicit":
		return TLSModeSMTPS
	case "none", "off", "disabled":
		return TLSModeNone
	}
	if c.SMTP.TLS {
		return TLSModeStartTLS
	}
	return TLSModeNone
}

// HasCredentials reports whether both halves of the mail account are set.
func (c *EmailConfig) HasCredentials() bool {
	return c != nil && strings.TrimSpace(c.SMTP.User) != "" && c.SMTP.Password != ""
}

// CheckCredentials returns ErrMissingCredentials when the account is incomplete.
func (c *EmailConfig) CheckCredentials() error {
	if !c.HasCredentials() {
		return ErrMissingCredentials
	}
	return nil
}
