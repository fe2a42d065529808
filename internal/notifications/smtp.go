package notifications

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/goatkit/plugincreator/internal/config"
)

// EmailProvider delivers one message.
type EmailProvider interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SMTPProvider sends mail through the configured SMTP account.
type SMTPProvider struct {
	cfg *config.EmailConfig
	now func() time.Time
}

func NewSMTPProvider(cfg *config.EmailConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg, now: time.Now}
}

func (s *SMTPProvider) Send(ctx context.Context, msg EmailMessage) error {
	if err := s.cfg.CheckCredentials(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}
	from, err := mail.ParseAddress(s.cfg.From)
	if err != nil {
		return fmt.Errorf("invalid sender %q: %w", s.cfg.From, err)
	}

	raw, err := BuildMIME(from, msg, s.now())
	if err != nil {
		return err
	}

	client, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err = client.Auth(s.auth()); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err = client.Mail(from.Address); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, to := range msg.To {
		addr, err := mail.ParseAddress(to)
		if err != nil {
			return fmt.Errorf("invalid recipient %q: %w", to, err)
		}
		if err = client.Rcpt(addr.Address); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr.Address, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	if _, err = w.Write(raw); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data transfer: %w", err)
	}

	if err = client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP session: %w", err)
	}
	return nil
}

func (s *SMTPProvider) auth() smtp.Auth {
	c := s.cfg.SMTP
	if c.AuthType == "login" {
		return &loginAuth{username: c.User, password: c.Password}
	}
	return smtp.PlainAuth("", c.User, c.Password, c.Host)
}

func (s *SMTPProvider) dial(ctx context.Context) (*smtp.Client, error) {
	c := s.cfg.SMTP
	addr := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	tlsConfig := &tls.Config{
		ServerName:         c.Host,
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // operator opt-in for self-signed relays
	}

	var (
		conn net.Conn
		err  error
	)
	mode := s.cfg.EffectiveTLSMode()
	if mode == config.TLSModeSMTPS {
		d := &tls.Dialer{Config: tlsConfig}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, c.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start SMTP session: %w", err)
	}

	if mode == config.TLSModeStartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			client.Close()
			return nil, fmt.Errorf("SMTP server %s does not offer STARTTLS", addr)
		}
		if err = client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	return client, nil
}

// loginAuth implements SMTP LOGIN authentication
type loginAuth struct {
	username, password string
}

func (a *loginAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", []byte{}, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		switch string(fromServer) {
		case "Username:":
			return []byte(a.username), nil
		case "Password:":
			return []byte(a.password), nil
		default:
			return nil, fmt.Errorf("unexpected server challenge: %s", fromServer)
		}
	}
	return nil, nil
}
