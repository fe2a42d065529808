package relay

import (
	"log"

	"github.com/google/uuid"
)

type options struct {
	Logger  *log.Logger
	Subject string
	Metrics *relayMetrics
	NewRef  func() string

	render func(Notification) (*Rendered, error)
}

// Option applies configuration to the relay.
type Option func(*options)

func defaultOptions() options {
	return options{
		Logger:  log.Default(),
		Subject: "New Plugin Submission",
		Metrics: globalRelayMetrics(),
		NewRef:  func() string { return uuid.NewString() },
		render:  Render,
	}
}

// WithLogger injects a custom logger implementation.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithSubject overrides the notification subject prefix.
func WithSubject(subject string) Option {
	return func(o *options) {
		if subject != "" {
			o.Subject = subject
		}
	}
}

// WithoutMetrics disables Prometheus instrumentation.
func WithoutMetrics() Option {
	return func(o *options) {
		o.Metrics = nil
	}
}

// WithReferenceGenerator replaces the submission reference source.
func WithReferenceGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.NewRef = fn
		}
	}
}
