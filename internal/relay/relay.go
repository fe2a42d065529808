// Package relay turns plugin submissions into review notifications.
package relay

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/mail"
	"path/filepath"
	"strings"

	"github.com/goatkit/plugincreator/internal/notifications"
)

// SuccessMessage is returned to the submitter once the notification is sent.
const SuccessMessage = "Email sent successfully!"

var (
	// ErrMalformedPayload means the submitted plugin data could not be parsed.
	ErrMalformedPayload = errors.New("malformed plugin data")
	// ErrTransportFailure means the mail transport refused the notification.
	ErrTransportFailure = errors.New("failed to send email")
	// ErrRenderFailure means the notification body could not be built.
	ErrRenderFailure = errors.New("failed to render notification")
)

// Submission is one inbound request from a submitter.
type Submission struct {
	PluginData   []byte
	Instructions string
	Email        string
	Logo         *notifications.Attachment
}

// Result is returned for a relayed submission.
type Result struct {
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

// Relay forwards submissions to the review team.
type Relay struct {
	provider   notifications.EmailProvider
	recipients []string
	opts       options
}

// New builds a relay that sends through provider to the given recipients.
func New(provider notifications.EmailProvider, recipients []string, opts ...Option) (*Relay, error) {
	if provider == nil {
		return nil, errors.New("relay: email provider is required")
	}
	if len(recipients) == 0 {
		return nil, errors.New("relay: at least one review recipient is required")
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Relay{
		provider:   provider,
		recipients: append([]string(nil), recipients...),
		opts:       o,
	}, nil
}

// Relay parses, renders and dispatches a single submission. Nothing is retained
// after it returns.
func (r *Relay) Relay(ctx context.Context, sub Submission) (*Result, error) {
	logger := r.opts.Logger
	ref := r.opts.NewRef()

	artifact, pretty, err := parseArtifact(sub.PluginData)
	if err != nil {
		r.opts.Metrics.recordOutcome("malformed")
		logger.Printf("relay: submission %s rejected: %v", ref, err)
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	var logoName string
	if sub.Logo != nil {
		logoName = sub.Logo.Filename
	}
	body, err := r.opts.render(Notification{
		Artifact:     artifact,
		ArtifactJSON: pretty,
		Instructions: sub.Instructions,
		Email:        sub.Email,
		LogoName:     logoName,
		Reference:    ref,
	})
	if err != nil {
		r.opts.Metrics.recordOutcome("render_error")
		logger.Printf("relay: submission %s could not be rendered: %v", ref, err)
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}

	msg := notifications.EmailMessage{
		To:      r.recipients,
		Subject: Subject(r.opts.Subject, artifact),
		Text:    body.Text,
		HTML:    body.HTML,
	}
	if addr, err := mail.ParseAddress(strings.TrimSpace(sub.Email)); err == nil {
		msg.ReplyTo = addr.Address
	}
	if sub.Logo != nil {
		msg.Attachments = []notifications.Attachment{logoAttachment(*sub.Logo)}
		r.opts.Metrics.recordLogo(len(sub.Logo.Data))
	}

	done := r.opts.Metrics.startDispatch()
	err = r.provider.Send(ctx, msg)
	done()
	if err != nil {
		r.opts.Metrics.recordOutcome("transport_error")
		logger.Printf("relay: submission %s (%q) failed to send: %v", ref, artifact.Name, err)
		return nil, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}

	r.opts.Metrics.recordOutcome("sent")
	logger.Printf("relay: submission %s (%q) sent to %d reviewer(s)", ref, artifact.Name, len(r.recipients))
	return &Result{Reference: ref, Message: SuccessMessage}, nil
}

func logoAttachment(a notifications.Attachment) notifications.Attachment {
	name := filepath.Base(a.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "logo"
	}
	ct := a.ContentType
	if ct == "" || ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
			ct = byExt
		} else {
			ct = http.DetectContentType(a.Data)
		}
	}
	return notifications.Attachment{Filename: name, ContentType: ct, Data: a.Data}
}
