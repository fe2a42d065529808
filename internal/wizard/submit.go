package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is everything the relay receives for one submission.
type Payload struct {
	// Artifact is the JSON-encoded artifact.
	Artifact []byte
	// Instructions is the raw setup instructions markdown, carried outside the artifact.
	Instructions string
	Email        string
	// Logo is the selected image file, nil when none was attached.
	Logo File
}

// Sender delivers a payload to the submission relay and returns its
// confirmation message.
type Sender interface {
	Send(ctx context.Context, p Payload) (string, error)
}

// Payload assembles the submission from the current state, regenerating the
// artifact so edits made after the last preview are included.
func (f *Form) Payload() (*Payload, error) {
	a, err := f.GenerateArtifact()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.record.Email) == "" {
		f.results[FieldEmail] = invalidResult(msgEmailRequired)
		return nil, &ValidationError{Field: FieldEmail, Reason: msgEmailRequired, Err: ErrEmailRequired}
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return &Payload{
		Artifact:     b,
		Instructions: f.record.ExternalIntegration.SetupInstructions,
		Email:        f.record.Email,
		Logo:         f.logo,
	}, nil
}

// Submit sends the submission through s exactly once. Failures are returned
// as reported by the relay and are not retried.
func (f *Form) Submit(ctx context.Context, s Sender) (string, error) {
	p, err := f.Payload()
	if err != nil {
		return "", err
	}
	return s.Send(ctx, *p)
}
