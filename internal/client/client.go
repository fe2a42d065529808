// Package client submits plugin payloads to a running relay.
package client

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/goatkit/plugincreator/internal/wizard"
)

// DefaultPath is where the relay accepts submissions.
const DefaultPath = "/api/send-email"

// RelayError is a failure reported by the relay.
type RelayError struct {
	Status  int
	Code    string
	Message string
	Details string
}

func (e *RelayError) Error() string { return e.Message }

type successBody struct {
	Message   string `json:"message"`
	Reference string `json:"reference"`
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

// RelayClient posts submissions as multipart forms. It never retries.
type RelayClient struct {
	http *resty.Client
	path string
}

// Option configures a RelayClient.
type Option func(*RelayClient)

// WithPath overrides the submission path.
func WithPath(path string) Option {
	return func(c *RelayClient) {
		if path != "" {
			c.path = path
		}
	}
}

func New(baseURL string, opts ...Option) *RelayClient {
	c := &RelayClient{
		http: resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		path: DefaultPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetRetryCount(0).SetHeader("Accept", "application/json")
	return c
}

var _ wizard.Sender = (*RelayClient)(nil)

// Send delivers p and returns the relay's confirmation message.
func (c *RelayClient) Send(ctx context.Context, p wizard.Payload) (string, error) {
	req := c.http.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"pluginData":         string(p.Artifact),
			"pluginInstructions": p.Instructions,
			"userEmail":          p.Email,
		}).
		SetResult(&successBody{}).
		SetError(&errorBody{})

	if p.Logo != nil {
		rc, err := p.Logo.Open()
		if err != nil {
			return "", fmt.Errorf("open logo %s: %w", p.Logo.Name(), err)
		}
		defer rc.Close()
		ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(p.Logo.Name())))
		if ct == "" {
			ct = "application/octet-stream"
		}
		req.SetMultipartField("pluginLogo", p.Logo.Name(), ct, rc)
	}

	resp, err := req.Post(c.path)
	if err != nil {
		return "", fmt.Errorf("post submission: %w", err)
	}

	if resp.IsError() {
		relayErr := &RelayError{Status: resp.StatusCode()}
		if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
			relayErr.Code = body.Code
			relayErr.Message = body.Error
			relayErr.Details = body.Details
		} else {
			relayErr.Message = strings.TrimSpace(resp.String())
			if relayErr.Message == "" {
				relayErr.Message = http.StatusText(resp.StatusCode())
			}
		}
		return "", relayErr
	}

	body, ok := resp.Result().(*successBody)
	if !ok || body.Message == "" {
		return "", fmt.Errorf("unexpected relay response (status %d): %s", resp.StatusCode(), resp.String())
	}
	return body.Message, nil
}
