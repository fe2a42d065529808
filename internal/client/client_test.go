package client

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/plugincreator/internal/api"
	"github.com/goatkit/plugincreator/internal/config"
	"github.com/goatkit/plugincreator/internal/models"
	"github.com/goatkit/plugincreator/internal/notifications"
	"github.com/goatkit/plugincreator/internal/relay"
	"github.com/goatkit/plugincreator/internal/wizard"
)

func TestSendPostsMultipartFields(t *testing.T) {
	var (
		calls int
		got   = map[string]string{}
		logo  []byte
		name  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, DefaultPath, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for _, k := range []string{"pluginData", "pluginInstructions", "userEmail"} {
			got[k] = r.FormValue(k)
		}
		f, fh, err := r.FormFile("pluginLogo")
		require.NoError(t, err)
		defer f.Close()
		logo, _ = io.ReadAll(f)
		name = fh.Filename

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Email sent successfully!","reference":"r-1"}`))
	}))
	defer srv.Close()

	msg, err := New(srv.URL+"/").Send(context.Background(), wizard.Payload{
		Artifact:     []byte(`{"name":"Hook Bot"}`),
		Instructions: "# Setup",
		Email:        "dev@example.com",
		Logo:         wizard.MemoryFile{Filename: "hook.png", Data: []byte("png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Email sent successfully!", msg)
	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]string{
		"pluginData":         `{"name":"Hook Bot"}`,
		"pluginInstructions": "# Setup",
		"userEmail":          "dev@example.com",
	}, got)
	assert.Equal(t, "hook.png", name)
	assert.Equal(t, []byte("png-bytes"), logo)
}

func TestSendReturnsRelayErrorWithoutRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to send email","code":"relay:transport_failure","details":"535 bad credentials"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Send(context.Background(), wizard.Payload{Artifact: []byte(`{}`), Email: "a@example.com"})

	var relayErr *RelayError
	require.True(t, errors.As(err, &relayErr))
	assert.Equal(t, http.StatusInternalServerError, relayErr.Status)
	assert.Equal(t, "relay:transport_failure", relayErr.Code)
	assert.Equal(t, "Failed to send email", relayErr.Error())
	assert.Equal(t, "535 bad credentials", relayErr.Details)
	assert.Equal(t, 1, calls)
}

func TestNewHasNoRequestTimeout(t *testing.T) {
	c := New("http://relay.test", WithPath("/submit"))
	assert.Zero(t, c.http.GetClient().Timeout)
	assert.Equal(t, "/submit", c.path)
}

func TestSendNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Send(context.Background(), wizard.Payload{Artifact: []byte(`{}`)})
	var relayErr *RelayError
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, "upstream down", relayErr.Message)
}

func TestSendConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Send(context.Background(), wizard.Payload{Artifact: []byte(`{}`)})
	require.Error(t, err)
	var relayErr *RelayError
	assert.False(t, errors.As(err, &relayErr))
}

type capturingProvider struct {
	mu   sync.Mutex
	sent []notifications.EmailMessage
}

func (c *capturingProvider) Send(_ context.Context, msg notifications.EmailMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func TestFormSubmitThroughRelay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider := &capturingProvider{}
	rl, err := relay.New(provider, []string{"reviewers@example.com"},
		relay.WithLogger(log.New(io.Discard, "", 0)), relay.WithoutMetrics())
	require.NoError(t, err)

	cfg := &config.Config{Relay: config.RelayConfig{Path: DefaultPath}, CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := httptest.NewServer(api.NewRouter(ctx, cfg, rl))
	defer srv.Close()

	f := wizard.NewForm()
	require.NoError(t, f.UpdateField(wizard.FieldName, "Hook Bot"))
	require.NoError(t, f.UpdateField(wizard.FieldEmail, "dev@example.com"))
	_, err = f.ToggleCapability(models.CapabilityChat)
	require.NoError(t, err)
	require.NoError(t, f.UpdateField(wizard.FieldChatPrompt, "Be terse"))
	require.NoError(t, f.AttachFile(wizard.MemoryFile{Filename: "hook.png", Data: []byte("\x89PNG\r\n\x1a\n")}))

	msg, err := f.Submit(context.Background(), New(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, relay.SuccessMessage, msg)

	require.Len(t, provider.sent, 1)
	sent := provider.sent[0]
	assert.Equal(t, "New Plugin Submission: Hook Bot", sent.Subject)
	assert.Contains(t, sent.Text, `"chat_prompt": "Be terse"`)
	require.Len(t, sent.Attachments, 1)
	assert.Equal(t, "image/png", sent.Attachments[0].ContentType)
}
