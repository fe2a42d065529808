package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/plugincreator/internal/wizard"
)

const draftYAML = `name: Hook Bot
author: Ada
description: Posts memories to a webhook
email: dev@example.com
capabilities: [chat, external_integration]
chat_prompt: Be terse
external_integration:
  webhook_url: https://example.com/hook
  setup_instructions: |
    1. Create an API key
`

func writeDraft(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPreviewPrintsArtifact(t *testing.T) {
	out, err := runCmd(t, "preview", "--draft", writeDraft(t, draftYAML))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "hook-bot", got["id"])
	assert.Equal(t, []any{"chat", "external_integration"}, got["capabilities"])
	assert.Equal(t, "Be terse", got["chat_prompt"])
	assert.NotContains(t, got, "memory_prompt")
}

func TestPreviewReportsFieldErrors(t *testing.T) {
	_, err := runCmd(t, "preview", "--draft", writeDraft(t, "name: Hook Bot\nemail: nope\ncapabilities: [chat]\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, wizard.ErrOutstandingErrors)
	assert.Contains(t, err.Error(), "email: Please enter a valid email address.")
}

func TestPreviewRequiresDraft(t *testing.T) {
	_, err := runCmd(t, "preview")
	assert.Error(t, err)
}

func TestSubmitPostsToRelay(t *testing.T) {
	var fields map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{
			"pluginData":         r.FormValue("pluginData"),
			"pluginInstructions": r.FormValue("pluginInstructions"),
			"userEmail":          r.FormValue("userEmail"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Email sent successfully!","reference":"r"}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, "submit", "--draft", writeDraft(t, draftYAML), "--relay-url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Email sent successfully!\n", out)
	assert.Equal(t, "dev@example.com", fields["userEmail"])
	assert.Equal(t, "1. Create an API key\n", fields["pluginInstructions"])
	assert.Contains(t, fields["pluginData"], `"webhook_url":"https://example.com/hook"`)
}

func TestSubmitRejectsBadLogo(t *testing.T) {
	_, err := runCmd(t, "submit", "--draft", writeDraft(t, draftYAML), "--logo", "my logo.png", "--relay-url", "http://127.0.0.1:1")
	assert.ErrorIs(t, err, wizard.ErrInvalidFile)
}
