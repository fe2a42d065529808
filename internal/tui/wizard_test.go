package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/plugincreator/internal/models"
	"github.com/goatkit/plugincreator/internal/wizard"
)

type stubSender struct {
	mu       sync.Mutex
	payloads []wizard.Payload
	err      error
}

func (s *stubSender) Send(_ context.Context, p wizard.Payload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, p)
	if s.err != nil {
		return "", s.err
	}
	return "Email sent successfully!", nil
}

func press(t *testing.T, m *Model, keys ...tea.KeyMsg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(k)
	}
	return cmd
}

func typeText(t *testing.T, m *Model, s string) {
	t.Helper()
	press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyGen   = tea.KeyMsg{Type: tea.KeyCtrlG}
	keySend  = tea.KeyMsg{Type: tea.KeyCtrlS}
)

// fillValidForm leaves focus on the chat prompt.
func fillValidForm(t *testing.T, m *Model) {
	t.Helper()
	typeText(t, m, "Hook Bot")
	press(t, m, keyTab, keyTab, keyTab)
	typeText(t, m, "dev@example.com")
	press(t, m, keyTab, keyTab, keySpace)
	require.True(t, m.Form().Visible(models.CapabilityChat))
	press(t, m, keyTab, keyTab, keyTab)
	require.Equal(t, wizard.FieldChatPrompt, m.current().field)
	typeText(t, m, "Be terse")
}

func TestTypingUpdatesForm(t *testing.T) {
	m := New(context.Background(), nil, nil)
	typeText(t, m, "My Cool Plugin!!")

	rec := m.Form().Record()
	assert.Equal(t, "My Cool Plugin!!", rec.Name)
	assert.Equal(t, "my-cool-plugin", rec.ID)
}

func TestCapabilityToggleRevealsSection(t *testing.T) {
	m := New(context.Background(), nil, nil)
	assert.NotContains(t, m.View(), "Chat prompt")

	press(t, m, keyTab, keyTab, keyTab, keyTab, keyTab)
	require.Equal(t, rowCapability, m.current().kind)
	press(t, m, keySpace)
	assert.Contains(t, m.View(), "Chat prompt")
	assert.Contains(t, m.View(), "[x] Chat")

	press(t, m, keySpace)
	assert.NotContains(t, m.View(), "Chat prompt")
	assert.Contains(t, m.View(), "Please select at least one capability.")
}

func TestPreviewWithoutCapabilities(t *testing.T) {
	m := New(context.Background(), nil, nil)
	typeText(t, m, "Hook Bot")
	press(t, m, keyGen)

	assert.ErrorIs(t, m.err, wizard.ErrNoCapabilities)
	assert.Empty(t, m.preview)
}

func TestPreviewShowsArtifact(t *testing.T) {
	m := New(context.Background(), nil, nil)
	fillValidForm(t, m)
	press(t, m, keyGen)

	require.NoError(t, m.err)
	assert.Contains(t, m.preview, `"chat_prompt": "Be terse"`)
	assert.Contains(t, m.View(), `"id": "hook-bot"`)
}

func TestSubmitIsAsyncAndSingleFlight(t *testing.T) {
	sender := &stubSender{}
	m := New(context.Background(), nil, sender)
	fillValidForm(t, m)

	cmd := press(t, m, keySend)
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)
	assert.Nil(t, press(t, m, keySend), "a second submit waits for the first")

	// Editing continues while the request is in flight.
	typeText(t, m, "!")
	assert.Equal(t, "Be terse!", m.Form().Record().ChatPrompt)

	_, _ = m.Update(cmd())

	assert.False(t, m.submitting)
	assert.Equal(t, "Email sent successfully!", m.status)
	require.Len(t, sender.payloads, 1)
	assert.Contains(t, string(sender.payloads[0].Artifact), `"chat_prompt":"Be terse"`)
}

func TestSubmitFailureShowsError(t *testing.T) {
	sender := &stubSender{err: errors.New("Failed to send email")}
	m := New(context.Background(), nil, sender)
	fillValidForm(t, m)

	cmd := press(t, m, keySend)
	require.NotNil(t, cmd)
	_, _ = m.Update(cmd())

	assert.EqualError(t, m.err, "Failed to send email")
	assert.Contains(t, m.View(), "Failed to send email")
	assert.False(t, m.submitted)
}

func TestSubmitRequiresEmail(t *testing.T) {
	sender := &stubSender{}
	m := New(context.Background(), nil, sender)
	typeText(t, m, "Hook Bot")
	press(t, m, keyTab, keyTab, keyTab, keyTab, keyTab, keySpace)

	assert.Nil(t, press(t, m, keySend))
	assert.ErrorIs(t, m.err, wizard.ErrEmailRequired)
	assert.Empty(t, sender.payloads)
}

func TestLogoWithSpacesRejected(t *testing.T) {
	m := New(context.Background(), nil, nil)
	press(t, m, keyTab, keyTab, keyTab, keyTab)
	require.Equal(t, rowLogo, m.current().field)
	typeText(t, m, "my logo.png")
	press(t, m, keyEnter)

	assert.True(t, m.Form().Result(wizard.FieldImage).Blocking())
	assert.Nil(t, m.Form().Logo())
	assert.Contains(t, m.View(), "cannot contain spaces")
}

func TestPrefillFromForm(t *testing.T) {
	f, err := wizard.DraftFromYAML([]byte("name: Hook Bot\ncapabilities: [external_integration]\nexternal_integration:\n  webhook_url: https://example.com/hook\n"), t.TempDir())
	require.NoError(t, err)

	m := New(context.Background(), f, nil)
	assert.Equal(t, "Hook Bot", m.inputs[wizard.FieldName].Value())
	assert.Equal(t, "https://example.com/hook", m.inputs[wizard.FieldWebhookURL].Value())
	assert.Equal(t, "memory_creation", m.inputs[wizard.FieldTriggersOn].Value())
	assert.Contains(t, m.View(), "External integration")
}

func TestSetupInstructionsAcceptMultipleLines(t *testing.T) {
	f, err := wizard.DraftFromYAML([]byte("name: Hook Bot\ncapabilities: [external_integration]\n"), t.TempDir())
	require.NoError(t, err)
	m := New(context.Background(), f, nil)

	for i := 0; i < len(m.rows()) && m.current().field != wizard.FieldSetupInstructions; i++ {
		press(t, m, keyTab)
	}
	require.Equal(t, rowArea, m.current().kind)

	typeText(t, m, "## Setup")
	press(t, m, keyEnter)
	typeText(t, m, "1. Paste the token")

	assert.Equal(t, wizard.FieldSetupInstructions, m.current().field, "enter stays in the instructions")
	assert.Equal(t, "## Setup\n1. Paste the token", m.Form().Record().ExternalIntegration.SetupInstructions)

	press(t, m, keyTab)
	assert.Equal(t, wizard.FieldName, m.current().field)
}

func TestPrefillSetupInstructions(t *testing.T) {
	f, err := wizard.DraftFromYAML([]byte("name: Hook Bot\ncapabilities: [external_integration]\nexternal_integration:\n  setup_instructions: |\n    ## Setup\n    Paste the token\n"), t.TempDir())
	require.NoError(t, err)

	m := New(context.Background(), f, nil)
	assert.Equal(t, "## Setup\nPaste the token", strings.TrimSpace(m.instructions.Value()))
}

func TestEscQuits(t *testing.T) {
	m := New(context.Background(), nil, nil)
	cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
