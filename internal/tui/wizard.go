// Package tui is the terminal front end for filling in and submitting a
// plugin form.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/goatkit/plugincreator/internal/models"
	"github.com/goatkit/plugincreator/internal/wizard"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CCCCCC")).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Width(22)
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	previewStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
)

// rowLogo is the pseudo field for the logo file path.
const rowLogo = "logo"

type rowKind int

const (
	rowText rowKind = iota
	rowArea
	rowCapability
)

type row struct {
	kind        rowKind
	field       string
	label       string
	section     string
	integration bool
	capability  models.Capability
	// errorField is the tracked field whose result is shown beside the row.
	errorField string
}

var baseRows = []row{
	{kind: rowText, field: wizard.FieldName, label: "Name", section: "Plugin", errorField: wizard.FieldID},
	{kind: rowText, field: wizard.FieldAuthor, label: "Author"},
	{kind: rowText, field: wizard.FieldDescription, label: "Description"},
	{kind: rowText, field: wizard.FieldEmail, label: "Contact email", errorField: wizard.FieldEmail},
	{kind: rowText, field: rowLogo, label: "Logo file (enter)", errorField: wizard.FieldImage},
}

var chatRows = []row{
	{kind: rowText, field: wizard.FieldChatPrompt, label: "Chat prompt", section: "Chat"},
}

var memoryRows = []row{
	{kind: rowText, field: wizard.FieldMemoryPrompt, label: "Memory prompt", section: "Memories"},
}

var integrationRows = []row{
	{kind: rowText, field: wizard.FieldTriggersOn, label: "Triggers on", section: "External integration", integration: true, errorField: wizard.FieldTriggersOn},
	{kind: rowText, field: wizard.FieldWebhookURL, label: "Webhook URL", integration: true},
	{kind: rowText, field: wizard.FieldSetupCompletedURL, label: "Setup completed URL", integration: true},
	{kind: rowText, field: wizard.FieldSetupInstructionsFilePath, label: "Instructions path", integration: true},
	{kind: rowArea, field: wizard.FieldSetupInstructions, label: "Setup instructions", integration: true},
}

type submitResultMsg struct {
	message string
	err     error
}

// Model is the bubbletea model driving one form.
type Model struct {
	ctx    context.Context
	form   *wizard.Form
	sender wizard.Sender

	inputs map[string]textinput.Model
	// instructions holds the markdown setup instructions; enter adds a line.
	instructions textarea.Model
	focus        int

	preview    string
	status     string
	err        error
	submitting bool
	submitted  bool
	width      int
}

// New builds a wizard over form, pre-filling inputs from its record.
func New(ctx context.Context, form *wizard.Form, sender wizard.Sender) *Model {
	if form == nil {
		form = wizard.NewForm()
	}
	m := &Model{
		ctx:    ctx,
		form:   form,
		sender: sender,
		inputs: make(map[string]textinput.Model),
	}

	rec := form.Record()
	initial := map[string]string{
		wizard.FieldName:                      rec.Name,
		wizard.FieldAuthor:                    rec.Author,
		wizard.FieldDescription:               rec.Description,
		wizard.FieldEmail:                     rec.Email,
		rowLogo:                               rec.Image,
		wizard.FieldChatPrompt:                rec.ChatPrompt,
		wizard.FieldMemoryPrompt:              rec.MemoryPrompt,
		wizard.FieldTriggersOn:                string(rec.ExternalIntegration.TriggersOn),
		wizard.FieldWebhookURL:                rec.ExternalIntegration.WebhookURL,
		wizard.FieldSetupInstructionsFilePath: rec.ExternalIntegration.SetupInstructionsFilePath,
	}
	if u := rec.ExternalIntegration.SetupCompletedURL; u != nil {
		initial[wizard.FieldSetupCompletedURL] = *u
	}
	for _, group := range [][]row{baseRows, chatRows, memoryRows, integrationRows} {
		for _, r := range group {
			if r.kind != rowText {
				continue
			}
			in := textinput.New()
			in.Prompt = ""
			in.CharLimit = 4096
			in.SetValue(initial[r.field])
			m.inputs[r.field] = in
		}
	}

	m.instructions = textarea.New()
	m.instructions.Prompt = ""
	m.instructions.ShowLineNumbers = false
	m.instructions.CharLimit = 0
	m.instructions.Placeholder = "Markdown, shown to users while they set up the integration"
	m.instructions.SetWidth(60)
	m.instructions.SetHeight(5)
	m.instructions.SetValue(rec.ExternalIntegration.SetupInstructions)
	m.instructions.Blur()

	m.focusCurrent()
	return m
}

// Form exposes the underlying form state.
func (m *Model) Form() *wizard.Form { return m.form }

func (m *Model) Init() tea.Cmd { return textinput.Blink }

// rows lists the focusable rows; optional sections follow the capability set.
func (m *Model) rows() []row {
	out := append([]row(nil), baseRows...)
	for i, c := range models.AllCapabilities {
		r := row{kind: rowCapability, capability: c, label: c.Label(), errorField: wizard.FieldCapabilities}
		if i == 0 {
			r.section = "Capabilities (space to toggle)"
		}
		out = append(out, r)
	}
	if m.form.Visible(models.CapabilityChat) {
		out = append(out, chatRows...)
	}
	if m.form.Visible(models.CapabilityMemories) {
		out = append(out, memoryRows...)
	}
	if m.form.Visible(models.CapabilityExternalIntegration) {
		out = append(out, integrationRows...)
	}
	return out
}

func (m *Model) current() row {
	rows := m.rows()
	if m.focus >= len(rows) {
		m.focus = len(rows) - 1
	}
	return rows[m.focus]
}

func (m *Model) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	cur := m.current()
	for field, in := range m.inputs {
		if cur.kind == rowText && field == cur.field {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
		m.inputs[field] = in
	}
	if cur.kind == rowArea {
		cmd = m.instructions.Focus()
	} else {
		m.instructions.Blur()
	}
	return cmd
}

func (m *Model) move(delta int) tea.Cmd {
	n := len(m.rows())
	m.focus = (m.focus + delta + n) % n
	return m.focusCurrent()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case submitResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.submitted = true
		m.status = msg.message
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur := m.current()
	if cur.kind == rowArea {
		switch msg.String() {
		case "ctrl+c", "esc", "tab", "shift+tab", "ctrl+g", "ctrl+s":
		default:
			return m, m.editInstructions(cur, msg)
		}
	}
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		return m, m.move(1)
	case "shift+tab", "up":
		return m, m.move(-1)
	case "ctrl+g":
		m.generatePreview()
		return m, nil
	case "ctrl+s":
		return m, m.submit()
	case " ", "space", "enter":
		if cur.kind == rowCapability {
			if _, err := m.form.ToggleCapability(cur.capability); err != nil {
				m.err = err
			}
			return m, m.focusCurrent()
		}
		if msg.String() == "enter" {
			if cur.field == rowLogo {
				m.attachLogo()
			} else {
				return m, m.move(1)
			}
			return m, nil
		}
	}

	if cur.kind != rowText {
		return m, nil
	}
	in := m.inputs[cur.field]
	before := in.Value()
	in, cmd := in.Update(msg)
	m.inputs[cur.field] = in
	if in.Value() != before {
		m.apply(cur, in.Value())
	}
	return m, cmd
}

func (m *Model) editInstructions(r row, msg tea.KeyMsg) tea.Cmd {
	before := m.instructions.Value()
	var cmd tea.Cmd
	m.instructions, cmd = m.instructions.Update(msg)
	if v := m.instructions.Value(); v != before {
		m.apply(r, v)
	}
	return cmd
}

// apply pushes an edited input into the form.
func (m *Model) apply(r row, value string) {
	var err error
	switch {
	case r.field == rowLogo:
		// The logo is only attached on enter.
		return
	case r.integration:
		err = m.form.UpdateIntegrationField(r.field, value)
	default:
		err = m.form.UpdateField(r.field, value)
	}
	if err != nil {
		m.err = err
	}
}

func (m *Model) attachLogo() {
	path := strings.TrimSpace(m.inputs[rowLogo].Value())
	if path == "" {
		return
	}
	if err := m.form.AttachFile(wizard.LocalFile(path)); err != nil {
		m.status = ""
		return
	}
	m.status = "Logo attached: " + wizard.LocalFile(path).Name()
}

func (m *Model) generatePreview() {
	data, err := m.form.ArtifactJSON()
	if err != nil {
		m.err = err
		m.preview = ""
		return
	}
	m.err = nil
	m.preview = string(data)
}

// submit snapshots the payload and sends it off the update loop so editing
// continues while the request is in flight.
func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	if m.sender == nil {
		m.err = fmt.Errorf("no relay configured")
		return nil
	}
	p, err := m.form.Payload()
	if err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.submitting = true
	m.status = "Submitting..."
	ctx, sender, payload := m.ctx, m.sender, *p
	return func() tea.Msg {
		msg, err := sender.Send(ctx, payload)
		return submitResultMsg{message: msg, err: err}
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Plugin Creator"))
	b.WriteString("\n")

	cur := m.focus
	capErrShown := false
	for i, r := range m.rows() {
		if r.section != "" {
			b.WriteString(sectionStyle.Render(r.section))
			b.WriteString("\n")
		}
		marker := "  "
		if i == cur {
			marker = focusStyle.Render("> ")
		}
		b.WriteString(marker)

		switch r.kind {
		case rowCapability:
			box := "[ ]"
			if m.form.Visible(r.capability) {
				box = "[x]"
			}
			b.WriteString(box + " " + r.label)
		case rowArea:
			b.WriteString(labelStyle.Render(r.label) + "\n" + m.instructions.View())
		default:
			in := m.inputs[r.field]
			b.WriteString(labelStyle.Render(r.label) + in.View())
		}

		if r.errorField != "" {
			res := m.form.Result(r.errorField)
			show := res.Blocking()
			if r.kind == rowCapability {
				show = show && !capErrShown
				capErrShown = capErrShown || show
			}
			if show {
				b.WriteString("  " + errorStyle.Render(res.Reason))
			}
		}
		b.WriteString("\n")
	}

	if m.preview != "" {
		b.WriteString("\n")
		b.WriteString(previewStyle.Render(m.preview))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	if m.status != "" {
		style := hintStyle
		if m.submitted {
			style = okStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}
	b.WriteString("\n" + hintStyle.Render("tab/shift+tab move · space toggle · enter newline in instructions · ctrl+g preview · ctrl+s submit · esc quit"))
	return b.String()
}

// Run starts the wizard on the terminal.
func Run(ctx context.Context, form *wizard.Form, sender wizard.Sender) error {
	p := tea.NewProgram(New(ctx, form, sender), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
