package wizard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goatkit/plugincreator/internal/models"
)

// Draft is a YAML description of a submission, used to fill the form without
// the interactive wizard.
type Draft struct {
	Name         string   `yaml:"name"`
	Author       string   `yaml:"author"`
	Description  string   `yaml:"description"`
	Email        string   `yaml:"email"`
	Image        string   `yaml:"image"`
	Logo         string   `yaml:"logo"`
	Capabilities []string `yaml:"capabilities"`
	ChatPrompt   string   `yaml:"chat_prompt"`
	MemoryPrompt string   `yaml:"memory_prompt"`

	ExternalIntegration *DraftIntegration `yaml:"external_integration"`
}

// DraftIntegration mirrors the external integration settings.
type DraftIntegration struct {
	TriggersOn                string            `yaml:"triggers_on"`
	WebhookURL                string            `yaml:"webhook_url"`
	SetupCompletedURL         string            `yaml:"setup_completed_url"`
	SetupInstructionsFilePath string            `yaml:"setup_instructions_file_path"`
	SetupInstructions         string            `yaml:"setup_instructions"`
	AuthSteps                 []models.AuthStep `yaml:"auth_steps"`
}

// LoadDraft reads a YAML draft and replays it into a new form. A relative
// logo path is resolved against the draft's directory.
func LoadDraft(path string) (*Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	return DraftFromYAML(data, filepath.Dir(path))
}

// DraftFromYAML parses a draft and replays it into a new form.
func DraftFromYAML(data []byte, baseDir string) (*Form, error) {
	var d Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}
	return d.Apply(baseDir)
}

// Apply builds a form by performing the same edits a user would. Field
// validation problems stay on the form; only structural problems are returned.
func (d *Draft) Apply(baseDir string) (*Form, error) {
	f := NewForm()
	set := func(name, value string) error {
		if value == "" {
			return nil
		}
		return f.UpdateField(name, value)
	}
	for _, kv := range [][2]string{
		{FieldName, d.Name},
		{FieldAuthor, d.Author},
		{FieldDescription, d.Description},
		{FieldEmail, d.Email},
		{FieldChatPrompt, d.ChatPrompt},
		{FieldMemoryPrompt, d.MemoryPrompt},
	} {
		if err := set(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	for _, name := range d.Capabilities {
		c, err := models.ParseCapability(name)
		if err != nil {
			return nil, fmt.Errorf("draft capabilities: %w", err)
		}
		if f.Visible(c) {
			continue
		}
		if _, err := f.ToggleCapability(c); err != nil {
			return nil, err
		}
	}

	if ei := d.ExternalIntegration; ei != nil {
		fields := [][2]string{
			{FieldTriggersOn, ei.TriggersOn},
			{FieldWebhookURL, ei.WebhookURL},
			{FieldSetupCompletedURL, ei.SetupCompletedURL},
			{FieldSetupInstructionsFilePath, ei.SetupInstructionsFilePath},
			{FieldSetupInstructions, ei.SetupInstructions},
		}
		for _, kv := range fields {
			if kv[1] == "" {
				continue
			}
			if err := f.UpdateIntegrationField(kv[0], kv[1]); err != nil {
				return nil, err
			}
		}
		for _, step := range ei.AuthSteps {
			f.AddAuthStep(step.Name, step.URL)
		}
	}

	switch {
	case d.Logo != "":
		path := d.Logo
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		var verr *ValidationError
		if err := f.AttachFile(LocalFile(path)); err != nil && !errors.As(err, &verr) {
			return nil, err
		}
	case d.Image != "":
		if err := f.UpdateField(FieldImage, d.Image); err != nil {
			return nil, err
		}
	}
	return f, nil
}
