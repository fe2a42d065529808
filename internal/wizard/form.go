// Package wizard holds the state behind the plugin submission form: the
// editable record, per-field validation results, the selected logo file and
// the projections built from them.
//
// A Form is owned by one goroutine at a time; it performs no locking.
package wizard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goatkit/plugincreator/internal/models"
)

// Editable top-level fields.
const (
	FieldName         = "name"
	FieldAuthor       = "author"
	FieldDescription  = "description"
	FieldChatPrompt   = "chat_prompt"
	FieldMemoryPrompt = "memory_prompt"
)

// Editable external integration fields.
const (
	FieldWebhookURL                = "webhook_url"
	FieldSetupCompletedURL         = "setup_completed_url"
	FieldSetupInstructionsFilePath = "setup_instructions_file_path"
	FieldSetupInstructions         = "setup_instructions"
)

// Form is the mutable submission record plus its derived validation state.
type Form struct {
	record  *models.PluginSubmission
	results map[string]FieldResult
	logo    File
}

// NewForm returns an empty form with every tracked field unchecked.
func NewForm() *Form {
	f := &Form{
		record:  models.NewPluginSubmission(),
		results: make(map[string]FieldResult, len(trackedFields)),
	}
	for _, name := range trackedFields {
		f.results[name] = FieldResult{State: Unchecked}
	}
	return f
}

// UpdateField sets a top-level field. Editing the name regenerates the id.
// Validation outcomes are recorded on the form, never returned; the error
// only reports fields the form does not allow editing.
func (f *Form) UpdateField(name, value string) error {
	r := f.record
	switch name {
	case FieldName:
		r.Name = value
		r.ID = DeriveID(value)
		f.results[FieldID] = ValidateField(FieldID, r.ID)
	case FieldAuthor:
		r.Author = value
	case FieldDescription:
		r.Description = value
	case FieldEmail:
		r.Email = value
		f.results[FieldEmail] = ValidateField(FieldEmail, value)
	case FieldImage:
		r.Image = value
		if f.logo != nil && f.logo.Name() != value {
			f.logo = nil
		}
		f.results[FieldImage] = ValidateField(FieldImage, value)
	case FieldChatPrompt:
		r.ChatPrompt = value
	case FieldMemoryPrompt:
		r.MemoryPrompt = value
	case FieldID:
		return &ValidationError{Field: name, Reason: "id is derived from the name", Err: ErrUnknownField}
	default:
		return &ValidationError{Field: name, Reason: "not an editable field", Err: ErrUnknownField}
	}
	return nil
}

// UpdateIntegrationField sets one external integration setting.
// A blank setup completed URL is stored as null.
func (f *Form) UpdateIntegrationField(name, value string) error {
	ei := &f.record.ExternalIntegration
	switch name {
	case FieldTriggersOn:
		ei.TriggersOn = models.TriggerEvent(value)
		f.results[FieldTriggersOn] = ValidateField(FieldTriggersOn, value)
	case FieldWebhookURL:
		ei.WebhookURL = value
	case FieldSetupCompletedURL:
		if strings.TrimSpace(value) == "" {
			ei.SetupCompletedURL = nil
		} else {
			v := value
			ei.SetupCompletedURL = &v
		}
	case FieldSetupInstructionsFilePath:
		ei.SetupInstructionsFilePath = value
	case FieldSetupInstructions:
		ei.SetupInstructions = value
	default:
		return &ValidationError{Field: name, Reason: "not an integration field", Err: ErrUnknownField}
	}
	return nil
}

// AddAuthStep appends an authorization link to the external integration.
func (f *Form) AddAuthStep(name, url string) {
	ei := &f.record.ExternalIntegration
	ei.AuthSteps = append(ei.AuthSteps, models.AuthStep{Name: name, URL: url})
}

// RemoveAuthStep deletes the i-th authorization link.
func (f *Form) RemoveAuthStep(i int) error {
	ei := &f.record.ExternalIntegration
	if i < 0 || i >= len(ei.AuthSteps) {
		return fmt.Errorf("auth step %d out of range", i)
	}
	ei.AuthSteps = append(ei.AuthSteps[:i:i], ei.AuthSteps[i+1:]...)
	return nil
}

// ToggleCapability flips c in the selected set and reports whether it is now selected.
// Prompt text belonging to a deselected capability is kept on the record.
func (f *Form) ToggleCapability(c models.Capability) (bool, error) {
	if _, err := models.ParseCapability(string(c)); err != nil {
		return false, &ValidationError{Field: FieldCapabilities, Reason: err.Error(), Err: ErrUnknownField}
	}
	on := f.record.Capabilities.Toggle(c)
	if f.record.Capabilities.Len() == 0 {
		f.results[FieldCapabilities] = invalidResult(msgNoCapabilities)
	} else {
		f.results[FieldCapabilities] = validResult()
	}
	return on, nil
}

// Visible reports whether the section owned by c should be shown.
func (f *Form) Visible(c models.Capability) bool {
	return f.record.Capabilities.Has(c)
}

// AttachFile selects a logo. Rejected selections are discarded and leave an
// image error on the form until a valid file is chosen.
func (f *Form) AttachFile(file File) error {
	if file == nil {
		return &ValidationError{Field: FieldImage, Reason: msgImageType, Err: ErrInvalidFile}
	}
	name := file.Name()
	res := validateLogoName(name)
	f.results[FieldImage] = res
	if res.Blocking() {
		f.logo = nil
		return &ValidationError{Field: FieldImage, Reason: res.Reason, Err: ErrInvalidFile}
	}
	f.record.Image = name
	f.logo = file
	return nil
}

// Logo returns the currently selected logo, or nil.
func (f *Form) Logo() File { return f.logo }

// Result returns the validation state of a tracked field.
func (f *Form) Result(field string) FieldResult { return f.results[field] }

// Errors returns the reasons for every invalid field.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string)
	for name, res := range f.results {
		if res.Blocking() {
			out[name] = res.Reason
		}
	}
	return out
}

func (f *Form) invalidFields() []string {
	var names []string
	for name, res := range f.results {
		if res.Blocking() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Record returns a copy of the live record, including text belonging to
// deselected capabilities.
func (f *Form) Record() models.PluginSubmission {
	r := *f.record
	r.Capabilities = models.NewCapabilitySet(f.record.Capabilities.List()...)
	r.ExternalIntegration.AuthSteps = append([]models.AuthStep{}, f.record.ExternalIntegration.AuthSteps...)
	if u := f.record.ExternalIntegration.SetupCompletedURL; u != nil {
		v := *u
		r.ExternalIntegration.SetupCompletedURL = &v
	}
	return r
}
