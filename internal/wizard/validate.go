package wizard

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/goatkit/plugincreator/internal/models"
)

// Tracked field names.
const (
	FieldID           = "id"
	FieldImage        = "image"
	FieldEmail        = "email"
	FieldTriggersOn   = "triggers_on"
	FieldCapabilities = "capabilities"
)

var trackedFields = []string{FieldID, FieldImage, FieldEmail, FieldTriggersOn, FieldCapabilities}

var (
	idPattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
	imagePattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif)$`)
)

const (
	msgInvalidID        = "Plugin ID must contain only lowercase letters, numbers, and dashes."
	msgInvalidImage     = "Image filename must end with .jpg, .jpeg, .png, or .gif"
	msgImageSpaces      = "Image filename cannot contain spaces. Please rename the file and try again."
	msgImageType        = "Image must be a .jpg, .jpeg, .png, or .gif file"
	msgNoCapabilities   = "Please select at least one capability."
	msgInvalidEmail     = "Please enter a valid email address."
	msgEmailRequired    = "Email address is required."
	msgInvalidTrigger   = "Trigger must be memory_creation or transcript_processed."
	msgOutstandingError = "Please correct all errors before generating JSON."
)

// FieldState tags the outcome of validating one field.
type FieldState int

const (
	// Unchecked fields have not been edited yet and do not block generation.
	Unchecked FieldState = iota
	Valid
	Invalid
)

func (s FieldState) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unchecked"
	}
}

// FieldResult is the validation state of a single field.
type FieldResult struct {
	State  FieldState
	Reason string
}

func validResult() FieldResult { return FieldResult{State: Valid} }

func invalidResult(reason string) FieldResult {
	return FieldResult{State: Invalid, Reason: reason}
}

// Blocking reports whether the result prevents artifact generation.
func (r FieldResult) Blocking() bool { return r.State == Invalid }

// ValidateField checks a single field value. Fields without rules are always valid.
func ValidateField(name, value string) FieldResult {
	switch name {
	case FieldID:
		if !idPattern.MatchString(value) {
			return invalidResult(msgInvalidID)
		}
	case FieldImage:
		if strings.Contains(value, " ") {
			return invalidResult(msgImageSpaces)
		}
		if !imagePattern.MatchString(value) {
			return invalidResult(msgInvalidImage)
		}
	case FieldEmail:
		if strings.TrimSpace(value) == "" {
			return invalidResult(msgEmailRequired)
		}
		if _, err := mail.ParseAddress(value); err != nil {
			return invalidResult(msgInvalidEmail)
		}
	case FieldTriggersOn:
		if _, err := models.ParseTriggerEvent(value); err != nil {
			return invalidResult(msgInvalidTrigger)
		}
	}
	return validResult()
}

// validateLogoName applies the file selection rules: no spaces, allowed extension.
func validateLogoName(name string) FieldResult {
	if strings.Contains(name, " ") {
		return invalidResult(msgImageSpaces)
	}
	if !imagePattern.MatchString(name) {
		return invalidResult(msgImageType)
	}
	return validResult()
}
