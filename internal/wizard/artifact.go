package wizard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goatkit/plugincreator/internal/models"
)

// GenerateArtifact builds the preview projection. It fails when no capability
// is selected, and otherwise when any tracked field is invalid.
func (f *Form) GenerateArtifact() (*models.Artifact, error) {
	if f.record.Capabilities.Len() == 0 {
		f.results[FieldCapabilities] = invalidResult(msgNoCapabilities)
		return nil, &ValidationError{Field: FieldCapabilities, Reason: msgNoCapabilities, Err: ErrNoCapabilities}
	}
	if bad := f.invalidFields(); len(bad) > 0 {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("%s (%s)", msgOutstandingError, strings.Join(bad, ", ")),
			Err:    ErrOutstandingErrors,
		}
	}
	return f.record.Project(), nil
}

// ArtifactJSON renders the preview artifact as indented JSON.
func (f *Form) ArtifactJSON() ([]byte, error) {
	a, err := f.GenerateArtifact()
	if err != nil {
		return nil, err
	}
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return b, nil
}
