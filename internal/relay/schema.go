package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/goatkit/plugincreator/internal/models"
)

// artifactSchema only constrains types; every property is optional.
const artifactSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"},
    "author": {"type": "string"},
    "description": {"type": "string"},
    "image": {"type": "string"},
    "email": {"type": "string"},
    "capabilities": {"type": "array", "items": {"type": "string"}},
    "chat_prompt": {"type": "string"},
    "memory_prompt": {"type": "string"},
    "external_integration": {
      "type": "object",
      "properties": {
        "triggers_on": {"type": "string"},
        "webhook_url": {"type": "string"},
        "setup_completed_url": {"type": ["string", "null"]},
        "setup_instructions_file_path": {"type": "string"},
        "auth_steps": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "url": {"type": "string"}}
          }
        }
      }
    }
  }
}`

var artifactSchemaLoader = gojsonschema.NewStringLoader(artifactSchema)

// parseArtifact decodes submitted plugin data and returns it alongside an
// indented copy that preserves the submitter's key order.
func parseArtifact(data []byte) (*models.Artifact, []byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, errors.New("plugin data is empty")
	}
	if !json.Valid(data) {
		return nil, nil, errors.New("plugin data is not valid JSON")
	}

	res, err := gojsonschema.Validate(artifactSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("validate plugin data: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, nil, fmt.Errorf("plugin data does not match the plugin shape: %s", strings.Join(msgs, "; "))
	}

	var a models.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, nil, fmt.Errorf("decode plugin data: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, bytes.TrimSpace(data), "", "  "); err != nil {
		return nil, nil, fmt.Errorf("indent plugin data: %w", err)
	}
	return &a, pretty.Bytes(), nil
}
