// Package models defines the plugin submission record and its published projections.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LogoPathPrefix is prepended to the logo filename in published artifacts.
const LogoPathPrefix = "/plugins/logos/"

// Capability is an optional feature set a plugin opts into.
type Capability string

const (
	CapabilityChat                Capability = "chat"
	CapabilityMemories            Capability = "memories"
	CapabilityExternalIntegration Capability = "external_integration"
)

// AllCapabilities lists the known capabilities in display order.
var AllCapabilities = []Capability{
	CapabilityChat,
	CapabilityMemories,
	CapabilityExternalIntegration,
}

// ParseCapability maps a wire name to a Capability.
func ParseCapability(s string) (Capability, error) {
	c := Capability(strings.TrimSpace(s))
	for _, known := range AllCapabilities {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// Label returns a human readable name for the capability.
func (c Capability) Label() string {
	switch c {
	case CapabilityChat:
		return "Chat"
	case CapabilityMemories:
		return "Memories"
	case CapabilityExternalIntegration:
		return "External Integration"
	default:
		return string(c)
	}
}

// CapabilitySet is an ordered set of capabilities. Selection order is kept
// so the published list matches the order the submitter picked them in.
type CapabilitySet struct {
	items []Capability
}

// NewCapabilitySet builds a set from the given capabilities, dropping duplicates.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s.Add(c)
	}
	return s
}

// Has reports set membership.
func (s CapabilitySet) Has(c Capability) bool {
	for _, item := range s.items {
		if item == c {
			return true
		}
	}
	return false
}

// Add inserts c if absent.
func (s *CapabilitySet) Add(c Capability) {
	if s.Has(c) {
		return
	}
	s.items = append(s.items, c)
}

// Remove deletes c if present.
func (s *CapabilitySet) Remove(c Capability) {
	out := make([]Capability, 0, len(s.items))
	for _, item := range s.items {
		if item != c {
			out = append(out, item)
		}
	}
	s.items = out
}

// Toggle flips membership of c and reports whether it is now selected.
func (s *CapabilitySet) Toggle(c Capability) bool {
	if s.Has(c) {
		s.Remove(c)
		return false
	}
	s.Add(c)
	return true
}

// Len returns the number of selected capabilities.
func (s CapabilitySet) Len() int { return len(s.items) }

// List returns a copy of the selected capabilities in selection order.
func (s CapabilitySet) List() []Capability {
	out := make([]Capability, len(s.items))
	copy(out, s.items)
	return out
}

// Strings returns the wire names in selection order.
func (s CapabilitySet) Strings() []string {
	out := make([]string, len(s.items))
	for i, c := range s.items {
		out[i] = string(c)
	}
	return out
}

func (s CapabilitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *CapabilitySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var next CapabilitySet
	for _, n := range names {
		c, err := ParseCapability(n)
		if err != nil {
			return err
		}
		next.Add(c)
	}
	*s = next
	return nil
}

// TriggerEvent selects when an external integration webhook fires.
type TriggerEvent string

const (
	TriggerMemoryCreation      TriggerEvent = "memory_creation"
	TriggerTranscriptProcessed TriggerEvent = "transcript_processed"
)

// ParseTriggerEvent maps a wire name to a TriggerEvent.
func ParseTriggerEvent(s string) (TriggerEvent, error) {
	switch t := TriggerEvent(strings.TrimSpace(s)); t {
	case TriggerMemoryCreation, TriggerTranscriptProcessed:
		return t, nil
	default:
		return "", fmt.Errorf("unknown trigger %q", s)
	}
}

// AuthStep is one link the user follows to authorize an external integration.
type AuthStep struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// ExternalIntegration holds webhook settings for the external_integration capability.
type ExternalIntegration struct {
	TriggersOn                TriggerEvent `json:"triggers_on"`
	WebhookURL                string       `json:"webhook_url"`
	SetupCompletedURL         *string      `json:"setup_completed_url"`
	SetupInstructionsFilePath string       `json:"setup_instructions_file_path"`
	// SetupInstructions is markdown sent to reviewers alongside the artifact,
	// never inside it.
	SetupInstructions string     `json:"-"`
	AuthSteps         []AuthStep `json:"auth_steps"`
}

// PluginSubmission is the editable record behind the submission form.
type PluginSubmission struct {
	ID                  string
	Name                string
	Author              string
	Description         string
	Image               string
	Capabilities        CapabilitySet
	ChatPrompt          string
	MemoryPrompt        string
	ExternalIntegration ExternalIntegration
	Email               string
}

// NewPluginSubmission returns an empty record with integration defaults applied.
func NewPluginSubmission() *PluginSubmission {
	return &PluginSubmission{
		ExternalIntegration: ExternalIntegration{
			TriggersOn: TriggerMemoryCreation,
			AuthSteps:  []AuthStep{},
		},
	}
}

// ArtifactIntegration is the published form of ExternalIntegration.
type ArtifactIntegration struct {
	TriggersOn                TriggerEvent `json:"triggers_on"`
	WebhookURL                string       `json:"webhook_url"`
	SetupCompletedURL         *string      `json:"setup_completed_url"`
	SetupInstructionsFilePath string       `json:"setup_instructions_file_path"`
	AuthSteps                 []AuthStep   `json:"auth_steps"`
}

// Artifact is the JSON projection shown for preview and sent to reviewers.
// Optional blocks are nil unless their capability is selected.
type Artifact struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Author              string               `json:"author"`
	Description         string               `json:"description"`
	Image               string               `json:"image"`
	Capabilities        []string             `json:"capabilities"`
	ChatPrompt          *string              `json:"chat_prompt,omitempty"`
	MemoryPrompt        *string              `json:"memory_prompt,omitempty"`
	ExternalIntegration *ArtifactIntegration `json:"external_integration,omitempty"`
	Email               string               `json:"email"`
}

// Project builds the artifact for a record. The result shares no memory with p.
func (p *PluginSubmission) Project() *Artifact {
	a := &Artifact{
		ID:           p.ID,
		Name:         p.Name,
		Author:       p.Author,
		Description:  p.Description,
		Image:        LogoPathPrefix + p.Image,
		Capabilities: p.Capabilities.Strings(),
		Email:        p.Email,
	}
	if p.Capabilities.Has(CapabilityChat) {
		prompt := p.ChatPrompt
		a.ChatPrompt = &prompt
	}
	if p.Capabilities.Has(CapabilityMemories) {
		prompt := p.MemoryPrompt
		a.MemoryPrompt = &prompt
	}
	if p.Capabilities.Has(CapabilityExternalIntegration) {
		ei := p.ExternalIntegration
		out := &ArtifactIntegration{
			TriggersOn:                ei.TriggersOn,
			WebhookURL:                ei.WebhookURL,
			SetupInstructionsFilePath: ei.SetupInstructionsFilePath,
			AuthSteps:                 make([]AuthStep, len(ei.AuthSteps)),
		}
		copy(out.AuthSteps, ei.AuthSteps)
		if ei.SetupCompletedURL != nil {
			u := *ei.SetupCompletedURL
			out.SetupCompletedURL = &u
		}
		a.ExternalIntegration = out
	}
	return a
}
