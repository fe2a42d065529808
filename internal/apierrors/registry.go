package apierrors

import (
	"net/http"
	"strings"
	"sync"
)

// ErrorCode represents a registered API error code
type ErrorCode struct {
	Code       string `json:"code"`        // Full namespaced code (e.g., "core:not_found")
	Message    string `json:"message"`     // Default English message
	HTTPStatus int    `json:"http_status"` // Suggested HTTP status code
}

// Namespace returns the part of the code before the colon, or "core".
func (e ErrorCode) Namespace() string {
	if idx := strings.Index(e.Code, ":"); idx > 0 {
		return e.Code[:idx]
	}
	return "core"
}

type registry struct {
	mu    sync.RWMutex
	codes map[string]ErrorCode
	byNS  map[string][]string
}

// Registry is the global error code registry
var Registry = newRegistry()

func newRegistry() *registry {
	return &registry{
		codes: make(map[string]ErrorCode),
		byNS:  make(map[string][]string),
	}
}

// Register adds or replaces an error code.
func (r *registry) Register(e ErrorCode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.codes[e.Code]; !exists {
		ns := e.Namespace()
		r.byNS[ns] = append(r.byNS[ns], e.Code)
	}
	r.codes[e.Code] = e
}

// Get returns an error code by its full code string
func (r *registry) Get(code string) (ErrorCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.codes[code]
	return e, ok
}

// ByNamespace returns all error codes for a given namespace in registration order.
func (r *registry) ByNamespace(ns string) []ErrorCode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := r.byNS[ns]
	result := make([]ErrorCode, 0, len(codes))
	for _, code := range codes {
		result = append(result, r.codes[code])
	}
	return result
}

// HTTPStatus returns the suggested HTTP status for a code, or 500 if unknown
func (r *registry) HTTPStatus(code string) int {
	if e, ok := r.Get(code); ok {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Message returns the default message for a code, or the code itself if unknown
func (r *registry) Message(code string) string {
	if e, ok := r.Get(code); ok {
		return e.Message
	}
	return code
}
