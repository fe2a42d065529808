// Package apierrors provides structured API error codes and responses.
// All codes are namespaced (e.g., "core:invalid_request", "relay:transport_failure").
package apierrors

import "net/http"

// Core error codes - registered automatically at init
const (
	CodeInvalidRequest  = "core:invalid_request"
	CodePayloadTooLarge = "core:payload_too_large"
	CodeNotFound        = "core:not_found"
	CodeRateLimited     = "core:rate_limited"
	CodeInternalError   = "core:internal_error"
)

// Relay error codes. Both surface as server errors to the submitter.
const (
	CodeMalformedPayload = "relay:malformed_payload"
	CodeTransportFailure = "relay:transport_failure"
)

var coreErrors = []ErrorCode{
	{Code: CodeInvalidRequest, Message: "Invalid request body", HTTPStatus: http.StatusBadRequest},
	{Code: CodePayloadTooLarge, Message: "Request body too large", HTTPStatus: http.StatusRequestEntityTooLarge},
	{Code: CodeNotFound, Message: "Resource not found", HTTPStatus: http.StatusNotFound},
	{Code: CodeRateLimited, Message: "Too many requests", HTTPStatus: http.StatusTooManyRequests},
	{Code: CodeInternalError, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError},
}

var relayErrors = []ErrorCode{
	{Code: CodeMalformedPayload, Message: "Failed to send email", HTTPStatus: http.StatusInternalServerError},
	{Code: CodeTransportFailure, Message: "Failed to send email", HTTPStatus: http.StatusInternalServerError},
}

func init() {
	for _, e := range coreErrors {
		Registry.Register(e)
	}
	for _, e := range relayErrors {
		Registry.Register(e)
	}
}
