package apierrors

import (
	"github.com/gin-gonic/gin"
)

// Response is the JSON error body returned to clients.
type Response struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// New builds a response for a registered code using its default message.
func New(code string) Response {
	return Response{Code: code, Error: Registry.Message(code)}
}

// WithDetails returns a copy carrying a diagnostic detail string.
func (r Response) WithDetails(details string) Response {
	r.Details = details
	return r
}

// Error sends an error response using a registered error code
func Error(c *gin.Context, code string) {
	Send(c, New(code))
}

// ErrorWithDetails sends the code's default message plus diagnostic details.
func ErrorWithDetails(c *gin.Context, code, details string) {
	Send(c, New(code).WithDetails(details))
}

// Send writes resp with the status registered for its code and aborts the chain.
func Send(c *gin.Context, resp Response) {
	c.AbortWithStatusJSON(Registry.HTTPStatus(resp.Code), resp)
}
