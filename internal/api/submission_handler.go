package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/goatkit/plugincreator/internal/apierrors"
	"github.com/goatkit/plugincreator/internal/notifications"
	"github.com/goatkit/plugincreator/internal/relay"
)

// Multipart field names posted by submission clients.
const (
	FieldPluginData   = "pluginData"
	FieldInstructions = "pluginInstructions"
	FieldUserEmail    = "userEmail"
	FieldPluginLogo   = "pluginLogo"
)

const defaultMaxUploadBytes = 10 << 20

// SubmissionHandler accepts plugin submissions and hands them to a Relayer.
type SubmissionHandler struct {
	relayer  Relayer
	maxBytes int64
}

func NewSubmissionHandler(relayer Relayer, maxBytes int64) *SubmissionHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &SubmissionHandler{relayer: relayer, maxBytes: maxBytes}
}

// Handle serves POST /api/send-email.
func (h *SubmissionHandler) Handle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	// A non-multipart body still has its url-encoded fields parsed.
	if err := c.Request.ParseMultipartForm(h.maxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.ErrorWithDetails(c, apierrors.CodePayloadTooLarge, err.Error())
			return
		}
		apierrors.ErrorWithDetails(c, apierrors.CodeInvalidRequest, err.Error())
		return
	}

	sub := relay.Submission{
		PluginData:   []byte(c.Request.PostFormValue(FieldPluginData)),
		Instructions: c.Request.PostFormValue(FieldInstructions),
		Email:        c.Request.PostFormValue(FieldUserEmail),
	}

	logo, err := readLogo(c.Request)
	if err != nil {
		apierrors.ErrorWithDetails(c, apierrors.CodeInvalidRequest, err.Error())
		return
	}
	sub.Logo = logo

	res, err := h.relayer.Relay(c.Request.Context(), sub)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": res.Message, "reference": res.Reference})
	case errors.Is(err, relay.ErrMalformedPayload):
		apierrors.ErrorWithDetails(c, apierrors.CodeMalformedPayload, err.Error())
	case errors.Is(err, relay.ErrTransportFailure):
		apierrors.ErrorWithDetails(c, apierrors.CodeTransportFailure, err.Error())
	case errors.Is(err, relay.ErrRenderFailure):
		log.Printf("submission handler: %v", err)
		apierrors.Error(c, apierrors.CodeInternalError)
	default:
		log.Printf("submission handler: unexpected relay error: %v", err)
		apierrors.ErrorWithDetails(c, apierrors.CodeInternalError, err.Error())
	}
}

func readLogo(r *http.Request) (*notifications.Attachment, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, fh, err := r.FormFile(FieldPluginLogo)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &notifications.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
