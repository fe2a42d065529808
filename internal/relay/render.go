package relay

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/goatkit/plugincreator/internal/models"
)

//go:embed templates/*.pongo2
var templateFS embed.FS

var (
	htmlTemplate = mustTemplate("templates/notification.html.pongo2")
	textTemplate = mustTemplate("templates/notification.txt.pongo2")

	markdown  = goldmark.New(goldmark.WithExtensions(extension.GFM))
	sanitizer = bluemonday.UGCPolicy()
)

func mustTemplate(name string) *pongo2.Template {
	src, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return pongo2.Must(pongo2.FromString(string(src)))
}

// Notification is the reviewer-facing content for one submission.
type Notification struct {
	Artifact     *models.Artifact
	ArtifactJSON []byte // pretty-printed
	Instructions string
	Email        string
	LogoName     string
	Reference    string
}

// Rendered holds both renderings of a notification.
type Rendered struct {
	Text string
	HTML string
}

// Render produces the plain text and HTML bodies. The text body carries the
// instructions verbatim; the HTML body renders them as sanitized markdown.
func Render(n Notification) (*Rendered, error) {
	a := n.Artifact
	if a == nil {
		a = &models.Artifact{}
	}
	email := n.Email
	if email == "" {
		email = a.Email
	}
	ctx := pongo2.Context{
		"id":            a.ID,
		"name":          a.Name,
		"author":        a.Author,
		"description":   a.Description,
		"image":         a.Image,
		"capabilities":  a.Capabilities,
		"email":         email,
		"logo":          n.LogoName,
		"artifact_json": string(n.ArtifactJSON),
		"instructions":  n.Instructions,
		"reference":     n.Reference,
	}

	text, err := textTemplate.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}

	if strings.TrimSpace(n.Instructions) != "" {
		ctx["instructions_html"] = instructionsHTML(n.Instructions)
	}
	body, err := htmlTemplate.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	if err := checkTagBalance(body); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	return &Rendered{Text: text, HTML: body}, nil
}

// instructionsHTML converts markdown to sanitized HTML, falling back to an
// escaped preformatted block when the result is not well formed.
func instructionsHTML(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err == nil {
		out := string(sanitizer.SanitizeBytes(buf.Bytes()))
		if checkTagBalance(out) == nil {
			return out
		}
	}
	return "<pre>" + html.EscapeString(src) + "</pre>"
}

// Subject builds the notification subject line.
func Subject(prefix string, a *models.Artifact) string {
	if prefix == "" {
		prefix = "New Plugin Submission"
	}
	if a == nil || strings.TrimSpace(a.Name) == "" {
		return prefix
	}
	return prefix + ": " + strings.TrimSpace(a.Name)
}
