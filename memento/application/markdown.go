package application

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const maxSnippetLength = 200

// BodyRenderer converts a post body to HTML.
type BodyRenderer interface {
	Render(body string) (string, error)
}

type MarkdownRenderer struct {
	renderer goldmark.Markdown
}

// NewMarkdownRenderer returns a renderer that treats post bodies as markdown.
// Raw HTML in the body is escaped since bodies come from a text-generation provider.
func NewMarkdownRenderer() *MarkdownRenderer {
	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &MarkdownRenderer{
		renderer: renderer,
	}
}

// Render converts body to HTML, keeping single line breaks
func (r *MarkdownRenderer) Render(body string) (string, error) {
	var buf bytes.Buffer
	if err := r.renderer.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return buf.String(), nil
}

// Snippet returns the body collapsed to a single line and cut at a word boundary.
// Length is counted in runes.
func Snippet(body string) string {
	snippet := strings.Join(strings.Fields(body), " ")

	if runes := []rune(snippet); len(runes) > maxSnippetLength {
		snippet = string(runes[:maxSnippetLength])
		if lastSpace := strings.LastIndexAny(snippet, " \t"); lastSpace > 0 {
			snippet = snippet[:lastSpace]
		}
		snippet += "..."
	}

	return snippet
}
