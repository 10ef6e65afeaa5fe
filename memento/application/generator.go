package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dfryer1193/memento/memento/domain"
)

const basePrompt = "You are an assistant building a single short daily item for a public site called \"Daily Memento Mori\".\n\n" +
	"Produce output exactly in this format with the rules described: Type: <Quote|Historical Example|Exercise>\n" +
	"Title: ...\n" +
	"Body: ...\n" +
	"Takeaway: ...\n" +
	"(Keep total length under 300 words. Alternate types Quote, Historical Example, Exercise in sequence for consecutive dates, " +
	"starting from the most recent existing saved date if any.)"

var lineSplitRegex = regexp.MustCompile(`\r?\n`)

// ContentGenerator produces the fields of a post of the requested type.
// The returned post has no date; the caller stamps it.
type ContentGenerator interface {
	Generate(ctx context.Context, target domain.PostType) (*domain.Post, error)
}

// PromptGenerator asks a text provider for a post and parses the free-form reply
type PromptGenerator struct {
	provider domain.TextProvider
}

func NewPromptGenerator(provider domain.TextProvider) *PromptGenerator {
	return &PromptGenerator{
		provider: provider,
	}
}

// Generate builds the prompt for target, calls the provider and parses its reply.
// Provider failures are returned as is; parsing never fails.
func (g *PromptGenerator) Generate(ctx context.Context, target domain.PostType) (*domain.Post, error) {
	text, err := g.provider.GenerateText(ctx, BuildPrompt(target))
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s post: %w", target, err)
	}

	return ParseGenerated(text), nil
}

// BuildPrompt returns the fixed prompt with a directive forcing the post type
func BuildPrompt(target domain.PostType) string {
	return basePrompt + "\n\nForce Type: " + string(target)
}

// fieldPrefixes maps the recognized line prefixes to the post field they fill, in match order
var fieldPrefixes = []struct {
	prefix string
	field  func(p *domain.Post) *string
}{
	{prefix: "type:", field: func(p *domain.Post) *string { return &p.Type }},
	{prefix: "title:", field: func(p *domain.Post) *string { return &p.Title }},
	{prefix: "body:", field: func(p *domain.Post) *string { return &p.Body }},
	{prefix: "takeaway:", field: func(p *domain.Post) *string { return &p.Takeaway }},
}

// ParseGenerated extracts the post fields from generated text.
// A line starting with a known prefix (case-insensitive) sets that field to the text after its first colon.
// Any other line continues the body, but only once a body has started and before a takeaway is seen.
// Fields that never appear stay empty.
func ParseGenerated(text string) *domain.Post {
	post := &domain.Post{}

	for _, line := range lineSplitRegex.Split(text, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if field, ok := matchField(post, line); ok {
			_, value, _ := strings.Cut(line, ":")
			*field = strings.TrimSpace(value)
			continue
		}

		if post.Body != "" && post.Takeaway == "" {
			post.Body += "\n" + line
		}
	}

	return post
}

func matchField(post *domain.Post, line string) (*string, bool) {
	lower := strings.ToLower(line)
	for _, fp := range fieldPrefixes {
		if strings.HasPrefix(lower, fp.prefix) {
			return fp.field(post), true
		}
	}
	return nil, false
}
