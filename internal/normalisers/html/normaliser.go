package html

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/normalisers"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Name is the parser name used in logs.
const Name = "html"

// MetadataTitle is the metadata key holding the <title> text.
const MetadataTitle = "title"

// Parser handles HTML documents.
type Parser struct{}

// New creates a new HTML parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return Name
}

// CanParse reports whether the file is .html or .htm.
func (p *Parser) CanParse(file domain.FileDescriptor) bool {
	return file.Extension == "html" || file.Extension == "htm"
}

// Priority returns the selection priority.
func (p *Parser) Priority() int {
	return 60
}

// Parse extracts the visible text of an HTML file. Script and style
// content is dropped, entities are decoded and all whitespace runs
// collapse to a single space.
func (p *Parser) Parse(ctx context.Context, file domain.FileDescriptor) (*domain.ParsedDocument, error) {
	data, err := normalisers.ReadFile(ctx, file)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrEncoding, file.Path)
	}

	content := string(data)
	return &domain.ParsedDocument{
		File:      file,
		Text:      ExtractText(content),
		MediaType: domain.MediaTypeHTML,
		PageCount: 1,
		Metadata:  map[string]string{MetadataTitle: ExtractTitle(content)},
	}, nil
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockTags    = regexp.MustCompile(`(?i)</?(p|div|br|hr|h[1-6]|li|tr|td|th|blockquote|pre|table|section|article)\b[^>]*>`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	whitespace   = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// ExtractTitle returns the trimmed, entity-decoded <title> text or "".
func ExtractTitle(content string) string {
	matches := titleTag.FindStringSubmatch(content)
	if len(matches) < 2 {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(matches[1]))
}

// ExtractText strips markup and returns single-spaced visible text.
// The <title> text is kept, as it is part of the document text.
func ExtractText(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries separate words that would otherwise run together.
	content = blockTags.ReplaceAllString(content, " ")
	content = allTags.ReplaceAllString(content, "")

	content = html.UnescapeString(content)
	content = whitespace.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}
