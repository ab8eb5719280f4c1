package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/normalisers"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Name is the parser name used in logs.
const Name = "plaintext"

// Extensions lists the extensions read as plain text.
var Extensions = []string{"txt", "md", "markdown", "py", "c", "cpp", "h", "hpp", "rs", "swift"}

// Parser handles plain text and source files.
type Parser struct {
	extensions map[string]struct{}
}

// New creates a new plain text parser.
func New() *Parser {
	exts := make(map[string]struct{}, len(Extensions))
	for _, e := range Extensions {
		exts[e] = struct{}{}
	}
	return &Parser{extensions: exts}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return Name
}

// CanParse reports whether the extension is a plain text one.
func (p *Parser) CanParse(file domain.FileDescriptor) bool {
	_, ok := p.extensions[file.Extension]
	return ok
}

// Priority returns the selection priority.
func (p *Parser) Priority() int {
	return 50
}

// Parse reads the file as UTF-8, falling back to Latin-1, and normalises
// line endings to "\n". Other whitespace is preserved.
func (p *Parser) Parse(ctx context.Context, file domain.FileDescriptor) (*domain.ParsedDocument, error) {
	data, err := normalisers.ReadFile(ctx, file)
	if err != nil {
		return nil, err
	}

	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrEncoding, file.Path, err)
	}

	return &domain.ParsedDocument{
		File:      file,
		Text:      NormaliseNewlines(text),
		MediaType: domain.MediaTypeText,
		PageCount: 1,
	}, nil
}

// decode returns data as UTF-8. Invalid UTF-8 is read as Latin-1, which
// maps every byte and so cannot fail on real input.
func decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	return charmap.ISO8859_1.NewDecoder().String(string(data))
}

// NormaliseNewlines converts CRLF and lone CR to LF.
func NormaliseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
