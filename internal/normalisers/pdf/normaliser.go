package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"code.sajari.com/docconv/v2"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/logger"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Name is the parser name used in logs.
const Name = "pdf"

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// ConvertFunc converts the file at path into text plus metadata.
type ConvertFunc func(path string) (*docconv.Response, error)

// OCRFunc recognises the text of one 1-based page of the PDF at path.
type OCRFunc func(ctx context.Context, path string, page int) (string, error)

// MinPageText is the trimmed length below which a page is treated as a scan
// and handed to OCR.
const MinPageText = 50

// Parser extracts text from PDF files through poppler's pdftotext.
type Parser struct {
	convert   ConvertFunc
	ocr       OCRFunc
	available func() bool
}

// New creates a PDF parser that shells out via docconv.
// The pdftotext lookup runs once, on first use.
func New() *Parser {
	return &Parser{
		convert:   docconv.ConvertPath,
		ocr:       defaultOCR(),
		available: sync.OnceValue(func() bool { return CheckAvailable() == nil }),
	}
}

// NewWithConverter creates a parser with an injected converter.
// The converter is assumed to be always available.
func NewWithConverter(convert ConvertFunc) *Parser {
	return &Parser{
		convert:   convert,
		available: func() bool { return true },
	}
}

// WithOCR sets the fallback used for near-empty pages. A nil fn disables it.
func (p *Parser) WithOCR(fn OCRFunc) *Parser {
	p.ocr = fn
	return p
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return Name
}

// CanParse reports whether the file is a PDF and the converter is usable.
// Without pdftotext, PDFs are counted as unsupported rather than failed.
func (p *Parser) CanParse(file domain.FileDescriptor) bool {
	return file.Extension == "pdf" && p.available()
}

// Priority returns the selection priority.
func (p *Parser) Priority() int {
	return 60
}

var whitespace = regexp.MustCompile(`[\s\p{Zs}]+`)

// Parse extracts the text of every page. Pages with fewer than
// MinPageText characters go through OCR when a recogniser is set; a failed
// recognition keeps the extracted text. Whitespace, including page breaks,
// collapses to single spaces.
func (p *Parser) Parse(ctx context.Context, file domain.FileDescriptor) (*domain.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := p.convert(file.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: pdf %s: %w", domain.ErrParseFailure, file.Path, err)
	}

	body := res.Body
	if p.ocr != nil {
		if body, err = p.recognise(ctx, file.Path, body); err != nil {
			return nil, err
		}
	}

	return &domain.ParsedDocument{
		File:      file,
		Text:      strings.TrimSpace(whitespace.ReplaceAllString(body, " ")),
		MediaType: domain.MediaTypePDF,
		PageCount: pageCount(res),
		Metadata:  res.Meta,
	}, nil
}

// recognise replaces near-empty pages of body with their OCR text. Pages
// are the form-feed separated segments pdftotext emits.
func (p *Parser) recognise(ctx context.Context, path, body string) (string, error) {
	pages := strings.Split(body, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}

	for i, page := range pages {
		if len(strings.TrimSpace(page)) >= MinPageText {
			continue
		}
		text, err := p.ocr(ctx, path, i+1)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			logger.Debug("%s: OCR of page %d failed: %v", path, i+1, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages[i] = text
		}
	}
	return strings.Join(pages, "\f"), nil
}

// pageCount prefers pdfinfo's "Pages" and falls back to the form feeds
// pdftotext emits after each page.
func pageCount(res *docconv.Response) int {
	if n, err := strconv.Atoi(strings.TrimSpace(res.Meta["Pages"])); err == nil && n > 0 {
		return n
	}
	if n := strings.Count(res.Body, "\f"); n > 0 {
		return n
	}
	return 1
}

// CheckAvailable verifies pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns a hint for installing pdftotext.
func InstallInstructions() string {
	return `pdftotext is required for PDF support. Install poppler:
  macOS:         brew install poppler
  Ubuntu/Debian: sudo apt install poppler-utils
  Fedora:        sudo dnf install poppler-utils`
}
