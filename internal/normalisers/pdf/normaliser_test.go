package pdf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"code.sajari.com/docconv/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

func fakeConverter(body string, meta map[string]string, err error) ConvertFunc {
	return func(string) (*docconv.Response, error) {
		if err != nil {
			return nil, err
		}
		return &docconv.Response{Body: body, Meta: meta}, nil
	}
}

func TestCanParse(t *testing.T) {
	p := NewWithConverter(fakeConverter("", nil, nil))
	assert.True(t, p.CanParse(domain.FileDescriptor{Extension: "pdf"}))
	assert.False(t, p.CanParse(domain.FileDescriptor{Extension: "txt"}))
	assert.Equal(t, Name, p.Name())
	assert.Equal(t, 60, p.Priority())
}

func TestCanParse_Unavailable(t *testing.T) {
	p := NewWithConverter(fakeConverter("", nil, nil))
	p.available = func() bool { return false }
	assert.False(t, p.CanParse(domain.FileDescriptor{Extension: "pdf"}))
}

func TestParse_WithMockConverter(t *testing.T) {
	body := "PDF Title\n\nThis is   the content.\fSecond page\ttext.\n\f"
	p := NewWithConverter(fakeConverter(body, map[string]string{"Pages": "2", "Title": "Doc"}, nil))
	f := domain.FileDescriptor{Path: "/corpus/doc.pdf", ContentHash: "cafebabe", Extension: "pdf"}

	doc, err := p.Parse(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "PDF Title This is the content. Second page text.", doc.Text)
	assert.Equal(t, domain.MediaTypePDF, doc.MediaType)
	assert.Equal(t, 2, doc.PageCount)
	assert.Equal(t, "Doc", doc.Metadata["Title"])
	assert.Equal(t, f, doc.File)
}

func TestParse_ConverterError(t *testing.T) {
	p := NewWithConverter(fakeConverter("", nil, errors.New("broken xref")))

	_, err := p.Parse(context.Background(), domain.FileDescriptor{Path: "/x.pdf", Extension: "pdf"})
	assert.ErrorIs(t, err, domain.ErrParseFailure)
	assert.Contains(t, err.Error(), "broken xref")
}

func TestParse_OCRFallback(t *testing.T) {
	long := strings.Repeat("word ", 12)
	body := long + "\f  \f" + "short\f"
	var pages []int
	ocr := func(_ context.Context, path string, page int) (string, error) {
		assert.Equal(t, "/scan.pdf", path)
		pages = append(pages, page)
		if page == 2 {
			return "recognised scan", nil
		}
		return "", errors.New("tesseract failed")
	}
	p := NewWithConverter(fakeConverter(body, nil, nil)).WithOCR(ocr)

	doc, err := p.Parse(context.Background(), domain.FileDescriptor{Path: "/scan.pdf", Extension: "pdf"})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, pages)
	assert.Equal(t, strings.TrimSpace(long)+" recognised scan short", doc.Text)
	assert.Equal(t, 3, doc.PageCount)
}

func TestParse_OCRCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ocr := func(context.Context, string, int) (string, error) {
		cancel()
		return "", context.Canceled
	}
	p := NewWithConverter(fakeConverter("", nil, nil)).WithOCR(ocr)

	_, err := p.Parse(ctx, domain.FileDescriptor{Path: "/scan.pdf", Extension: "pdf"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 3, pageCount(&docconv.Response{Meta: map[string]string{"Pages": " 3 "}}))
	assert.Equal(t, 2, pageCount(&docconv.Response{Body: "a\fb\f"}))
	assert.Equal(t, 1, pageCount(&docconv.Response{Body: "single"}))
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

// Integration test - only runs if pdftotext is available.
func TestNew_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not available, skipping integration test")
	}
	assert.True(t, New().CanParse(domain.FileDescriptor{Extension: "pdf"}))
}
