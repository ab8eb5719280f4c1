package domain

import "strings"

// FileDescriptor identifies one corpus file found by ingest.
// Identity is the content hash; two files with identical bytes share it.
type FileDescriptor struct {
	// Path is the absolute or corpus-joined path used to open the file.
	Path string

	// ContentHash is the hex SHA-256 digest of the full file bytes.
	ContentHash string

	// SizeBytes is the file size at hashing time.
	SizeBytes int64

	// Extension is the lowercase extension without the leading dot.
	Extension string

	// RelativePath is the path relative to the corpus root.
	RelativePath string
}

// MediaType is the normalised kind of a parsed document.
type MediaType string

// Supported media types.
const (
	MediaTypeText MediaType = "text"
	MediaTypeHTML MediaType = "html"
	MediaTypePDF  MediaType = "pdf"
)

// IsValid returns true if the media type is recognised.
func (m MediaType) IsValid() bool {
	switch m {
	case MediaTypeText, MediaTypeHTML, MediaTypePDF:
		return true
	default:
		return false
	}
}

// Letter returns the uppercase first letter used in citations ('T', 'H', 'P').
func (m MediaType) Letter() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1]))
}

// String returns the string representation.
func (m MediaType) String() string {
	return string(m)
}

// MediaTypeFromLetter maps a citation letter back to its media type.
func MediaTypeFromLetter(letter string) (MediaType, bool) {
	switch letter {
	case "T":
		return MediaTypeText, true
	case "H":
		return MediaTypeHTML, true
	case "P":
		return MediaTypePDF, true
	default:
		return "", false
	}
}

// ParsedDocument is the normalised text of one corpus file.
// Text has already been through line-ending and whitespace normalisation
// appropriate to its media type.
type ParsedDocument struct {
	// File is the descriptor the text was parsed from.
	File FileDescriptor

	// Text is the UTF-8 normalised content.
	Text string

	// MediaType is the normalised kind of the source.
	MediaType MediaType

	// PageCount is the number of pages for paged formats, 1 otherwise.
	PageCount int

	// Metadata carries parser-specific values such as an HTML title.
	Metadata map[string]string
}

// DocID returns the document identity used by chunks and citations.
func (d *ParsedDocument) DocID() string {
	return d.File.ContentHash
}
