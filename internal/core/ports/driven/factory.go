package driven

import "github.com/custodia-labs/contextpacket/internal/core/domain"

// CorpusFactory opens a corpus rooted at a location.
type CorpusFactory interface {
	// Open returns a Corpus for the root using the ingest settings.
	// The location may be a path, "~/path" or a file:// URL.
	Open(root string, settings domain.IngestSettings) (Corpus, error)
}

// CorpusFactoryFunc adapts a function to CorpusFactory.
type CorpusFactoryFunc func(root string, settings domain.IngestSettings) (Corpus, error)

// Open calls f.
func (f CorpusFactoryFunc) Open(root string, settings domain.IngestSettings) (Corpus, error) {
	return f(root, settings)
}
