package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

// DefaultFileName is the conventional annotations file.
const DefaultFileName = "annotations.json"

// timestampLayouts are tried in order when reading. The last two match the
// space-separated form written by the annotation tool.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Ensure AnnotationFile implements the interface.
var _ driven.AnnotationStore = (*AnnotationFile)(nil)

type annotationRecord struct {
	Relevance int    `json:"relevance"`
	Timestamp string `json:"timestamp"`
}

type queryRecord struct {
	ID    string `json:"id"`
	Query string `json:"query"`
	Type  string `json:"type,omitempty"`
}

type exportRecord struct {
	Queries         []queryRecord                          `json:"queries"`
	Annotations     map[string]map[string]annotationRecord `json:"annotations"`
	ExportTimestamp string                                 `json:"export_timestamp"`
}

// AnnotationFile is a driven.AnnotationStore backed by one JSON file.
// Every mutation rewrites the whole file.
type AnnotationFile struct {
	mu   sync.Mutex
	path string
}

// NewAnnotationFile returns a store for path. The file is created on first write.
func NewAnnotationFile(path string) *AnnotationFile {
	if path == "" {
		path = DefaultFileName
	}
	return &AnnotationFile{path: path}
}

// Path returns the backing file path.
func (f *AnnotationFile) Path() string {
	return f.path
}

// Load reads every annotation. A missing file yields an empty set.
func (f *AnnotationFile) Load(_ context.Context) (domain.AnnotationSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Save replaces the file contents with set.
func (f *AnnotationFile) Save(_ context.Context, set domain.AnnotationSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(set)
}

// Put records one annotation.
func (f *AnnotationFile) Put(_ context.Context, queryID, chunkID string, a domain.Annotation) error {
	if queryID == "" || chunkID == "" {
		return fmt.Errorf("%w: query and chunk ids are required", domain.ErrInvalidInput)
	}
	if !a.Relevance.IsValid() {
		return fmt.Errorf("%w: relevance %d", domain.ErrInvalidInput, a.Relevance)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	set, err := f.load()
	if err != nil {
		return err
	}
	set.Set(queryID, chunkID, a)
	return f.save(set)
}

// Delete removes one annotation.
func (f *AnnotationFile) Delete(_ context.Context, queryID, chunkID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	set, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := set.Get(queryID, chunkID); !ok {
		return domain.ErrNotFound
	}
	delete(set[queryID], chunkID)
	if len(set[queryID]) == 0 {
		delete(set, queryID)
	}
	return f.save(set)
}

func (f *AnnotationFile) load() (domain.AnnotationSet, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(domain.AnnotationSet), nil
		}
		return nil, fmt.Errorf("%w: read annotations: %w", domain.ErrIOFailure, err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return doc.Annotations, nil
}

func (f *AnnotationFile) save(set domain.AnnotationSet) error {
	records, err := toRecords(set)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode annotations: %w", err)
	}
	return writeAtomic(f.path, data)
}

// ==================== Import / Export ====================

// Decode parses either a bare annotation map or an export document.
func Decode(data []byte) (*domain.AnnotationExport, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &domain.AnnotationExport{Annotations: make(domain.AnnotationSet)}, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: annotations: %w", domain.ErrParseFailure, err)
	}

	if _, ok := top["annotations"]; ok {
		if _, hasQueries := top["queries"]; hasQueries {
			return decodeExport(data)
		}
	}

	var records map[string]map[string]annotationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: annotations: %w", domain.ErrParseFailure, err)
	}
	set, err := fromRecords(records)
	if err != nil {
		return nil, err
	}
	return &domain.AnnotationExport{Annotations: set}, nil
}

func decodeExport(data []byte) (*domain.AnnotationExport, error) {
	var rec exportRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: export: %w", domain.ErrParseFailure, err)
	}

	set, err := fromRecords(rec.Annotations)
	if err != nil {
		return nil, err
	}

	doc := &domain.AnnotationExport{
		Annotations:     set,
		ExportTimestamp: parseTimestamp(rec.ExportTimestamp),
	}
	for _, q := range rec.Queries {
		doc.Queries = append(doc.Queries, domain.Query{ID: q.ID, Text: q.Query, Type: q.Type})
	}
	return doc, nil
}

// Encode renders doc as an indented export document.
func Encode(doc domain.AnnotationExport) ([]byte, error) {
	records, err := toRecords(doc.Annotations)
	if err != nil {
		return nil, err
	}

	rec := exportRecord{
		Queries:         make([]queryRecord, 0, len(doc.Queries)),
		Annotations:     records,
		ExportTimestamp: formatTimestamp(doc.ExportTimestamp),
	}
	for _, q := range doc.Queries {
		rec.Queries = append(rec.Queries, queryRecord{ID: q.ID, Query: q.Text, Type: q.Type})
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// ReadFile decodes the annotation or export document at path.
func ReadFile(path string) (*domain.AnnotationExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrIOFailure, path, err)
	}
	return Decode(data)
}

// WriteFile writes doc to path as an export document.
func WriteFile(path string, doc domain.AnnotationExport) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// ==================== Helpers ====================

func fromRecords(records map[string]map[string]annotationRecord) (domain.AnnotationSet, error) {
	set := make(domain.AnnotationSet, len(records))
	for queryID, byChunk := range records {
		// A query with no judged chunks stays present so evaluation can tell
		// it apart from an unannotated one.
		set[queryID] = make(map[string]domain.Annotation, len(byChunk))
		for chunkID, rec := range byChunk {
			rel := domain.Relevance(rec.Relevance)
			if !rel.IsValid() {
				return nil, fmt.Errorf("%w: relevance %d for %s/%s", domain.ErrParseFailure, rec.Relevance, queryID, chunkID)
			}
			set.Set(queryID, chunkID, domain.Annotation{
				Relevance: rel,
				Timestamp: parseTimestamp(rec.Timestamp),
			})
		}
	}
	return set, nil
}

func toRecords(set domain.AnnotationSet) (map[string]map[string]annotationRecord, error) {
	records := make(map[string]map[string]annotationRecord, len(set))
	for queryID, byChunk := range set {
		out := make(map[string]annotationRecord, len(byChunk))
		for chunkID, a := range byChunk {
			if !a.Relevance.IsValid() {
				return nil, fmt.Errorf("%w: relevance %d for %s/%s", domain.ErrInvalidInput, a.Relevance, queryID, chunkID)
			}
			out[chunkID] = annotationRecord{
				Relevance: int(a.Relevance),
				Timestamp: formatTimestamp(a.Timestamp),
			}
		}
		records[queryID] = out
	}
	return records, nil
}

// parseTimestamp returns the zero time for unparseable values. Timestamps
// are informational and never block loading judgements.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// writeAtomic writes data to a sibling temp file and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrIOFailure, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", domain.ErrIOFailure, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %w", domain.ErrIOFailure, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %w", domain.ErrIOFailure, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %w", domain.ErrIOFailure, path, err)
	}
	return nil
}

// Archive imports and exports annotation files.
type Archive struct{}

// Ensure Archive implements the interface.
var _ driven.AnnotationArchive = Archive{}

// ReadArchive reads a bare annotation map or an export document.
func (Archive) ReadArchive(path string) (*domain.AnnotationExport, error) {
	return ReadFile(path)
}

// WriteArchive writes an export document.
func (Archive) WriteArchive(path string, doc domain.AnnotationExport) error {
	return WriteFile(path, doc)
}
