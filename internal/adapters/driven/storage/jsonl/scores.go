package jsonl

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

var (
	_ driven.ScoreWriter = (*ScoreFile)(nil)
	_ driven.ScoreReader = (*ScoreFile)(nil)
)

// DefaultScoresFile is the score file name written into the output directory.
const DefaultScoresFile = "scores.jsonl"

type scoreRecord struct {
	ID       string  `json:"id"`
	Order    int     `json:"order"`
	Tokens   int     `json:"tokens"`
	Score    float64 `json:"score"`
	Citation string  `json:"citation"`
}

// ScoreFile reads and writes a score file.
type ScoreFile struct {
	path string
}

// NewScoreFile creates a score file handle for path.
func NewScoreFile(path string) *ScoreFile {
	return &ScoreFile{path: path}
}

// Path returns the file path.
func (f *ScoreFile) Path() string {
	return f.path
}

// WriteScores writes all scored chunks, replacing the file.
func (f *ScoreFile) WriteScores(ctx context.Context, scored []domain.ScoredChunk) error {
	return f.write(ctx, scored, false)
}

// AppendScores appends scored chunks to the file.
func (f *ScoreFile) AppendScores(ctx context.Context, scored []domain.ScoredChunk) error {
	return f.write(ctx, scored, true)
}

func (f *ScoreFile) write(ctx context.Context, scored []domain.ScoredChunk, appendMode bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records := make([]scoreRecord, len(scored))
	for i, s := range scored {
		records[i] = scoreRecord{
			ID:       s.ID,
			Order:    s.Order,
			Tokens:   s.Tokens,
			Score:    s.Score,
			Citation: s.Citation,
		}
	}

	if err := writeRecords(f.path, appendMode, records); err != nil {
		return fmt.Errorf("writing scores: %w: %w", domain.ErrIOFailure, err)
	}
	return nil
}

// ReadScores returns scored chunks in file order. Text and DocID are empty.
func (f *ScoreFile) ReadScores(ctx context.Context) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := readRecords[scoreRecord](f.path)
	if err != nil {
		return nil, fmt.Errorf("reading scores: %w: %w", domain.ErrIOFailure, err)
	}

	scored := make([]domain.ScoredChunk, len(records))
	for i, r := range records {
		scored[i] = domain.ScoredChunk{
			Chunk: domain.Chunk{
				ID:       r.ID,
				Order:    r.Order,
				Tokens:   r.Tokens,
				Citation: r.Citation,
			},
			Score: r.Score,
		}
	}
	return scored, nil
}
