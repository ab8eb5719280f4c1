package jsonl

import (
	"path/filepath"

	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

var _ driven.OutputLayout = Layout{}

// Layout places run outputs under an output directory using the default
// file names. A codec adds its suffix (".zst" or ".lz4") to chunk and score files.
type Layout struct {
	Codec Codec
}

func (l Layout) name(base string) string {
	return base + l.Codec.Suffix()
}

// ChunksPath returns the chunk file path under dir.
func (l Layout) ChunksPath(dir string) string {
	return filepath.Join(dir, l.name(DefaultChunksFile))
}

// ScoresPath returns the score file path under dir.
func (l Layout) ScoresPath(dir string) string {
	return filepath.Join(dir, l.name(DefaultScoresFile))
}

// Chunks returns the chunk file under dir.
func (l Layout) Chunks(dir string) (driven.ChunkWriter, string) {
	path := l.ChunksPath(dir)
	return NewChunkFile(path), path
}

// Scores returns the score file under dir.
func (l Layout) Scores(dir string) (driven.ScoreWriter, string) {
	path := l.ScoresPath(dir)
	return NewScoreFile(path), path
}

// Packets returns the packet directory.
func (l Layout) Packets(dir string) driven.PacketWriter {
	return NewPacketDir(dir)
}
