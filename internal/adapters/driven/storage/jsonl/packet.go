package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
)

var _ driven.PacketWriter = (*PacketDir)(nil)

type packetChunk struct {
	ID       string  `json:"id"`
	Order    int     `json:"order"`
	Text     string  `json:"text"`
	Tokens   int     `json:"tokens"`
	Score    float64 `json:"score"`
	Citation string  `json:"citation"`
}

type packetFile struct {
	Query  string         `json:"query"`
	Chunks []packetChunk  `json:"chunks"`
	Limits map[string]int `json:"limits"`
}

// PacketDir writes context packets as context_{name}.json files in a directory.
type PacketDir struct {
	dir string
}

// NewPacketDir creates a packet writer for dir.
func NewPacketDir(dir string) *PacketDir {
	return &PacketDir{dir: dir}
}

// PacketPath returns the file a named packet is written to.
func (p *PacketDir) PacketPath(name string) string {
	return filepath.Join(p.dir, "context_"+name+".json")
}

// WritePacket writes one packet as indented JSON.
func (p *PacketDir) WritePacket(ctx context.Context, name string, packet domain.ContextPacket) (_ string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out := packetFile{
		Query:  packet.Query,
		Chunks: make([]packetChunk, len(packet.Chunks)),
		Limits: packet.Limits,
	}
	for i, c := range packet.Chunks {
		out.Chunks[i] = packetChunk{
			ID:       c.ID,
			Order:    c.Order,
			Text:     c.Text,
			Tokens:   c.Tokens,
			Score:    c.Score,
			Citation: c.Citation,
		}
	}

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w: %w", p.dir, domain.ErrIOFailure, err)
	}

	path := p.PacketPath(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w: %w", path, domain.ErrIOFailure, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w: %w", path, domain.ErrIOFailure, cerr)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return "", fmt.Errorf("writing %s: %w: %w", path, domain.ErrIOFailure, err)
	}
	return path, nil
}
