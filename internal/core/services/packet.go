package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driving"
)

// Ensure PacketService implements the interface.
var _ driving.PacketService = (*PacketService)(nil)

// PacketService selects the highest scoring chunks that fit each token budget.
type PacketService struct {
	limits    domain.PacketLimits
	threshold *float64
	writer    driven.PacketWriter
}

// NewPacketService creates a packet service.
// A nil threshold makes every scored chunk a candidate.
func NewPacketService(limits domain.PacketLimits, threshold *float64, writer driven.PacketWriter) *PacketService {
	return &PacketService{limits: limits, threshold: threshold, writer: writer}
}

// Build selects chunks for each named limit.
func (s *PacketService) Build(query string, scored []domain.ScoredChunk) map[string]domain.ContextPacket {
	candidates := s.rank(scored)
	named := s.limits.Named()

	packets := make(map[string]domain.ContextPacket, len(named))
	for name, limit := range named {
		packets[name] = domain.ContextPacket{
			Query:  query,
			Chunks: Select(candidates, limit),
			Limits: named,
		}
	}
	return packets
}

// Write builds every packet and writes them in name order.
func (s *PacketService) Write(ctx context.Context, query string, scored []domain.ScoredChunk) ([]string, error) {
	if s.writer == nil {
		return nil, fmt.Errorf("%w: no packet writer configured", domain.ErrInvalidConfiguration)
	}
	return WritePackets(ctx, s.writer, s.Build(query, scored))
}

// WritePackets writes packets in name order and returns their locations.
func WritePackets(ctx context.Context, w driven.PacketWriter, packets map[string]domain.ContextPacket) ([]string, error) {
	names := make([]string, 0, len(packets))
	for name := range packets {
		names = append(names, name)
	}
	slices.Sort(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path, err := w.WritePacket(ctx, name, packets[name])
		if err != nil {
			return paths, fmt.Errorf("writing %s packet: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// rank filters by threshold and sorts by descending score.
// Equal scores keep global order.
func (s *PacketService) rank(scored []domain.ScoredChunk) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, 0, len(scored))
	for _, c := range scored {
		if s.threshold != nil && c.Score < *s.threshold {
			continue
		}
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b domain.ScoredChunk) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}

// Select takes ranked candidates while they fit in limit tokens. A chunk
// too large for the remaining budget is passed over so smaller ones can
// still fill it. The selection is returned in global order.
func Select(ranked []domain.ScoredChunk, limit int) []domain.ScoredChunk {
	selected := make([]domain.ScoredChunk, 0)
	used := 0
	for _, c := range ranked {
		if used+c.Tokens > limit {
			continue
		}
		selected = append(selected, c)
		used += c.Tokens
	}
	slices.SortFunc(selected, func(a, b domain.ScoredChunk) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return selected
}
