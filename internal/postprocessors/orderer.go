package postprocessors

import "github.com/custodia-labs/contextpacket/internal/core/domain"

// AssignGlobalOrder flattens per-document chunk sequences in the order the
// documents were supplied and rewrites each chunk's Order to its position
// in the flattened sequence. Orders are 0..n-1 with no gaps.
func AssignGlobalOrder(docs [][]domain.Chunk) []domain.Chunk {
	total := 0
	for _, chunks := range docs {
		total += len(chunks)
	}

	ordered := make([]domain.Chunk, 0, total)
	for _, chunks := range docs {
		for _, c := range chunks {
			c.Order = len(ordered)
			ordered = append(ordered, c)
		}
	}
	return ordered
}
