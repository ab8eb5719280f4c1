package chunker

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Uncovered returns the token ranges of [0, n) that no span covers, in ascending order.
func Uncovered(n int, spans []Span) []Span {
	if n <= 0 {
		return nil
	}

	covered := roaring.New()
	for _, s := range spans {
		if s.End > s.Start {
			covered.AddRange(uint64(s.Start), uint64(s.End))
		}
	}

	missing := roaring.New()
	missing.AddRange(0, uint64(n))
	missing.AndNot(covered)

	var gaps []Span
	it := missing.Iterator()
	for it.HasNext() {
		tok := int(it.Next())
		if len(gaps) > 0 && gaps[len(gaps)-1].End == tok {
			gaps[len(gaps)-1].End++
			continue
		}
		gaps = append(gaps, Span{Start: tok, End: tok + 1})
	}
	return gaps
}

// Uncovered returns the token ranges of a document of n tokens that the
// chunker never emits. Only the leading overlap/2 tokens of a document
// longer than one window are expected here.
func (c *Chunker) Uncovered(n int) []Span {
	return Uncovered(n, c.Spans(n))
}
