package domain

// ContextPacket is the set of chunks selected for a query under one token budget.
// Chunks are in global order.
type ContextPacket struct {
	Query  string
	Chunks []ScoredChunk
	Limits map[string]int
}

// TotalTokens returns the token count of the packet.
func (p *ContextPacket) TotalTokens() int {
	total := 0
	for _, c := range p.Chunks {
		total += c.Tokens
	}
	return total
}
