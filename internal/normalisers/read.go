package normalisers

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// ReadFile reads a corpus file, honouring cancellation before the read.
// Failures wrap domain.ErrIOFailure.
func ReadFile(ctx context.Context, file domain.FileDescriptor) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIOFailure, file.Path, err)
	}
	return data, nil
}
