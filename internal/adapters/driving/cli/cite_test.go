package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

func TestCiteCmd_ResolvesCitation(t *testing.T) {
	w := runWorkspace(t)
	chunkPath := filepath.Join(w.out, "chunks.jsonl")

	chunks, err := jsonl.NewChunkFile(chunkPath).ReadChunks(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	want := chunks[1]

	out, err := executeCommand(t, "--config", w.config, "cite", want.Citation, "--chunks", chunkPath)

	require.NoError(t, err)
	assert.Contains(t, out, want.ID)
	assert.Contains(t, out, want.DocID)
	assert.Contains(t, out, want.Text)
}

func TestCiteCmd_UnknownCitation(t *testing.T) {
	w := runWorkspace(t)

	_, err := executeCommand(t, "--config", w.config, "cite", "§nope:T:0:8",
		"--chunks", filepath.Join(w.out, "chunks.jsonl"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCiteCmd_MalformedCitation(t *testing.T) {
	w := runWorkspace(t)

	_, err := executeCommand(t, "--config", w.config, "cite", "not-a-citation",
		"--chunks", filepath.Join(w.out, "chunks.jsonl"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
