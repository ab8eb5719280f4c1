package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contextpacket/internal/core/services"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	for _, name := range []string{"port", "chunks", "scores", "annotations"} {
		assert.NotNil(t, mcpServeCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestNewMCPPorts(t *testing.T) {
	original := settingsService
	defer func() { settingsService = original }()
	settingsService = services.NewSettingsService(memory.NewConfigStore())

	t.Run("json store", func(t *testing.T) {
		backend, err := openAnnotations(t.TempDir() + "/annotations.json")
		require.NoError(t, err)
		defer backend.Close()

		ports, err := newMCPPorts(backend)
		require.NoError(t, err)
		assert.NoError(t, ports.Validate())
		assert.Nil(t, backend.Queries)
	})

	t.Run("database store", func(t *testing.T) {
		backend, err := openAnnotations(t.TempDir() + "/annotations.db")
		require.NoError(t, err)
		defer backend.Close()

		ports, err := newMCPPorts(backend)
		require.NoError(t, err)
		assert.NoError(t, ports.Validate())
		assert.NotNil(t, backend.Queries)
	})
}
