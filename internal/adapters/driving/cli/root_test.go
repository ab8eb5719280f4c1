package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `[chunking]
chunk_size = 8
overlap = 2
tokenizer = "runes"

[ingest]
workers = 2
include_extensions = ["txt", "md"]

[scoring]
provider = "mock"
batch_size = 3
`

// executeCommand runs the root command with args and returns combined output.
// Flag values are restored to their defaults afterwards.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// workspace is a temp directory holding a config file and a small corpus.
type workspace struct {
	dir    string
	config string
	corpus string
	out    string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()

	w := &workspace{
		dir:    dir,
		config: filepath.Join(dir, "contextpacket.toml"),
		corpus: filepath.Join(dir, "corpus"),
		out:    filepath.Join(dir, "out"),
	}
	require.NoError(t, os.WriteFile(w.config, []byte(testConfig), 0o644))
	require.NoError(t, os.MkdirAll(w.corpus, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(w.corpus, "a.txt"),
		[]byte("The quick brown fox jumps over the lazy dog."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(w.corpus, "b.md"),
		[]byte("Chunks overlap by two tokens."), 0o644))
	return w
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "contextpacket", rootCmd.Use)
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "score", "packet", "evaluate", "annotate", "config", "cite", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCmd_RejectsUnknownLogFormat(t *testing.T) {
	w := newWorkspace(t)

	_, err := executeCommand(t, "--config", w.config, "--log-format", "xml", "version")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}

func TestRootCmd_AcceptsJSONLogs(t *testing.T) {
	w := newWorkspace(t)

	out, err := executeCommand(t, "--config", w.config, "--log-format", "json", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "contextpacket version")
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}
