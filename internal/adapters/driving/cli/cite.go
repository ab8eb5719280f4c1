package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/contextpacket/internal/core/services"
)

var citeChunks string

var citeCmd = &cobra.Command{
	Use:   "cite <citation>",
	Short: "Show the chunk a citation points to",
	Long: `Looks up a citation such as §<docId>:T:0:512 in a chunk file and prints
the chunk text with its document and token span.`,
	Args: cobra.ExactArgs(1),
	RunE: runCite,
}

func init() {
	citeCmd.Flags().StringVar(&citeChunks, "chunks", jsonl.DefaultChunksFile, "chunk file")
	rootCmd.AddCommand(citeCmd)
}

func runCite(cmd *cobra.Command, args []string) error {
	citations := services.NewCitationService(jsonl.NewChunkFile(citeChunks))

	chunk, err := citations.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("resolving citation: %w", err)
	}

	cmd.Printf("Chunk:    %s\n", chunk.ID)
	cmd.Printf("Document: %s\n", chunk.DocID)
	cmd.Printf("Span:     [%d, %d) %d tokens\n", chunk.StartOffset, chunk.EndOffset, chunk.Tokens)
	cmd.Println()
	cmd.Println(chunk.Text)
	return nil
}
