package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/services"
	"github.com/custodia-labs/contextpacket/internal/logger"
)

var (
	packetChunks string
	packetScores string
	packetGoal   string
	packetOutput string
)

var packetCmd = &cobra.Command{
	Use:   "packet",
	Short: "Build context packets from chunk and score files",
	Long: `Joins chunks.jsonl with scores.jsonl and writes one context packet per
configured token limit. Chunks are picked by descending score, skipping
any that no longer fit, and emitted in corpus order.`,
	Args: cobra.NoArgs,
	RunE: runPacket,
}

func init() {
	packetCmd.Flags().StringVar(&packetChunks, "chunks", jsonl.DefaultChunksFile, "chunk file")
	packetCmd.Flags().StringVar(&packetScores, "scores", jsonl.DefaultScoresFile, "score file")
	packetCmd.Flags().StringVarP(&packetGoal, "goal", "g", "", "query the scores were computed for (required)")
	packetCmd.Flags().StringVarP(&packetOutput, "output", "o", "", "output directory (default from config)")
	_ = packetCmd.MarkFlagRequired("goal")
	rootCmd.AddCommand(packetCmd)
}

func runPacket(cmd *cobra.Command, _ []string) error {
	if packetGoal == "" {
		return errors.New("a non-empty --goal is required")
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	chunks, err := jsonl.NewChunkFile(packetChunks).ReadChunks(ctx)
	if err != nil {
		return err
	}
	scores, err := jsonl.NewScoreFile(packetScores).ReadScores(ctx)
	if err != nil {
		return err
	}

	scored, missing := joinScores(chunks, scores)
	if missing > 0 {
		logger.Warn("%d scores have no matching chunk", missing)
	}

	dir := packetOutput
	if dir == "" {
		dir = settings.OutputDir
	}

	packets := services.NewPacketService(settings.Limits, settings.Scoring.Threshold, jsonl.NewPacketDir(dir))
	paths, err := packets.Write(ctx, packetGoal, scored)
	if err != nil {
		return fmt.Errorf("writing packets: %w", err)
	}
	for _, p := range paths {
		cmd.Printf("Packet written to %s\n", p)
	}
	return nil
}

// joinScores attaches chunk text to score records. Records are matched by
// citation because chunk ids repeat across documents. It returns the joined
// chunks in score-file order and the number of unmatched records.
func joinScores(chunks []domain.Chunk, scores []domain.ScoredChunk) ([]domain.ScoredChunk, int) {
	byCitation := make(map[string]domain.Chunk, len(chunks))
	for _, c := range chunks {
		byCitation[c.Citation] = c
	}

	joined := make([]domain.ScoredChunk, 0, len(scores))
	missing := 0
	for _, s := range scores {
		c, ok := byCitation[s.Citation]
		if !ok {
			missing++
			continue
		}
		joined = append(joined, domain.ScoredChunk{Chunk: c, Score: s.Score})
	}
	return joined, missing
}
