package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/contextpacket/internal/core/services"
)

var (
	scoreChunks string
	scoreGoal   string
	scoreOutput string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a chunk file against a query",
	Long: `Reads chunks.jsonl, scores every chunk against the query in batches and
appends each batch to the score file as soon as it completes.`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreChunks, "chunks", jsonl.DefaultChunksFile, "chunk file to score")
	scoreCmd.Flags().StringVarP(&scoreGoal, "goal", "g", "", "query to score against (required)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "output", "o", jsonl.DefaultScoresFile, "score file to write")
	_ = scoreCmd.MarkFlagRequired("goal")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	if scoreGoal == "" {
		return errors.New("a non-empty --goal is required")
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	chunks, err := jsonl.NewChunkFile(scoreChunks).ReadChunks(ctx)
	if err != nil {
		return err
	}

	sel, err := openScorer(ctx, settings)
	if err != nil {
		return err
	}
	defer sel.Close()

	out := jsonl.NewScoreFile(scoreOutput)
	if err := out.WriteScores(ctx, nil); err != nil {
		return err
	}

	scoring := services.NewScoringService(sel.Scorer, settings.Scoring.BatchSize)
	_, report, err := scoring.ScoreStream(ctx, scoreGoal, chunks, out.AppendScores)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	cmd.Printf("Scored %d chunks in %d batches (%s)\n", report.Scored, report.Batches, report.Scorer)
	cmd.Printf("Scores written to %s\n", out.Path())
	return nil
}
