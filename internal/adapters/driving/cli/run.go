package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/contextpacket/internal/connectors/filesystem"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driven"
	"github.com/custodia-labs/contextpacket/internal/core/ports/driving"
	"github.com/custodia-labs/contextpacket/internal/core/services"
)

var (
	runCorpus     string
	runGoal       string
	runOutput     string
	runDryRun     bool
	runDumpChunks bool
	runDumpScores bool
	runNoPackets  bool
	runWatch      bool
	runCompress   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest, chunk and score a corpus",
	Long: `Walks the corpus directory, parses every supported file, cuts each
document into overlapping token windows and assigns a corpus-wide order.

With --goal the chunks are scored against the query and context packets
(context_large.json, context_medium.json, context_small.json) are written
to the output directory.

Examples:
  contextpacket run --corpus ./docs --dump-chunks
  contextpacket run --corpus ./docs --goal "how are chunks ordered" --dump-scores
  contextpacket run --corpus ./docs --dry-run`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&runCorpus, "corpus", "", "corpus directory (required)")
	runCmd.Flags().StringVarP(&runGoal, "goal", "g", "", "query to score chunks against")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output directory (default from config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "parse documents without chunking")
	runCmd.Flags().BoolVar(&runDumpChunks, "dump-chunks", false, "write chunks.jsonl")
	runCmd.Flags().BoolVar(&runDumpScores, "dump-scores", false, "write scores.jsonl")
	runCmd.Flags().BoolVar(&runNoPackets, "no-packets", false, "skip writing context packets")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "re-run whenever corpus files change")
	runCmd.Flags().StringVar(&runCompress, "compress", "", "compress chunk and score files (zstd or lz4)")
	runCmd.Flags().Lookup("compress").NoOptDefVal = string(jsonl.CodecZstd)
	_ = runCmd.MarkFlagRequired("corpus")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	codec, err := jsonl.ParseCodec(runCompress)
	if err != nil {
		return err
	}

	processor, err := newProcessor(settings)
	if err != nil {
		return err
	}

	var opts []services.PipelineOption
	if runGoal != "" && !runDryRun {
		sel, err := openScorer(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer sel.Close()
		opts = append(opts, services.WithScoring(services.NewScoringService(sel.Scorer, settings.Scoring.BatchSize)))
	}

	pipeline := services.NewPipelineService(
		driven.CorpusFactoryFunc(filesystem.Open),
		processor,
		jsonl.Layout{Codec: codec},
		*settings,
		opts...,
	)

	req := driving.PipelineRequest{
		CorpusRoot:   runCorpus,
		Query:        runGoal,
		OutputDir:    runOutput,
		DryRun:       runDryRun,
		DumpChunks:   runDumpChunks,
		DumpScores:   runDumpScores,
		WritePackets: !runNoPackets,
	}

	if runWatch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.Println("Watching for changes (Ctrl+C to stop)")
		return pipeline.Watch(ctx, req, func(report *domain.PipelineReport, err error) {
			if err != nil {
				cmd.PrintErrf("run failed: %v\n", err)
				return
			}
			printPipelineReport(cmd, report)
		})
	}

	report, err := pipeline.Run(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}
	printPipelineReport(cmd, report)
	return nil
}

func printPipelineReport(cmd *cobra.Command, report *domain.PipelineReport) {
	cmd.Printf("Run %s\n", report.RunID)

	ingest := report.Ingest
	cmd.Printf("Ingest: %d files included, %d skipped\n", ingest.Included, ingest.Skipped)
	for _, ext := range ingest.Extensions() {
		cmd.Printf("  .%s: %d\n", ext, ingest.ByExtension[ext])
	}

	c := report.Chunking
	if report.DryRun {
		cmd.Printf("Dry run: %d documents parsed, %d skipped\n", c.Documents, c.Skipped())
	} else {
		cmd.Printf("Chunking: %d documents, %d chunks\n", c.Documents, c.Chunks)
		if c.UncoveredTokens > 0 {
			cmd.Printf("  %d leading padding tokens outside any chunk\n", c.UncoveredTokens)
		}
	}
	if c.Skipped() > 0 {
		cmd.Printf("  skipped: %d unsupported, %d unreadable, %d unparsable, %d undecodable\n",
			c.Unsupported, c.IOFailures, c.ParseFailures, c.EncodingFailures)
	}

	if s := report.Scoring; s != nil {
		cmd.Printf("Scoring: %d chunks in %d batches (%s)\n", s.Scored, s.Batches, s.Scorer)
	}
	if report.ChunksPath != "" {
		cmd.Printf("Chunks written to %s\n", report.ChunksPath)
	}
	if report.ScoresPath != "" {
		cmd.Printf("Scores written to %s\n", report.ScoresPath)
	}
	for _, p := range report.PacketPaths {
		cmd.Printf("Packet written to %s\n", p)
	}
}
