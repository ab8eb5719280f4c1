package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/services"
)

// DefaultReportFile is the markdown report written by evaluate.
const DefaultReportFile = "evaluation_report.md"

var (
	evalChunks      string
	evalScores      string
	evalAnnotations string
	evalQuery       string
	evalJSON        bool
	evalReport      string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate scores against relevance annotations",
	Long: `For every query, sweeps score thresholds from 0.0 to 1.0 and reports the
threshold with the best F1, its precision and recall, and the ROC AUC.

Queries come from the config file, then the annotation database, then the
query ids found in the annotations. A markdown report is written to
evaluation_report.md unless --report is empty.`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalChunks, "chunks", jsonl.DefaultChunksFile, "chunk file")
	evaluateCmd.Flags().StringVar(&evalScores, "scores", jsonl.DefaultScoresFile, "score file")
	evaluateCmd.Flags().StringVarP(&evalAnnotations, "annotations", "a", jsonfile.DefaultFileName,
		"annotation store (.json file or .db database)")
	evaluateCmd.Flags().StringVarP(&evalQuery, "query", "q", "", "evaluate a single query id")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "output results as JSON")
	evaluateCmd.Flags().StringVar(&evalReport, "report", DefaultReportFile, "markdown report path (empty to skip)")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	backend, err := openAnnotations(evalAnnotations)
	if err != nil {
		return err
	}
	defer backend.Close()

	opts := []services.EvaluationOption{services.WithQueries(settings.Queries)}
	if backend.Queries != nil {
		opts = append(opts, services.WithQueryStore(backend.Queries))
	}
	evaluation := services.NewEvaluationService(
		jsonl.NewChunkFile(evalChunks),
		jsonl.NewScoreFile(evalScores),
		backend.Store,
		opts...,
	)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if evalQuery != "" {
		result, err := evaluation.EvaluateQuery(ctx, evalQuery)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		if evalJSON {
			return writeJSON(out, result)
		}
		fmt.Fprint(out, renderEvaluationTable([]domain.EvaluationResult{*result}, isTerminal(out)))
		return nil
	}

	report, err := evaluation.Evaluate(ctx)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if evalReport != "" {
		if err := os.WriteFile(evalReport, []byte(evaluation.Markdown(report)), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if evalJSON {
		return writeJSON(out, report)
	}

	fmt.Fprint(out, renderEvaluationTable(report.Results, isTerminal(out)))
	fmt.Fprintln(out, formatOverall(report.Overall))
	if evalReport != "" {
		fmt.Fprintf(out, "Report written to %s\n", evalReport)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	borderColor = lipgloss.Color("#45475A")
)

// renderEvaluationTable lays out one row per query. Queries without usable
// annotations get dashes and their error is listed below the table.
func renderEvaluationTable(results []domain.EvaluationResult, styled bool) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("QUERY", "ANNOTATED", "RELEVANT", "THRESHOLD", "F1", "PRECISION", "RECALL", "AUC")

	if styled {
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
	}

	var errs []string
	for i := range results {
		r := &results[i]
		if !r.HasData() {
			t.Row(r.QueryID, "-", "-", "-", "-", "-", "-", "-")
			errs = append(errs, fmt.Sprintf("%s: %s", r.QueryID, r.Error))
			continue
		}
		auc := "-"
		if r.AUC != nil {
			auc = fmt.Sprintf("%.3f", *r.AUC)
		}
		t.Row(
			r.QueryID,
			strconv.Itoa(r.AnnotatedChunks),
			strconv.Itoa(r.RelevantChunks),
			fmt.Sprintf("%.2f", r.OptimalThreshold),
			fmt.Sprintf("%.3f", r.OptimalF1),
			fmt.Sprintf("%.3f", r.OptimalPrecision),
			fmt.Sprintf("%.3f", r.OptimalRecall),
			auc,
		)
	}

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	for _, e := range errs {
		if styled {
			e = errorStyle.Render(e)
		}
		b.WriteString(e)
		b.WriteString("\n")
	}
	return b.String()
}

func formatOverall(o domain.OverallStats) string {
	line := fmt.Sprintf("Queries: %d (%d with data)  Average F1: %.3f", o.TotalQueries, o.QueriesWithData, o.AverageF1)
	if o.AverageAUC != nil {
		line += fmt.Sprintf("  Average AUC: %.3f", *o.AverageAUC)
	}
	return line
}
