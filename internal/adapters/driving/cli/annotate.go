package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contextpacket/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/contextpacket/internal/core/domain"
	"github.com/custodia-labs/contextpacket/internal/core/services"
)

var (
	annotateStore string
	queryType     string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Manage relevance annotations",
	Long: `Record, list and exchange relevance judgements of chunks for queries.

The store is a JSON file by default. Paths ending in .db use a SQLite
database, which can also hold evaluation queries.`,
}

var annotateSetCmd = &cobra.Command{
	Use:   "set <query-id> <chunk-id> <relevant|not_relevant|skip>",
	Short: "Record a judgement",
	Long: `Record whether a chunk is relevant to a query. Relevance may be given as
relevant/1, not_relevant/0 or skip/-1 (numeric -1 must follow "--").`,
	Args: cobra.ExactArgs(3),
	RunE: runAnnotateSet,
}

var annotateRmCmd = &cobra.Command{
	Use:   "rm <query-id> <chunk-id>",
	Short: "Remove a judgement",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnnotateRm,
}

var annotateListCmd = &cobra.Command{
	Use:   "list [query-id]",
	Short: "List judgements",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnnotateList,
}

var annotateImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge judgements from an annotations or export file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotateImport,
}

var annotateExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export judgements and queries",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotateExport,
}

var annotateQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Manage evaluation queries",
}

var annotateQueryAddCmd = &cobra.Command{
	Use:   "add <id> <text>",
	Short: "Store an evaluation query",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnnotateQueryAdd,
}

var annotateQueryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored evaluation queries",
	Args:  cobra.NoArgs,
	RunE:  runAnnotateQueryList,
}

func init() {
	annotateCmd.PersistentFlags().StringVarP(&annotateStore, "store", "s", jsonfile.DefaultFileName,
		"annotation store (.json file or .db database)")
	annotateQueryAddCmd.Flags().StringVarP(&queryType, "type", "t", "", "query category")

	annotateQueryCmd.AddCommand(annotateQueryAddCmd, annotateQueryListCmd)
	annotateCmd.AddCommand(annotateSetCmd, annotateRmCmd, annotateListCmd,
		annotateImportCmd, annotateExportCmd, annotateQueryCmd)
	rootCmd.AddCommand(annotateCmd)
}

// withAnnotations opens the store, runs fn and closes the store.
func withAnnotations(fn func(*services.AnnotationService) error) error {
	backend, err := openAnnotations(annotateStore)
	if err != nil {
		return err
	}
	defer backend.Close()

	return fn(services.NewAnnotationService(backend.Store, backend.Queries, jsonfile.Archive{}))
}

func runAnnotateSet(cmd *cobra.Command, args []string) error {
	relevance, err := parseRelevance(args[2])
	if err != nil {
		return err
	}
	return withAnnotations(func(svc *services.AnnotationService) error {
		if err := svc.Annotate(cmd.Context(), args[0], args[1], relevance); err != nil {
			return err
		}
		cmd.Printf("%s/%s: %s\n", args[0], args[1], relevance)
		return nil
	})
}

func runAnnotateRm(cmd *cobra.Command, args []string) error {
	return withAnnotations(func(svc *services.AnnotationService) error {
		if err := svc.Remove(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("removing %s/%s: %w", args[0], args[1], err)
		}
		cmd.Printf("Removed %s/%s\n", args[0], args[1])
		return nil
	})
}

func runAnnotateList(cmd *cobra.Command, args []string) error {
	queryID := ""
	if len(args) == 1 {
		queryID = args[0]
	}
	return withAnnotations(func(svc *services.AnnotationService) error {
		set, err := svc.List(cmd.Context(), queryID)
		if err != nil {
			return err
		}
		if set.Count() == 0 {
			cmd.Println("No annotations found.")
			return nil
		}
		for _, q := range set.QueryIDs() {
			for _, c := range slices.Sorted(maps.Keys(set[q])) {
				cmd.Printf("%s\t%s\t%s\n", q, c, set[q][c].Relevance)
			}
		}
		return nil
	})
}

func runAnnotateImport(cmd *cobra.Command, args []string) error {
	return withAnnotations(func(svc *services.AnnotationService) error {
		n, err := svc.Import(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Imported %d annotations from %s\n", n, args[0])
		return nil
	})
}

func runAnnotateExport(cmd *cobra.Command, args []string) error {
	return withAnnotations(func(svc *services.AnnotationService) error {
		if err := svc.Export(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("Exported annotations to %s\n", args[0])
		return nil
	})
}

func runAnnotateQueryAdd(cmd *cobra.Command, args []string) error {
	return withAnnotations(func(svc *services.AnnotationService) error {
		q := domain.Query{ID: args[0], Text: args[1], Type: queryType}
		if err := svc.AddQuery(cmd.Context(), q); err != nil {
			return err
		}
		cmd.Printf("Added query %s\n", q.ID)
		return nil
	})
}

func runAnnotateQueryList(cmd *cobra.Command, _ []string) error {
	return withAnnotations(func(svc *services.AnnotationService) error {
		queries, err := svc.Queries(cmd.Context())
		if err != nil {
			return err
		}
		if len(queries) == 0 {
			cmd.Println("No queries stored.")
			return nil
		}
		for _, q := range queries {
			if q.Type != "" {
				cmd.Printf("%s\t%s\t[%s]\n", q.ID, q.Text, q.Type)
				continue
			}
			cmd.Printf("%s\t%s\n", q.ID, q.Text)
		}
		return nil
	})
}

// parseRelevance accepts the numeric labels and their names.
func parseRelevance(s string) (domain.Relevance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "relevant", "yes", "y":
		return domain.RelevanceRelevant, nil
	case "0", "not_relevant", "not-relevant", "no", "n":
		return domain.RelevanceNotRelevant, nil
	case "-1", "skip", "skipped":
		return domain.RelevanceSkipped, nil
	default:
		return 0, fmt.Errorf("%w: unknown relevance %q", domain.ErrInvalidInput, s)
	}
}
