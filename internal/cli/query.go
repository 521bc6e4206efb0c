package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/service"
)

type queryResult struct {
	Query   string             `json:"query"`
	Results []ranker.ScoredDoc `json:"results"`
}

func newQueryCommand(opts *options) *cobra.Command {
	var (
		queries []string
		status  string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Rank documents against one or more queries",
		Long: `Rank the documents of the corpus against each -q query. Words prefixed
with '-' exclude documents containing them.

Examples:
  searchctl query -q "fluffy cat" -q "dog -big"
  searchctl query -q "nasty rat" --status BANNED --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := indexer.ParseStatus(status)
			if err != nil {
				return err
			}
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			tracker := analytics.NewTracker(service.New(engine, nil, nil), len(queries), nil, nil)

			out := make([]queryResult, 0, len(queries))
			for _, q := range queries {
				docs, err := tracker.AddFindRequestByStatus(cmd.Context(), q, filter)
				if err != nil {
					return err
				}
				out = append(out, queryResult{Query: q, Results: docs})
			}

			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"queries":            out,
					"no_result_requests": tracker.GetNoResultRequests(),
				})
			}
			w := cmd.OutOrStdout()
			for _, r := range out {
				fmt.Fprintf(w, "query: %s\n", r.Query)
				printScored(w, r.Results)
			}
			fmt.Fprintf(w, "no-result requests: %d of %d\n", tracker.GetNoResultRequests(), len(queries))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "search query (repeatable, required)")
	cmd.Flags().StringVar(&status, "status", "ACTUAL", "only rank documents with this status")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func printScored(w io.Writer, docs []ranker.ScoredDoc) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "  (no documents)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tRELEVANCE\tRATING")
	for _, d := range docs {
		fmt.Fprintf(tw, "  %d\t%.6f\t%d\n", d.DocID, d.Relevance, d.Rating)
	}
	_ = tw.Flush()
}
