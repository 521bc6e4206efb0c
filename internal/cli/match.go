package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
)

type matchResult struct {
	ID     int            `json:"id"`
	Words  []string       `json:"words"`
	Status indexer.Status `json:"status"`
}

func newMatchCommand(opts *options) *cobra.Command {
	var (
		query string
		ids   []int
	)
	cmd := &cobra.Command{
		Use:   "match",
		Short: "List the query words each document contains",
		Long: `Print the plus-words of the query found in each document. A document
containing any minus-word matches nothing. Without --id every document is
matched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				for id := range engine.DocumentIDs() {
					ids = append(ids, id)
				}
			}

			out := make([]matchResult, 0, len(ids))
			for _, id := range ids {
				words, status, err := engine.MatchDocument(query, id)
				if err != nil {
					return err
				}
				out = append(out, matchResult{ID: id, Words: words, Status: status})
			}

			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			for _, m := range out {
				fmt.Fprintf(cmd.OutOrStdout(), "{ document_id = %d, status = %s, words = %s }\n",
					m.ID, m.Status, strings.Join(m.Words, " "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "query to match (required)")
	cmd.Flags().IntSliceVar(&ids, "id", nil, "document ids to match (default all)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}
