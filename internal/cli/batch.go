package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/batch"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/service"
)

func newBatchCommand(opts *options) *cobra.Command {
	var (
		file    string
		joined  bool
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch [query...]",
		Short: "Run many queries concurrently",
		Long: `Run every query given as an argument or read from --file (one per line)
against ACTUAL documents. Results are printed in query order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			queries := args
			if file != "" {
				fromFile, err := readLines(file)
				if err != nil {
					return err
				}
				queries = append(queries, fromFile...)
			}
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			processor := batch.New(service.New(engine, nil, nil), workers, nil)
			w := cmd.OutOrStdout()

			if joined {
				docs, err := processor.ProcessQueriesJoined(cmd.Context(), queries)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return writeJSON(w, docs)
				}
				printScored(w, docs)
				return nil
			}

			perQuery, err := processor.ProcessQueries(cmd.Context(), queries)
			if err != nil {
				return err
			}
			out := make([]queryResult, len(queries))
			for i, q := range queries {
				out[i] = queryResult{Query: q, Results: perQuery[i]}
			}
			if opts.asJSON {
				return writeJSON(w, out)
			}
			for _, r := range out {
				fmt.Fprintf(w, "query: %s\n", r.Query)
				printScored(w, r.Results)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file with one query per line")
	cmd.Flags().BoolVar(&joined, "joined", false, "concatenate all results into one list")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent queries (default GOMAXPROCS)")
	return cmd
}

// readLines returns the non-blank lines of path.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}
