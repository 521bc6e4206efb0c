package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDedupeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Report documents that duplicate the word set of a lower id",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			removed := engine.RemoveDuplicates()
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"removed":   removed,
					"remaining": engine.DocumentCount(),
				})
			}
			for _, id := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Found duplicate document id %d\n", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d documents remain\n", engine.DocumentCount())
			return nil
		},
	}
}
