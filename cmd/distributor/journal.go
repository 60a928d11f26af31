package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newJournalCmd(a *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recent submissions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jrnl, err := a.openJournal()
			if err != nil {
				return err
			}
			entries, err := jrnl.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			for _, entry := range entries {
				fmt.Fprintln(out, entry.Summary())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}
