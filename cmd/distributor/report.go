package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/distributor/internal/db"
)

func newReportCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print report procedures and table listings",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "output JSON")

	var taskType string
	tasks := &cobra.Command{
		Use:   "tasks",
		Short: "Tasks of one type (showtask)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printReport(cmd, asJSON, func(ctx context.Context, s *db.Store) (db.Table, error) {
				return s.ShowTask(ctx, taskType)
			})
		},
	}
	tasks.Flags().StringVar(&taskType, "type", "", "task type")
	_ = tasks.MarkFlagRequired("type")

	sold := &cobra.Command{
		Use:   "sold-copies",
		Short: "Sold copies per release (showSoldCopies)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printReport(cmd, asJSON, func(ctx context.Context, s *db.Store) (db.Table, error) {
				return s.SoldCopies(ctx)
			})
		},
	}

	listings := map[string]func(*db.Store, context.Context) (db.Table, error){
		"tasks":     (*db.Store).AllTasks,
		"locations": (*db.Store).AllLocations,
		"phones":    (*db.Store).AllPhones,
	}
	all := &cobra.Command{
		Use:       "all {tasks|locations|phones}",
		Short:     "Every row of a table",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"tasks", "locations", "phones"},
		RunE: func(cmd *cobra.Command, args []string) error {
			list := listings[args[0]]
			return a.printReport(cmd, asJSON, func(ctx context.Context, s *db.Store) (db.Table, error) {
				return list(s, ctx)
			})
		},
	}

	cmd.AddCommand(tasks, sold, all)
	return cmd
}

func (a *app) printReport(cmd *cobra.Command, asJSON bool, load func(context.Context, *db.Store) (db.Table, error)) error {
	table, err := load(cmd.Context(), a.store())
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return printTable(cmd.OutOrStdout(), table, asJSON)
}

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Run the connection test query",
		RunE: func(cmd *cobra.Command, _ []string) error {
			greeting, err := a.store().Ping(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", greeting, a.params().Address())
			return nil
		},
	}
}
