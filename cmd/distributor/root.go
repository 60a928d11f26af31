package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/distributor/internal/model"
	"github.com/Joseda-hg/distributor/internal/tui"
	"github.com/Joseda-hg/distributor/internal/web"
	"github.com/Joseda-hg/distributor/internal/workflow"
)

func newRootCmd(a *app) *cobra.Command {
	var (
		updateID int64
		date     string
		withWeb  bool
		port     int
	)

	cmd := &cobra.Command{
		Use:   "distributor",
		Short: "Task entry for magazine distribution",
		Long: `distributor records distribution tasks against the MySQL schema of a
print-distribution business. Without a subcommand it opens the task form.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := model.Insert()
			if cmd.Flags().Changed("update") {
				mode = model.Update(updateID)
			}
			day, err := formDate(date)
			if err != nil {
				return err
			}
			if withWeb {
				a.cfg.WebEnabled = true
			}
			if port != 0 {
				a.cfg.WebPort = port
			}
			return a.runForm(mode, day)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file path (.json, .yaml)")
	pf.StringVar(&a.flags.dbHost, "db-host", "", "database host")
	pf.StringVar(&a.flags.dbPort, "db-port", "", "database port")
	pf.StringVar(&a.flags.dbName, "db-name", "", "database name")
	pf.StringVar(&a.flags.dbUser, "db-user", "", "database user")
	pf.StringVar(&a.flags.journalPath, "journal", "", "submission journal path")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.Flags().Int64Var(&updateID, "update", 0, "update the task with this id instead of inserting")
	cmd.Flags().StringVar(&date, "date", "", "job date (YYYY-MM-DD), today when empty")
	cmd.Flags().BoolVar(&withWeb, "web", false, "also serve the JSON API")
	cmd.Flags().IntVar(&port, "port", 0, "JSON API port")

	cmd.AddCommand(
		newServeCmd(a),
		newPingCmd(a),
		newReportCmd(a),
		newAddCmd(a),
		newJournalCmd(a),
	)
	return cmd
}

func formDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	return model.ParseDate(value)
}

func (a *app) runForm(mode model.Mode, date time.Time) error {
	store := a.store()
	jrnl, err := a.openJournal()
	if err != nil {
		return err
	}

	submitter, err := workflow.NewSubmitter(store, mode, workflow.WithJournal(jrnl))
	if err != nil {
		return err
	}

	if a.cfg.WebEnabled {
		srv := a.httpServer(web.NewServer(store, store, jrnl))
		go func() {
			log.WithField("addr", srv.Addr).Info("web server running")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("web server")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return tui.Run(tui.Options{
		Cascade:   workflow.NewCascade(store),
		Submitter: submitter,
		Journal:   jrnl,
		Master:    store,
		Target:    a.params().Address(),
		Date:      date,
	})
}

func (a *app) httpServer(server *web.Server) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.WebPort),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
