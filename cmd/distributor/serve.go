package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/distributor/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API only",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != 0 {
				a.cfg.WebPort = port
			}
			jrnl, err := a.openJournal()
			if err != nil {
				return err
			}
			store := a.store()
			srv := a.httpServer(web.NewServer(store, store, jrnl))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveUntilDone(ctx, srv, cmd)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "JSON API port")
	return cmd
}

func serveUntilDone(ctx context.Context, srv *http.Server, cmd *cobra.Command) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Web server running at http://localhost%s\n", srv.Addr)
	log.WithField("addr", srv.Addr).Info("web server running")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
