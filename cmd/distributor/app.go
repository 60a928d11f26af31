package main

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/distributor/internal/config"
	"github.com/Joseda-hg/distributor/internal/db"
	"github.com/Joseda-hg/distributor/internal/journal"
	"github.com/Joseda-hg/distributor/internal/logging"
)

// flags override the config file for a single run and are saved back.
type flags struct {
	configPath  string
	dbHost      string
	dbPort      string
	dbName      string
	dbUser      string
	journalPath string
	logLevel    string
}

type app struct {
	flags flags
	cfg   config.Config

	// connect builds the connector for the configured database.
	connect func(db.Params) *db.Connector

	closers []io.Closer
}

func newApp() *app {
	return &app{connect: db.NewMySQLConnector}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfgPath, err := resolveConfigPath(a.flags.configPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	a.applyFlags(&cfg)
	cfg.Resolve(cfgPath)

	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}
	a.cfg = cfg

	if err := config.EnsureDir(cfg.LogPath); err != nil {
		return err
	}
	closer, err := logging.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closer)
	log.WithFields(log.Fields{"command": cmd.CommandPath(), "config": cfgPath}).Debug("starting")
	return nil
}

func (a *app) applyFlags(cfg *config.Config) {
	if a.flags.dbHost != "" {
		cfg.Database.Host = a.flags.dbHost
	}
	if a.flags.dbPort != "" {
		cfg.Database.Port = a.flags.dbPort
	}
	if a.flags.dbName != "" {
		cfg.Database.Name = a.flags.dbName
	}
	if a.flags.dbUser != "" {
		cfg.Database.User = a.flags.dbUser
	}
	if a.flags.journalPath != "" {
		cfg.JournalPath = a.flags.journalPath
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
}

// run executes cmd and releases what setup and the command opened, whether or
// not the command failed.
func (a *app) run(cmd *cobra.Command) error {
	err := cmd.Execute()
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	return err
}

func (a *app) close() error {
	var errs []string
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (a *app) params() db.Params {
	return db.Params{
		Database: a.cfg.Database.Name,
		Host:     a.cfg.Database.Host,
		Port:     a.cfg.Database.Port,
		User:     a.cfg.Database.User,
		Password: a.cfg.Database.Password,
	}
}

func (a *app) store() *db.Store {
	return db.NewStore(db.NewExecutor(a.connect(a.params())))
}

func (a *app) openJournal() (*journal.Journal, error) {
	if err := config.EnsureDir(a.cfg.JournalPath); err != nil {
		return nil, err
	}
	conn, err := journal.Open(a.cfg.JournalPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn)
	return journal.New(conn), nil
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}
