package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/config"
)

// app holds the state shared by every subcommand once the root hooks ran.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// setup loads the config for cmd and builds the logger. Commands that
// need no config get a console logger only.
func (a *app) setup(cmd *cobra.Command) error {
	opts := loggerOptions{Verbose: a.verbose}

	if !skipsConfig(cmd) {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
		opts.Logging = &cfg.Logging
	}

	logger, err := opts.build()
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) flush() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func skipsConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion":
		return true
	}
	return false
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "neuroinfo-watcher",
		Short:        "Watch the NeuroInfo API and emit stream, schedule and subathon events",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.flush()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", os.Getenv("NEUROINFO_CONFIG"), "config file path (or set NEUROINFO_CONFIG)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging with the development encoder")

	root.AddCommand(watchCmd(a), fetchCmd(a))
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
