package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"miniredis/internal/server"
)

func main() {
	cfg := server.DefaultConfig()

	root := &cobra.Command{
		Use:   "miniredis",
		Short: "A minimal Redis-compatible key-value server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}
	// Unknown flags are ignored rather than aborting startup, matching
	// spec.md §6 and the original's own parse_command_line, whose match
	// over args falls through unmatched tokens with a bare `_ => {}`.
	root.FParseErrWhitelist.UnknownFlags = true

	flags := root.Flags()
	flags.StringVar(&cfg.Host, "host", cfg.Host, "address to bind to")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	flags.StringVar(&cfg.Dir, "dir", cfg.Dir, "directory for persistence files")
	flags.StringVar(&cfg.DBFilename, "dbfilename", cfg.DBFilename, "RDB filename within --dir")
	flags.StringVar(&cfg.MasterHostPort, "replicaof", cfg.MasterHostPort, `master "host port" to replicate from, e.g. "localhost 6379"`)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg server.Config) error {
	log := server.NewLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Info("shutting down")
		cancel()
	}()

	if err := server.Run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("server exited with error")
		return err
	}
	return nil
}
