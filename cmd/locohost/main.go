//go:build linux || darwin

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wesoudshoorn/locohost/internal/config"
	"github.com/wesoudshoorn/locohost/internal/logger"
	"github.com/wesoudshoorn/locohost/internal/pipeline"
	"github.com/wesoudshoorn/locohost/internal/proc"
	"github.com/wesoudshoorn/locohost/internal/server"
	"github.com/wesoudshoorn/locohost/internal/tracker"
	"github.com/wesoudshoorn/locohost/internal/workspace"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "locohost",
		Short:        "Dashboard for processes listening on localhost ports",
		Long:         "locohost discovers dev servers bound to localhost TCP ports, annotates them with project/workspace/branch metadata, and serves a dashboard that can kill them.",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run()
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("locohost", version)
		},
	})

	return rootCmd
}

func run() error {
	cfg := config.Load()
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	resolver := workspace.NewResolver(proc.WorkingDir)
	pipe := pipeline.New(
		pipeline.ListerFunc(proc.ListListeningSockets),
		resolver,
		tracker.NewStore(cfg.TrackerDB),
	)
	srv := server.New(pipe, proc.Terminate, cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		if err := srv.Stop(); err != nil {
			logger.Error("shutdown: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
