package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anatolykoptev/go-bookmarks/capture"
	"github.com/anatolykoptev/go-bookmarks/daemon"
)

var (
	flagServeAddr    string
	flagServeCapture bool
	flagServeHeadful bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background daemon for capture relays and UI tabs",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().BoolVar(&flagServeCapture, "capture", false, "Also open a browser that captures x.com session headers")
	serveCmd.Flags().BoolVar(&flagServeHeadful, "headful", false, "Show the capture browser window")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	addr := cfg.Daemon.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	var runs daemon.RunLister
	if st.ledger != nil {
		runs = st.ledger
	}
	srv := daemon.New(daemon.Config{Addr: addr, TabBuffer: cfg.Daemon.TabBuffer},
		st.store, st.importer, st.memory, runs)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })

	if flagServeCapture || cfg.Capture.Enabled {
		browser := capture.New(st.store, capture.Options{
			Headless:    cfg.Capture.Headless && !flagServeHeadful,
			StartURL:    cfg.Capture.StartURL,
			UserDataDir: cfg.Capture.UserDataDir,
		})
		g.Go(func() error { return browser.Run(gctx) })
	}

	renderTitle(os.Stderr, "go-bookmarks daemon")
	renderKV(os.Stderr, "Listening", addr)
	renderKV(os.Stderr, "Ledger", cfg.LedgerPath())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
