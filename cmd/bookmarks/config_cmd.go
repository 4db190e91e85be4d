package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-bookmarks/config"
	"github.com/anatolykoptev/go-bookmarks/ledger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recent import runs, or the tweets one run wrote",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

var flagRunsLimit int

func init() {
	runsCmd.Flags().IntVarP(&flagRunsLimit, "limit", "n", 20, "Number of runs to show")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runsCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	w := os.Stdout
	renderTitle(w, "Configuration")
	renderKV(w, "Config file", flagConfig)
	if _, err := os.Stat(flagConfig); err == nil {
		renderKV(w, "Status", "loaded")
	} else {
		renderKV(w, "Status", "using defaults (no config file)")
	}

	renderTitle(w, "Memory")
	if cfg.Memory.APIKey != "" {
		renderKV(w, "API key", maskKey(cfg.Memory.APIKey))
	} else {
		renderKV(w, "API key", warnStyle.Render("not configured"))
	}
	renderKV(w, "Base URL", cfg.Memory.BaseURL)

	renderTitle(w, "Twitter")
	renderKV(w, "Container tag", cfg.Twitter.ContainerTag)
	renderKV(w, "Rate limit wait", cfg.Twitter.RateLimitWait.String())
	renderKV(w, "Rate limit cap", orUnlimited(cfg.Twitter.RateLimitMaxWait.String(), cfg.Twitter.RateLimitMaxWait == 0))
	renderKV(w, "Max retries", orUnlimited(strconv.Itoa(cfg.Twitter.RateLimitMaxRetries), cfg.Twitter.RateLimitMaxRetries == 0))
	renderKV(w, "Page delay", cfg.Twitter.PageDelay.String())
	renderKV(w, "Max pages", orUnlimited(strconv.Itoa(cfg.Twitter.MaxPages), cfg.Twitter.MaxPages == 0))
	if cfg.Twitter.OperationID != "" {
		renderKV(w, "Operation ID", cfg.Twitter.OperationID)
	}

	renderTitle(w, "Daemon")
	renderKV(w, "Address", cfg.Daemon.Addr)
	renderKV(w, "Capture browser", strconv.FormatBool(cfg.Capture.Enabled))
	renderKV(w, "Ledger", cfg.LedgerPath())
	fmt.Fprintln(w)
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(flagConfig); err == nil {
		return fmt.Errorf("%s already exists", flagConfig)
	}
	if err := config.Save(flagConfig, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "  %s %s\n", successStyle.Render("✓ wrote"), flagConfig)
	return nil
}

func runRuns(_ *cobra.Command, args []string) error {
	l, err := openLedger()
	if err != nil {
		return err
	}
	defer l.Close()

	ctx := rootCmd.Context()
	if len(args) == 1 {
		return renderRunTweets(ctx, l, args[0])
	}

	runs, err := l.ListRuns(ctx, flagRunsLimit)
	if err != nil {
		return err
	}
	total, err := l.ImportedCount(ctx)
	if err != nil {
		return err
	}

	w := os.Stdout
	renderTitle(w, "Import runs")
	if len(runs) == 0 {
		fmt.Fprintf(w, "    %s\n\n", labelStyle.Render("no runs yet"))
		return nil
	}
	for _, r := range runs {
		state := r.State
		switch r.State {
		case "completed":
			state = successStyle.Render(state)
		case "failed":
			state = errorStyle.Render(state)
		}
		dur := "-"
		if !r.FinishedAt.IsZero() {
			dur = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(w, "    %s  %-10s %5d tweets %3d pages  %s  %s\n",
			labelStyle.Render(r.StartedAt.Local().Format("2006-01-02 15:04")),
			state, r.Imported, r.Pages, dur, labelStyle.Render(shortID(r.ID)))
		if r.Error != "" {
			fmt.Fprintf(w, "      %s\n", warnStyle.Render(r.Error))
		}
	}
	fmt.Fprintln(w)
	renderKV(w, "Distinct tweets", strconv.Itoa(total))
	fmt.Fprintln(w)
	return nil
}

func renderRunTweets(ctx context.Context, l *ledger.Ledger, runID string) error {
	ids, err := l.RunTweets(ctx, runID)
	if err != nil {
		return err
	}
	w := os.Stdout
	renderTitle(w, "Tweets of run "+runID)
	if len(ids) == 0 {
		fmt.Fprintf(w, "    %s\n\n", labelStyle.Render("none recorded"))
		return nil
	}
	for _, id := range ids {
		fmt.Fprintf(w, "    https://x.com/i/status/%s\n", id)
	}
	fmt.Fprintln(w)
	return nil
}

func orUnlimited(v string, unlimited bool) string {
	if unlimited {
		return "unlimited"
	}
	return v
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
