package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	bookmarks "github.com/anatolykoptev/go-bookmarks"
	"github.com/anatolykoptev/go-bookmarks/capture"
)

var (
	flagCookie     string
	flagCSRF       string
	flagAuth       string
	flagCapture    bool
	flagFolder     string
	flagProjectTag string
	flagMaxPages   int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import all bookmarks once and exit",
	Long: "Import all bookmarks once and exit. Session headers come from --cookie/--csrf/--auth\n" +
		"(or BOOKMARKS_TW_COOKIE, BOOKMARKS_TW_CSRF, BOOKMARKS_TW_AUTH), or from a capture browser with --capture.",
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagCookie, "cookie", "", "Cookie header of a logged-in x.com session")
	importCmd.Flags().StringVar(&flagCSRF, "csrf", "", "X-Csrf-Token header")
	importCmd.Flags().StringVar(&flagAuth, "auth", "", "Authorization header")
	importCmd.Flags().BoolVar(&flagCapture, "capture", false, "Open a browser and wait for session headers")
	importCmd.Flags().StringVar(&flagFolder, "folder", "", "Import one bookmark folder by id")
	importCmd.Flags().StringVar(&flagProjectTag, "project-tag", "", "Container tag of the target project")
	importCmd.Flags().IntVar(&flagMaxPages, "max-pages", 0, "Stop after this many pages (0 = all)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagMaxPages > 0 {
		cfg.Twitter.MaxPages = flagMaxPages
	}
	st, err := buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	st.store.Set(bookmarks.AuthTokens{
		Cookie: firstNonEmpty(flagCookie, os.Getenv("BOOKMARKS_TW_COOKIE")),
		CSRF:   firstNonEmpty(flagCSRF, os.Getenv("BOOKMARKS_TW_CSRF")),
		Auth:   firstNonEmpty(flagAuth, os.Getenv("BOOKMARKS_TW_AUTH")),
	})

	if _, ok := st.store.Tokens(); !ok && flagCapture {
		browser := capture.New(st.store, capture.Options{
			Headless:    false,
			StartURL:    cfg.Capture.StartURL,
			UserDataDir: cfg.Capture.UserDataDir,
		})
		if err := browser.Start(); err != nil {
			return err
		}
		defer browser.Close()

		renderProgress(os.Stderr, "Waiting for x.com session headers, log in if asked...")
		if err := waitForTokens(ctx, st.store); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr)
	}

	ic := bookmarks.ImportConfig{
		FolderImport: flagFolder != "",
		FolderID:     flagFolder,
	}
	if flagProjectTag != "" {
		ic.Project = &bookmarks.Project{ContainerTag: flagProjectTag}
	}
	events := make(chan bookmarks.Event, 64)
	ic.Events = events

	renderTitle(os.Stderr, "Importing bookmarks")

	var g errgroup.Group
	g.Go(func() error {
		bookmarks.Dispatch(events, bookmarks.Callbacks{
			OnProgress: func(msg string) { renderProgress(os.Stderr, msg) },
			OnComplete: func(total int) { renderDone(os.Stderr, total) },
			OnError:    func(err error) { renderError(os.Stderr, err) },
		})
		return nil
	})
	g.Go(func() error { return st.importer.StartImport(ctx, ic) })

	err = g.Wait()
	if errors.Is(err, bookmarks.ErrMissingCredentials) {
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("%w: pass --cookie/--csrf/--auth or use --capture", err)
	}
	return err
}

func waitForTokens(ctx context.Context, store *bookmarks.SessionStore) error {
	t := time.NewTicker(500 * time.Millisecond)
	defer t.Stop()
	for {
		if _, ok := store.Tokens(); ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
