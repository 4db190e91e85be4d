package main

import (
	"fmt"
	"log/slog"

	bookmarks "github.com/anatolykoptev/go-bookmarks"
	"github.com/anatolykoptev/go-bookmarks/ledger"
	"github.com/anatolykoptev/go-bookmarks/memory"
)

// stack is everything an import needs, wired from cfg.
type stack struct {
	store    *bookmarks.SessionStore
	memory   *memory.Client
	ledger   *ledger.Ledger
	importer *bookmarks.Importer
}

func buildStack() (*stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := bookmarks.NewClient(cfg.Importer())
	if err != nil {
		return nil, err
	}

	st := &stack{
		store:  bookmarks.NewSessionStore(),
		memory: memory.NewClient(cfg.Memory.APIKey, memory.WithBaseURL(cfg.Memory.BaseURL)),
	}

	var opts []bookmarks.Option
	if l, err := ledger.Open(cfg.LedgerPath()); err != nil {
		slog.Warn("run ledger unavailable", slog.String("path", cfg.LedgerPath()), slog.Any("error", err))
	} else {
		st.ledger = l
		opts = append(opts, bookmarks.WithRecorder(l))
	}

	st.importer = bookmarks.NewImporter(client, st.store, st.memory, cfg.Importer(), opts...)
	return st, nil
}

func (s *stack) Close() {
	if s.ledger != nil {
		if err := s.ledger.Close(); err != nil {
			slog.Warn("closing ledger", slog.Any("error", err))
		}
	}
}

func openLedger() (*ledger.Ledger, error) {
	l, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return l, nil
}
