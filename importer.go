package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go-bookmarks/memory"
)

const missingTokensMessage = "Please visit Twitter/X first to capture authentication tokens"

// RunState is the lifecycle state of the importer.
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ImportConfig describes one run.
type ImportConfig struct {
	FolderImport bool
	FolderID     string
	Project      *Project

	// Events receives progress and the terminal event. StartImport closes it
	// when the run ends. The consumer must keep draining until then.
	Events chan<- Event
}

// Run is the bookkeeping for one import.
type Run struct {
	ID           string
	Folder       bool
	ContainerTag string
	State        RunState
	Imported     int
	Pages        int
	Cursor       string
	StartedAt    time.Time
	FinishedAt   time.Time
	Err          string
}

// Sink persists one page of documents.
type Sink interface {
	SaveBatch(ctx context.Context, docs []memory.Payload) error
}

// Recorder keeps a history of runs. Failures are logged and never abort a run.
type Recorder interface {
	StartRun(ctx context.Context, run Run) error
	RecordTweets(ctx context.Context, runID string, tweetIDs []string) error
	FinishRun(ctx context.Context, run Run) error
}

type operationIDSource interface {
	BookmarksOperationID() string
}

// Importer crawls the bookmarks timeline and writes each page to a Sink.
// At most one run is active at a time.
type Importer struct {
	client   *Client
	tokens   TokenSource
	sink     Sink
	limiter  *RateLimiter
	recorder Recorder
	sleep    sleepFunc
	cfg      Config

	running atomic.Bool

	mu   sync.Mutex
	last Run
}

// Option configures an Importer.
type Option func(*Importer)

// WithRecorder attaches a run history.
func WithRecorder(r Recorder) Option {
	return func(im *Importer) { im.recorder = r }
}

// WithSleeper replaces the timer used for the pacing delay and rate-limit waits.
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(im *Importer) {
		im.sleep = fn
		im.limiter.sleep = fn
	}
}

// NewImporter creates an importer reading credentials from tokens.
func NewImporter(client *Client, tokens TokenSource, sink Sink, cfg Config, opts ...Option) *Importer {
	cfg.defaults()
	im := &Importer{
		client:  client,
		tokens:  tokens,
		sink:    sink,
		limiter: NewRateLimiter(cfg.RateLimitWait, cfg.RateLimitMaxWait),
		sleep:   sleepCtx,
		cfg:     cfg,
	}
	for _, o := range opts {
		o(im)
	}
	return im
}

// Limiter exposes the back-off state shared across runs.
func (im *Importer) Limiter() *RateLimiter { return im.limiter }

// Running reports whether a run is active.
func (im *Importer) Running() bool { return im.running.Load() }

// State returns the state of the current or most recent run.
func (im *Importer) State() RunState {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.last.State
}

// LastRun returns a copy of the current or most recent run.
func (im *Importer) LastRun() Run {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.last
}

func (im *Importer) update(fn func(*Run)) {
	im.mu.Lock()
	fn(&im.last)
	im.mu.Unlock()
}

// StartImport runs one import to completion. A concurrent call returns
// ErrImportInProgress without touching the active run or its own Events.
// Errors are reported as an error event and also returned.
// Missing credentials produce a progress message only and return
// ErrMissingCredentials.
func (im *Importer) StartImport(ctx context.Context, ic ImportConfig) error {
	if !im.running.CompareAndSwap(false, true) {
		return ErrImportInProgress
	}
	defer im.running.Store(false)

	em := &emitter{ch: ic.Events}
	defer em.close()

	run := Run{
		ID:           uuid.NewString(),
		Folder:       ic.FolderImport,
		ContainerTag: im.containerTag(ic.Project),
		State:        StateRunning,
		StartedAt:    time.Now().UTC(),
	}
	em.runID = run.ID
	im.update(func(r *Run) { *r = run })

	log := slog.With(slog.String("run_id", run.ID), slog.Bool("folder", run.Folder))
	log.Info("import started", slog.String("container_tag", run.ContainerTag))
	im.recordStart(ctx, run)

	err := im.crawl(ctx, ic, em, log)

	im.update(func(r *Run) {
		r.FinishedAt = time.Now().UTC()
		switch {
		case errors.Is(err, ErrMissingCredentials):
			r.State = StateIdle
		case err != nil:
			r.State = StateFailed
			r.Err = err.Error()
		default:
			r.State = StateCompleted
		}
		run = *r
	})
	im.recordFinish(run)

	switch run.State {
	case StateIdle:
		log.Warn("import skipped: tokens not captured")
	case StateFailed:
		log.Error("import failed", slog.Any("error", err),
			slog.Int("imported", run.Imported), slog.Int("pages", run.Pages))
		em.terminal(Event{Kind: EventError, Err: err})
	case StateCompleted:
		im.limiter.Reset()
		log.Info("import completed", slog.Int("imported", run.Imported), slog.Int("pages", run.Pages))
		em.terminal(Event{Kind: EventDone, Total: run.Imported})
	}
	return err
}

func (im *Importer) crawl(ctx context.Context, ic ImportConfig, em *emitter, log *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("import panic: %v", r)
		}
	}()

	progress := func(msg string) { em.progress(ctx, msg) }
	cursor := ""
	imported := 0
	pages := 0
	retries := 0

	for {
		tokens, ok := im.tokens.Tokens()
		if !ok {
			progress(missingTokensMessage)
			return ErrMissingCredentials
		}

		url := im.pageURL(ic, cursor)
		resp, err := im.client.get(ctx, url, tokens)
		if err != nil {
			return fmt.Errorf("fetch bookmarks: %w", err)
		}

		if resp.status == http.StatusTooManyRequests {
			retries++
			if im.cfg.RateLimitMaxRetries > 0 && retries > im.cfg.RateLimitMaxRetries {
				return ErrRateLimitExhausted
			}
			attrs := []any{slog.Int("retry", retries), slog.Duration("wait", im.limiter.Wait())}
			if reset := parseRateLimitReset(resp.headers["x-rate-limit-reset"]); !reset.IsZero() {
				attrs = append(attrs, slog.Time("reset", reset))
			}
			log.Warn("bookmarks rate limited", attrs...)
			if err := im.limiter.HandleRateLimit(ctx, progress); err != nil {
				return err
			}
			continue
		}
		retries = 0

		if resp.status < 200 || resp.status >= 300 {
			return &APIError{
				Endpoint: im.endpoint(ic).Name,
				Status:   resp.status,
				Body:     truncateBytes(resp.body, 512),
				Class:    classifyError(resp.body),
			}
		}

		page, err := ParsePage(resp.body)
		if err != nil {
			return fmt.Errorf("parse bookmarks page: %w", err)
		}
		pages++

		docs := make([]memory.Payload, 0, len(page.Tweets))
		ids := make([]string, 0, len(page.Tweets))
		for _, t := range page.Tweets {
			docs = append(docs, im.payload(t, ic.Project, em.runID))
			ids = append(ids, t.ID)
			imported++
			progress(fmt.Sprintf("Imported %d tweets, so far...", imported))
		}
		im.update(func(r *Run) {
			r.Imported = imported
			r.Pages = pages
			r.Cursor = page.NextCursor
		})
		log.Debug("bookmarks page", slog.Int("page", pages), slog.Int("tweets", len(page.Tweets)),
			slog.Bool("has_cursor", page.NextCursor != ""))

		if len(docs) > 0 {
			if err := im.sink.SaveBatch(ctx, docs); err != nil {
				return fmt.Errorf("save batch: %w", err)
			}
			im.recordTweets(ctx, em.runID, ids)
		}

		if ic.FolderImport || page.NextCursor == "" || len(page.Tweets) == 0 {
			return nil
		}
		if im.cfg.MaxPages > 0 && pages >= im.cfg.MaxPages {
			log.Info("page limit reached", slog.Int("max_pages", im.cfg.MaxPages))
			return nil
		}
		cursor = page.NextCursor

		if err := im.sleep(ctx, im.cfg.PageDelay); err != nil {
			return err
		}
	}
}

func (im *Importer) endpoint(ic ImportConfig) Endpoint {
	if ic.FolderImport {
		return BookmarkFolderEndpoint
	}
	id := im.cfg.OperationID
	if src, ok := im.tokens.(operationIDSource); ok {
		if live := src.BookmarksOperationID(); live != "" {
			id = live
		}
	}
	return BookmarksEndpoint.WithID(id)
}

// pageURL builds the request URL. Folder mode has no pagination.
func (im *Importer) pageURL(ic ImportConfig, cursor string) string {
	ep := im.endpoint(ic)
	if ic.FolderImport {
		return BuildFolderURL(ep, ic.FolderID)
	}
	return BuildTimelineURL(ep, cursor)
}

func (im *Importer) containerTag(p *Project) string {
	if p != nil && p.ContainerTag != "" {
		return p.ContainerTag
	}
	return im.cfg.DefaultContainerTag
}

func (im *Importer) payload(t *Tweet, p *Project, runID string) memory.Payload {
	return memory.Payload{
		ContainerTags: []string{im.containerTag(p)},
		Content:       TweetToMarkdown(t),
		Metadata: memory.Metadata{
			"sm_source":            "consumer",
			"tweet_id":             t.ID,
			"author":               t.User.ScreenName,
			"created_at":           t.CreatedAt,
			"likes":                t.FavoriteCount,
			"retweets":             t.RetweetCount,
			"sm_internal_group_id": runID,
		},
		CustomID: t.ID,
	}
}

func (im *Importer) recordStart(ctx context.Context, run Run) {
	if im.recorder == nil {
		return
	}
	if err := im.recorder.StartRun(ctx, run); err != nil {
		slog.Warn("ledger: start run", slog.String("run_id", run.ID), slog.Any("error", err))
	}
}

func (im *Importer) recordTweets(ctx context.Context, runID string, ids []string) {
	if im.recorder == nil {
		return
	}
	if err := im.recorder.RecordTweets(ctx, runID, ids); err != nil {
		slog.Warn("ledger: record tweets", slog.String("run_id", runID), slog.Any("error", err))
	}
}

// recordFinish uses a fresh context so a cancelled run is still recorded.
func (im *Importer) recordFinish(run Run) {
	if im.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := im.recorder.FinishRun(ctx, run); err != nil {
		slog.Warn("ledger: finish run", slog.String("run_id", run.ID), slog.Any("error", err))
	}
}

// emitter delivers events in order. Progress sends give up when ctx is done;
// the terminal event is always delivered before the channel is closed.
type emitter struct {
	ch    chan<- Event
	runID string
}

func (e *emitter) progress(ctx context.Context, msg string) {
	if e.ch == nil {
		return
	}
	select {
	case e.ch <- Event{Kind: EventProgress, RunID: e.runID, Message: msg}:
	case <-ctx.Done():
	}
}

func (e *emitter) terminal(ev Event) {
	if e.ch == nil {
		return
	}
	ev.RunID = e.runID
	e.ch <- ev
}

func (e *emitter) close() {
	if e.ch != nil {
		close(e.ch)
	}
}
