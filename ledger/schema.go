package ledger

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id         TEXT PRIMARY KEY,
    folder         INTEGER NOT NULL DEFAULT 0,
    container_tag  TEXT NOT NULL,
    state          TEXT NOT NULL,
    imported       INTEGER NOT NULL DEFAULT 0,
    pages          INTEGER NOT NULL DEFAULT 0,
    last_cursor    TEXT NOT NULL DEFAULT '',
    error          TEXT NOT NULL DEFAULT '',
    started_at     TEXT NOT NULL,
    finished_at    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS run_tweets (
    run_id    TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    tweet_id  TEXT NOT NULL,
    PRIMARY KEY (run_id, tweet_id)
);

CREATE INDEX IF NOT EXISTS idx_run_tweets_tweet ON run_tweets(tweet_id);
`
