package store

const schema = `
CREATE TABLE IF NOT EXISTS usage_stats (
    name TEXT PRIMARY KEY,
    last_used INTEGER NOT NULL,
    use_count INTEGER NOT NULL CHECK (use_count >= 1)
);

CREATE TABLE IF NOT EXISTS launch_events (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    open_type TEXT NOT NULL,
    launched_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_launch_name ON launch_events(name);
CREATE INDEX IF NOT EXISTS idx_launch_time ON launch_events(launched_at);
`
