package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    account              TEXT NOT NULL,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parse_errors         INTEGER NOT NULL DEFAULT 0,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    tx_id                TEXT NOT NULL,
    type                 TEXT NOT NULL,
    amount               TEXT NOT NULL,
    category             TEXT NOT NULL,
    subcategory          TEXT,
    description          TEXT,
    date                 TEXT NOT NULL,
    is_recurring         INTEGER NOT NULL DEFAULT 0,
    recurring_frequency  TEXT,
    tags                 TEXT,
    PRIMARY KEY (file_path, seq)
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);
`
