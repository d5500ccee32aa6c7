// Package store provides a SQLite-backed cache for parsed ledger files.
//
// Only parsed inputs are stored. Forecasts are always recomputed.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/savecast/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed transaction caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked state of a ledger file.
type FileInfo struct {
	Account     string
	MtimeNs     int64
	SizeBytes   int64
	ParseErrors int
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, account, mtime_ns, size_bytes, parse_errors FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.Account, &fi.MtimeNs, &fi.SizeBytes, &fi.ParseErrors); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cached transactions of one ledger file and records
// its mtime and size.
func (c *Cache) SaveFile(path string, info FileInfo, txs []model.Transaction) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO file_tracker
		(file_path, account, mtime_ns, size_bytes, parse_errors, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			account = excluded.account,
			mtime_ns = excluded.mtime_ns,
			size_bytes = excluded.size_bytes,
			parse_errors = excluded.parse_errors,
			parsed_at = excluded.parsed_at`,
		path, info.Account, info.MtimeNs, info.SizeBytes, info.ParseErrors, now)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM transactions WHERE file_path = ?", path); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO transactions
		(file_path, seq, tx_id, type, amount, category, subcategory, description,
		 date, is_recurring, recurring_frequency, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, t := range txs {
		var tags []byte
		if len(t.Tags) > 0 {
			tags, err = json.Marshal(t.Tags)
			if err != nil {
				return err
			}
		}
		recurring := 0
		if t.IsRecurring {
			recurring = 1
		}
		_, err = stmt.Exec(path, i, t.ID, string(t.Type), t.Amount.String(), t.Category,
			t.Subcategory, t.Description, t.Date.Format(model.DateLayout), recurring,
			string(t.RecurringFrequency), string(tags))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadAllTransactions reads every cached transaction, ordered by file and
// position within the file.
func (c *Cache) LoadAllTransactions() ([]model.Transaction, error) {
	rows, err := c.db.Query(`SELECT
		file_path, tx_id, type, amount, category, subcategory, description,
		date, is_recurring, recurring_frequency, tags
		FROM transactions ORDER BY file_path, seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var typ, amount, date string
		var subcategory, description, freq, tags sql.NullString
		var recurring int

		err := rows.Scan(&t.SourceFile, &t.ID, &typ, &amount, &t.Category, &subcategory,
			&description, &date, &recurring, &freq, &tags)
		if err != nil {
			return nil, err
		}

		t.Type = model.TxType(typ)
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("cached amount %q for %s: %w", amount, t.ID, err)
		}
		t.Date, err = time.Parse(model.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("cached date %q for %s: %w", date, t.ID, err)
		}
		t.IsRecurring = recurring != 0
		t.Subcategory = subcategory.String
		t.Description = description.String
		t.RecurringFrequency = model.Frequency(freq.String)
		if tags.Valid && tags.String != "" {
			if err := json.Unmarshal([]byte(tags.String), &t.Tags); err != nil {
				return nil, fmt.Errorf("cached tags for %s: %w", t.ID, err)
			}
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// DeleteFile removes a tracked file and its transactions.
func (c *Cache) DeleteFile(path string) error {
	if _, err := c.db.Exec("DELETE FROM transactions WHERE file_path = ?", path); err != nil {
		return err
	}
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// TransactionCount returns the number of cached transactions.
func (c *Cache) TransactionCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}
