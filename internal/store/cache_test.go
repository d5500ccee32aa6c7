package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/savecast/internal/model"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "sub", "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleTxs(file string) []model.Transaction {
	return []model.Transaction{
		{
			ID:                 "1",
			Type:               model.Income,
			Amount:             decimal.RequireFromString("350000"),
			Category:           "Salary",
			Description:        "Base pay",
			Date:               time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
			IsRecurring:        true,
			RecurringFrequency: model.Monthly,
			Tags:               []string{"work", "fixed"},
			SourceFile:         file,
		},
		{
			ID:         "2",
			Type:       model.Expense,
			Amount:     decimal.RequireFromString("1234.56"),
			Category:   "Food",
			Date:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			SourceFile: file,
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	c := openTemp(t)

	info := FileInfo{Account: "bank", MtimeNs: 42, SizeBytes: 100, ParseErrors: 1}
	if err := c.SaveFile("/l/a.jsonl", info, sampleTxs("/l/a.jsonl")); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if got := tracked["/l/a.jsonl"]; got != info {
		t.Errorf("tracked = %+v, want %+v", got, info)
	}

	txs, err := c.LoadAllTransactions()
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Fatalf("loaded %d, want 2", len(txs))
	}
	first := txs[0]
	if first.ID != "1" || first.Type != model.Income || !first.IsRecurring {
		t.Errorf("first = %+v", first)
	}
	if first.RecurringFrequency != model.Monthly || len(first.Tags) != 2 {
		t.Errorf("recurrence/tags = %s/%v", first.RecurringFrequency, first.Tags)
	}
	if !txs[1].Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("amount = %s, want 1234.56", txs[1].Amount)
	}
	if txs[1].SourceFile != "/l/a.jsonl" {
		t.Errorf("SourceFile = %q", txs[1].SourceFile)
	}
	if !txs[1].Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", txs[1].Date)
	}
}

func TestSaveFileReplaces(t *testing.T) {
	c := openTemp(t)

	if err := c.SaveFile("/l/a.jsonl", FileInfo{Account: "a", MtimeNs: 1}, sampleTxs("/l/a.jsonl")); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveFile("/l/a.jsonl", FileInfo{Account: "a", MtimeNs: 2}, sampleTxs("/l/a.jsonl")[:1]); err != nil {
		t.Fatal(err)
	}

	n, err := c.TransactionCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("TransactionCount = %d, want 1", n)
	}
	tracked, _ := c.GetTrackedFiles()
	if tracked["/l/a.jsonl"].MtimeNs != 2 {
		t.Errorf("MtimeNs = %d, want 2", tracked["/l/a.jsonl"].MtimeNs)
	}
}

func TestDeleteFile(t *testing.T) {
	c := openTemp(t)

	for _, p := range []string{"/l/a.jsonl", "/l/b.csv"} {
		if err := c.SaveFile(p, FileInfo{Account: "x"}, sampleTxs(p)); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.DeleteFile("/l/a.jsonl"); err != nil {
		t.Fatal(err)
	}

	n, _ := c.TransactionCount()
	if n != 2 {
		t.Errorf("TransactionCount = %d, want 2", n)
	}
	tracked, _ := c.GetTrackedFiles()
	if _, ok := tracked["/l/a.jsonl"]; ok {
		t.Error("deleted file still tracked")
	}
	if len(tracked) != 1 {
		t.Errorf("tracked = %d, want 1", len(tracked))
	}
}
