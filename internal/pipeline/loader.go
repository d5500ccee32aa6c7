package pipeline

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Transactions []model.Transaction
	TotalFiles   int
	ParsedFiles  int
	ParseErrors  int
	FileErrors   int
	AccountCount int
	// FirstError is the first rejected line or unreadable file, for display.
	FirstError error
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses all ledger files under ledgerDir.
// It uses a bounded worker group for parallel parsing.
func Load(ledgerDir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(ledgerDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", ledgerDir, err)
	}

	result := &LoadResult{
		TotalFiles:   len(files),
		AccountCount: source.CountAccounts(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	results := parseFiles(files, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})
	for _, pr := range results {
		result.collect(pr)
	}
	return result, nil
}

// collect folds one file's parse result into the load totals.
func (r *LoadResult) collect(pr source.ParseResult) bool {
	if pr.Err != nil {
		r.FileErrors++
		if r.FirstError == nil {
			r.FirstError = pr.Err
		}
		return false
	}
	r.ParsedFiles++
	r.ParseErrors += pr.ParseErrors
	if r.FirstError == nil && pr.FirstError != nil {
		r.FirstError = pr.FirstError
	}
	r.Transactions = append(r.Transactions, pr.Transactions...)
	return true
}

// parseFiles parses files concurrently, preserving input order in the result.
// progress receives the running count of finished files.
func parseFiles(files []source.DiscoveredFile, progress func(n int)) []source.ParseResult {
	results := make([]source.ParseResult, len(files))
	var processed atomic.Int64

	var g errgroup.Group
	g.SetLimit(workerCount(len(files)))
	for i := range files {
		i := i
		g.Go(func() error {
			results[i] = source.ParseFile(files[i])
			n := processed.Add(1)
			if progress != nil {
				progress(int(n))
			}
			return nil
		})
	}
	_ = g.Wait() // workers never fail; per-file errors live in ParseResult

	return results
}

func workerCount(jobs int) int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 4
	}
	if n > jobs {
		n = jobs
	}
	return n
}
