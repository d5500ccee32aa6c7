package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/savecast/internal/source"
	"github.com/theirongolddev/savecast/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Removed   int
}

// LoadWithCache discovers ledger files, diffs them against the cache, parses
// only changed files, and returns the combined transaction set. Files that
// disappeared from disk are dropped from the cache.
func LoadWithCache(ledgerDir string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(ledgerDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", ledgerDir, err)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{
			TotalFiles:   len(files),
			AccountCount: source.CountAccounts(files),
		},
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	// Diff: partition into changed and unchanged
	var toReparse []source.DiscoveredFile
	var stats []os.FileInfo
	unchanged := make(map[string]struct{})
	present := make(map[string]struct{}, len(files))

	for _, f := range files {
		present[f.Path] = struct{}{}
		info, err := os.Stat(f.Path)
		if err != nil {
			result.FileErrors++
			continue
		}

		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged[f.Path] = struct{}{}
			result.ParseErrors += cached.ParseErrors
		} else {
			toReparse = append(toReparse, f)
			stats = append(stats, info)
		}
	}

	for path := range tracked {
		if _, ok := present[path]; !ok {
			if err := cache.DeleteFile(path); err != nil {
				return nil, fmt.Errorf("pruning %s from cache: %w", path, err)
			}
			result.Removed++
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	if len(unchanged) > 0 {
		cached, err := cache.LoadAllTransactions()
		if err != nil {
			return nil, fmt.Errorf("loading cached transactions: %w", err)
		}
		for _, t := range cached {
			if _, ok := unchanged[t.SourceFile]; ok {
				result.Transactions = append(result.Transactions, t)
			}
		}
		result.ParsedFiles += len(unchanged)
	}

	if len(toReparse) == 0 {
		return result, nil
	}

	results := parseFiles(toReparse, func(n int) {
		if progressFn != nil {
			progressFn(n+result.CacheHits, result.TotalFiles)
		}
	})

	for i, pr := range results {
		if !result.collect(pr) {
			continue
		}
		f := toReparse[i]
		info := store.FileInfo{
			Account:     f.Account,
			MtimeNs:     stats[i].ModTime().UnixNano(),
			SizeBytes:   stats[i].Size(),
			ParseErrors: pr.ParseErrors,
		}
		// A failed cache write only costs a reparse next time.
		_ = cache.SaveFile(f.Path, info, pr.Transactions)
	}

	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "savecast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "savecast")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "ledger.db")
}
