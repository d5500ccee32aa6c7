package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks ledgerDir and discovers all JSONL and CSV ledger files.
// Hidden files and directories are skipped. A missing directory yields no
// files and no error.
func ScanDir(ledgerDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(ledgerDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(ledgerDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		name := d.Name()
		if d.IsDir() {
			if path != ledgerDir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		format, ok := formatOf(name)
		if !ok {
			return nil
		}

		rel, _ := filepath.Rel(ledgerDir, path)
		parts := strings.Split(rel, string(filepath.Separator))

		account := strings.TrimSuffix(name, filepath.Ext(name))
		if len(parts) > 1 {
			account = parts[0]
		}

		files = append(files, DiscoveredFile{
			Path:    path,
			Account: account,
			Format:  format,
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func formatOf(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jsonl":
		return FormatJSONL, true
	case ".csv":
		return FormatCSV, true
	}
	return "", false
}

// CountAccounts returns the number of unique accounts in a set of discovered files.
func CountAccounts(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Account] = struct{}{}
	}
	return len(seen)
}
