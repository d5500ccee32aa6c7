package source

import "encoding/json"

// RawRecord is a single ledger record as it appears in a JSONL line.
// Amount is kept raw so both numbers and formatted strings are accepted.
type RawRecord struct {
	ID                 string          `json:"id,omitempty"`
	Type               string          `json:"type"`
	Amount             json.RawMessage `json:"amount"`
	Category           string          `json:"category"`
	Subcategory        string          `json:"subcategory,omitempty"`
	Description        string          `json:"description,omitempty"`
	Date               string          `json:"date"`
	IsRecurring        bool            `json:"isRecurring,omitempty"`
	RecurringFrequency string          `json:"recurringFrequency,omitempty"`
	Tags               []string        `json:"tags,omitempty"`
}

// Format identifies the encoding of a ledger file.
type Format string

// Supported ledger formats.
const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// DiscoveredFile represents a ledger file found during directory scanning.
type DiscoveredFile struct {
	Path    string
	Account string // top-level directory, or the file's base name at the root
	Format  Format
}
