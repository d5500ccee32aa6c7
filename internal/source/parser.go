// Package source discovers and parses savecast ledger files (JSONL and CSV).
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/savecast/internal/model"
)

// Record validation errors. Lines failing validation are counted in
// ParseResult.ParseErrors rather than aborting the file.
var (
	ErrBadAmount      = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("negative amount")
	ErrBadDate        = errors.New("invalid date")
	ErrBadType        = errors.New("invalid transaction type")
	ErrBadFrequency   = errors.New("invalid recurring frequency")
)

// DefaultCategory is assigned to records without a category.
const DefaultCategory = "Uncategorized"

// MaxAmount is the largest accepted record amount. Larger values would
// overflow the float64 arithmetic of the forecasting models.
var MaxAmount = decimal.New(1, 15)

// currency symbols accepted as an amount prefix
var currencyPrefixes = []string{"¥", "￥", "$", "€", "£"}

// ParseResult holds the output of parsing a single ledger file.
type ParseResult struct {
	Transactions []model.Transaction
	ParseErrors  int
	// FirstError describes the first rejected line, if any.
	FirstError error
	Err        error
}

// ParseFile reads a ledger file and returns its valid transactions.
// Malformed lines are skipped and counted; only I/O failures set Err.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	if df.Format == FormatCSV {
		return parseCSV(f, df)
	}
	return parseJSONL(f, df)
}

func (r *ParseResult) reject(err error) {
	r.ParseErrors++
	if r.FirstError == nil {
		r.FirstError = err
	}
}

func parseJSONL(rd io.Reader, df DiscoveredFile) ParseResult {
	var result ParseResult

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		raw, err := ParseLine(line)
		if err != nil {
			result.reject(fmt.Errorf("%s:%d: %w", df.Path, lineNo, err))
			continue
		}
		tx, err := ToTransaction(raw, recordID(df, lineNo))
		if err != nil {
			result.reject(fmt.Errorf("%s:%d: %w", df.Path, lineNo, err))
			continue
		}
		tx.SourceFile = df.Path
		result.Transactions = append(result.Transactions, tx)
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}
	return result
}

// ParseLine decodes one JSONL line into a RawRecord.
func ParseLine(line []byte) (RawRecord, error) {
	var raw RawRecord
	if err := json.Unmarshal(line, &raw); err != nil {
		return RawRecord{}, err
	}
	return raw, nil
}

var csvColumns = map[string]string{
	"id":                  "id",
	"type":                "type",
	"amount":              "amount",
	"category":            "category",
	"subcategory":         "subcategory",
	"description":         "description",
	"date":                "date",
	"isrecurring":         "isRecurring",
	"is_recurring":        "isRecurring",
	"recurringfrequency":  "recurringFrequency",
	"recurring_frequency": "recurringFrequency",
	"tags":                "tags",
}

func parseCSV(rd io.Reader, df DiscoveredFile) ParseResult {
	var result ParseResult

	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'

	header, err := r.Read()
	if err == io.EOF {
		return result
	}
	if err != nil {
		return ParseResult{Err: fmt.Errorf("reading csv header: %w", err)}
	}

	index := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name, ok := csvColumns[key]; ok {
			index[name] = i
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				result.reject(fmt.Errorf("%s:%d: %w", df.Path, perr.Line, err))
				continue
			}
			return ParseResult{Err: err}
		}
		line, _ := r.FieldPos(0)

		raw := RawRecord{
			ID:                 field(row, "id"),
			Type:               field(row, "type"),
			Amount:             json.RawMessage(strconv.Quote(field(row, "amount"))),
			Category:           field(row, "category"),
			Subcategory:        field(row, "subcategory"),
			Description:        field(row, "description"),
			Date:               field(row, "date"),
			RecurringFrequency: field(row, "recurringFrequency"),
		}
		if s := field(row, "isRecurring"); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				result.reject(fmt.Errorf("%s:%d: isRecurring %q: %w", df.Path, line, s, err))
				continue
			}
			raw.IsRecurring = b
		}
		if s := field(row, "tags"); s != "" {
			for _, tag := range strings.Split(s, ";") {
				if tag = strings.TrimSpace(tag); tag != "" {
					raw.Tags = append(raw.Tags, tag)
				}
			}
		}

		tx, err := ToTransaction(raw, recordID(df, line))
		if err != nil {
			result.reject(fmt.Errorf("%s:%d: %w", df.Path, line, err))
			continue
		}
		tx.SourceFile = df.Path
		result.Transactions = append(result.Transactions, tx)
	}
	return result
}

func recordID(df DiscoveredFile, line int) string {
	return df.Path + ":" + strconv.Itoa(line)
}

// ToTransaction validates raw and converts it to a Transaction. fallbackID
// is used when the record carries no ID of its own.
func ToTransaction(raw RawRecord, fallbackID string) (model.Transaction, error) {
	typ := strings.ToLower(strings.TrimSpace(raw.Type))
	if !model.ValidType(typ) {
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrBadType, raw.Type)
	}

	amount, err := amountFromJSON(raw.Amount)
	if err != nil {
		return model.Transaction{}, err
	}

	date, err := ParseDate(raw.Date)
	if err != nil {
		return model.Transaction{}, err
	}

	freq := strings.ToLower(strings.TrimSpace(raw.RecurringFrequency))
	if !model.ValidFrequency(freq) {
		return model.Transaction{}, fmt.Errorf("%w: %q", ErrBadFrequency, raw.RecurringFrequency)
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = fallbackID
	}
	category := strings.TrimSpace(raw.Category)
	if category == "" {
		category = DefaultCategory
	}

	return model.Transaction{
		ID:                 id,
		Type:               model.TxType(typ),
		Amount:             amount,
		Category:           category,
		Subcategory:        strings.TrimSpace(raw.Subcategory),
		Description:        raw.Description,
		Date:               date,
		IsRecurring:        raw.IsRecurring,
		RecurringFrequency: model.Frequency(freq),
		Tags:               raw.Tags,
	}, nil
}

func amountFromJSON(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Decimal{}, fmt.Errorf("%w: missing", ErrBadAmount)
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrBadAmount, err)
		}
	}
	return ParseAmount(s)
}

// ParseAmount parses a non-negative monetary amount. A leading currency
// symbol and thousands separators are accepted: "350000", "1,234.50" and
// "¥12,000" are all valid.
func ParseAmount(s string) (decimal.Decimal, error) {
	orig := s
	s = strings.TrimSpace(s)
	for _, sym := range currencyPrefixes {
		s = strings.TrimPrefix(s, sym)
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrBadAmount, orig)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrBadAmount, orig)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrNegativeAmount, orig)
	}
	if d.GreaterThan(MaxAmount) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q exceeds %s", ErrBadAmount, orig, MaxAmount)
	}
	return d, nil
}

// ParseDate parses a calendar date. Full RFC 3339 timestamps are accepted
// and truncated to their date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}
