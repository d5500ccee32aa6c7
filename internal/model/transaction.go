// Package model defines domain types for savecast ledgers and forecasts.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used by ledger records.
const DateLayout = "2006-01-02"

// TxType distinguishes money flowing in from money flowing out.
type TxType string

// Transaction types.
const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// Frequency is the repeat cadence of a recurring transaction.
type Frequency string

// Recurrence frequencies.
const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Transaction is one dated income or expense record from a ledger.
// Amount is always non-negative; Type carries the sign.
type Transaction struct {
	ID                 string
	Type               TxType
	Amount             decimal.Decimal
	Category           string
	Subcategory        string
	Description        string
	Date               time.Time
	IsRecurring        bool
	RecurringFrequency Frequency
	Tags               []string

	// SourceFile is the ledger file the record was read from.
	SourceFile string
}

// MonthKey returns the "YYYY-MM" bucket key for the transaction date.
func (t Transaction) MonthKey() string {
	return t.Date.Format("2006-01")
}

// Signed returns the amount as a cash-flow value: positive for income,
// negative for expenses.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Income {
		return t.Amount
	}
	return t.Amount.Neg()
}

// ValidType reports whether s names a known transaction type.
func ValidType(s string) bool {
	switch TxType(s) {
	case Income, Expense:
		return true
	}
	return false
}

// ValidFrequency reports whether s names a known recurrence frequency.
// The empty string is accepted for non-recurring records.
func ValidFrequency(s string) bool {
	switch Frequency(s) {
	case "", Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}
