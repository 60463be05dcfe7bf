package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Defaults applied by the normalizer when optional columns are absent.
const (
	DefaultDescription = "Unknown"
	DefaultCategory    = "Uncategorized"
)

var (
	ErrBadDate   = errors.New("unparsable date")
	ErrBadAmount = errors.New("unparsable amount")
)

// RawRow is one untyped record from a tabular source, keyed by
// canonical column name ("date", "amount", "description", "category").
type RawRow map[string]string

// Transaction is a canonical record: ISO date, spend-positive amount.
// Records are immutable once stored; the (date, amount, description,
// category) tuple is the dedup identity key.
type Transaction struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// Key returns the dedup identity key for the transaction.
func (t Transaction) Key() string {
	return t.Date + "|" + strconv.FormatFloat(t.Amount, 'g', -1, 64) + "|" + t.Description + "|" + t.Category
}

// Normalize converts one raw row into a canonical transaction.
//
// The source convention is MM/DD/YYYY dates and spend-negative amounts;
// the canonical convention is YYYY-MM-DD and spend-positive. A row whose
// date or amount cannot be parsed is rejected with a sentinel error and
// dropped by callers without surfacing a user-facing failure.
func Normalize(row RawRow) (Transaction, error) {
	date, err := normalizeDate(row["date"])
	if err != nil {
		return Transaction{}, err
	}

	// ParseFloat accepts "NaN" and "Inf" spellings; neither is a usable
	// amount, and NaN in particular cannot be persisted as JSON.
	amount, err := strconv.ParseFloat(strings.TrimSpace(row["amount"]), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Transaction{}, ErrBadAmount
	}

	desc := strings.TrimSpace(row["description"])
	if desc == "" {
		desc = DefaultDescription
	}
	category := strings.TrimSpace(row["category"])
	if category == "" {
		category = DefaultCategory
	}

	return Transaction{
		Date:        date,
		Amount:      -amount,
		Description: desc,
		Category:    category,
	}, nil
}

// normalizeDate reorders MM/DD/YYYY to YYYY-MM-DD with zero padding.
func normalizeDate(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return "", ErrBadDate
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", ErrBadDate
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", ErrBadDate
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", ErrBadDate
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}
