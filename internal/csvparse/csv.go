// Package csvparse reads bank-exported CSV files into raw rows for the
// record normalizer. Columns are matched by header name, so exports with
// extra or reordered columns still parse.
package csvparse

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mikezucc/spendingtracker/internal/core"
)

// headerAliases maps the header names seen in bank exports to the
// canonical raw-row keys the normalizer understands.
var headerAliases = map[string]string{
	"transaction date": "date",
	"date":             "date",
	"posted date":      "date",
	"amount":           "amount",
	"description":      "description",
	"memo":             "description",
	"category":         "category",
}

// Parse reads header-mapped transaction rows from CSV content.
// Unrecognized columns are ignored; rows shorter than the header are
// padded by omission. Validation of individual values is left to the
// normalizer, which drops bad rows silently.
func Parse(r io.Reader) ([]core.RawRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil // empty or header-only
	}

	keys := make([]string, len(records[0]))
	for i, h := range records[0] {
		keys[i] = headerAliases[strings.ToLower(strings.TrimSpace(h))]
	}

	rows := make([]core.RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(core.RawRow)
		for i, key := range keys {
			if key == "" || i >= len(record) {
				continue
			}
			if _, taken := row[key]; taken {
				continue // first matching column wins
			}
			row[key] = strings.TrimSpace(record[i])
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
