package contact

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// UsernameColumn is the header every contact or recipient CSV must carry.
const UsernameColumn = "username"

// ReadUsernames returns the username column of a CSV file in row order.
// Blank cells are returned as empty strings so callers can count them.
func ReadUsernames(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read CSV header: %v", ErrMissingColumn, err)
	}

	col := -1
	for i, h := range header {
		if normalizeHeader(h) == UsernameColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrMissingColumn
	}

	var out []string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		if col >= len(row) {
			out = append(out, "")
			continue
		}
		out = append(out, strings.TrimSpace(row[col]))
	}
	return out, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}
