package mail

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/johanbog/wallet-integration/internal/domain"
)

// csvHeader is the public report schema, in column order.
var csvHeader = []string{"name", "description", "amount", "payee", "date", "note", "category"}

// WriteCSV serializes report rows to w. Optional fields render as empty
// cells, dates as YYYY-MM-DD, amounts with two decimals.
func WriteCSV(w io.Writer, rows []domain.Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Name,
			optionalString(row.Description),
			row.Amount.StringFixed(2),
			optionalInt64(row.Payee),
			row.Date.Format(domain.DateLayout),
			optionalString(row.Note),
			optionalString(row.Category),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCSV: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// RenderCSV serializes report rows into an in-memory CSV attachment payload.
func RenderCSV(rows []domain.Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalInt64(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}
