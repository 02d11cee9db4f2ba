package report

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"receiptbatch/internal/scanning"
)

// dateLayout is the date format providers are asked to return.
const dateLayout = "2006/01/02"

// outputLayout is the date format written to the report.
const outputLayout = "2006-01-02"

var header = []string{"date", "service", "detail", "price"}

// row is one consolidated record with its sort key resolved.
type row struct {
	date    string
	service string
	detail  string
	price   string

	parsed time.Time
	ok     bool
}

// WriteCSV consolidates the accepted records into output/<timestamp>.csv
// and returns the path written. With no records it writes nothing and
// returns an empty path. Rows are sorted ascending by date; records whose
// date does not parse sort after all parseable ones, ordered by raw
// string, and keep their raw date text.
func WriteCSV(outputDir string, records []scanning.ReceiptData) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, time.Now().Format("20060102_150405")+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	for _, r := range buildRows(records) {
		if err := w.Write([]string{r.date, r.service, r.detail, r.price}); err != nil {
			return "", fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}

	return path, nil
}

// buildRows coerces and sorts the records for serialization.
func buildRows(records []scanning.ReceiptData) []row {
	rows := make([]row, 0, len(records))
	for _, rec := range records {
		date := rec.Date
		if len(date) > 10 {
			date = date[:10]
		}

		r := row{
			date:    date,
			service: rec.Service,
			detail:  rec.Detail,
		}
		if rec.Price != nil {
			r.price = strconv.Itoa(*rec.Price)
		}

		if t, err := time.Parse(dateLayout, date); err == nil {
			r.parsed = t
			r.ok = true
			r.date = t.Format(outputLayout)
		} else {
			slog.Warn("Date parse failed, keeping raw value", "date", date, "error", err)
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.ok && b.ok:
			return a.parsed.Before(b.parsed)
		case a.ok != b.ok:
			return a.ok
		default:
			return a.date < b.date
		}
	})

	return rows
}
