package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"receiptbatch/internal/scanning"
)

const sheetName = "Receipts"

// WriteXLSX writes the same rows as WriteCSV into an XLSX workbook and
// returns the path written. Prices become numeric cells; a missing price
// leaves the cell empty. With no records it writes nothing.
func WriteXLSX(outputDir string, records []scanning.ReceiptData) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("naming sheet: %w", err)
	}

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return "", fmt.Errorf("writing header: %w", err)
		}
	}

	for i, r := range buildRows(records) {
		values := []any{r.date, r.service, r.detail, nil}
		if r.price != "" {
			price, err := strconv.Atoi(r.price)
			if err == nil {
				values[3] = price
			}
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return "", fmt.Errorf("writing cell %s: %w", cell, err)
			}
		}
	}

	path := filepath.Join(outputDir, time.Now().Format("20060102_150405")+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}
	return path, nil
}
