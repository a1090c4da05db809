// Package report renders transactions as a spreadsheet download.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"finance-dashboard/internal/core"
)

// SheetName is the worksheet holding the transaction rows.
const SheetName = "Transactions"

// ContentType is the MIME type of the XLSX output.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"Date", "Name", "Category", "Type", "Amount", "Description"}

var colWidths = map[string]float64{
	"A": 12,
	"B": 30,
	"C": 18,
	"D": 10,
	"E": 12,
	"F": 40,
}

// WriteTransactionsXLSX writes one header row and one row per transaction.
// Amounts are signed: expenses are negative.
func WriteTransactionsXLSX(w io.Writer, rows []core.TransactionWithCategory) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for idx, t := range rows {
		description := ""
		if t.Description != nil {
			description = *t.Description
		}
		values := []any{
			t.Date.Format("2006-01-02"),
			t.Name,
			t.CategoryName,
			string(t.Type),
			t.SignedAmount().InexactFloat64(),
			description,
		}
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", idx+2, err)
		}
	}

	for col, width := range colWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
