// Package export writes the transaction history as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

const (
	SheetName   = "Transactions"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{"Date", "Description", "Amount", "Balance"}

// Transactions builds a workbook with one row per transaction, most recent first.
func Transactions(txs []models.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}
	for i, tx := range txs {
		row := i + 2
		values := []any{tx.Date.Format("2006-01-02"), tx.Description, tx.Amount, tx.Balance}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	f.SetColWidth(SheetName, "A", "A", 12)
	f.SetColWidth(SheetName, "B", "B", 36)
	f.SetColWidth(SheetName, "C", "D", 12)
	return f, nil
}

// WriteTransactions streams the workbook to w.
func WriteTransactions(w io.Writer, txs []models.Transaction) error {
	f, err := Transactions(txs)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
