package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"panini/internal/core"
)

const (
	TransactionsSheet = "Transactions"
	PaymentsSheet     = "Payments"
)

var (
	transactionHeaders = []string{"Fecha", "Descripción", "Miembro", "Categoría", "Tipo", "Monto", "Cuotas", "Pagadas", "Notas"}
	paymentHeaders     = []string{"Fecha", "Descripción", "De", "Para", "Panini", "Monto", "Notas"}
)

// WriteXLSX renders the ledger as a workbook with one sheet per entity and
// writes it to w. Amounts are numeric cells in currency units.
func WriteXLSX(w io.Writer, transactions []core.TransactionDetail, payments []core.PaymentDetail) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet is renamed so the workbook has no empty "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), TransactionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(PaymentsSheet); err != nil {
		return fmt.Errorf("create payments sheet: %w", err)
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("money style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeRow(f, TransactionsSheet, 1, toCells(transactionHeaders)); err != nil {
		return err
	}
	for i, t := range transactions {
		row := []any{
			t.Date.String(),
			t.Description,
			t.UserName,
			t.CategoryName,
			string(t.Kind()),
			amount(t.Amount),
			t.Installments,
			t.Paid,
			t.Notes,
		}
		if err := writeRow(f, TransactionsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, PaymentsSheet, 1, toCells(paymentHeaders)); err != nil {
		return err
	}
	for i, p := range payments {
		row := []any{
			core.DateOf(p.CreatedAt).String(),
			p.Description,
			p.SenderName,
			p.ReceiverName,
			p.Panini,
			amount(p.Amount),
			p.Notes,
		}
		if err := writeRow(f, PaymentsSheet, i+2, row); err != nil {
			return err
		}
	}

	styles := []struct {
		sheet  string
		col    string
		header string
		rows   int
	}{
		{TransactionsSheet, "F", "I1", len(transactions)},
		{PaymentsSheet, "F", "G1", len(payments)},
	}
	for _, s := range styles {
		if err := f.SetCellStyle(s.sheet, "A1", s.header, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		if s.rows == 0 {
			continue
		}
		first, last := fmt.Sprintf("%s2", s.col), fmt.Sprintf("%s%d", s.col, s.rows+1)
		if err := f.SetCellStyle(s.sheet, first, last, moneyStyle); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(headers []string) []any {
	out := make([]any, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}

func amount(m core.Money) float64 {
	f, _ := m.Decimal().Float64()
	return f
}
