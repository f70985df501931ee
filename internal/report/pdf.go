// Package report renders monthly financial reports as PDF documents.
package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

// MonthlyReport bundles everything a rendered report needs: the
// reference month, the owner's display name, and the aggregates the
// dashboard computes for that month.
type MonthlyReport struct {
	Window    core.MonthWindow
	OwnerName string
	Summary   core.FinancialSummary
	Breakdown []core.CategoryExpense
	Series    []core.MonthlyPoint
	Recent    []core.Transaction
}

// RenderPDF writes the report as an A4 PDF to w.
func RenderPDF(r MonthlyReport, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Informe financiero %s", r.Window.Label()), true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Informe financiero — %s", r.Window.Label())))
	pdf.Ln(12)

	if r.OwnerName != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, tr(r.OwnerName))
		pdf.Ln(10)
	}

	renderSummary(pdf, tr, r.Summary)
	renderBreakdown(pdf, tr, r.Breakdown)
	renderSeries(pdf, tr, r.Series)
	renderRecent(pdf, tr, r.Recent)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write PDF: %w", err)
	}
	return nil
}

func renderSummary(pdf *fpdf.Fpdf, tr func(string) string, s core.FinancialSummary) {
	sectionTitle(pdf, tr, "Resumen")

	rows := []struct {
		label string
		value string
	}{
		{"Balance total", money(s.TotalBalance)},
		{"Ingresos del mes", money(s.MonthlyIncome)},
		{"Gastos del mes", money(s.MonthlyExpenses)},
		{"Ahorro", money(s.Savings)},
		{"Variación de ingresos", percent(s.IncomeChange)},
		{"Variación de gastos", percent(s.ExpenseChange)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.CellFormat(70, 7, tr(row.label), "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, tr(row.value), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func renderBreakdown(pdf *fpdf.Fpdf, tr func(string) string, breakdown []core.CategoryExpense) {
	sectionTitle(pdf, tr, "Gastos por categoría")

	if len(breakdown) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 7, tr("Sin gastos este mes."))
		pdf.Ln(10)
		return
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, tr("Categoría"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, tr("Importe"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, "%", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, c := range breakdown {
		pdf.CellFormat(70, 7, tr(c.Category), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, tr(money(c.Amount)), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.1f", c.Percentage), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func renderSeries(pdf *fpdf.Fpdf, tr func(string) string, series []core.MonthlyPoint) {
	if len(series) == 0 {
		return
	}
	sectionTitle(pdf, tr, "Evolución mensual")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(30, 7, tr("Mes"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, tr("Ingresos"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, tr("Gastos"), "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, p := range series {
		pdf.CellFormat(30, 7, tr(p.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(money(p.Income)), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, tr(money(p.Expenses)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func renderRecent(pdf *fpdf.Fpdf, tr func(string) string, recent []core.Transaction) {
	if len(recent) == 0 {
		return
	}
	sectionTitle(pdf, tr, "Movimientos recientes")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(25, 7, tr("Fecha"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(65, 7, tr("Descripción"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, tr("Categoría"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, tr("Importe"), "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, t := range recent {
		amount := money(t.Amount)
		if t.Kind == core.KindExpense {
			amount = "-" + amount
		}
		pdf.CellFormat(25, 7, t.Date.Format("2006-01-02"), "", 0, "L", false, 0, "")
		pdf.CellFormat(65, 7, tr(t.Description), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(t.Category), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, tr(amount), "", 1, "R", false, 0, "")
	}
}

func sectionTitle(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 9, tr(title))
	pdf.Ln(10)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2) + " EUR"
}

func percent(v float64) string {
	return fmt.Sprintf("%+.1f %%", v)
}
