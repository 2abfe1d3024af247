package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/condo/backend/internal/domain/billing"
)

// BuildMonthlyReportXLSX renders a monthly report detail as an XLSX
// workbook: a summary sheet plus one sheet each for obligations and
// expenses. The rendered totals are the detail's own figures.
func BuildMonthlyReportXLSX(siteName string, detail *MonthlyReportDetail) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	obligationsSheet := "obligations"
	expensesSheet := "expenses"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(obligationsSheet); err != nil {
		return nil, fmt.Errorf("failed to create obligations sheet: %w", err)
	}
	if _, err := f.NewSheet(expensesSheet); err != nil {
		return nil, fmt.Errorf("failed to create expenses sheet: %w", err)
	}

	_ = f.SetCellValue(summarySheet, "A1", "Monthly Report")
	_ = f.SetCellValue(summarySheet, "A3", "Site")
	_ = f.SetCellValue(summarySheet, "B3", siteName)
	_ = f.SetCellValue(summarySheet, "A4", "Period")
	_ = f.SetCellValue(summarySheet, "B4", fmt.Sprintf("%04d-%02d", detail.Year, detail.Month))
	_ = f.SetCellValue(summarySheet, "A5", "Opening Balance")
	_ = f.SetCellValue(summarySheet, "B5", detail.OpeningBalance.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A6", "Collected")
	_ = f.SetCellValue(summarySheet, "B6", detail.Collected.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A7", "Pending")
	_ = f.SetCellValue(summarySheet, "B7", detail.PendingAmount.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A8", "Expenses")
	_ = f.SetCellValue(summarySheet, "B8", detail.ExpenseTotal.StringFixed(2))
	_ = f.SetCellValue(summarySheet, "A9", "Closing Balance")
	_ = f.SetCellValue(summarySheet, "B9", detail.Balance.StringFixed(2))

	_ = f.SetCellValue(obligationsSheet, "A1", "Apartment")
	_ = f.SetCellValue(obligationsSheet, "B1", "Kind")
	_ = f.SetCellValue(obligationsSheet, "C1", "Amount")
	_ = f.SetCellValue(obligationsSheet, "D1", "Late Fee")
	_ = f.SetCellValue(obligationsSheet, "E1", "Paid")
	_ = f.SetCellValue(obligationsSheet, "F1", "Status")
	_ = f.SetCellValue(obligationsSheet, "G1", "Due Date")
	for i, line := range detail.Obligations {
		row := i + 2
		_ = f.SetCellValue(obligationsSheet, fmt.Sprintf("A%d", row), line.ApartmentLabel)
		_ = f.SetCellValue(obligationsSheet, fmt.Sprintf("B%d", row), line.Kind.String())
		_ = f.SetCellValue(obligationsSheet, fmt.Sprintf("C%d", row), line.Amount.StringFixed(2))
		_ = f.SetCellValue(obligationsSheet, fmt.Sprintf("D%d", row), line.LateFee.StringFixed(2))
		_ = f.SetCellValue(obligationsSheet, fmt.Sprintf("E%d", row), line.PaidToDate.StringFixed(2))
		_ = f.SetCellValue(obligationsSheet, fmt.Sprintf("F%d", row), line.Status.String())
		_ = f.SetCellValue(obligationsSheet, fmt.Sprintf("G%d", row), line.DueDate.Format("2006-01-02"))
	}

	_ = f.SetCellValue(expensesSheet, "A1", "Type")
	_ = f.SetCellValue(expensesSheet, "B1", "Description")
	_ = f.SetCellValue(expensesSheet, "C1", "Amount")
	_ = f.SetCellValue(expensesSheet, "D1", "Date")
	_ = f.SetCellValue(expensesSheet, "E1", "Invoice")
	for i, line := range detail.Expenses {
		row := i + 2
		_ = f.SetCellValue(expensesSheet, fmt.Sprintf("A%d", row), line.TypeName)
		_ = f.SetCellValue(expensesSheet, fmt.Sprintf("B%d", row), line.Description)
		_ = f.SetCellValue(expensesSheet, fmt.Sprintf("C%d", row), line.Amount.StringFixed(2))
		_ = f.SetCellValue(expensesSheet, fmt.Sprintf("D%d", row), line.EffectiveDate.Format("2006-01-02"))
		_ = f.SetCellValue(expensesSheet, fmt.Sprintf("E%d", row), line.InvoiceNumber)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildMonthlyReportPDF renders a monthly report detail as a PDF
func BuildMonthlyReportPDF(siteName string, detail *MonthlyReportDetail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Monthly Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Site: %s", siteName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %04d-%02d", detail.Year, detail.Month))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Opening Balance: %s", detail.OpeningBalance.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Collected: %s", detail.Collected.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Pending: %s", detail.PendingAmount.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Expenses: %s", detail.ExpenseTotal.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Closing Balance: %s", detail.Balance.StringFixed(2)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Apartment", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Paid", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Due", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, line := range detail.Obligations {
		pdf.CellFormat(50, 6, line.ApartmentLabel, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, line.Amount.Add(line.LateFee).StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, line.PaidToDate.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, line.Status.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, line.DueDate.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if len(detail.Expenses) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 6, "Expense Type", "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 6, "Description", "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, "Amount", "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, "Date", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, line := range detail.Expenses {
			pdf.CellFormat(50, 6, line.TypeName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(70, 6, line.Description, "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, line.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, line.EffectiveDate.Format("2006-01-02"), "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildReceiptPDF renders the printable receipt for a payment
func BuildReceiptPDF(siteName, apartmentLabel string, receipt *billing.Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetFont("Arial", "", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Payment Receipt")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Receipt No: %s", receipt.Number()))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", receipt.ReceiptDate.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Site: %s", siteName))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Apartment: %s", apartmentLabel))
	pdf.Ln(6)
	if receipt.Description != "" {
		pdf.Cell(0, 6, fmt.Sprintf("For: %s", receipt.Description))
		pdf.Ln(6)
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Amount: %s", receipt.Amount.StringFixed(2)))
	if receipt.Reversed {
		pdf.Ln(10)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "REVERSED")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt PDF: %w", err)
	}
	return buf.Bytes(), nil
}
