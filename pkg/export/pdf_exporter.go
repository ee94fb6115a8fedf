package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Receipt carries the fields printed on a fee payment receipt.
type Receipt struct {
	SchoolName    string
	ReceiptNumber string
	StudentName   string
	ClassName     string
	Term          string
	AcademicYear  string
	Amount        float64
	Method        string
	PaidAt        string
	Balance       float64
}

// PDFExporter renders payment receipts as PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderReceipt creates a single-page receipt document.
func (e *PDFExporter) RenderReceipt(r Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, strings.ToUpper(r.SchoolName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, "Fee Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Receipt No.", r.ReceiptNumber},
		{"Student", r.StudentName},
		{"Class", r.ClassName},
		{"Term", fmt.Sprintf("%s, %s", r.Term, r.AcademicYear)},
		{"Amount Paid", fmt.Sprintf("%.2f", r.Amount)},
		{"Payment Method", r.Method},
		{"Date", r.PaidAt},
	}

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(130, 8, row[1], "1", 1, "", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	balance := r.Balance
	if balance < 0 {
		balance = 0
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Outstanding Balance: %.2f", balance), "", 1, "", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
