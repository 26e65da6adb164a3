package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders report documents (easy to mock in tests).
type Generator interface {
	GenerateSalesReport(data SalesReportData, w io.Writer) error
}

// ReportGenerator is the gofpdf-backed implementation.
type ReportGenerator struct {
	fontName string
}

type SalesReportData struct {
	GeneratedAt         time.Time
	GeneratedBy         string
	LeadsByStatus       map[string]int
	DealsByStatus       map[string]int
	TotalApprovedAmount float64
	Deals               []ReportDealRow
}

type ReportDealRow struct {
	ID          int
	Title       string
	Status      string
	TotalAmount float64
	CreatedAt   time.Time
}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{fontName: "Helvetica"}
}

func (g *ReportGenerator) GenerateSalesReport(data SalesReportData, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sales Report", false)
	pdf.SetAuthor("ISP CRM", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	pdf.AddPage()

	// ===== Header
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "SALES REPORT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("Generated %s by %s",
		data.GeneratedAt.Format("02.01.2006 15:04"),
		data.GeneratedBy,
	)
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	pdf.Ln(3)

	// ===== Pipeline summary
	g.sectionTitle(pdf, "Lead pipeline")
	for _, status := range []string{"NEW", "CONTACTED", "QUALIFIED", "CONVERTED", "LOST"} {
		g.kvLine(pdf, status, fmt.Sprintf("%d", data.LeadsByStatus[status]))
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Deals")
	for _, status := range []string{"DRAFT", "WAITING_APPROVAL", "APPROVED", "REJECTED"} {
		g.kvLine(pdf, status, fmt.Sprintf("%d", data.DealsByStatus[status]))
	}
	g.kvLine(pdf, "Approved revenue", fmt.Sprintf("%.2f", data.TotalApprovedAmount))
	pdf.Ln(2)
	g.hr(pdf)

	// ===== Deal table
	g.sectionTitle(pdf, "Recent deals")
	g.dealTable(pdf, data.Deals)

	return pdf.Output(w)
}

func (g *ReportGenerator) dealTable(pdf *gofpdf.Fpdf, rows []ReportDealRow) {
	pdf.SetFont(g.fontName, "B", 10)
	pdf.CellFormat(15, 7, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(75, 7, "Title", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont(g.fontName, "", 10)
	for _, row := range rows {
		title := row.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", row.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(75, 6, title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, row.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", row.TotalAmount), "1", 1, "R", false, 0, "")
	}
	if len(rows) == 0 {
		pdf.CellFormat(170, 6, "No deals in the selected period", "1", 1, "C", false, 0, "")
	}
}

// === helpers ===

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(55, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
