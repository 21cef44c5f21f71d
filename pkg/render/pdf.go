package render

import (
	"bytes"
	"context"
	"fmt"

	gofpdf "github.com/go-pdf/fpdf"

	"github.com/auditforge/reportgen/pkg/report"
	"github.com/auditforge/reportgen/pkg/scan"
)

// PDFRenderer emits the printable artifact handed to clients.
type PDFRenderer struct{}

func (r *PDFRenderer) Format() report.Format {
	return report.FormatPDF
}

// pdfAccents maps each theme to the RGB used for headings and table
// header fills.
var pdfAccents = map[report.Theme][3]int{
	report.ThemeProfessional: {43, 108, 176},
	report.ThemeDark:         {30, 41, 59},
	report.ThemeLight:        {49, 130, 206},
	report.ThemeMinimal:      {0, 0, 0},
}

var pdfSeverityColors = map[scan.Severity][3]int{
	scan.SeverityCritical: {220, 38, 38},
	scan.SeverityHigh:     {234, 88, 12},
	scan.SeverityMedium:   {202, 138, 4},
	scan.SeverityLow:      {22, 163, 74},
}

func (r *PDFRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	accent, ok := pdfAccents[doc.Report.Theme]
	if !ok {
		accent = pdfAccents[report.ThemeProfessional]
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Report.Title, true)
	pdf.SetAuthor(ToolName, true)
	pdf.AddPage()

	if doc.Report.Watermarked {
		addWatermark(pdf)
	}

	// Title.
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.MultiCell(0, 10, doc.Report.Title, "", "L", false)
	pdf.Ln(4)

	// Metadata block.
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(60, 60, 60)
	meta := [][2]string{
		{"Contract", doc.Scan.ContractName},
		{"Address", doc.Scan.Address},
		{"Scan date", doc.Scan.ScanDate.Format("2006-01-02")},
		{"Risk score", fmt.Sprintf("%.1f / 10", doc.Scan.RiskScore)},
		{"Generated", doc.GeneratedAt.Format("2006-01-02 15:04 MST")},
	}
	for _, row := range meta {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Findings table.
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.CellFormat(0, 8, "Findings", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(accent[0], accent[1], accent[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(60, 8, "Severity", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Count", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, level := range scan.Severities() {
		color := pdfSeverityColors[level]
		pdf.SetTextColor(color[0], color[1], color[2])
		pdf.CellFormat(60, 7, capitalize(level.String()), "1", 0, "L", false, 0, "")
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", doc.Report.Findings.Count(level)), "1", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(60, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, fmt.Sprintf("%d", doc.Report.Findings.Total), "1", 1, "C", false, 0, "")

	// Signature block.
	if doc.Report.Signed() {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(80, 80, 80)
		pdf.CellFormat(0, 7, fmt.Sprintf("Signed by %s", doc.Report.SignedBy), "T", 1, "L", false, 0, "")
	}

	// Footer.
	pdf.SetY(-20)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 5, fmt.Sprintf("%s v%s", ToolName, ToolVersion), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// addWatermark draws a rotated CONFIDENTIAL banner behind the content.
func addWatermark(pdf *gofpdf.Fpdf) {
	pageW, pageH := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "B", 60)
	pdf.SetTextColor(235, 235, 235)
	pdf.TransformBegin()
	pdf.TransformRotate(45, pageW/2, pageH/2)
	pdf.Text(pageW/2-65, pageH/2, "CONFIDENTIAL")
	pdf.TransformEnd()
}
