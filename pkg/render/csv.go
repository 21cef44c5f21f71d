package render

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"github.com/auditforge/reportgen/pkg/report"
	"github.com/auditforge/reportgen/pkg/scan"
)

// CSVRenderer emits a flat severity breakdown for spreadsheet import.
type CSVRenderer struct{}

func (r *CSVRenderer) Format() report.Format {
	return report.FormatCSV
}

func (r *CSVRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"report_id", "contract", "address", "severity", "count", "risk_score"},
	}
	for _, level := range scan.Severities() {
		records = append(records, []string{
			doc.Report.ID,
			doc.Scan.ContractName,
			doc.Scan.Address,
			level.String(),
			strconv.Itoa(doc.Report.Findings.Count(level)),
			strconv.FormatFloat(doc.Scan.RiskScore, 'f', 1, 64),
		})
	}
	records = append(records, []string{
		doc.Report.ID,
		doc.Scan.ContractName,
		doc.Scan.Address,
		"total",
		strconv.Itoa(doc.Report.Findings.Total),
		strconv.FormatFloat(doc.Scan.RiskScore, 'f', 1, 64),
	})

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
