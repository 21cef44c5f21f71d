package render

import (
	"context"
	"encoding/json"
	"time"

	"github.com/auditforge/reportgen/pkg/report"
	"github.com/auditforge/reportgen/pkg/scan"
)

// JSONRenderer emits the machine-readable artifact consumed by
// integrations.
type JSONRenderer struct{}

func (r *JSONRenderer) Format() report.Format {
	return report.FormatJSON
}

// jsonDocument is the stable wire shape of the JSON artifact.
type jsonDocument struct {
	Tool        jsonTool           `json:"tool"`
	GeneratedAt time.Time          `json:"generated_at"`
	Report      jsonReport         `json:"report"`
	Scan        jsonScan           `json:"scan"`
	Findings    scan.FindingCounts `json:"findings"`
}

type jsonTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type jsonReport struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Format      string `json:"format"`
	Theme       string `json:"theme"`
	Status      string `json:"status"`
	SignedBy    string `json:"signed_by,omitempty"`
	Watermarked bool   `json:"watermarked"`
}

type jsonScan struct {
	ID           string    `json:"id"`
	ContractName string    `json:"contract_name"`
	Address      string    `json:"address"`
	ScanDate     time.Time `json:"scan_date"`
	RiskScore    float64   `json:"risk_score"`
}

func (r *JSONRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	out := jsonDocument{
		Tool:        jsonTool{Name: ToolName, Version: ToolVersion},
		GeneratedAt: doc.GeneratedAt,
		Report: jsonReport{
			ID:          doc.Report.ID,
			Title:       doc.Report.Title,
			Format:      string(doc.Report.Format),
			Theme:       string(doc.Report.Theme),
			Status:      string(doc.Report.Status),
			SignedBy:    doc.Report.SignedBy,
			Watermarked: doc.Report.Watermarked,
		},
		Scan: jsonScan{
			ID:           doc.Scan.ID,
			ContractName: doc.Scan.ContractName,
			Address:      doc.Scan.Address,
			ScanDate:     doc.Scan.ScanDate,
			RiskScore:    doc.Scan.RiskScore,
		},
		Findings: doc.Report.Findings,
	}
	return json.MarshalIndent(out, "", "  ")
}
