package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/auditforge/reportgen/pkg/report"
	"github.com/auditforge/reportgen/pkg/scan"
)

// MarkdownRenderer emits the artifact used in pull requests and wikis.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Format() report.Format {
	return report.FormatMarkdown
}

func (r *MarkdownRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Report.Title)
	if doc.Report.Watermarked {
		fmt.Fprintf(&b, "> *Generated by %s. Confidential.*\n\n", ToolName)
	}

	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Contract | %s |\n", doc.Scan.ContractName)
	fmt.Fprintf(&b, "| Address | `%s` |\n", doc.Scan.Address)
	fmt.Fprintf(&b, "| Scan date | %s |\n", doc.Scan.ScanDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "| Risk score | %.1f / 10 |\n", doc.Scan.RiskScore)
	fmt.Fprintf(&b, "| Generated | %s |\n\n", doc.GeneratedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Findings\n\n")
	b.WriteString("| Severity | Count |\n|---|---:|\n")
	for _, level := range scan.Severities() {
		fmt.Fprintf(&b, "| %s | %d |\n", capitalize(level.String()), doc.Report.Findings.Count(level))
	}
	fmt.Fprintf(&b, "| **Total** | **%d** |\n\n", doc.Report.Findings.Total)

	if doc.Report.Signed() {
		fmt.Fprintf(&b, "---\n\nSigned by %s\n", doc.Report.SignedBy)
	}

	return []byte(b.String()), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
