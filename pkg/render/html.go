package render

import (
	"bytes"
	"context"
	"html/template"

	"github.com/auditforge/reportgen/pkg/report"
)

// HTMLRenderer emits the self-contained HTML artifact. Theme selection
// maps to an inline CSS palette so the file renders without external
// assets.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer creates the renderer with the built-in template.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{tmpl: template.Must(template.New("report").Parse(htmlTemplate))}
}

func (r *HTMLRenderer) Format() report.Format {
	return report.FormatHTML
}

// palette holds the per-theme colors injected into the template.
type palette struct {
	Background string
	Text       string
	Accent     string
	Border     string
}

var palettes = map[report.Theme]palette{
	report.ThemeProfessional: {"#ffffff", "#1a202c", "#2b6cb0", "#e2e8f0"},
	report.ThemeDark:         {"#1a202c", "#edf2f7", "#63b3ed", "#2d3748"},
	report.ThemeLight:        {"#f7fafc", "#2d3748", "#3182ce", "#cbd5e0"},
	report.ThemeMinimal:      {"#ffffff", "#000000", "#000000", "#dddddd"},
}

type htmlRow struct {
	Severity string
	Count    int
}

type htmlData struct {
	Doc         *Document
	Palette     palette
	Rows        []htmlRow
	ToolName    string
	ToolVersion string
}

func (r *HTMLRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	pal, ok := palettes[doc.Report.Theme]
	if !ok {
		pal = palettes[report.ThemeProfessional]
	}

	data := htmlData{
		Doc:     doc,
		Palette: pal,
		Rows: []htmlRow{
			{"Critical", doc.Report.Findings.Critical},
			{"High", doc.Report.Findings.High},
			{"Medium", doc.Report.Findings.Medium},
			{"Low", doc.Report.Findings.Low},
		},
		ToolName:    ToolName,
		ToolVersion: ToolVersion,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Doc.Report.Title}}</title>
<style>
body { font-family: -apple-system, 'Segoe UI', sans-serif; margin: 2rem auto; max-width: 54rem;
       background: {{.Palette.Background}}; color: {{.Palette.Text}}; }
h1 { color: {{.Palette.Accent}}; border-bottom: 2px solid {{.Palette.Border}}; padding-bottom: .5rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid {{.Palette.Border}}; padding: .5rem .75rem; text-align: left; }
th { background: {{.Palette.Border}}; }
.meta td:first-child { font-weight: 600; width: 12rem; }
.watermark { position: fixed; top: 40%; left: 10%; font-size: 5rem; opacity: .08;
             transform: rotate(-25deg); pointer-events: none; }
.signature { margin-top: 2rem; padding-top: 1rem; border-top: 1px solid {{.Palette.Border}};
             font-style: italic; }
footer { margin-top: 3rem; font-size: .8rem; opacity: .6; }
</style>
</head>
<body>
{{if .Doc.Report.Watermarked}}<div class="watermark">CONFIDENTIAL</div>{{end}}
<h1>{{.Doc.Report.Title}}</h1>
<table class="meta">
<tr><td>Contract</td><td>{{.Doc.Scan.ContractName}}</td></tr>
<tr><td>Address</td><td><code>{{.Doc.Scan.Address}}</code></td></tr>
<tr><td>Scan date</td><td>{{.Doc.Scan.ScanDate.Format "2006-01-02"}}</td></tr>
<tr><td>Risk score</td><td>{{printf "%.1f" .Doc.Scan.RiskScore}} / 10</td></tr>
<tr><td>Generated</td><td>{{.Doc.GeneratedAt.Format "2006-01-02 15:04 MST"}}</td></tr>
</table>
<h2>Findings</h2>
<table>
<tr><th>Severity</th><th>Count</th></tr>
{{range .Rows}}<tr><td>{{.Severity}}</td><td>{{.Count}}</td></tr>
{{end}}<tr><th>Total</th><th>{{.Doc.Report.Findings.Total}}</th></tr>
</table>
{{if .Doc.Report.SignedBy}}<div class="signature">Signed by {{.Doc.Report.SignedBy}}</div>{{end}}
<footer>{{.ToolName}} v{{.ToolVersion}}</footer>
</body>
</html>
`
