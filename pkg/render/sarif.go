package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/auditforge/reportgen/pkg/report"
	"github.com/auditforge/reportgen/pkg/scan"
)

// SARIFRenderer emits a SARIF 2.1.0 artifact for code-scanning
// integrations. Scans carry aggregate counts rather than individual
// findings, so each severity bucket becomes one result with the count
// in its properties.
type SARIFRenderer struct{}

func (r *SARIFRenderer) Format() report.Format {
	return report.FormatSARIF
}

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type sarifResult struct {
	RuleID     string         `json:"ruleId"`
	Level      string         `json:"level"`
	Message    sarifMessage   `json:"message"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

func sarifLevel(level scan.Severity) string {
	switch level {
	case scan.SeverityCritical, scan.SeverityHigh:
		return "error"
	case scan.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func (r *SARIFRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	var results []sarifResult
	for _, level := range scan.Severities() {
		count := doc.Report.Findings.Count(level)
		if count == 0 {
			continue
		}
		results = append(results, sarifResult{
			RuleID: "AF-" + level.String(),
			Level:  sarifLevel(level),
			Message: sarifMessage{
				Text: fmt.Sprintf("%d %s finding(s) in %s", count, level, doc.Scan.ContractName),
			},
			Properties: map[string]any{
				"count":    count,
				"severity": level.String(),
			},
		})
	}
	if results == nil {
		results = []sarifResult{}
	}

	log := sarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: ToolName, Version: ToolVersion}},
			Results: results,
			Properties: map[string]any{
				"reportId":  doc.Report.ID,
				"scanId":    doc.Scan.ID,
				"contract":  doc.Scan.ContractName,
				"address":   doc.Scan.Address,
				"riskScore": doc.Scan.RiskScore,
			},
		}},
	}
	return json.MarshalIndent(log, "", "  ")
}
