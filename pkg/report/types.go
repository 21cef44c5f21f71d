// Package report implements the report generation workflow: a
// configurator holding the user's selection, a generator that drives
// the staged progress sequence, and the record type it materializes.
package report

import (
	"strings"
	"time"

	"github.com/auditforge/reportgen/pkg/scan"
)

// Format is the output format of a generated report.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatSARIF    Format = "sarif"
	FormatMarkdown Format = "markdown"
)

// Formats returns all supported output formats.
func Formats() []Format {
	return []Format{FormatPDF, FormatHTML, FormatJSON, FormatCSV, FormatSARIF, FormatMarkdown}
}

// Valid reports whether the format is a member of the supported set.
// Passing an unlisted format to the generator is a programming error,
// not a runtime-recoverable condition.
func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatHTML, FormatJSON, FormatCSV, FormatSARIF, FormatMarkdown:
		return true
	}
	return false
}

// ParseFormat normalizes a format string. Returns false for unknown values.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	return f, f.Valid()
}

// Theme is the visual theme of a generated report.
type Theme string

const (
	ThemeProfessional Theme = "professional"
	ThemeDark         Theme = "dark"
	ThemeLight        Theme = "light"
	ThemeMinimal      Theme = "minimal"
)

// Themes returns all supported themes.
func Themes() []Theme {
	return []Theme{ThemeProfessional, ThemeDark, ThemeLight, ThemeMinimal}
}

// Valid reports whether the theme is a member of the supported set.
func (t Theme) Valid() bool {
	switch t {
	case ThemeProfessional, ThemeDark, ThemeLight, ThemeMinimal:
		return true
	}
	return false
}

// ParseTheme normalizes a theme string. Returns false for unknown values.
func ParseTheme(s string) (Theme, bool) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Status represents the lifecycle state of a generated report.
// Completed, failed and signed are terminal. Signed is reachable only
// when the signature flag was set at completion time; there is no
// post-creation completed-to-signed transition.
type Status string

const (
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSigned     Status = "signed"
)

// Terminal reports whether the status is a terminal state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusSigned:
		return true
	}
	return false
}

// Config is the transient per-request configuration, rebuilt for each
// generation.
type Config struct {
	// ScanID references a scan in the catalog. Empty means nothing
	// is selected and generation must not start.
	ScanID string `json:"scan_id" yaml:"scan_id"`

	// Format is the output format.
	Format Format `json:"format" yaml:"format"`

	// Theme is the visual theme.
	Theme Theme `json:"theme" yaml:"theme"`

	// IncludeSignature requests a cryptographic signature block;
	// the resulting report commits in the signed state.
	IncludeSignature bool `json:"include_signature" yaml:"include_signature"`

	// IncludeWatermark stamps a watermark on every rendered page.
	IncludeWatermark bool `json:"include_watermark" yaml:"include_watermark"`
}

// GeneratedReport is the record materialized when a generation reaches
// 100%. Findings are copied from the source scan at creation time and
// never change afterwards, even if the catalog entry is later replaced.
type GeneratedReport struct {
	// ID is the unique report identifier (uuid).
	ID string `json:"id"`

	// Title is derived from the scan's contract name.
	Title string `json:"title"`

	// ScanID references the source scan.
	ScanID string `json:"scan_id"`

	Format Format `json:"format"`
	Theme  Theme  `json:"theme"`
	Status Status `json:"status"`

	// CreatedAt is the commit time of the record.
	CreatedAt time.Time `json:"created_at"`

	// Size is a display string like "2.4 MB"; cosmetic only.
	Size string `json:"size"`

	// DownloadCount is monotonically non-decreasing.
	DownloadCount int `json:"download_count"`

	// SignedBy is present iff Status == signed.
	SignedBy string `json:"signed_by,omitempty"`

	// Watermarked records whether the watermark flag was set.
	Watermarked bool `json:"watermarked"`

	// Findings is the point-in-time copy of the scan's counts.
	Findings scan.FindingCounts `json:"findings"`

	// DurationMs is the generation duration shown in usage stats.
	DurationMs int64 `json:"duration_ms"`

	// Fingerprint is the sha256 of the rendered artifact, when one
	// was rendered.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Artifact holds the rendered (optionally compressed) bytes.
	// Nil when generation ran without a renderer.
	Artifact []byte `json:"-"`

	// ArtifactEncoding is "" (plain), "gzip" or "zstd".
	ArtifactEncoding string `json:"artifact_encoding,omitempty"`
}

// Signed reports whether the report committed with a signature.
func (r *GeneratedReport) Signed() bool {
	return r.Status == StatusSigned
}
