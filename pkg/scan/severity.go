package scan

import "strings"

// Severity represents a severity level for scan findings.
type Severity string

const (
	// SeverityCritical - immediate action required, actively exploited
	// or trivially exploitable.
	SeverityCritical Severity = "critical"

	// SeverityHigh - serious vulnerability that should be addressed
	// urgently.
	SeverityHigh Severity = "high"

	// SeverityMedium - moderate risk, address in the normal
	// development cycle.
	SeverityMedium Severity = "medium"

	// SeverityLow - minor issue, address when convenient.
	SeverityLow Severity = "low"

	// SeverityNone - no findings at this level.
	SeverityNone Severity = "none"
)

// Severities returns the bucketed levels in order of priority
// (highest first).
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// String returns the string representation of the severity level.
func (s Severity) String() string {
	return string(s)
}

// Priority returns the numeric priority of the severity level.
// Higher numbers = higher priority.
func (s Severity) Priority() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity normalizes a severity string to a Severity level.
// Unrecognized values map to SeverityNone.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "crit":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium", "moderate", "med":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityNone
	}
}
