// Package scan defines the scan catalog boundary of the report
// workflow: completed smart-contract security scans with categorized
// finding counts and a risk score. Scans are produced elsewhere and
// are read-only inputs here.
package scan

import (
	"fmt"
	"time"

	"github.com/auditforge/reportgen/pkg/errors"
)

// Status represents the state of a security scan.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// FindingCounts holds the categorized vulnerability counts of a scan.
// Total is always the sum of the four buckets.
type FindingCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// Sum returns the sum of the four severity buckets.
func (f FindingCounts) Sum() int {
	return f.Critical + f.High + f.Medium + f.Low
}

// Consistent reports whether Total matches the bucket sum and no
// bucket is negative.
func (f FindingCounts) Consistent() bool {
	if f.Critical < 0 || f.High < 0 || f.Medium < 0 || f.Low < 0 {
		return false
	}
	return f.Total == f.Sum()
}

// Count returns the bucket for the given severity level. Info and
// unknown levels have no bucket and return 0.
func (f FindingCounts) Count(level Severity) int {
	switch level {
	case SeverityCritical:
		return f.Critical
	case SeverityHigh:
		return f.High
	case SeverityMedium:
		return f.Medium
	case SeverityLow:
		return f.Low
	default:
		return 0
	}
}

// Highest returns the most severe level with a non-zero bucket, or
// SeverityNone when the scan is clean.
func (f FindingCounts) Highest() Severity {
	switch {
	case f.Critical > 0:
		return SeverityCritical
	case f.High > 0:
		return SeverityHigh
	case f.Medium > 0:
		return SeverityMedium
	case f.Low > 0:
		return SeverityLow
	default:
		return SeverityNone
	}
}

// Result represents one completed security scan of a smart contract.
// Results are immutable once created; report generation copies the
// finding counts by value so later catalog changes never leak into
// generated reports.
type Result struct {
	// ID is the unique scan identifier, e.g. "SCAN_2024_001".
	ID string `json:"id"`

	// ContractName is the audited contract's display name.
	ContractName string `json:"contract_name"`

	// Address is the on-chain address of the contract.
	Address string `json:"address"`

	// ScanDate is when the scan ran.
	ScanDate time.Time `json:"scan_date"`

	// Status is the scan state. Only completed scans are eligible
	// for report generation.
	Status Status `json:"status"`

	// Findings holds the categorized finding counts.
	Findings FindingCounts `json:"findings"`

	// RiskScore is the aggregate risk on a 0-10 scale.
	RiskScore float64 `json:"risk_score"`
}

// Validate checks the structural invariants of a scan result.
func (r *Result) Validate() error {
	const op = "scan.Validate"
	if r.ID == "" {
		return errors.E(op, "scan ID is empty", errors.KindValidation)
	}
	if r.ContractName == "" {
		return errors.E(op, fmt.Sprintf("scan %s: contract name is empty", r.ID), errors.KindValidation)
	}
	switch r.Status {
	case StatusCompleted, StatusPending, StatusFailed:
	default:
		return errors.E(op, fmt.Sprintf("scan %s: unknown status %q", r.ID, r.Status), errors.KindValidation)
	}
	if !r.Findings.Consistent() {
		return errors.E(op, fmt.Sprintf("scan %s: findings total %d does not match bucket sum %d",
			r.ID, r.Findings.Total, r.Findings.Sum()), errors.KindValidation)
	}
	if r.RiskScore < 0 || r.RiskScore > 10 {
		return errors.E(op, fmt.Sprintf("scan %s: risk score %.2f out of range [0,10]", r.ID, r.RiskScore), errors.KindValidation)
	}
	return nil
}
