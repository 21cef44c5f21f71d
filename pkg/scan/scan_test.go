package scan

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/auditforge/reportgen/pkg/errors"
)

func validScan(id string) Result {
	return Result{
		ID:           id,
		ContractName: "TokenVault",
		Address:      "0x742d35cc6634c0532925a3b844bc9e7595f0beb1",
		ScanDate:     time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
		Status:       StatusCompleted,
		Findings:     FindingCounts{Critical: 2, High: 5, Medium: 12, Low: 8, Total: 27},
		RiskScore:    7.8,
	}
}

func TestFindingCountsConsistent(t *testing.T) {
	tests := []struct {
		name string
		f    FindingCounts
		want bool
	}{
		{"matching total", FindingCounts{Critical: 2, High: 5, Medium: 12, Low: 8, Total: 27}, true},
		{"zero findings", FindingCounts{}, true},
		{"total mismatch", FindingCounts{Critical: 1, Total: 2}, false},
		{"negative bucket", FindingCounts{Critical: -1, Total: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Consistent(); got != tt.want {
				t.Errorf("Consistent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindingCountsHighest(t *testing.T) {
	tests := []struct {
		name string
		f    FindingCounts
		want Severity
	}{
		{"critical dominates", FindingCounts{Critical: 1, Low: 9, Total: 10}, SeverityCritical},
		{"high without critical", FindingCounts{High: 2, Medium: 1, Total: 3}, SeverityHigh},
		{"low only", FindingCounts{Low: 4, Total: 4}, SeverityLow},
		{"clean scan", FindingCounts{}, SeverityNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Highest(); got != tt.want {
				t.Errorf("Highest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResultValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Result)
		wantOK bool
	}{
		{"valid", func(r *Result) {}, true},
		{"empty id", func(r *Result) { r.ID = "" }, false},
		{"empty contract name", func(r *Result) { r.ContractName = "" }, false},
		{"unknown status", func(r *Result) { r.Status = "archived" }, false},
		{"inconsistent findings", func(r *Result) { r.Findings.Total = 99 }, false},
		{"risk score too high", func(r *Result) { r.RiskScore = 10.5 }, false},
		{"negative risk score", func(r *Result) { r.RiskScore = -0.1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validScan("SCAN_2024_001")
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if !tt.wantOK {
				if err == nil {
					t.Fatal("Validate() = nil, want validation error")
				}
				if !errors.IsValidation(err) {
					t.Errorf("Validate() kind = %v, want validation", errors.GetKind(err))
				}
			}
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"critical", SeverityCritical},
		{"CRITICAL", SeverityCritical},
		{"High ", SeverityHigh},
		{"moderate", SeverityMedium},
		{"low", SeverityLow},
		{"informational", SeverityNone},
		{"", SeverityNone},
	}

	for _, tt := range tests {
		if got := ParseSeverity(tt.in); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSeverityPriorityOrdering(t *testing.T) {
	levels := Severities()
	for i := 1; i < len(levels); i++ {
		if levels[i-1].Priority() <= levels[i].Priority() {
			t.Errorf("Severities() not ordered by priority at %d: %v <= %v",
				i, levels[i-1], levels[i])
		}
	}
}

func TestStaticCatalog(t *testing.T) {
	older := validScan("SCAN_2024_001")
	newer := validScan("SCAN_2024_002")
	newer.ContractName = "BridgeRouter"
	newer.ScanDate = older.ScanDate.Add(48 * time.Hour)

	cat, err := NewStaticCatalog([]Result{older, newer})
	if err != nil {
		t.Fatalf("NewStaticCatalog() error = %v", err)
	}

	t.Run("ListScans most recent first", func(t *testing.T) {
		scans, err := cat.ListScans(context.Background())
		if err != nil {
			t.Fatalf("ListScans() error = %v", err)
		}
		if len(scans) != 2 {
			t.Fatalf("ListScans() returned %d scans, want 2", len(scans))
		}
		if scans[0].ID != "SCAN_2024_002" {
			t.Errorf("first scan = %s, want SCAN_2024_002", scans[0].ID)
		}
	})

	t.Run("GetScan returns a copy", func(t *testing.T) {
		got, err := cat.GetScan(context.Background(), "SCAN_2024_001")
		if err != nil {
			t.Fatalf("GetScan() error = %v", err)
		}
		got.Findings.Critical = 999
		again, _ := cat.GetScan(context.Background(), "SCAN_2024_001")
		if again.Findings.Critical != 2 {
			t.Error("mutating a returned scan leaked into the catalog")
		}
	})

	t.Run("GetScan unknown id", func(t *testing.T) {
		_, err := cat.GetScan(context.Background(), "UNKNOWN")
		if !errors.IsNotFound(err) {
			t.Errorf("GetScan(UNKNOWN) error = %v, want not found", err)
		}
	})

	t.Run("GetScan empty id", func(t *testing.T) {
		_, err := cat.GetScan(context.Background(), "")
		if !errors.IsValidation(err) {
			t.Errorf("GetScan(\"\") error = %v, want validation", err)
		}
	})
}

func TestStaticCatalogRejectsBadFixtures(t *testing.T) {
	bad := validScan("SCAN_2024_001")
	bad.Findings.Total = 1

	if _, err := NewStaticCatalog([]Result{bad}); !errors.IsValidation(err) {
		t.Errorf("NewStaticCatalog(inconsistent) error = %v, want validation", err)
	}

	a := validScan("SCAN_2024_001")
	b := validScan("SCAN_2024_001")
	if _, err := NewStaticCatalog([]Result{a, b}); !errors.IsValidation(err) {
		t.Errorf("NewStaticCatalog(duplicate) error = %v, want validation", err)
	}
}

func TestFileCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scans.json")

	scans := []Result{validScan("SCAN_2024_001")}
	data, err := json.Marshal(scans)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cat, err := NewFileCatalog(path)
	if err != nil {
		t.Fatalf("NewFileCatalog() error = %v", err)
	}
	got, err := cat.GetScan(context.Background(), "SCAN_2024_001")
	if err != nil {
		t.Fatalf("GetScan() error = %v", err)
	}
	if got.Findings.Total != 27 {
		t.Errorf("Findings.Total = %d, want 27", got.Findings.Total)
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := NewFileCatalog(filepath.Join(dir, "absent.json")); err == nil {
			t.Error("NewFileCatalog(absent) = nil error, want error")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		badPath := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(badPath, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFileCatalog(badPath); !errors.IsValidation(err) {
			t.Errorf("NewFileCatalog(malformed) error = %v, want validation", err)
		}
	})
}
