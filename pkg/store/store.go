// Package store holds generated report records and the aggregate
// usage statistics derived from them. The report list is append-only
// and most-recent-first; counters move in the same commit as the
// record they describe so the list and the stats can never disagree.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/auditforge/reportgen/pkg/errors"
	"github.com/auditforge/reportgen/pkg/report"
)

// UsageStats is the aggregate counter snapshot shown on the dashboard.
type UsageStats struct {
	// TotalReports counts every report ever appended. Monotonic.
	TotalReports int `json:"total_reports"`

	// ReportsToday counts reports created within the current day.
	ReportsToday int `json:"reports_today"`

	// AverageGenerationTime is the mean generation duration across
	// all reports.
	AverageGenerationTime time.Duration `json:"average_generation_time"`

	// TotalDownloads is the sum of DownloadCount across all reports.
	TotalDownloads int `json:"total_downloads"`
}

// Store is the report history and stats collection. Implementations
// must keep Append and the counter increments atomic with respect to
// concurrent readers.
type Store interface {
	// Append inserts a report at the head of the history and bumps
	// the generation counters in the same commit.
	Append(ctx context.Context, r *report.GeneratedReport) error

	// RecordDownload increments the report's download counter and
	// the aggregate total. Unknown IDs return a not found error and
	// leave every counter untouched.
	RecordDownload(ctx context.Context, reportID string) error

	// Get returns the report with the given ID.
	Get(ctx context.Context, reportID string) (*report.GeneratedReport, error)

	// List returns the history, most recent first.
	List(ctx context.Context) ([]*report.GeneratedReport, error)

	// Stats returns the current aggregate snapshot.
	Stats(ctx context.Context) (UsageStats, error)

	// Close releases underlying resources.
	Close() error
}

// MemoryStore is the in-memory Store used for single-session state
// and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	closed  bool
	history []*report.GeneratedReport
	byID    map[string]*report.GeneratedReport

	totalReports    int
	totalDownloads  int
	totalDurationMs int64

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*report.GeneratedReport),
		now:  time.Now,
	}
}

// Append inserts at the head of the history.
func (s *MemoryStore) Append(ctx context.Context, r *report.GeneratedReport) error {
	const op = "store.Append"
	if err := validateRecord(op, r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	if _, dup := s.byID[r.ID]; dup {
		return errors.E(op, "duplicate report ID "+r.ID, errors.KindValidation)
	}

	// Keep an owned copy so the caller can't mutate history.
	rec := cloneReport(r)
	s.history = append([]*report.GeneratedReport{rec}, s.history...)
	s.byID[rec.ID] = rec
	s.totalReports++
	s.totalDurationMs += rec.DurationMs
	return nil
}

// RecordDownload increments the per-report and aggregate counters.
func (s *MemoryStore) RecordDownload(ctx context.Context, reportID string) error {
	const op = "store.RecordDownload"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	rec, ok := s.byID[reportID]
	if !ok {
		return errors.E(op, "report "+reportID+" not found", errors.KindNotFound)
	}
	rec.DownloadCount++
	s.totalDownloads++
	return nil
}

// Get returns a copy of the report with the given ID.
func (s *MemoryStore) Get(ctx context.Context, reportID string) (*report.GeneratedReport, error) {
	const op = "store.Get"
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.ErrStoreClosed
	}
	rec, ok := s.byID[reportID]
	if !ok {
		return nil, errors.E(op, "report "+reportID+" not found", errors.KindNotFound)
	}
	return cloneReport(rec), nil
}

// List returns the history, most recent first.
func (s *MemoryStore) List(ctx context.Context) ([]*report.GeneratedReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.ErrStoreClosed
	}
	out := make([]*report.GeneratedReport, len(s.history))
	for i, rec := range s.history {
		out[i] = cloneReport(rec)
	}
	return out, nil
}

// Stats returns the aggregate snapshot.
func (s *MemoryStore) Stats(ctx context.Context) (UsageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return UsageStats{}, errors.ErrStoreClosed
	}

	stats := UsageStats{
		TotalReports:   s.totalReports,
		TotalDownloads: s.totalDownloads,
	}
	if s.totalReports > 0 {
		stats.AverageGenerationTime = time.Duration(s.totalDurationMs/int64(s.totalReports)) * time.Millisecond
	}

	dayStart := startOfDay(s.now())
	for _, rec := range s.history {
		if !rec.CreatedAt.Before(dayStart) {
			stats.ReportsToday++
		}
	}
	return stats, nil
}

// Close marks the store closed; further operations fail.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func validateRecord(op string, r *report.GeneratedReport) error {
	if r == nil {
		return errors.E(op, "nil report", errors.KindValidation)
	}
	if r.ID == "" {
		return errors.E(op, "report ID is empty", errors.KindValidation)
	}
	if !r.Status.Terminal() {
		return errors.E(op, "report "+r.ID+" has non-terminal status "+string(r.Status), errors.KindValidation)
	}
	if r.CreatedAt.IsZero() {
		return errors.E(op, "report "+r.ID+" has zero creation time", errors.KindValidation)
	}
	return nil
}

func cloneReport(r *report.GeneratedReport) *report.GeneratedReport {
	out := *r
	if r.Artifact != nil {
		out.Artifact = make([]byte, len(r.Artifact))
		copy(out.Artifact, r.Artifact)
	}
	return &out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var _ Store = (*MemoryStore)(nil)
