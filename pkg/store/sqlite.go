package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/auditforge/reportgen/pkg/errors"
	"github.com/auditforge/reportgen/pkg/report"
	"github.com/auditforge/reportgen/pkg/scan"
)

// SQLiteStore persists report history and usage counters in a local
// SQLite database. Counters live in a single-row usage_stats table and
// move inside the same transaction as the report row, so a crash can
// never leave the list and the stats disagreeing.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	const op = "store.NewSQLiteStore"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.E(op, "create storage directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.E(op, "open database", errors.KindStorage, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.E(op, "set pragma", errors.KindStorage, err)
		}
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, errors.E(op, "init schema", errors.KindStorage, err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		scan_id TEXT NOT NULL,
		format TEXT NOT NULL,
		theme TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		size TEXT NOT NULL DEFAULT '',
		download_count INTEGER NOT NULL DEFAULT 0,
		signed_by TEXT NOT NULL DEFAULT '',
		watermarked INTEGER NOT NULL DEFAULT 0,
		findings_critical INTEGER NOT NULL DEFAULT 0,
		findings_high INTEGER NOT NULL DEFAULT 0,
		findings_medium INTEGER NOT NULL DEFAULT 0,
		findings_low INTEGER NOT NULL DEFAULT 0,
		findings_total INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		fingerprint TEXT NOT NULL DEFAULT '',
		artifact BLOB,
		artifact_encoding TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_scan_id ON reports(scan_id);

	CREATE TABLE IF NOT EXISTS usage_stats (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		total_reports INTEGER NOT NULL DEFAULT 0,
		total_downloads INTEGER NOT NULL DEFAULT 0,
		total_duration_ms INTEGER NOT NULL DEFAULT 0
	);

	INSERT OR IGNORE INTO usage_stats (id) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts the report row and bumps the generation counters in
// one transaction.
func (s *SQLiteStore) Append(ctx context.Context, r *report.GeneratedReport) error {
	const op = "store.Append"
	if err := validateRecord(op, r); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.E(op, "begin transaction", errors.KindStorage, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (
			id, title, scan_id, format, theme, status, created_at, size,
			download_count, signed_by, watermarked,
			findings_critical, findings_high, findings_medium, findings_low, findings_total,
			duration_ms, fingerprint, artifact, artifact_encoding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.ScanID, string(r.Format), string(r.Theme), string(r.Status),
		r.CreatedAt.UnixMilli(), r.Size,
		r.DownloadCount, r.SignedBy, boolToInt(r.Watermarked),
		r.Findings.Critical, r.Findings.High, r.Findings.Medium, r.Findings.Low, r.Findings.Total,
		r.DurationMs, r.Fingerprint, r.Artifact, r.ArtifactEncoding,
	)
	if err != nil {
		return errors.E(op, "insert report", errors.KindStorage, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE usage_stats
		SET total_reports = total_reports + 1,
		    total_duration_ms = total_duration_ms + ?
		WHERE id = 1`, r.DurationMs)
	if err != nil {
		return errors.E(op, "update counters", errors.KindStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return errors.E(op, "commit", errors.KindStorage, err)
	}
	return nil
}

// RecordDownload bumps the per-report and aggregate download counters.
func (s *SQLiteStore) RecordDownload(ctx context.Context, reportID string) error {
	const op = "store.RecordDownload"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.E(op, "begin transaction", errors.KindStorage, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE reports SET download_count = download_count + 1 WHERE id = ?`, reportID)
	if err != nil {
		return errors.E(op, "update report", errors.KindStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.E(op, "rows affected", errors.KindStorage, err)
	}
	if n == 0 {
		return errors.E(op, "report "+reportID+" not found", errors.KindNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE usage_stats SET total_downloads = total_downloads + 1 WHERE id = 1`); err != nil {
		return errors.E(op, "update counters", errors.KindStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return errors.E(op, "commit", errors.KindStorage, err)
	}
	return nil
}

const reportColumns = `id, title, scan_id, format, theme, status, created_at, size,
	download_count, signed_by, watermarked,
	findings_critical, findings_high, findings_medium, findings_low, findings_total,
	duration_ms, fingerprint, artifact, artifact_encoding`

// Get returns the report with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, reportID string) (*report.GeneratedReport, error) {
	const op = "store.Get"
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = ?`, reportID)
	rec, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, errors.E(op, "report "+reportID+" not found", errors.KindNotFound)
	}
	if err != nil {
		return nil, errors.E(op, "query report", errors.KindStorage, err)
	}
	return rec, nil
}

// List returns the history, most recent first.
func (s *SQLiteStore) List(ctx context.Context) ([]*report.GeneratedReport, error) {
	const op = "store.List"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.E(op, "query reports", errors.KindStorage, err)
	}
	defer rows.Close()

	var out []*report.GeneratedReport
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, errors.E(op, "scan row", errors.KindStorage, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.E(op, "iterate rows", errors.KindStorage, err)
	}
	return out, nil
}

// Stats returns the aggregate snapshot.
func (s *SQLiteStore) Stats(ctx context.Context) (UsageStats, error) {
	const op = "store.Stats"

	var stats UsageStats
	var totalDurationMs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT total_reports, total_downloads, total_duration_ms FROM usage_stats WHERE id = 1`).
		Scan(&stats.TotalReports, &stats.TotalDownloads, &totalDurationMs)
	if err != nil {
		return UsageStats{}, errors.E(op, "query counters", errors.KindStorage, err)
	}
	if stats.TotalReports > 0 {
		stats.AverageGenerationTime = time.Duration(totalDurationMs/int64(stats.TotalReports)) * time.Millisecond
	}

	dayStart := startOfDay(s.now()).UnixMilli()
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE created_at >= ?`, dayStart).
		Scan(&stats.ReportsToday)
	if err != nil {
		return UsageStats{}, errors.E(op, "count today", errors.KindStorage, err)
	}
	return stats, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*report.GeneratedReport, error) {
	var (
		rec         report.GeneratedReport
		format      string
		theme       string
		status      string
		createdAtMs int64
		watermarked int
		findings    scan.FindingCounts
	)
	err := row.Scan(
		&rec.ID, &rec.Title, &rec.ScanID, &format, &theme, &status, &createdAtMs, &rec.Size,
		&rec.DownloadCount, &rec.SignedBy, &watermarked,
		&findings.Critical, &findings.High, &findings.Medium, &findings.Low, &findings.Total,
		&rec.DurationMs, &rec.Fingerprint, &rec.Artifact, &rec.ArtifactEncoding,
	)
	if err != nil {
		return nil, err
	}
	rec.Format = report.Format(format)
	rec.Theme = report.Theme(theme)
	rec.Status = report.Status(status)
	rec.CreatedAt = time.UnixMilli(createdAtMs)
	rec.Watermarked = watermarked != 0
	rec.Findings = findings
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLiteStore)(nil)
