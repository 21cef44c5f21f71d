package report_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/auditforge/reportgen/pkg/audit"
	"github.com/auditforge/reportgen/pkg/core"
	"github.com/auditforge/reportgen/pkg/errors"
	"github.com/auditforge/reportgen/pkg/metrics"
	"github.com/auditforge/reportgen/pkg/placeholder"
	"github.com/auditforge/reportgen/pkg/render"
	"github.com/auditforge/reportgen/pkg/report"
	"github.com/auditforge/reportgen/pkg/scan"
	"github.com/auditforge/reportgen/pkg/store"
)

func testCatalog(t *testing.T) *scan.StaticCatalog {
	t.Helper()
	catalog, err := scan.NewStaticCatalog([]scan.Result{
		{
			ID:           "SCAN_2024_001",
			ContractName: "VaultGuard Token",
			Address:      "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1",
			ScanDate:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Status:       scan.StatusCompleted,
			Findings:     scan.FindingCounts{Critical: 2, High: 5, Medium: 12, Low: 8, Total: 27},
			RiskScore:    7.8,
		},
		{
			ID:           "SCAN_2024_002",
			ContractName: "LiquidSwap Pool",
			Address:      "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984",
			ScanDate:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Status:       scan.StatusPending,
			RiskScore:    0,
		},
	})
	if err != nil {
		t.Fatalf("NewStaticCatalog: %v", err)
	}
	return catalog
}

type generatorHarness struct {
	gen       *report.Generator
	store     *store.MemoryStore
	clock     *core.ManualClock
	collector *metrics.InMemoryCollector
	trail     *audit.MemoryTrail
}

func newHarness(t *testing.T, opts ...report.GeneratorOption) *generatorHarness {
	t.Helper()
	h := &generatorHarness{
		store:     store.NewMemoryStore(),
		clock:     core.NewManualClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		collector: metrics.NewInMemoryCollector(),
		trail:     audit.NewMemoryTrail(),
	}
	base := []report.GeneratorOption{
		report.WithClock(h.clock),
		report.WithMetrics(h.collector),
		report.WithAuditTrail(h.trail),
		report.WithPlaceholders(placeholder.NewSeeded(42)),
	}
	h.gen = report.NewGenerator(testCatalog(t), h.store, append(base, opts...)...)
	return h
}

func TestGenerateWalksAllCheckpoints(t *testing.T) {
	h := newHarness(t)
	var seen []report.Checkpoint
	cfg := report.Config{ScanID: "SCAN_2024_001", Format: report.FormatPDF, Theme: report.ThemeProfessional}

	rep, err := h.gen.Generate(context.Background(), cfg, func(cp report.Checkpoint) {
		seen = append(seen, cp)
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := report.Checkpoints()
	if len(seen) != len(want) {
		t.Fatalf("saw %d checkpoints, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("checkpoint %d = %+v, want %+v", i, seen[i], want[i])
		}
	}
	if seen[len(seen)-1].Percent != 100 {
		t.Error("sequence did not end at 100")
	}

	// The record exists only after the 100% emission; pacing uses the
	// injected clock, one sleep per transition.
	if got := len(h.clock.Sleeps()); got != len(want)-1 {
		t.Errorf("got %d sleeps, want %d", got, len(want)-1)
	}
	if rep.Status != report.StatusCompleted {
		t.Errorf("status = %s, want completed", rep.Status)
	}
}

func TestGenerateCommitsRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cfg := report.Config{
		ScanID:           "SCAN_2024_001",
		Format:           report.FormatHTML,
		Theme:            report.ThemeDark,
		IncludeWatermark: true,
	}

	rep, err := h.gen.Generate(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if rep.ID == "" {
		t.Error("report has no ID")
	}
	if rep.Title != "VaultGuard Token Security Report" {
		t.Errorf("title = %q", rep.Title)
	}
	if rep.ScanID != "SCAN_2024_001" {
		t.Errorf("scan id = %q", rep.ScanID)
	}
	if rep.Format != report.FormatHTML || rep.Theme != report.ThemeDark {
		t.Errorf("format/theme = %s/%s", rep.Format, rep.Theme)
	}
	if !rep.Watermarked {
		t.Error("watermark flag not carried")
	}
	if rep.SignedBy != "" {
		t.Error("unsigned report has SignedBy")
	}
	if rep.Findings.Total != 27 {
		t.Errorf("findings total = %d, want 27", rep.Findings.Total)
	}
	if rep.Size == "" || rep.DurationMs <= 0 {
		t.Errorf("placeholder fields missing: size=%q duration=%d", rep.Size, rep.DurationMs)
	}

	stored, err := h.store.Get(ctx, rep.ID)
	if err != nil {
		t.Fatalf("Get committed report: %v", err)
	}
	if stored.Title != rep.Title {
		t.Errorf("stored title = %q", stored.Title)
	}

	stats, err := h.store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalReports != 1 {
		t.Errorf("total reports = %d, want 1", stats.TotalReports)
	}
}

func TestGenerateSignature(t *testing.T) {
	h := newHarness(t)
	cfg := report.Config{
		ScanID:           "SCAN_2024_001",
		Format:           report.FormatPDF,
		Theme:            report.ThemeProfessional,
		IncludeSignature: true,
	}

	rep, err := h.gen.Generate(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rep.Status != report.StatusSigned {
		t.Errorf("status = %s, want signed", rep.Status)
	}
	if rep.SignedBy != report.DefaultSigner {
		t.Errorf("signed by = %q, want %q", rep.SignedBy, report.DefaultSigner)
	}
	if !rep.Signed() {
		t.Error("Signed() = false for signed report")
	}
}

func TestGenerateFindingsCopiedByValue(t *testing.T) {
	scans := []scan.Result{{
		ID:           "SCAN_2024_001",
		ContractName: "VaultGuard Token",
		Status:       scan.StatusCompleted,
		Findings:     scan.FindingCounts{Critical: 1, Total: 1},
	}}
	catalog, err := scan.NewStaticCatalog(scans)
	if err != nil {
		t.Fatalf("NewStaticCatalog: %v", err)
	}

	st := store.NewMemoryStore()
	gen := report.NewGenerator(catalog, st,
		report.WithClock(core.NewManualClock(time.Now())),
		report.WithPlaceholders(placeholder.NewSeeded(1)))

	rep, err := gen.Generate(context.Background(),
		report.Config{ScanID: "SCAN_2024_001", Format: report.FormatJSON, Theme: report.ThemeMinimal}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Mutating the slice the catalog was built from must not change
	// the committed record.
	scans[0].Findings.Critical = 99
	stored, err := st.Get(context.Background(), rep.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Findings.Critical != 1 {
		t.Errorf("stored critical = %d, want 1", stored.Findings.Critical)
	}
}

func TestGenerateValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		cfg     report.Config
		check   func(error) bool
		wantErr error
	}{
		{
			name:    "no scan selected",
			cfg:     report.Config{Format: report.FormatPDF, Theme: report.ThemeProfessional},
			wantErr: errors.ErrNoScanSelected,
		},
		{
			name:    "unknown scan",
			cfg:     report.Config{ScanID: "SCAN_0000_000", Format: report.FormatPDF, Theme: report.ThemeProfessional},
			wantErr: errors.ErrScanNotFound,
		},
		{
			name:  "pending scan",
			cfg:   report.Config{ScanID: "SCAN_2024_002", Format: report.FormatPDF, Theme: report.ThemeProfessional},
			check: errors.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.gen.Generate(context.Background(), tt.cfg, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !stderrors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(err) {
				t.Fatalf("err = %v, wrong kind", err)
			}

			stats, statsErr := h.store.Stats(context.Background())
			if statsErr != nil {
				t.Fatalf("Stats: %v", statsErr)
			}
			if stats.TotalReports != 0 {
				t.Errorf("failed generation changed stats: %+v", stats)
			}
		})
	}
}

func TestGenerateRejectsConcurrent(t *testing.T) {
	h := newHarness(t)
	cfg := report.Config{ScanID: "SCAN_2024_001", Format: report.FormatPDF, Theme: report.ThemeProfessional}

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = h.gen.Generate(context.Background(), cfg, func(report.Checkpoint) {
			once.Do(func() { close(started) })
			<-release
		})
	}()

	<-started
	_, err := h.gen.Generate(context.Background(), cfg, nil)
	if !stderrors.Is(err, errors.ErrGenerationInFlight) {
		t.Fatalf("second Generate = %v, want in-flight rejection", err)
	}
	if !errors.IsBusy(err) {
		t.Errorf("rejection kind = %v, want busy", errors.GetKind(err))
	}

	close(release)
	wg.Wait()
	if firstErr != nil {
		t.Fatalf("first Generate: %v", firstErr)
	}

	// The slot frees once the first run commits.
	if _, err := h.gen.Generate(context.Background(), cfg, nil); err != nil {
		t.Fatalf("Generate after release: %v", err)
	}
}

func TestGenerateCancellation(t *testing.T) {
	h := newHarness(t, report.WithClock(core.NewRealClock()), report.WithStepDelay(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	cfg := report.Config{ScanID: "SCAN_2024_001", Format: report.FormatPDF, Theme: report.ThemeProfessional}

	_, err := h.gen.Generate(ctx, cfg, func(cp report.Checkpoint) {
		if cp.Percent >= 25 {
			cancel()
		}
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.IsGeneration(err) {
		t.Errorf("kind = %v, want generation", errors.GetKind(err))
	}

	stats, statsErr := h.store.Stats(context.Background())
	if statsErr != nil {
		t.Fatalf("Stats: %v", statsErr)
	}
	if stats.TotalReports != 0 {
		t.Error("cancelled generation committed a record")
	}
	if h.gen.Busy() {
		t.Error("generator still busy after cancellation")
	}
}

type failingRenderer struct{}

func (failingRenderer) Render(ctx context.Context, rep *report.GeneratedReport, src *scan.Result) ([]byte, string, error) {
	return nil, "", errors.E("render", errors.KindRender, "template exploded")
}

func TestGenerateRendererFailure(t *testing.T) {
	h := newHarness(t, report.WithRenderer(failingRenderer{}))
	cfg := report.Config{ScanID: "SCAN_2024_001", Format: report.FormatHTML, Theme: report.ThemeLight}

	_, err := h.gen.Generate(context.Background(), cfg, nil)
	if err == nil {
		t.Fatal("expected renderer error")
	}

	stats, statsErr := h.store.Stats(context.Background())
	if statsErr != nil {
		t.Fatalf("Stats: %v", statsErr)
	}
	if stats.TotalReports != 0 {
		t.Error("render failure committed a record")
	}
	if got := h.collector.GetCounter(metrics.GenerationFailuresTotal.Name, "reason", "render"); got != 1 {
		t.Errorf("render failure counter = %v, want 1", got)
	}
	if !containsEvent(h.trail.Events(), audit.EventGenerationFailed) {
		t.Error("no generation_failed audit event")
	}
}

func TestGenerateWithPipeline(t *testing.T) {
	pipeline := render.NewPipeline(nil, render.NewCompressor(render.AlgorithmZSTD, 3))
	h := newHarness(t, report.WithRenderer(pipeline))
	cfg := report.Config{ScanID: "SCAN_2024_001", Format: report.FormatJSON, Theme: report.ThemeMinimal}

	rep, err := h.gen.Generate(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rep.Artifact) == 0 {
		t.Fatal("no artifact attached")
	}
	if rep.ArtifactEncoding != "zstd" {
		t.Errorf("encoding = %q, want zstd", rep.ArtifactEncoding)
	}
	if rep.Fingerprint != report.Fingerprint(rep.Artifact) {
		t.Error("fingerprint does not match artifact")
	}

	plain, err := render.Decompress(rep.ArtifactEncoding, rep.Artifact)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(plain) <= 0 {
		t.Error("empty decompressed artifact")
	}
}

func TestGenerateObservers(t *testing.T) {
	h := newHarness(t)
	cfg := report.Config{ScanID: "SCAN_2024_001", Format: report.FormatPDF, Theme: report.ThemeProfessional}

	rep, err := h.gen.Generate(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	name := metrics.ReportsGeneratedTotal.Name
	if got := h.collector.GetCounter(name, "format", "pdf", "status", "completed"); got != 1 {
		t.Errorf("generated counter = %v, want 1", got)
	}
	if got := h.collector.GetGauge(metrics.GenerationsInFlight.Name); got != 0 {
		t.Errorf("in-flight gauge = %v, want 0 after commit", got)
	}
	durations := h.collector.GetHistogram(metrics.GenerationDuration.Name, "format", "pdf")
	if len(durations) != 1 {
		t.Fatalf("got %d duration observations, want 1", len(durations))
	}
	// Seven transitions at the default 800ms pacing on the manual clock.
	if want := (7 * report.DefaultStepDelay).Seconds(); durations[0] != want {
		t.Errorf("observed duration = %v, want %v", durations[0], want)
	}

	events := h.trail.Events()
	if !containsEvent(events, audit.EventGenerationStarted) {
		t.Error("no generation_started audit event")
	}
	if !containsEvent(events, audit.EventGenerationCompleted) {
		t.Error("no generation_completed audit event")
	}
	for _, e := range events {
		if e.Type == audit.EventGenerationCompleted && e.ReportID != rep.ID {
			t.Errorf("completed event report id = %q, want %q", e.ReportID, rep.ID)
		}
	}
}

func TestGenerateSequential(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cfg := report.Config{ScanID: "SCAN_2024_001", Format: report.FormatJSON, Theme: report.ThemeProfessional}
		if _, err := h.gen.Generate(ctx, cfg, nil); err != nil {
			t.Fatalf("Generate %d: %v", i, err)
		}
	}

	stats, err := h.store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalReports != 3 {
		t.Errorf("total reports = %d, want 3", stats.TotalReports)
	}
	history, err := h.store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("history length = %d, want 3", len(history))
	}
}

func containsEvent(events []audit.Event, typ audit.EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}
