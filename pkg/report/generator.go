package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/auditforge/reportgen/pkg/audit"
	"github.com/auditforge/reportgen/pkg/core"
	"github.com/auditforge/reportgen/pkg/errors"
	"github.com/auditforge/reportgen/pkg/metrics"
	"github.com/auditforge/reportgen/pkg/notify"
	"github.com/auditforge/reportgen/pkg/placeholder"
	"github.com/auditforge/reportgen/pkg/scan"
)

// DefaultSigner is the name stamped into the signature block when the
// signature flag is set and no custom signer is configured.
const DefaultSigner = "AuditForge Security Team"

// DefaultStepDelay is the pause between progress checkpoints. The
// sequence exists for operator feedback; the pacing makes each phase
// label readable on the dashboard.
const DefaultStepDelay = 800 * time.Millisecond

// ReportSink receives the committed record of a finished generation.
// Store implementations satisfy it.
type ReportSink interface {
	Append(ctx context.Context, rep *GeneratedReport) error
}

// Renderer produces the artifact for a committed report. The returned
// encoding is "" for plain bytes or the compression algorithm used.
type Renderer interface {
	Render(ctx context.Context, rep *GeneratedReport, src *scan.Result) ([]byte, string, error)
}

// Generator drives the staged report generation sequence. At most one
// generation runs at a time; a second Generate call while one is
// active is rejected, not queued.
type Generator struct {
	catalog scan.Catalog
	sink    ReportSink

	renderer     Renderer
	clock        core.Clock
	logger       core.Logger
	notifier     notify.Notifier
	collector    metrics.Collector
	trail        audit.Trail
	placeholders *placeholder.Source
	signer       string
	stepDelay    time.Duration

	busy  atomic.Bool
	newID func() string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRenderer sets the artifact renderer. Without one the record
// commits with no artifact attached.
func WithRenderer(r Renderer) GeneratorOption {
	return func(g *Generator) { g.renderer = r }
}

// WithClock sets the clock used for checkpoint pacing and timestamps.
func WithClock(c core.Clock) GeneratorOption {
	return func(g *Generator) { g.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l core.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// WithNotifier sets the toast notifier.
func WithNotifier(n notify.Notifier) GeneratorOption {
	return func(g *Generator) { g.notifier = n }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c metrics.Collector) GeneratorOption {
	return func(g *Generator) { g.collector = c }
}

// WithAuditTrail sets the audit trail.
func WithAuditTrail(t audit.Trail) GeneratorOption {
	return func(g *Generator) { g.trail = t }
}

// WithPlaceholders sets the source for display size and duration.
func WithPlaceholders(s *placeholder.Source) GeneratorOption {
	return func(g *Generator) { g.placeholders = s }
}

// WithSigner sets the name placed in the signature block.
func WithSigner(name string) GeneratorOption {
	return func(g *Generator) { g.signer = name }
}

// WithStepDelay sets the pause between checkpoints.
func WithStepDelay(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.stepDelay = d }
}

// NewGenerator creates a generator reading scans from catalog and
// committing finished reports to sink.
func NewGenerator(catalog scan.Catalog, sink ReportSink, opts ...GeneratorOption) *Generator {
	g := &Generator{
		catalog:      catalog,
		sink:         sink,
		clock:        core.NewRealClock(),
		logger:       &core.NopLogger{},
		notifier:     notify.NopNotifier{},
		collector:    &metrics.NopCollector{},
		trail:        audit.NopTrail{},
		placeholders: placeholder.New(),
		signer:       DefaultSigner,
		stepDelay:    DefaultStepDelay,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Busy reports whether a generation is currently running.
func (g *Generator) Busy() bool {
	return g.busy.Load()
}

// Generate runs the full checkpoint sequence for the given config and
// commits the resulting record. The progress callback observes every
// checkpoint in order; pass nil to ignore progress. On any failure no
// record is committed and usage stats are unchanged.
func (g *Generator) Generate(ctx context.Context, cfg Config, progress ProgressFunc) (*GeneratedReport, error) {
	const op = "report.Generate"

	if err := ValidateConfig(ctx, cfg, g.catalog); err != nil {
		g.collector.CounterInc(metrics.GenerationFailuresTotal.Name, "reason", failureReason(err))
		g.notifier.Error(err.Error())
		return nil, err
	}
	src, err := g.catalog.GetScan(ctx, cfg.ScanID)
	if err != nil {
		g.collector.CounterInc(metrics.GenerationFailuresTotal.Name, "reason", "not_found")
		g.notifier.Error(err.Error())
		return nil, err
	}
	if src.Status != scan.StatusCompleted {
		err := errors.E(op, errors.KindValidation,
			fmt.Sprintf("scan %s is %s; only completed scans can be reported on", src.ID, src.Status))
		g.collector.CounterInc(metrics.GenerationFailuresTotal.Name, "reason", "validation")
		g.notifier.Error(err.Error())
		return nil, err
	}

	if !g.busy.CompareAndSwap(false, true) {
		g.collector.CounterInc(metrics.GenerationFailuresTotal.Name, "reason", "busy")
		g.notifier.Error(errors.ErrGenerationInFlight.Error())
		return nil, errors.ErrGenerationInFlight
	}
	defer g.busy.Store(false)

	g.collector.GaugeInc(metrics.GenerationsInFlight.Name)
	defer g.collector.GaugeDec(metrics.GenerationsInFlight.Name)

	g.logger.Info("generation started: scan=%s format=%s theme=%s", src.ID, cfg.Format, cfg.Theme)
	g.trail.Record(audit.Event{
		Type:    audit.EventGenerationStarted,
		ScanID:  src.ID,
		Message: fmt.Sprintf("generation started for %s (%s, %s)", src.ContractName, cfg.Format, cfg.Theme),
	})

	start := g.clock.Now()
	if err := g.walk(ctx, progress); err != nil {
		return nil, g.fail(src.ID, "", "cancelled", errors.E(op, errors.KindGeneration, err))
	}

	rep := g.build(src, cfg)
	if g.renderer != nil {
		artifact, encoding, err := g.renderer.Render(ctx, rep, src)
		if err != nil {
			return nil, g.fail(src.ID, rep.ID, "render", err)
		}
		rep.Artifact = artifact
		rep.ArtifactEncoding = encoding
		rep.Fingerprint = Fingerprint(artifact)
		g.collector.HistogramObserve(metrics.ArtifactBytes.Name, float64(len(artifact)),
			"format", string(rep.Format), "encoding", encoding)
	}

	if err := g.sink.Append(ctx, rep); err != nil {
		return nil, g.fail(src.ID, rep.ID, "storage", err)
	}

	elapsed := g.clock.Now().Sub(start)
	g.collector.CounterInc(metrics.ReportsGeneratedTotal.Name,
		"format", string(rep.Format), "status", string(rep.Status))
	g.collector.HistogramObserve(metrics.GenerationDuration.Name, elapsed.Seconds(),
		"format", string(rep.Format))

	g.logger.Info("generation completed: report=%s scan=%s elapsed=%s", rep.ID, src.ID, elapsed)
	g.trail.Record(audit.Event{
		Type:     audit.EventGenerationCompleted,
		ReportID: rep.ID,
		ScanID:   src.ID,
		Message:  fmt.Sprintf("report %s committed as %s", rep.ID, rep.Status),
		Details: map[string]interface{}{
			"format": string(rep.Format),
			"theme":  string(rep.Theme),
			"size":   rep.Size,
		},
	})
	g.notifier.Success("Report generated successfully!")

	return rep, nil
}

// walk emits every checkpoint in order with the configured pacing. The
// sequence is fixed: it never skips, reorders or repeats a milestone,
// and the final emission is exactly 100.
func (g *Generator) walk(ctx context.Context, progress ProgressFunc) error {
	for i, cp := range checkpoints {
		if i > 0 {
			if err := g.clock.Sleep(ctx, g.stepDelay); err != nil {
				return err
			}
		}
		g.logger.Debug("progress %d%%: %s", cp.Percent, cp.Label)
		if progress != nil {
			progress(cp)
		}
	}
	return nil
}

// build materializes the record committed at 100%. Findings are copied
// by value so later catalog changes cannot leak into history.
func (g *Generator) build(src *scan.Result, cfg Config) *GeneratedReport {
	rep := &GeneratedReport{
		ID:         g.newID(),
		Title:      fmt.Sprintf("%s Security Report", src.ContractName),
		ScanID:     src.ID,
		Format:     cfg.Format,
		Theme:      cfg.Theme,
		Status:     StatusCompleted,
		CreatedAt:  g.clock.Now(),
		Size:       g.placeholders.ArtifactSize(src.Findings.Total),
		Findings:   src.Findings,
		DurationMs: g.placeholders.GenerationDuration().Milliseconds(),

		Watermarked: cfg.IncludeWatermark,
	}
	if cfg.IncludeSignature {
		rep.Status = StatusSigned
		rep.SignedBy = g.signer
	}
	return rep
}

// fail records a failed generation on every observer and returns err.
func (g *Generator) fail(scanID, reportID, reason string, err error) error {
	g.collector.CounterInc(metrics.GenerationFailuresTotal.Name, "reason", reason)
	g.logger.Error("generation failed: scan=%s reason=%s: %v", scanID, reason, err)
	g.trail.Record(audit.Event{
		Type:     audit.EventGenerationFailed,
		ReportID: reportID,
		ScanID:   scanID,
		Message:  "generation failed: " + reason,
		Error:    err.Error(),
	})
	g.notifier.Error("Report generation failed: " + err.Error())
	return err
}

func failureReason(err error) string {
	switch {
	case errors.IsNotFound(err):
		return "not_found"
	case errors.IsValidation(err):
		return "validation"
	default:
		return "internal"
	}
}

// Fingerprint returns the hex sha256 of the artifact bytes.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
