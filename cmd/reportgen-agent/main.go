// Reportgen Agent - Smart Contract Security Report Generator
//
// The agent drives the report workflow from the command line:
//
//  1. LIST SCANS:
//     reportgen-agent -list-scans
//
//  2. GENERATE:
//     reportgen-agent -scan SCAN_2024_001 -format pdf -theme dark -sign -watermark
//
//  3. INSPECT:
//     reportgen-agent -history
//     reportgen-agent -stats
//
//  4. DOWNLOAD:
//     reportgen-agent -download <report-id> -out report.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/auditforge/reportgen/pkg/audit"
	"github.com/auditforge/reportgen/pkg/core"
	"github.com/auditforge/reportgen/pkg/health"
	"github.com/auditforge/reportgen/pkg/metrics"
	"github.com/auditforge/reportgen/pkg/notify"
	"github.com/auditforge/reportgen/pkg/render"
	"github.com/auditforge/reportgen/pkg/report"
	"github.com/auditforge/reportgen/pkg/scan"
	"github.com/auditforge/reportgen/pkg/store"
)

const (
	appName    = "reportgen-agent"
	appVersion = "1.2.0"
)

// Config represents the agent configuration.
type Config struct {
	Agent struct {
		Verbose   bool          `yaml:"verbose"`
		StepDelay time.Duration `yaml:"step_delay"`
		Signer    string        `yaml:"signer"`
	} `yaml:"agent"`

	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`

	Storage struct {
		DBPath   string `yaml:"db_path"`
		Compress string `yaml:"compress"` // zstd, gzip or none
	} `yaml:"storage"`

	Observability struct {
		MetricsAddr string `yaml:"metrics_addr"`
		AuditLog    string `yaml:"audit_log"`
	} `yaml:"observability"`
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	catalogPath := flag.String("catalog", "", "Path to scan catalog JSON (built-in demo scans if empty)")
	dbPath := flag.String("db", "", "SQLite database path (in-memory store if empty)")
	compress := flag.String("compress", "zstd", "Artifact compression: zstd, gzip or none")
	metricsAddr := flag.String("metrics-addr", "", "Listen address for /metrics and health probes")
	auditLog := flag.String("audit-log", "", "Audit trail JSONL file path")

	listScans := flag.Bool("list-scans", false, "List available scans")
	scanID := flag.String("scan", "", "Scan ID to generate a report for")
	format := flag.String("format", "pdf", "Report format: pdf, html, json, csv, sarif, markdown")
	theme := flag.String("theme", "professional", "Report theme: professional, dark, light, minimal")
	sign := flag.Bool("sign", false, "Include the cryptographic signature block")
	watermark := flag.Bool("watermark", false, "Stamp a watermark on every page")

	history := flag.Bool("history", false, "Show the generated report history")
	stats := flag.Bool("stats", false, "Show usage statistics")
	download := flag.String("download", "", "Record a download for the given report ID")
	out := flag.String("out", "", "Write the downloaded artifact to this path")

	stepDelay := flag.Duration("step-delay", report.DefaultStepDelay, "Pause between progress checkpoints")
	verbose := flag.Bool("verbose", false, "Verbose output")
	showVersion := flag.Bool("version", false, "Show version")

	flag.Parse()

	if *showVersion {
		fmt.Printf("%s version %s\n", appName, appVersion)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	var cfg Config
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}
	if cfg.Storage.Compress == "" {
		cfg.Storage.Compress = *compress
	}
	if *metricsAddr != "" {
		cfg.Observability.MetricsAddr = *metricsAddr
	}
	if *auditLog != "" {
		cfg.Observability.AuditLog = *auditLog
	}
	if *verbose {
		cfg.Agent.Verbose = true
	}
	if cfg.Agent.StepDelay <= 0 {
		cfg.Agent.StepDelay = *stepDelay
	}
	if cfg.Agent.Signer == "" {
		cfg.Agent.Signer = report.DefaultSigner
	}

	logger := core.LoggerFromVerbose(appName, cfg.Agent.Verbose)
	core.SetDefaultLogger(logger)

	catalog, err := buildCatalog(cfg.Catalog.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	trail := buildTrail(cfg.Observability.AuditLog)
	if fileTrail, ok := trail.(*audit.FileTrail); ok {
		defer fileTrail.Close()
	}

	reportStore, err := buildStore(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	trail.Record(audit.Event{Type: audit.EventStoreOpened, Message: storeDescription(cfg.Storage.DBPath)})
	defer func() {
		reportStore.Close()
		trail.Record(audit.Event{Type: audit.EventStoreClosed, Message: storeDescription(cfg.Storage.DBPath)})
	}()
	collector := buildCollector(cfg.Observability.MetricsAddr)

	if cfg.Observability.MetricsAddr != "" {
		serveObservability(cfg.Observability.MetricsAddr, collector, reportStore, catalog, cfg.Storage.DBPath)
	}

	switch {
	case *listScans:
		err = runListScans(ctx, catalog)
	case *history:
		err = runHistory(ctx, reportStore)
	case *stats:
		err = runStats(ctx, reportStore)
	case *download != "":
		err = runDownload(ctx, reportStore, trail, collector, *download, *out)
	case *scanID != "":
		err = runGenerate(ctx, &cfg, catalog, reportStore, trail, collector, logger,
			*scanID, *format, *theme, *sign, *watermark, *out)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// demoScans is the built-in catalog used when no fixture is supplied.
var demoScans = []scan.Result{
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
		ScanDate:     time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
		Status:       scan.StatusCompleted,
		Findings:     scan.FindingCounts{High: 3, Medium: 6, Low: 11, Total: 20},
		RiskScore:    5.4,
	},
	{
		ID:           "SCAN_2024_003",
		ContractName: "BridgeMaster V2",
		Address:      "0x3845badAde8e6dFF049820680d1F14bD3903a5d0",
		ScanDate:     time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
		Status:       scan.StatusPending,
		RiskScore:    0,
	},
}

func buildCatalog(path string) (scan.Catalog, error) {
	if path != "" {
		return scan.NewFileCatalog(path)
	}
	return scan.NewStaticCatalog(demoScans)
}

func storeDescription(dbPath string) string {
	if dbPath == "" {
		return "in-memory store"
	}
	return "sqlite store at " + dbPath
}

func buildStore(dbPath string) (store.Store, error) {
	if dbPath != "" {
		return store.NewSQLiteStore(dbPath)
	}
	return store.NewMemoryStore(), nil
}

func buildTrail(path string) audit.Trail {
	if path == "" {
		return audit.NopTrail{}
	}
	trail, err := audit.NewFileTrail(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: audit trail disabled: %v\n", err)
		return audit.NopTrail{}
	}
	return trail
}

func buildCollector(metricsAddr string) metrics.Collector {
	if metricsAddr == "" {
		return &metrics.NopCollector{}
	}
	return metrics.NewPrometheusCollector(nil)
}

func serveObservability(addr string, collector metrics.Collector, s store.Store, catalog scan.Catalog, dbPath string) {
	checks := health.NewHandler(health.WithVersion(appVersion))
	checks.Register("store", &health.StoreCheck{Store: s})
	checks.Register("catalog", &health.CatalogCheck{Catalog: catalog})
	if dbPath != "" {
		checks.Register("disk", &health.DiskCheck{Path: dbPath, MinFreePercent: 5})
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.Handle("/healthz", checks.HealthHandler())
	mux.Handle("/readyz", checks.ReadinessHandler())
	mux.Handle("/livez", checks.LivenessHandler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Warning: observability server: %v\n", err)
		}
	}()
}

func runListScans(ctx context.Context, catalog scan.Catalog) error {
	scans, err := catalog.ListScans(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-15s %-20s %-10s %9s %6s  %s\n", "ID", "CONTRACT", "STATUS", "FINDINGS", "RISK", "DATE")
	for _, s := range scans {
		fmt.Printf("%-15s %-20s %-10s %9d %6.1f  %s\n",
			s.ID, s.ContractName, s.Status, s.Findings.Total, s.RiskScore, s.ScanDate.Format("2006-01-02"))
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *Config, catalog scan.Catalog, s store.Store,
	trail audit.Trail, collector metrics.Collector, logger core.Logger,
	scanID, formatStr, themeStr string, sign, watermark bool, out string) error {

	configurator := report.NewConfigurator()
	configurator.SetScanID(scanID)

	f, ok := report.ParseFormat(formatStr)
	if !ok {
		return fmt.Errorf("unknown format %q (supported: %v)", formatStr, report.Formats())
	}
	configurator.SetFormat(f)

	t, ok := report.ParseTheme(themeStr)
	if !ok {
		return fmt.Errorf("unknown theme %q (supported: %v)", themeStr, report.Themes())
	}
	configurator.SetTheme(t)
	configurator.SetIncludeSignature(sign)
	configurator.SetIncludeWatermark(watermark)

	if err := configurator.Validate(ctx, catalog); err != nil {
		return err
	}

	pipeline := render.NewPipeline(nil, buildCompressor(cfg.Storage.Compress))
	notifier := notify.NewLogNotifier(core.NewPrintfLogger(""))

	gen := report.NewGenerator(catalog, s,
		report.WithRenderer(pipeline),
		report.WithLogger(logger),
		report.WithNotifier(notifier),
		report.WithMetrics(collector),
		report.WithAuditTrail(trail),
		report.WithSigner(cfg.Agent.Signer),
		report.WithStepDelay(cfg.Agent.StepDelay))

	rep, err := gen.Generate(ctx, configurator.Current(), func(cp report.Checkpoint) {
		fmt.Printf("  [%3d%%] %s\n", cp.Percent, cp.Label)
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nReport %s (%s, %s) committed as %s, size %s\n",
		rep.ID, rep.Format, rep.Theme, rep.Status, rep.Size)
	if rep.Signed() {
		fmt.Printf("Signed by %s\n", rep.SignedBy)
	}

	if out != "" {
		return writeArtifact(rep, out)
	}
	return nil
}

func buildCompressor(algorithm string) *render.Compressor {
	switch render.Algorithm(algorithm) {
	case render.AlgorithmZSTD, render.AlgorithmGzip:
		return render.NewCompressor(render.Algorithm(algorithm), 0)
	default:
		return nil
	}
}

func runHistory(ctx context.Context, s store.Store) error {
	reports, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No reports generated yet.")
		return nil
	}

	fmt.Printf("%-36s %-36s %-9s %-10s %8s  %s\n", "ID", "TITLE", "FORMAT", "STATUS", "SIZE", "CREATED")
	for _, r := range reports {
		fmt.Printf("%-36s %-36s %-9s %-10s %8s  %s\n",
			r.ID, r.Title, r.Format, r.Status, r.Size, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runStats(ctx context.Context, s store.Store) error {
	stats, err := s.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Total reports:     %d\n", stats.TotalReports)
	fmt.Printf("Reports today:     %d\n", stats.ReportsToday)
	fmt.Printf("Total downloads:   %d\n", stats.TotalDownloads)
	fmt.Printf("Avg generation:    %s\n", stats.AverageGenerationTime)
	return nil
}

func runDownload(ctx context.Context, s store.Store, trail audit.Trail, collector metrics.Collector, reportID, out string) error {
	rep, err := s.Get(ctx, reportID)
	if err != nil {
		trail.Record(audit.Event{
			Type:     audit.EventDownloadRejected,
			ReportID: reportID,
			Message:  "download rejected",
			Error:    err.Error(),
		})
		return err
	}
	if err := s.RecordDownload(ctx, reportID); err != nil {
		return err
	}

	collector.CounterInc(metrics.DownloadsTotal.Name, "format", string(rep.Format))
	trail.Record(audit.Event{
		Type:     audit.EventDownloadRecorded,
		ReportID: reportID,
		ScanID:   rep.ScanID,
		Message:  "download recorded",
	})

	fmt.Printf("Download recorded for %s (%s)\n", rep.ID, rep.Title)
	if out != "" {
		return writeArtifact(rep, out)
	}
	return nil
}

func writeArtifact(rep *report.GeneratedReport, path string) error {
	if len(rep.Artifact) == 0 {
		return fmt.Errorf("report %s has no stored artifact", rep.ID)
	}
	data, err := render.Decompress(rep.ArtifactEncoding, rep.Artifact)
	if err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	fmt.Printf("Artifact written to %s (%d bytes)\n", path, len(data))
	return nil
}
