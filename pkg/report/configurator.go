package report

import (
	"context"
	"sync"

	"github.com/auditforge/reportgen/pkg/errors"
	"github.com/auditforge/reportgen/pkg/scan"
)

// Configurator holds the current report selection. It is the
// single-user form state behind the dashboard: one scan, one format,
// one theme, two enterprise flags. Mutators are safe for concurrent
// use; the configurator does not enforce read-only-while-generating,
// the generator snapshots the config at the moment Generate is called.
type Configurator struct {
	mu  sync.RWMutex
	cfg Config
}

// NewConfigurator creates a configurator with the default selection:
// no scan, PDF, professional theme, both flags off.
func NewConfigurator() *Configurator {
	return &Configurator{cfg: Config{
		Format: FormatPDF,
		Theme:  ThemeProfessional,
	}}
}

// SetScanID selects the scan to report on. Empty clears the selection.
func (c *Configurator) SetScanID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.ScanID = id
}

// SetFormat selects the output format.
func (c *Configurator) SetFormat(f Format) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Format = f
}

// SetTheme selects the visual theme.
func (c *Configurator) SetTheme(t Theme) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Theme = t
}

// SetIncludeSignature toggles the signature flag.
func (c *Configurator) SetIncludeSignature(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.IncludeSignature = v
}

// SetIncludeWatermark toggles the watermark flag.
func (c *Configurator) SetIncludeWatermark(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.IncludeWatermark = v
}

// Current returns a snapshot of the selection.
func (c *Configurator) Current() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Validate checks the current selection against the catalog. A nil
// error means Generate can start with this config.
func (c *Configurator) Validate(ctx context.Context, catalog scan.Catalog) error {
	return ValidateConfig(ctx, c.Current(), catalog)
}

// ValidateConfig checks a config against the catalog: the scan must be
// selected and resolvable. Format and theme membership is asserted as
// an internal error because only programmatic misuse can produce an
// unlisted value.
func ValidateConfig(ctx context.Context, cfg Config, catalog scan.Catalog) error {
	const op = "report.ValidateConfig"
	if !cfg.Format.Valid() {
		return errors.E(op, errors.KindInternal, "unlisted format "+string(cfg.Format))
	}
	if !cfg.Theme.Valid() {
		return errors.E(op, errors.KindInternal, "unlisted theme "+string(cfg.Theme))
	}
	if cfg.ScanID == "" {
		return errors.ErrNoScanSelected
	}
	if _, err := catalog.GetScan(ctx, cfg.ScanID); err != nil {
		return err
	}
	return nil
}
