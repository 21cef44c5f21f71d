// Package render turns a committed report record and its source scan
// into an artifact in one of the supported output formats. Each format
// has a Renderer; a Registry dispatches on the report's format and a
// Pipeline adds optional artifact compression on top.
package render

import (
	"context"
	"time"

	"github.com/auditforge/reportgen/pkg/errors"
	"github.com/auditforge/reportgen/pkg/report"
	"github.com/auditforge/reportgen/pkg/scan"
)

const (
	// ToolName identifies the generator in rendered artifacts.
	ToolName = "auditforge-reportgen"

	// ToolVersion is stamped into artifacts that carry tool metadata.
	ToolVersion = "1.2.0"
)

// Document bundles everything a renderer needs. The scan is the
// catalog entry the report was generated from; renderers must read
// finding counts from the report's own copy, which is the frozen
// point-in-time truth.
type Document struct {
	Report      *report.GeneratedReport
	Scan        *scan.Result
	GeneratedAt time.Time
}

// Renderer produces an artifact for a single output format.
type Renderer interface {
	// Format returns the format this renderer produces.
	Format() report.Format

	// Render produces the artifact bytes.
	Render(ctx context.Context, doc *Document) ([]byte, error)
}

// Registry holds one renderer per output format.
type Registry struct {
	renderers map[report.Format]Renderer
}

// NewRegistry creates a registry with all built-in renderers.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[report.Format]Renderer)}
	for _, renderer := range []Renderer{
		&JSONRenderer{},
		&CSVRenderer{},
		&MarkdownRenderer{},
		NewHTMLRenderer(),
		&SARIFRenderer{},
		&PDFRenderer{},
	} {
		r.Register(renderer)
	}
	return r
}

// Register adds or replaces the renderer for its format.
func (r *Registry) Register(renderer Renderer) {
	r.renderers[renderer.Format()] = renderer
}

// For returns the renderer for the given format.
func (r *Registry) For(format report.Format) (Renderer, error) {
	renderer, ok := r.renderers[format]
	if !ok {
		return nil, errors.E("render.For", "no renderer for format "+string(format), errors.KindInternal)
	}
	return renderer, nil
}

// Render dispatches on the report's format.
func (r *Registry) Render(ctx context.Context, doc *Document) ([]byte, error) {
	renderer, err := r.For(doc.Report.Format)
	if err != nil {
		return nil, err
	}
	data, err := renderer.Render(ctx, doc)
	if err != nil {
		return nil, errors.E("render.Render", "render "+string(doc.Report.Format), errors.KindRender, err)
	}
	return data, nil
}

// Pipeline renders an artifact and compresses it when the compressor
// is configured. It satisfies the generator's Renderer contract.
type Pipeline struct {
	registry   *Registry
	compressor *Compressor
}

// NewPipeline creates a pipeline over the given registry. A nil
// compressor stores artifacts uncompressed.
func NewPipeline(registry *Registry, compressor *Compressor) *Pipeline {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Pipeline{registry: registry, compressor: compressor}
}

// Render produces the (optionally compressed) artifact bytes plus the
// encoding they are stored under ("" for plain).
func (p *Pipeline) Render(ctx context.Context, rep *report.GeneratedReport, src *scan.Result) ([]byte, string, error) {
	doc := &Document{Report: rep, Scan: src, GeneratedAt: rep.CreatedAt}
	data, err := p.registry.Render(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	if p.compressor == nil || p.compressor.Algorithm() == AlgorithmNone {
		return data, "", nil
	}
	compressed, err := p.compressor.Compress(data)
	if err != nil {
		return nil, "", errors.E("render.Pipeline", "compress artifact", errors.KindRender, err)
	}
	return compressed, string(p.compressor.Algorithm()), nil
}

var _ report.Renderer = (*Pipeline)(nil)
