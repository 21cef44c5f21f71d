package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/auditforge/reportgen/pkg/errors"
)

// Catalog is the read-only provider of completed scans. The report
// workflow only needs the two read operations; a catalog may be backed
// by a static fixture, a file, or a remote service.
type Catalog interface {
	// ListScans returns all scans, most recent first.
	ListScans(ctx context.Context) ([]Result, error)

	// GetScan returns the scan with the given ID, or a not found
	// error when the ID is unknown.
	GetScan(ctx context.Context, id string) (*Result, error)
}

// StaticCatalog is an in-memory, fixture-backed catalog.
type StaticCatalog struct {
	mu    sync.RWMutex
	order []string
	scans map[string]Result
}

// NewStaticCatalog creates a catalog from the given scans. Scans are
// validated on the way in; a malformed scan fails construction.
func NewStaticCatalog(scans []Result) (*StaticCatalog, error) {
	c := &StaticCatalog{scans: make(map[string]Result, len(scans))}
	for i := range scans {
		if err := scans[i].Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.scans[scans[i].ID]; dup {
			return nil, errors.E("scan.NewStaticCatalog",
				fmt.Sprintf("duplicate scan ID %q", scans[i].ID), errors.KindValidation)
		}
		c.scans[scans[i].ID] = scans[i]
		c.order = append(c.order, scans[i].ID)
	}
	return c, nil
}

// ListScans returns all scans sorted by scan date, most recent first.
func (c *StaticCatalog) ListScans(ctx context.Context) ([]Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Result, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.scans[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScanDate.After(out[j].ScanDate)
	})
	return out, nil
}

// GetScan returns a copy of the scan with the given ID.
func (c *StaticCatalog) GetScan(ctx context.Context, id string) (*Result, error) {
	const op = "catalog.GetScan"
	if id == "" {
		return nil, errors.E(op, errors.KindValidation, "empty scan ID")
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.scans[id]
	if !ok {
		return nil, errors.E(op, fmt.Sprintf("scan %q not found", id), errors.KindNotFound)
	}
	// Copy so callers can never mutate catalog state.
	out := r
	return &out, nil
}

// FileCatalog loads scans from a JSON file. The file holds an array of
// scan results; it is read once at construction.
type FileCatalog struct {
	*StaticCatalog
	path string
}

// NewFileCatalog reads and validates the scan fixture at path.
func NewFileCatalog(path string) (*FileCatalog, error) {
	const op = "scan.NewFileCatalog"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.E(op, fmt.Sprintf("read catalog file %s", path), err)
	}
	var scans []Result
	if err := json.Unmarshal(data, &scans); err != nil {
		return nil, errors.E(op, fmt.Sprintf("parse catalog file %s", path), errors.KindValidation, err)
	}
	static, err := NewStaticCatalog(scans)
	if err != nil {
		return nil, err
	}
	return &FileCatalog{StaticCatalog: static, path: path}, nil
}

// Path returns the file the catalog was loaded from.
func (c *FileCatalog) Path() string {
	return c.path
}

var (
	_ Catalog = (*StaticCatalog)(nil)
	_ Catalog = (*FileCatalog)(nil)
)
