// Package source provides feature sources for the tile generator: an
// in-memory sequence, GeoJSON files and ESRI Shapefiles.
package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

// Memory is a fixed, ordered feature sequence held in memory.
//
// Every file-backed source loads into a Memory, so a source is read from
// disk once and then served to any number of concurrent tile requests.
type Memory struct {
	name     string
	crs      string
	features []vtile.SourceFeature
	skipped  []error
}

// NewMemory creates a source over features. The slice is not copied and
// must not be modified afterwards.
func NewMemory(name, crs string, features []vtile.SourceFeature) *Memory {
	return &Memory{name: name, crs: crs, features: features}
}

// Name returns the layer identifier.
func (m *Memory) Name() string { return m.name }

// CRS returns the CRS identifier of the feature geometry.
func (m *Memory) CRS() string { return m.crs }

// Features returns the full feature sequence.
func (m *Memory) Features(ctx context.Context) ([]vtile.SourceFeature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.features, nil
}

// Len returns the number of features.
func (m *Memory) Len() int { return len(m.features) }

// Skipped returns the records that could not be loaded, one error each.
func (m *Memory) Skipped() []error { return m.skipped }

// layerName returns layer, or the file's base name without extension.
func layerName(path, layer string) string {
	if layer != "" {
		return layer
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "layer"
	}
	return name
}
