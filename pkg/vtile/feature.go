package vtile

import (
	"github.com/paulmach/orb"
)

// SourceFeature is one feature supplied by a feature source, with geometry
// in the source CRS.
type SourceFeature struct {
	ID         uint64
	Layer      string // Layer identifier; the generator uses the source name if empty
	Geometry   orb.Geometry
	Attributes Attributes
}

// ClippedFeature is a feature reprojected into the planar CRS and clipped
// to a tile bounding box. Its geometry is never empty.
type ClippedFeature struct {
	ID         uint64
	Layer      string
	Geometry   orb.Geometry
	Attributes Attributes
}

// QuantizedFeature is a feature in tile-local coordinates, each in
// [0, Extent]. Coordinates are not rounded.
type QuantizedFeature struct {
	ID         uint64
	Layer      string
	Geometry   orb.Geometry
	Attributes Attributes
}

// Layer is a named group of quantized features within one tile.
type Layer struct {
	Name     string
	Extent   uint32
	Features []QuantizedFeature
}

// Tile is the result of generating one tile address.
type Tile struct {
	Address Address
	BBox    BoundingBox
	Layers  []Layer

	// Skipped holds one error per source feature that could not be
	// processed. These never fail the tile.
	Skipped []error
}

// Empty returns true if the tile has no content.
func (t *Tile) Empty() bool {
	return len(t.Layers) == 0
}

// FeatureCount returns the number of features across all layers.
func (t *Tile) FeatureCount() int {
	n := 0
	for _, l := range t.Layers {
		n += len(l.Features)
	}
	return n
}
