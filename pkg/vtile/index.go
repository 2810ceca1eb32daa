package vtile

import (
	"context"
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// indexEpsilon is the minimum side length of an indexed rectangle, in
// source CRS units. R-tree rectangles require non-zero dimensions.
const indexEpsilon = 1e-7

// Index provides fast spatial queries over a fixed sequence of source
// features.
//
// The index stores each feature's bound in the source CRS in an R-tree, so
// a tile request only reprojects and clips features near the tile. Query
// results keep the original sequence order, so using an index never
// changes the generated tile.
//
// Example:
//
//	idx := vtile.BuildIndex(features, vtile.CRSGeographic)
//	candidates := idx.Query(vtile.TileLonLat(addr))
type Index struct {
	features  []SourceFeature
	rtree     *rtreego.Rtree // Spatial index for fast queries
	unbounded []int          // Features without a finite bound, always candidates
	bounds    orb.Bound
	hasBounds bool
}

// indexedFeature wraps a feature position for R-tree storage.
type indexedFeature struct {
	index  int
	bounds orb.Bound
}

// Bounds implements rtreego.Spatial interface.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return toRect(f.bounds)
}

func toRect(b orb.Bound) rtreego.Rect {
	point := rtreego.Point{b.Min[0], b.Min[1]}

	// Ensure minimum size for point features
	width := b.Max[0] - b.Min[0]
	height := b.Max[1] - b.Min[1]
	if width < indexEpsilon {
		width = indexEpsilon
	}
	if height < indexEpsilon {
		height = indexEpsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{width, height})
	return rect
}

// BuildIndex creates an index over features stored in the given CRS.
//
// Features with empty geometry or non-finite coordinates are not placed in
// the tree; they are returned by every query so that the clipper can report
// them. For a geographic CRS the same applies to features reaching a pole,
// which tile queries never cover.
func BuildIndex(features []SourceFeature, crs string) *Index {
	geographic := ClassifyCRS(crs) == CRSKindGeographic

	// Create R-tree (2D, min=25 children, max=50 children)
	idx := &Index{
		features: features,
		rtree:    rtreego.NewTree(2, 25, 50),
	}

	for i, f := range features {
		b, ok := geometryBound(f.Geometry)
		if !ok || (geographic && !inLatitudeDomain(b)) {
			idx.unbounded = append(idx.unbounded, i)
			continue
		}
		idx.rtree.Insert(&indexedFeature{index: i, bounds: b})

		if !idx.hasBounds {
			idx.bounds = b
			idx.hasBounds = true
		} else {
			idx.bounds = idx.bounds.Union(b)
		}
	}
	return idx
}

// inLatitudeDomain reports whether b lies strictly between the poles.
func inLatitudeDomain(b orb.Bound) bool {
	return b.Min[1] > -90 && b.Max[1] < 90
}

// Query returns the features whose bound intersects b, in source order.
// Boundary contact counts as intersection.
func (idx *Index) Query(b orb.Bound) []SourceFeature {
	query := orb.Bound{
		Min: orb.Point{b.Min[0] - indexEpsilon, b.Min[1] - indexEpsilon},
		Max: orb.Point{b.Max[0] + indexEpsilon, b.Max[1] + indexEpsilon},
	}
	spatials := idx.rtree.SearchIntersect(toRect(query))

	positions := make([]int, 0, len(spatials)+len(idx.unbounded))
	for _, spatial := range spatials {
		positions = append(positions, spatial.(*indexedFeature).index)
	}
	positions = append(positions, idx.unbounded...)
	sort.Ints(positions)

	result := make([]SourceFeature, len(positions))
	for i, p := range positions {
		result[i] = idx.features[p]
	}
	return result
}

// Count returns the total number of features in the index.
func (idx *Index) Count() int {
	return len(idx.features)
}

// Bounds returns the union of all finite feature bounds. ok is false if no
// feature has one.
func (idx *Index) Bounds() (b orb.Bound, ok bool) {
	return idx.bounds, idx.hasBounds
}

// IndexedSource wraps a FeatureSource with an Index. The wrapped source is
// read once, when the IndexedSource is created.
type IndexedSource struct {
	name  string
	crs   string
	index *Index
}

// NewIndexedSource reads src and indexes its features.
func NewIndexedSource(ctx context.Context, src FeatureSource) (*IndexedSource, error) {
	features, err := src.Features(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", src.Name(), err)
	}
	return &IndexedSource{
		name:  src.Name(),
		crs:   src.CRS(),
		index: BuildIndex(features, src.CRS()),
	}, nil
}

// Name returns the wrapped source's name.
func (s *IndexedSource) Name() string { return s.name }

// CRS returns the wrapped source's CRS.
func (s *IndexedSource) CRS() string { return s.crs }

// Features returns every indexed feature.
func (s *IndexedSource) Features(ctx context.Context) ([]SourceFeature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.index.features, nil
}

// FeaturesInBounds returns the features whose bound intersects b.
func (s *IndexedSource) FeaturesInBounds(ctx context.Context, b orb.Bound) ([]SourceFeature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.index.Query(b), nil
}

// Index returns the underlying index.
func (s *IndexedSource) Index() *Index { return s.index }
