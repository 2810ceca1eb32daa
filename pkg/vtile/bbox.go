package vtile

import (
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// MaxTileLatitude bounds the latitudes of tile edges before projection.
//
// Tiles inside the pyramid never reach it (their extreme edge is
// ±85.0511°). Rows outside the pyramid approach ±90°, where Web Mercator
// diverges; clamping keeps their boxes finite.
const MaxTileLatitude = 89.9

// Address identifies one tile in the quadtree pyramid.
//
// Col and Row are not range-checked by the core: an address outside
// 0 ≤ col, row < 2^zoom yields a bounding box in an unusual location.
type Address struct {
	Zoom uint32
	Col  int64
	Row  int64
}

// ParseAddress parses decimal zoom, column and row strings.
func ParseAddress(z, x, y string) (Address, error) {
	zoom, err := strconv.ParseUint(z, 10, 32)
	if err != nil {
		return Address{}, fmt.Errorf("parse zoom %q: %w", z, err)
	}
	col, err := strconv.ParseInt(x, 10, 64)
	if err != nil {
		return Address{}, fmt.Errorf("parse column %q: %w", x, err)
	}
	row, err := strconv.ParseInt(y, 10, 64)
	if err != nil {
		return Address{}, fmt.Errorf("parse row %q: %w", y, err)
	}
	return Address{Zoom: uint32(zoom), Col: col, Row: row}, nil
}

// Valid returns true if column and row are inside the pyramid at this zoom.
func (a Address) Valid() bool {
	if a.Col < 0 || a.Row < 0 {
		return false
	}
	if a.Zoom >= 63 {
		return true
	}
	n := int64(1) << a.Zoom
	return a.Col < n && a.Row < n
}

func (a Address) String() string {
	return fmt.Sprintf("%d/%d/%d", a.Zoom, a.Col, a.Row)
}

// BoundingBox is an axis-aligned rectangle in the planar projected CRS.
type BoundingBox struct {
	MinX float64 // Western edge
	MinY float64 // Southern edge
	MaxX float64 // Eastern edge
	MaxY float64 // Northern edge
}

// Width returns the east-west extent.
func (b BoundingBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the north-south extent.
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

// Bound returns the box as an orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinX, b.MinY},
		Max: orb.Point{b.MaxX, b.MaxY},
	}
}

// Contains returns true if p is inside the box or on its boundary.
func (b BoundingBox) Contains(p orb.Point) bool {
	return p[0] >= b.MinX && p[0] <= b.MaxX &&
		p[1] >= b.MinY && p[1] <= b.MaxY
}

// Intersects returns true if the given bound touches or overlaps the box.
func (b BoundingBox) Intersects(other orb.Bound) bool {
	return !(other.Max[0] < b.MinX ||
		other.Min[0] > b.MaxX ||
		other.Max[1] < b.MinY ||
		other.Min[1] > b.MaxY)
}

// Expand returns a new box grown by margin planar units in all directions.
func (b BoundingBox) Expand(margin float64) BoundingBox {
	return BoundingBox{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
	}
}

// Validate returns a *ConfigurationError if quantization over the box is
// undefined.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.MinX, b.MinY, b.MaxX, b.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigurationError{Field: "bbox", Reason: fmt.Sprintf("non-finite edge in %+v", b)}
		}
	}
	if !(b.Width() > 0) || !(b.Height() > 0) {
		return &ConfigurationError{Field: "bbox", Reason: fmt.Sprintf("degenerate box %+v", b)}
	}
	return nil
}

// TileLonLat returns the geographic rectangle of the tile in degrees, with
// latitudes clamped to ±MaxTileLatitude.
func TileLonLat(addr Address) orb.Bound {
	n := math.Exp2(float64(addr.Zoom))
	col := float64(addr.Col)
	row := float64(addr.Row)

	lonLeft := col/n*360.0 - 180.0
	lonRight := (col+1)/n*360.0 - 180.0

	latTop := clampLat(tileLat(row, n))
	latBottom := clampLat(tileLat(row+1, n))

	return orb.Bound{
		Min: orb.Point{lonLeft, latBottom},
		Max: orb.Point{lonRight, latTop},
	}
}

// ComputeBBox returns the planar bounding box of a tile.
//
// The geographic corners are projected to Web Mercator and the box is
// formed from the projected extrema.
//
// Example:
//
//	bbox := vtile.ComputeBBox(vtile.Address{Zoom: 0})
//	// bbox covers ±20037508.34 on both axes
func ComputeBBox(addr Address) BoundingBox {
	geo := TileLonLat(addr)
	corners := [4]orb.Point{
		mercator(orb.Point{geo.Min[0], geo.Min[1]}),
		mercator(orb.Point{geo.Min[0], geo.Max[1]}),
		mercator(orb.Point{geo.Max[0], geo.Min[1]}),
		mercator(orb.Point{geo.Max[0], geo.Max[1]}),
	}

	bbox := BoundingBox{
		MinX: corners[0][0], MaxX: corners[0][0],
		MinY: corners[0][1], MaxY: corners[0][1],
	}
	for _, c := range corners[1:] {
		bbox.MinX = math.Min(bbox.MinX, c[0])
		bbox.MaxX = math.Max(bbox.MaxX, c[0])
		bbox.MinY = math.Min(bbox.MinY, c[1])
		bbox.MaxY = math.Max(bbox.MaxY, c[1])
	}
	return bbox
}

// tileLat is the inverse Mercator latitude of a row edge, in degrees.
func tileLat(row, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1-2*row/n))) * 180.0 / math.Pi
}

func clampLat(lat float64) float64 {
	return math.Max(-MaxTileLatitude, math.Min(MaxTileLatitude, lat))
}
