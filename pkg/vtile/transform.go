package vtile

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// EarthRadius is the sphere radius of Web Mercator in meters.
const EarthRadius = 6378137.0

// Default CRS identifiers.
const (
	CRSGeographic  = "EPSG:4326"
	CRSWebMercator = "EPSG:3857"
)

// CRSKind classifies a recognised coordinate reference system.
type CRSKind int

const (
	// CRSUnknown is returned for identifiers the core does not handle.
	CRSUnknown CRSKind = iota

	// CRSKindGeographic is lon/lat in degrees on WGS-84.
	CRSKindGeographic

	// CRSKindPlanar is spherical Web Mercator in meters.
	CRSKindPlanar
)

// String returns a human-readable name for the CRS kind.
func (k CRSKind) String() string {
	switch k {
	case CRSKindGeographic:
		return "geographic"
	case CRSKindPlanar:
		return "planar"
	default:
		return "unknown"
	}
}

// ClassifyCRS maps a CRS identifier to its kind. Matching is case-insensitive.
func ClassifyCRS(id string) CRSKind {
	switch strings.ToUpper(strings.TrimSpace(id)) {
	case "EPSG:4326", "OGC:CRS84", "URN:OGC:DEF:CRS:OGC:1.3:CRS84", "WGS84":
		return CRSKindGeographic
	case "EPSG:3857", "EPSG:900913", "EPSG:3785", "URN:OGC:DEF:CRS:EPSG::3857":
		return CRSKindPlanar
	default:
		return CRSUnknown
	}
}

// Transform reprojects geometry from a source CRS into the planar CRS.
//
// A Transform is immutable after construction and safe for concurrent use.
// Each Generator owns one; no process-wide transformer exists.
type Transform struct {
	source   string
	target   string
	identity bool
}

// NewTransform creates a transform between two CRS identifiers.
//
// The target must be planar. A geographic source uses the spherical Web
// Mercator forward projection; a planar source is passed through unchanged.
//
// Example:
//
//	t, err := vtile.NewTransform(vtile.CRSGeographic, vtile.CRSWebMercator)
//	p, err := t.Forward(orb.Point{13.4, 52.5})
func NewTransform(source, target string) (*Transform, error) {
	sk := ClassifyCRS(source)
	if sk == CRSUnknown {
		return nil, &ConfigurationError{Field: "source_crs", Reason: fmt.Sprintf("unsupported CRS %q", source)}
	}
	if ClassifyCRS(target) != CRSKindPlanar {
		return nil, &ConfigurationError{Field: "target_crs", Reason: fmt.Sprintf("target CRS %q is not planar Web Mercator", target)}
	}
	return &Transform{
		source:   source,
		target:   target,
		identity: sk == CRSKindPlanar,
	}, nil
}

// Source returns the source CRS identifier.
func (t *Transform) Source() string { return t.source }

// Target returns the target CRS identifier.
func (t *Transform) Target() string { return t.target }

// Geographic returns true if the source CRS is lon/lat.
func (t *Transform) Geographic() bool { return !t.identity }

// Forward projects one coordinate.
func (t *Transform) Forward(p orb.Point) (orb.Point, error) {
	lon, lat := p[0], p[1]
	if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return orb.Point{}, &ErrInvalidCoordinate{Lon: lon, Lat: lat}
	}
	if t.identity {
		return p, nil
	}
	if lat <= -90 || lat >= 90 {
		return orb.Point{}, &ErrInvalidCoordinate{Lon: lon, Lat: lat}
	}
	return mercator(p), nil
}

// Geometry projects every coordinate of g into a new geometry of the same
// structure. g is not modified.
func (t *Transform) Geometry(g orb.Geometry) (orb.Geometry, error) {
	return mapGeometry(g, t.Forward)
}

// mercator is the spherical Web Mercator forward projection.
func mercator(p orb.Point) orb.Point {
	return orb.Point{
		EarthRadius * p[0] * math.Pi / 180.0,
		EarthRadius * math.Log(math.Tan(math.Pi/4+p[1]*math.Pi/360.0)),
	}
}
