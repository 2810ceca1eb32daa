package vtile

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// areaTolerance is the fraction of the outer ring area below which a
// clipped polygon with holes counts as empty.
const areaTolerance = 1e-9

// pointFunc maps one coordinate to another.
type pointFunc func(orb.Point) (orb.Point, error)

// mapGeometry applies fn to every coordinate of g, returning a new geometry
// with identical structure. Rings and bounds are normalised to polygons.
func mapGeometry(g orb.Geometry, fn pointFunc) (orb.Geometry, error) {
	switch g := g.(type) {
	case orb.Point:
		return fn(g)
	case orb.MultiPoint:
		return mapPoints(g, fn)
	case orb.LineString:
		pts, err := mapPoints(g, fn)
		return orb.LineString(pts), err
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(g))
		for i, ls := range g {
			pts, err := mapPoints(ls, fn)
			if err != nil {
				return nil, err
			}
			out[i] = orb.LineString(pts)
		}
		return out, nil
	case orb.Ring:
		return mapPolygon(orb.Polygon{g}, fn)
	case orb.Polygon:
		return mapPolygon(g, fn)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(g))
		for i, p := range g {
			mp, err := mapPolygon(p, fn)
			if err != nil {
				return nil, err
			}
			out[i] = mp
		}
		return out, nil
	case orb.Bound:
		return mapPolygon(g.ToPolygon(), fn)
	case nil:
		return nil, fmt.Errorf("nil geometry")
	default:
		return nil, fmt.Errorf("unsupported geometry type %s", g.GeoJSONType())
	}
}

func mapPoints(pts []orb.Point, fn pointFunc) (orb.MultiPoint, error) {
	out := make(orb.MultiPoint, len(pts))
	for i, p := range pts {
		q, err := fn(p)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}

func mapPolygon(p orb.Polygon, fn pointFunc) (orb.Polygon, error) {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		pts, err := mapPoints(r, fn)
		if err != nil {
			return nil, err
		}
		out[i] = orb.Ring(pts)
	}
	return out, nil
}

// geometryBound returns the bound of g. ok is false for an empty geometry
// or one with non-finite coordinates.
func geometryBound(g orb.Geometry) (b orb.Bound, ok bool) {
	if g == nil || isEmpty(g) {
		return orb.Bound{}, false
	}
	b = g.Bound()
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return orb.Bound{}, false
		}
	}
	return b, true
}

// isEmpty reports whether g carries no coordinates.
func isEmpty(g orb.Geometry) bool {
	switch g := g.(type) {
	case nil:
		return true
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(g) == 0
	case orb.LineString:
		return len(g) == 0
	case orb.MultiLineString:
		for _, ls := range g {
			if len(ls) > 0 {
				return false
			}
		}
		return true
	case orb.Ring:
		return len(g) == 0
	case orb.Polygon:
		return len(g) == 0 || len(g[0]) == 0
	case orb.MultiPolygon:
		for _, p := range g {
			if !isEmpty(p) {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, c := range g {
			if !isEmpty(c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// dropDegenerate removes parts of a clipped geometry that have no extent in
// their own dimension: lines of zero length and rings of zero area. It
// returns nil when nothing remains.
func dropDegenerate(g orb.Geometry) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		return g
	case orb.MultiPoint:
		if len(g) == 0 {
			return nil
		}
		return g
	case orb.LineString:
		if !lineHasLength(g) {
			return nil
		}
		return g
	case orb.MultiLineString:
		out := make(orb.MultiLineString, 0, len(g))
		for _, ls := range g {
			if lineHasLength(ls) {
				out = append(out, ls)
			}
		}
		switch len(out) {
		case 0:
			return nil
		case 1:
			return out[0]
		}
		return out
	case orb.Ring:
		if !ringHasArea(g) {
			return nil
		}
		return orb.Polygon{g}
	case orb.Polygon:
		p := polygonWithArea(g)
		if p == nil {
			return nil
		}
		return p
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, 0, len(g))
		for _, p := range g {
			if kept := polygonWithArea(p); kept != nil {
				out = append(out, kept)
			}
		}
		switch len(out) {
		case 0:
			return nil
		case 1:
			return out[0]
		}
		return out
	default:
		return nil
	}
}

func lineHasLength(ls orb.LineString) bool {
	return len(ls) >= 2 && planar.Length(ls) > 0
}

func ringHasArea(r orb.Ring) bool {
	return len(r) >= 3 && math.Abs(planar.Area(r)) > 0
}

// polygonWithArea drops zero-area holes. Returns nil if the outer ring has
// no area, or if the holes cover all of it.
func polygonWithArea(p orb.Polygon) orb.Polygon {
	if len(p) == 0 || !ringHasArea(p[0]) {
		return nil
	}
	outer := math.Abs(planar.Area(p[0]))
	net := outer
	out := orb.Polygon{p[0]}
	for _, hole := range p[1:] {
		if ringHasArea(hole) {
			out = append(out, hole)
			net -= math.Abs(planar.Area(hole))
		}
	}
	if net <= outer*areaTolerance {
		return nil
	}
	return out
}
