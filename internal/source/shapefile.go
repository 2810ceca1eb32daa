package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

// OpenShapefile loads an ESRI Shapefile and its DBF attributes.
//
// Coordinates are taken as lon/lat (EPSG:4326); Z and M values are
// dropped. Polygon parts are grouped by ring orientation: each clockwise
// ring starts a polygon and the counter-clockwise rings after it are its
// holes. Rings are stored with exterior counter-clockwise, as in GeoJSON.
func OpenShapefile(path, layer string) (*Memory, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer reader.Close()

	fields := reader.Fields()
	src := &Memory{
		name: layerName(path, layer),
		crs:  vtile.CRSGeographic,
	}

	for reader.Next() {
		n, shape := reader.Shape()
		g, err := shapeGeometry(shape)
		if err != nil {
			src.skipped = append(src.skipped, &ErrRecord{Record: n, Reason: "shape not loaded", Err: err})
			continue
		}

		attrs := make(vtile.Attributes, 0, len(fields))
		for k, f := range fields {
			v, ok := fieldValue(f, reader.ReadAttribute(n, k))
			if !ok {
				continue
			}
			attrs = append(attrs, vtile.Attribute{Name: f.String(), Value: v})
		}

		src.features = append(src.features, vtile.SourceFeature{
			ID:         uint64(n) + 1,
			Geometry:   g,
			Attributes: attrs,
		})
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile %s: %w", path, err)
	}
	return src, nil
}

func shapeGeometry(shape shp.Shape) (orb.Geometry, error) {
	switch s := shape.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}, nil
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}, nil
	case *shp.PointM:
		return orb.Point{s.X, s.Y}, nil
	case *shp.MultiPoint:
		return multiPoint(s.Points), nil
	case *shp.MultiPointZ:
		return multiPoint(s.Points), nil
	case *shp.MultiPointM:
		return multiPoint(s.Points), nil
	case *shp.PolyLine:
		return lines(s.Parts, s.Points), nil
	case *shp.PolyLineZ:
		return lines(s.Parts, s.Points), nil
	case *shp.PolyLineM:
		return lines(s.Parts, s.Points), nil
	case *shp.Polygon:
		return polygons(s.Parts, s.Points), nil
	case *shp.PolygonZ:
		return polygons(s.Parts, s.Points), nil
	case *shp.PolygonM:
		return polygons(s.Parts, s.Points), nil
	case nil, *shp.Null:
		return nil, fmt.Errorf("null shape")
	default:
		return nil, fmt.Errorf("unsupported shape %T", shape)
	}
}

func multiPoint(points []shp.Point) orb.Geometry {
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = orb.Point{p.X, p.Y}
	}
	if len(mp) == 1 {
		return mp[0]
	}
	return mp
}

// splitParts cuts points into the parts given by their start offsets.
func splitParts(parts []int32, points []shp.Point) [][]orb.Point {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || end > int32(len(points)) {
			break
		}
		part := make([]orb.Point, 0, end-start)
		for _, p := range points[start:end] {
			part = append(part, orb.Point{p.X, p.Y})
		}
		out = append(out, part)
	}
	return out
}

func lines(parts []int32, points []shp.Point) orb.Geometry {
	split := splitParts(parts, points)
	mls := make(orb.MultiLineString, len(split))
	for i, part := range split {
		mls[i] = orb.LineString(part)
	}
	if len(mls) == 1 {
		return mls[0]
	}
	return mls
}

func polygons(parts []int32, points []shp.Point) orb.Geometry {
	var mp orb.MultiPolygon
	for _, part := range splitParts(parts, points) {
		ring := orb.Ring(part)
		if len(ring) > 0 && !ring.Closed() {
			ring = append(ring, ring[0])
		}
		if ring.Orientation() == orb.CW || len(mp) == 0 {
			mp = append(mp, orb.Polygon{orient(ring, orb.CCW)})
			continue
		}
		last := len(mp) - 1
		mp[last] = append(mp[last], orient(ring, orb.CW))
	}
	if len(mp) == 1 {
		return mp[0]
	}
	return mp
}

// orient returns r wound in direction o.
func orient(r orb.Ring, o orb.Orientation) orb.Ring {
	if r.Orientation() == o || r.Orientation() == 0 {
		return r
	}
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// fieldValue types a DBF cell by its field type. ok is false for blank or
// unknown cells.
func fieldValue(f shp.Field, raw string) (vtile.Value, bool) {
	s := strings.TrimSpace(strings.Trim(raw, "\x00"))
	if s == "" {
		return vtile.Value{}, false
	}

	switch f.Fieldtype {
	case 'N':
		if f.Precision == 0 {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return vtile.Int(i), true
			}
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return vtile.Float(v), true
		}
		return vtile.String(s), true
	case 'F':
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return vtile.Float(v), true
		}
		return vtile.String(s), true
	case 'L':
		switch s {
		case "T", "t", "Y", "y":
			return vtile.Bool(true), true
		case "F", "f", "N", "n":
			return vtile.Bool(false), true
		}
		return vtile.Value{}, false
	default:
		return vtile.String(s), true
	}
}
