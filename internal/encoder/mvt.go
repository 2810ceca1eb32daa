// Package encoder serialises generated tiles as Mapbox Vector Tiles.
package encoder

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"

	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

// ContentType is the media type of an encoded tile.
const ContentType = "application/vnd.mapbox-vector-tile"

// mvtVersion is the Mapbox Vector Tile format version written to layers.
const mvtVersion = 2

// MVT encodes layers with the Mapbox Vector Tile protobuf format.
type MVT struct {
	// Gzip compresses the encoded tile.
	Gzip bool
}

// Encode serialises layers. Coordinates are rounded to the integer tile
// grid here; parts that collapse when rounded are dropped. An empty layer
// slice returns nil with no error.
func (e MVT) Encode(layers []vtile.Layer) ([]byte, error) {
	if len(layers) == 0 {
		return nil, nil
	}

	out := make(mvt.Layers, 0, len(layers))
	for _, l := range layers {
		layer := &mvt.Layer{
			Name:     l.Name,
			Version:  mvtVersion,
			Extent:   l.Extent,
			Features: make([]*geojson.Feature, 0, len(l.Features)),
		}
		for _, f := range l.Features {
			g := roundGeometry(f.Geometry)
			if g == nil {
				continue
			}
			feature := geojson.NewFeature(g)
			if f.ID != 0 {
				feature.ID = f.ID
			}
			feature.Properties = geojson.Properties(f.Attributes.Map())
			layer.Features = append(layer.Features, feature)
		}
		out = append(out, layer)
	}

	var (
		data []byte
		err  error
	)
	if e.Gzip {
		data, err = mvt.MarshalGzipped(out)
	} else {
		data, err = mvt.Marshal(out)
	}
	if err != nil {
		return nil, fmt.Errorf("encode mvt: %w", err)
	}
	return data, nil
}

// roundGeometry snaps g to integer coordinates, removing repeated points.
// It returns nil if nothing valid remains.
func roundGeometry(g orb.Geometry) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		return roundPoint(g)
	case orb.MultiPoint:
		mp := make(orb.MultiPoint, len(g))
		for i, p := range g {
			mp[i] = roundPoint(p)
		}
		return mp
	case orb.LineString:
		if ls := roundLine(g); ls != nil {
			return ls
		}
	case orb.MultiLineString:
		mls := make(orb.MultiLineString, 0, len(g))
		for _, ls := range g {
			if r := roundLine(ls); r != nil {
				mls = append(mls, r)
			}
		}
		if len(mls) > 0 {
			return mls
		}
	case orb.Polygon:
		if p := roundPolygon(g); p != nil {
			return p
		}
	case orb.MultiPolygon:
		mp := make(orb.MultiPolygon, 0, len(g))
		for _, p := range g {
			if r := roundPolygon(p); r != nil {
				mp = append(mp, r)
			}
		}
		if len(mp) > 0 {
			return mp
		}
	}
	return nil
}

func roundPoint(p orb.Point) orb.Point {
	return orb.Point{math.Round(p[0]), math.Round(p[1])}
}

func roundPoints(pts []orb.Point) []orb.Point {
	out := make([]orb.Point, 0, len(pts))
	for _, p := range pts {
		q := roundPoint(p)
		if len(out) > 0 && out[len(out)-1] == q {
			continue
		}
		out = append(out, q)
	}
	return out
}

func roundLine(ls orb.LineString) orb.LineString {
	pts := roundPoints(ls)
	if len(pts) < 2 {
		return nil
	}
	return orb.LineString(pts)
}

// roundPolygon drops rings with fewer than three distinct vertices. The
// polygon is dropped with its exterior.
//
// Tile y grows downward, so the exterior must have positive area in tile
// coordinates (orb.CCW) and holes negative area.
func roundPolygon(p orb.Polygon) orb.Polygon {
	var out orb.Polygon
	for i, r := range p {
		ring := orb.Ring(roundPoints(r))
		if len(ring) < 4 || ring.Orientation() == 0 {
			if i == 0 {
				return nil
			}
			continue
		}
		want := orb.CW
		if i == 0 {
			want = orb.CCW
		}
		if ring.Orientation() != want {
			ring.Reverse()
		}
		out = append(out, ring)
	}
	return out
}
