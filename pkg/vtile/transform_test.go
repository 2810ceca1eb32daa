package vtile

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTransform(t *testing.T, source, target string) *Transform {
	t.Helper()
	tr, err := NewTransform(source, target)
	require.NoError(t, err)
	return tr
}

func TestNewTransform(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		target     string
		wantErr    bool
		geographic bool
	}{
		{name: "wgs84 to mercator", source: "EPSG:4326", target: "EPSG:3857", geographic: true},
		{name: "crs84 alias", source: "urn:ogc:def:crs:OGC:1.3:CRS84", target: "epsg:3857", geographic: true},
		{name: "google alias target", source: "EPSG:4326", target: "EPSG:900913", geographic: true},
		{name: "planar source", source: "EPSG:3857", target: "EPSG:3857"},
		{name: "unknown source", source: "EPSG:27700", target: "EPSG:3857", wantErr: true},
		{name: "geographic target", source: "EPSG:4326", target: "EPSG:4326", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTransform(tt.source, tt.target)
			if tt.wantErr {
				var cfgErr *ConfigurationError
				require.True(t, errors.As(err, &cfgErr), "want *ConfigurationError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.geographic, tr.Geographic())
			assert.Equal(t, tt.source, tr.Source())
			assert.Equal(t, tt.target, tr.Target())
		})
	}
}

func TestForward(t *testing.T) {
	tr := mustTransform(t, CRSGeographic, CRSWebMercator)

	p, err := tr.Forward(orb.Point{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0, p[0], 1e-9)
	assert.InDelta(t, 0, p[1], 1e-9)

	p, err = tr.Forward(orb.Point{180, 0})
	require.NoError(t, err)
	assert.InDelta(t, worldEdge, p[0], 1e-6)

	// Agrees with orb's projection away from the clamp region
	for _, in := range []orb.Point{{13.4, 52.5}, {-122.4, 37.8}, {151.2, -33.9}} {
		got, err := tr.Forward(in)
		require.NoError(t, err)
		want := project.WGS84.ToMercator(in)
		assert.InDelta(t, want[0], got[0], 1e-6)
		assert.InDelta(t, want[1], got[1], 1e-6)
	}
}

func TestForwardDomain(t *testing.T) {
	tr := mustTransform(t, CRSGeographic, CRSWebMercator)

	for _, in := range []orb.Point{
		{0, 90},
		{0, -90},
		{0, 91},
		{math.NaN(), 0},
		{0, math.Inf(1)},
	} {
		_, err := tr.Forward(in)
		var coordErr *ErrInvalidCoordinate
		assert.True(t, errors.As(err, &coordErr), "point %v", in)
	}

	// Close to the pole is large but finite
	p, err := tr.Forward(orb.Point{0, 89.999})
	require.NoError(t, err)
	assert.False(t, math.IsInf(p[1], 0))
}

func TestForwardIdentity(t *testing.T) {
	tr := mustTransform(t, CRSWebMercator, CRSWebMercator)

	p, err := tr.Forward(orb.Point{1234.5, -678.9})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1234.5, -678.9}, p)

	_, err = tr.Forward(orb.Point{math.NaN(), 0})
	assert.Error(t, err)
}

// TestTransformGeometryStructure tests that every geometry kind keeps its shape
func TestTransformGeometryStructure(t *testing.T) {
	tr := mustTransform(t, CRSGeographic, CRSWebMercator)

	polygon := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}},
	}
	input := orb.MultiPolygon{polygon, {{{20, 20}, {21, 20}, {21, 21}, {20, 20}}}}
	original := orb.Clone(input).(orb.MultiPolygon)

	out, err := tr.Geometry(input)
	require.NoError(t, err)

	mp, ok := out.(orb.MultiPolygon)
	require.True(t, ok, "got %T", out)
	require.Len(t, mp, 2)
	require.Len(t, mp[0], 2)
	assert.Len(t, mp[0][0], 5)
	assert.Len(t, mp[0][1], 5)
	assert.Len(t, mp[1][0], 4)

	// Input untouched
	assert.Equal(t, original, input)

	kinds := []orb.Geometry{
		orb.Point{1, 1},
		orb.MultiPoint{{1, 1}, {2, 2}},
		orb.LineString{{1, 1}, {2, 2}},
		orb.MultiLineString{{{1, 1}, {2, 2}}, {{3, 3}, {4, 4}}},
		polygon,
	}
	for _, g := range kinds {
		out, err := tr.Geometry(g)
		require.NoError(t, err)
		assert.Equal(t, g.GeoJSONType(), out.GeoJSONType())
	}

	// Rings and bounds become polygons
	out, err = tr.Geometry(orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
	require.NoError(t, err)
	assert.IsType(t, orb.Polygon{}, out)

	_, err = tr.Geometry(orb.Collection{orb.Point{0, 0}})
	assert.Error(t, err)
	_, err = tr.Geometry(nil)
	assert.Error(t, err)
}
