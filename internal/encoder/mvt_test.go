package encoder

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

func testLayers() []vtile.Layer {
	return []vtile.Layer{
		{
			Name:   "harbours",
			Extent: 4096,
			Features: []vtile.QuantizedFeature{
				{
					ID:       3,
					Layer:    "harbours",
					Geometry: orb.Point{2047.6, 10.2},
					Attributes: vtile.Attributes{
						{Name: "name", Value: vtile.String("pier")},
						{Name: "berths", Value: vtile.Int(4)},
					},
				},
				{
					Layer:    "harbours",
					Geometry: orb.LineString{{0, 0}, {100.4, 100.4}, {100.2, 100.1}, {300, 50}},
				},
			},
		},
		{
			Name:   "areas",
			Extent: 4096,
			Features: []vtile.QuantizedFeature{
				{
					ID:       9,
					Layer:    "areas",
					Geometry: orb.Polygon{{{0, 0}, {0, 4096}, {4096, 4096}, {4096, 0}, {0, 0}}},
				},
			},
		},
	}
}

func TestEncode(t *testing.T) {
	data, err := MVT{}.Encode(testLayers())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	layers, err := mvt.Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, layers, 2)

	harbours := layers[0]
	assert.Equal(t, "harbours", harbours.Name)
	assert.Equal(t, uint32(4096), harbours.Extent)
	assert.Equal(t, uint32(2), harbours.Version)
	require.Len(t, harbours.Features, 2)

	// Rounded to the integer grid
	assert.Equal(t, orb.Point{2048, 10}, harbours.Features[0].Geometry)
	assert.Equal(t, "pier", harbours.Features[0].Properties["name"])
	assert.EqualValues(t, 4, harbours.Features[0].Properties["berths"])
	assert.EqualValues(t, 3, harbours.Features[0].ID)

	// Repeated point after rounding removed
	ls, ok := harbours.Features[1].Geometry.(orb.LineString)
	require.True(t, ok, "got %T", harbours.Features[1].Geometry)
	assert.Equal(t, orb.LineString{{0, 0}, {100, 100}, {300, 50}}, ls)

	assert.Equal(t, "areas", layers[1].Name)
	require.Len(t, layers[1].Features, 1)
	assert.Equal(t, "Polygon", layers[1].Features[0].Geometry.GeoJSONType())
}

func TestEncodeGzip(t *testing.T) {
	data, err := MVT{Gzip: true}.Encode(testLayers())
	require.NoError(t, err)
	// gzip magic
	require.True(t, len(data) > 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2])

	layers, err := mvt.UnmarshalGzipped(data)
	require.NoError(t, err)
	assert.Len(t, layers, 2)
}

func TestEncodeEmpty(t *testing.T) {
	data, err := MVT{}.Encode(nil)
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestRoundGeometry(t *testing.T) {
	// A polygon smaller than one grid cell collapses
	tiny := orb.Polygon{{{1.1, 1.1}, {1.2, 1.1}, {1.2, 1.2}, {1.1, 1.1}}}
	assert.Nil(t, roundGeometry(tiny))

	// A collapsing hole is dropped, the exterior kept
	withHole := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{5.1, 5.1}, {5.2, 5.1}, {5.2, 5.2}, {5.1, 5.1}},
	}
	got, ok := roundGeometry(withHole).(orb.Polygon)
	require.True(t, ok)
	assert.Len(t, got, 1)

	assert.Nil(t, roundGeometry(orb.LineString{{1.1, 1.1}, {1.3, 1.2}}))
	assert.Equal(t, orb.MultiPoint{{1, 2}, {3, 4}}, roundGeometry(orb.MultiPoint{{1.4, 1.6}, {3, 4.2}}))
	assert.Nil(t, roundGeometry(orb.Collection{orb.Point{1, 1}}))
}

// TestRoundGeometryWinding tests exterior and hole orientation in tile coordinates
func TestRoundGeometryWinding(t *testing.T) {
	// Exterior wound clockwise, hole counter-clockwise: both reversed
	p := orb.Polygon{
		{{0, 0}, {0, 100}, {100, 100}, {100, 0}, {0, 0}},
		{{10, 10}, {20, 10}, {20, 20}, {10, 20}, {10, 10}},
	}
	got, ok := roundGeometry(p).(orb.Polygon)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, orb.CCW, got[0].Orientation())
	assert.Equal(t, orb.CW, got[1].Orientation())
}
