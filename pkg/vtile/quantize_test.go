package vtile

import (
	"errors"
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clippedFeature(layer string, id uint64, g orb.Geometry) ClippedFeature {
	return ClippedFeature{ID: id, Layer: layer, Geometry: g}
}

// TestQuantizeYFlip tests that planar north maps to tile y = 0
func TestQuantizeYFlip(t *testing.T) {
	features := []ClippedFeature{
		clippedFeature("l", 1, orb.Point{0, 0}),   // south-west corner
		clippedFeature("l", 2, orb.Point{10, 10}), // north-east corner
		clippedFeature("l", 3, orb.Point{5, 5}),
	}

	out, err := QuantizeFeatures(features, unitBox, 4096)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assertPoint(t, orb.Point{0, 4096}, out[0].Geometry)
	assertPoint(t, orb.Point{4096, 0}, out[1].Geometry)
	assertPoint(t, orb.Point{2048, 2048}, out[2].Geometry)
}

func assertPoint(t *testing.T, want orb.Point, got orb.Geometry) {
	t.Helper()
	p, ok := got.(orb.Point)
	require.True(t, ok, "got %T", got)
	assert.InDelta(t, want[0], p[0], 1e-9)
	assert.InDelta(t, want[1], p[1], 1e-9)
}

// TestQuantizeWorldOrigin tests the geographic origin on tile 0/0/0
func TestQuantizeWorldOrigin(t *testing.T) {
	tr := mustTransform(t, CRSGeographic, CRSWebMercator)
	p, err := tr.Forward(orb.Point{0, 0})
	require.NoError(t, err)

	bbox := ComputeBBox(Address{Zoom: 0})
	out, err := QuantizeFeatures([]ClippedFeature{clippedFeature("l", 1, p)}, bbox, DefaultExtent)
	require.NoError(t, err)

	assertPoint(t, orb.Point{2048, 2048}, out[0].Geometry)
}

// TestQuantizeContainment tests that contained input stays within [0, extent]
func TestQuantizeContainment(t *testing.T) {
	bbox := ComputeBBox(Address{Zoom: 6, Col: 33, Row: 21})
	w, h := bbox.Width(), bbox.Height()

	poly := orb.Polygon{
		{
			{bbox.MinX, bbox.MinY},
			{bbox.MaxX, bbox.MinY},
			{bbox.MaxX, bbox.MaxY},
			{bbox.MinX, bbox.MaxY},
			{bbox.MinX, bbox.MinY},
		},
		{
			{bbox.MinX + w*0.25, bbox.MinY + h*0.25},
			{bbox.MinX + w*0.25, bbox.MinY + h*0.75},
			{bbox.MinX + w*0.75, bbox.MinY + h*0.75},
			{bbox.MinX + w*0.25, bbox.MinY + h*0.25},
		},
	}
	line := orb.MultiLineString{
		{{bbox.MinX, bbox.MaxY}, {bbox.MaxX, bbox.MinY}},
		{{bbox.MinX + w/3, bbox.MinY}, {bbox.MinX + w/3, bbox.MaxY}},
	}

	const extent = 512
	out, err := QuantizeFeatures([]ClippedFeature{
		clippedFeature("a", 1, poly),
		clippedFeature("a", 2, line),
	}, bbox, extent)
	require.NoError(t, err)
	require.Len(t, out, 2)

	const tol = 1e-9
	for _, f := range out {
		_, err := mapGeometry(f.Geometry, func(p orb.Point) (orb.Point, error) {
			if p[0] < -tol || p[0] > extent+tol || p[1] < -tol || p[1] > extent+tol {
				return p, fmt.Errorf("%v outside [0, %d]", p, extent)
			}
			return p, nil
		})
		assert.NoError(t, err)
	}

	// Structure is preserved
	qp := out[0].Geometry.(orb.Polygon)
	require.Len(t, qp, 2)
	assert.Len(t, qp[0], 5)
	assert.Len(t, qp[1], 4)
	qm := out[1].Geometry.(orb.MultiLineString)
	assert.Len(t, qm, 2)

	// Fractional output is not rounded
	assert.InDelta(t, extent/3.0, qm[1][0][0], 1e-9)
}

func TestQuantizeConfigurationErrors(t *testing.T) {
	features := []ClippedFeature{clippedFeature("l", 1, orb.Point{1, 1})}

	_, err := QuantizeFeatures(features, BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 0}, 4096)
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	_, err = QuantizeFeatures(features, unitBox, 0)
	assert.True(t, errors.As(err, &cfgErr))
}

// TestGroupLayers tests first-seen layer order and in-layer feature order
func TestGroupLayers(t *testing.T) {
	clipped := []ClippedFeature{
		clippedFeature("roads", 1, orb.Point{1, 1}),
		clippedFeature("water", 2, orb.Point{2, 2}),
		clippedFeature("roads", 3, orb.Point{3, 3}),
		clippedFeature("parks", 4, orb.Point{4, 4}),
		clippedFeature("water", 5, orb.Point{5, 5}),
	}

	layers, err := Quantize(clipped, unitBox, 4096)
	require.NoError(t, err)
	require.Len(t, layers, 3)

	names := []string{layers[0].Name, layers[1].Name, layers[2].Name}
	assert.Equal(t, []string{"roads", "water", "parks"}, names)

	ids := func(l Layer) []uint64 {
		var out []uint64
		for _, f := range l.Features {
			out = append(out, f.ID)
		}
		return out
	}
	assert.Equal(t, []uint64{1, 3}, ids(layers[0]))
	assert.Equal(t, []uint64{2, 5}, ids(layers[1]))
	assert.Equal(t, []uint64{4}, ids(layers[2]))
	for _, l := range layers {
		assert.Equal(t, uint32(4096), l.Extent)
	}

	layers, err = Quantize(nil, unitBox, 4096)
	require.NoError(t, err)
	assert.Empty(t, layers)
}
