package vtile

import (
	"fmt"

	"github.com/paulmach/orb"
)

// QuantizeFeatures maps clipped planar geometry into tile-local coordinates
// in [0, extent].
//
// x grows eastward from bbox.MinX; y grows downward from bbox.MaxY.
// Coordinates are neither rounded nor clamped, and no feature is dropped.
func QuantizeFeatures(clipped []ClippedFeature, bbox BoundingBox, extent uint32) ([]QuantizedFeature, error) {
	if err := bbox.Validate(); err != nil {
		return nil, err
	}
	if extent == 0 {
		return nil, &ConfigurationError{Field: "extent", Reason: "must be positive"}
	}

	scaleX := float64(extent) / bbox.Width()
	scaleY := float64(extent) / bbox.Height()
	toTile := func(p orb.Point) (orb.Point, error) {
		return orb.Point{
			(p[0] - bbox.MinX) * scaleX,
			(bbox.MaxY - p[1]) * scaleY,
		}, nil
	}

	out := make([]QuantizedFeature, 0, len(clipped))
	for i, f := range clipped {
		g, err := mapGeometry(f.Geometry, toTile)
		if err != nil {
			return nil, fmt.Errorf("quantize feature %d: %w", i, err)
		}
		out = append(out, QuantizedFeature{
			ID:         f.ID,
			Layer:      f.Layer,
			Geometry:   g,
			Attributes: f.Attributes,
		})
	}
	return out, nil
}

// GroupLayers collects features into layers by layer identifier. Layers
// appear in the order their identifier is first seen; features keep their
// relative order.
func GroupLayers(features []QuantizedFeature, extent uint32) []Layer {
	var layers []Layer
	index := make(map[string]int)
	for _, f := range features {
		i, ok := index[f.Layer]
		if !ok {
			i = len(layers)
			index[f.Layer] = i
			layers = append(layers, Layer{Name: f.Layer, Extent: extent})
		}
		layers[i].Features = append(layers[i].Features, f)
	}
	return layers
}

// Quantize maps clipped features into tile coordinates and groups them
// into layers. An empty result means the tile has no content.
func Quantize(clipped []ClippedFeature, bbox BoundingBox, extent uint32) ([]Layer, error) {
	features, err := QuantizeFeatures(clipped, bbox, extent)
	if err != nil {
		return nil, err
	}
	return GroupLayers(features, extent), nil
}
