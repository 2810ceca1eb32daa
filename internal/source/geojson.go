package source

import (
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tysonmote/gommap"

	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

// OpenGeoJSON loads a GeoJSON FeatureCollection or single Feature.
//
// The file is memory-mapped for decoding and unmapped before returning.
// GeoJSON coordinates are always lon/lat, so the source CRS is EPSG:4326.
// Features with null or unsupported geometry, or with non-scalar
// properties, are left out and reported by Skipped.
func OpenGeoJSON(path, layer string) (*Memory, error) {
	fc, err := readFeatureCollection(path)
	if err != nil {
		return nil, err
	}

	src := &Memory{
		name: layerName(path, layer),
		crs:  vtile.CRSGeographic,
	}
	for i, f := range fc.Features {
		sf, err := convertGeoJSON(f)
		if err != nil {
			src.skipped = append(src.skipped, &ErrRecord{Record: i, Reason: "feature not loaded", Err: err})
			continue
		}
		src.features = append(src.features, sf)
	}
	return src, nil
}

func readFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geojson: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat geojson: %w", err)
	}
	// Zero-length files cannot be mapped
	if info.Size() == 0 {
		return nil, fmt.Errorf("decode geojson %s: empty file", path)
	}

	mmap, err := gommap.Map(file.Fd(), gommap.PROT_READ, gommap.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("map geojson: %w", err)
	}
	defer mmap.UnsafeUnmap()

	fc, err := geojson.UnmarshalFeatureCollection(mmap)
	if err == nil {
		return fc, nil
	}
	f, ferr := geojson.UnmarshalFeature(mmap)
	if ferr != nil {
		return nil, fmt.Errorf("decode geojson %s: %w", path, err)
	}
	fc = geojson.NewFeatureCollection()
	fc.Append(f)
	return fc, nil
}

func convertGeoJSON(f *geojson.Feature) (vtile.SourceFeature, error) {
	if f.Geometry == nil {
		return vtile.SourceFeature{}, fmt.Errorf("null geometry")
	}
	if _, ok := f.Geometry.(orb.Collection); ok {
		return vtile.SourceFeature{}, fmt.Errorf("unsupported geometry type %s", f.Geometry.GeoJSONType())
	}

	attrs, err := vtile.AttributesFromMap(f.Properties)
	if err != nil {
		return vtile.SourceFeature{}, err
	}

	return vtile.SourceFeature{
		ID:         featureID(f.ID),
		Geometry:   f.Geometry,
		Attributes: attrs,
	}, nil
}

// featureID returns a numeric GeoJSON id, or 0 for string or missing ids.
func featureID(id interface{}) uint64 {
	switch v := id.(type) {
	case float64:
		if v >= 0 && v == math.Trunc(v) && v < 1<<53 {
			return uint64(v)
		}
	case int:
		if v >= 0 {
			return uint64(v)
		}
	case int64:
		if v >= 0 {
			return uint64(v)
		}
	case uint64:
		return v
	}
	return 0
}
