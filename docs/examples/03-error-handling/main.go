package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/paulmach/orb"

	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

type mixed []vtile.SourceFeature

func (mixed) Name() string { return "mixed" }
func (mixed) CRS() string  { return vtile.CRSGeographic }
func (m mixed) Features(ctx context.Context) ([]vtile.SourceFeature, error) {
	return m, nil
}

func main() {
	// Unsupported CRS fails at construction
	opts := vtile.DefaultOptions()
	opts.SourceCRS = "EPSG:27700"
	if _, err := vtile.NewGenerator(mixed{}, opts); err != nil {
		var cfgErr *vtile.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Printf("Expected configuration error on %s: %s", cfgErr.Field, cfgErr.Reason)
		}
	}

	src := mixed{
		{ID: 1, Geometry: orb.Point{10, 10}},
		{ID: 2, Geometry: orb.Point{10, 90}}, // pole is outside Web Mercator
		{ID: 3, Geometry: orb.LineString{{0, 0}, {20, 20}}},
	}
	gen, err := vtile.NewGenerator(src, vtile.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Bad features are skipped, the tile is still produced
	tile, err := gen.Generate(context.Background(), vtile.Address{Zoom: 0})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Features: %d, skipped: %d\n", tile.FeatureCount(), len(tile.Skipped))
	for _, skip := range tile.Skipped {
		var geomErr *vtile.ErrInvalidGeometry
		if errors.As(skip, &geomErr) {
			fmt.Printf("  feature %d (id %d): %s\n", geomErr.Index, geomErr.ID, geomErr.Reason)
		}
	}

	// A row past the pole gives a degenerate box
	_, err = gen.Generate(context.Background(), vtile.Address{Zoom: 0, Row: -5})
	var cfgErr *vtile.ConfigurationError
	if errors.As(err, &cfgErr) {
		log.Printf("Expected error: %v", err)
	}
}
