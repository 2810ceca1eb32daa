package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/paulmach/orb"

	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

// grid is a fixed feature source of short lines covering Europe.
type grid []vtile.SourceFeature

func (grid) Name() string { return "grid" }
func (grid) CRS() string  { return vtile.CRSGeographic }
func (g grid) Features(ctx context.Context) ([]vtile.SourceFeature, error) {
	return g, nil
}

func main() {
	var src grid
	for i := 0; i < 100000; i++ {
		lon := -10 + float64(i%400)*0.1
		lat := 35 + float64(i/400)*0.1
		src = append(src, vtile.SourceFeature{
			ID:       uint64(i + 1),
			Geometry: orb.LineString{{lon, lat}, {lon + 0.05, lat + 0.05}},
		})
	}

	// Build R-tree index once (source is read here)
	indexed, err := vtile.NewIndexedSource(context.Background(), src)
	if err != nil {
		log.Fatal(err)
	}
	b, _ := indexed.Index().Bounds()
	fmt.Printf("Indexed %d features, bounds %v\n", indexed.Index().Count(), b)

	// Generator uses FeaturesInBounds for candidates (O(log n))
	gen, err := vtile.NewGenerator(indexed, vtile.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}

	for _, addr := range []vtile.Address{
		{Zoom: 10, Col: 526, Row: 350},
		{Zoom: 12, Col: 2104, Row: 1400},
	} {
		start := time.Now()
		tile, err := gen.Generate(context.Background(), addr)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Tile %s: %d features in %v\n", addr, tile.FeatureCount(), time.Since(start))
	}
}
