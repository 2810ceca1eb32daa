package main

import (
	"context"
	"fmt"
	"log"

	"github.com/paulmach/orb"

	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

// harbours is a fixed feature source.
type harbours []vtile.SourceFeature

func (harbours) Name() string { return "harbours" }
func (harbours) CRS() string  { return vtile.CRSGeographic }
func (h harbours) Features(ctx context.Context) ([]vtile.SourceFeature, error) {
	return h, nil
}

func main() {
	src := harbours{
		{ID: 1, Geometry: orb.Point{4.40, 51.90}, Attributes: vtile.Attributes{
			{Name: "name", Value: vtile.String("Rotterdam")},
		}},
		{ID: 2, Geometry: orb.Point{9.97, 53.54}, Attributes: vtile.Attributes{
			{Name: "name", Value: vtile.String("Hamburg")},
		}},
	}

	// Create generator
	gen, err := vtile.NewGenerator(src, vtile.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Generate tile 5/16/10 (North Sea)
	addr := vtile.Address{Zoom: 5, Col: 16, Row: 10}
	tile, err := gen.Generate(context.Background(), addr)
	if err != nil {
		log.Fatal(err)
	}

	// Print tile info
	fmt.Printf("Tile: %s\n", tile.Address)
	fmt.Printf("BBox: [%.1f,%.1f] to [%.1f,%.1f]\n",
		tile.BBox.MinX, tile.BBox.MinY,
		tile.BBox.MaxX, tile.BBox.MaxY)

	for _, layer := range tile.Layers {
		fmt.Printf("Layer %s (extent %d)\n", layer.Name, layer.Extent)
		for _, f := range layer.Features {
			name, _ := f.Attributes.Get("name")
			fmt.Printf("  %s at %v\n", name, f.Geometry)
		}
	}
}
