// Package vtile converts geographic vector features into tile-local
// geometry for a zoom/column/row tile address.
//
// The pipeline has three stages, each a pure function of its input:
//
//  1. ComputeBBox: tile address → planar (Web Mercator) bounding box
//  2. Clipper.Process: reproject each feature and clip it to the box
//  3. Quantize: map clipped geometry into [0, Extent] tile coordinates,
//     grouped into layers
//
// Generator composes the stages over a FeatureSource.
//
// # Basic Usage
//
//	// src is any FeatureSource, e.g. a shapefile reader
//	gen, err := vtile.NewGenerator(src, vtile.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tile, err := gen.Generate(ctx, vtile.Address{Zoom: 14, Col: 8800, Row: 5373})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if tile.Empty() {
//	    // respond with "no content"
//	}
//	for _, layer := range tile.Layers {
//	    fmt.Printf("%s: %d features\n", layer.Name, len(layer.Features))
//	}
//
// # Geometry
//
// Geometry is carried as orb.Geometry. Point, MultiPoint, LineString,
// MultiLineString, Polygon and MultiPolygon are supported by every stage;
// Ring and Bound are treated as polygons. Clipping may change the type:
// a line leaving and re-entering the tile becomes a MultiLineString.
//
// # Errors
//
// A feature whose geometry cannot be reprojected is skipped and reported
// as *ErrInvalidGeometry in Tile.Skipped. A tile with no remaining
// features is not an error: Tile.Empty returns true. A degenerate
// bounding box fails the tile with *ConfigurationError.
//
// # Spatial Index
//
// Every request reads the whole source unless the source implements
// BoundedSource. Wrap a source with NewIndexedSource to build an R-tree
// over feature bounds once; the generated tiles are identical.
//
// # Poles
//
// Tile edge latitudes are clamped to ±MaxTileLatitude before projection,
// so addresses outside the pyramid still give finite boxes. Source
// coordinates at or beyond ±90° latitude are invalid.
package vtile
