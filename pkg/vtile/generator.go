package vtile

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// FeatureSource supplies the features of one layer.
type FeatureSource interface {
	// Name returns the layer identifier used for features without one.
	Name() string

	// CRS returns the identifier of the source geometry's CRS.
	CRS() string

	// Features returns the full, ordered feature sequence.
	Features(ctx context.Context) ([]SourceFeature, error)
}

// BoundedSource is a FeatureSource that can return only the features whose
// bound intersects a rectangle in the source CRS, in source order.
type BoundedSource interface {
	FeatureSource
	FeaturesInBounds(ctx context.Context, b orb.Bound) ([]SourceFeature, error)
}

// Generator runs the tile pipeline for one feature source: bounding box,
// reprojection and clipping, quantization, layer grouping.
//
// A Generator holds no mutable state; Generate may be called concurrently.
//
// Example:
//
//	gen, err := vtile.NewGenerator(src, vtile.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tile, err := gen.Generate(ctx, vtile.Address{Zoom: 3, Col: 4, Row: 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if tile.Empty() {
//	    // no content
//	}
type Generator struct {
	source    FeatureSource
	transform *Transform
	clipper   *Clipper
	extent    uint32
	log       logrus.FieldLogger
}

// NewGenerator creates a generator. The source CRS is taken from
// opts.SourceCRS when set, otherwise from the source.
func NewGenerator(src FeatureSource, opts Options) (*Generator, error) {
	if src == nil {
		return nil, &ConfigurationError{Field: "source", Reason: "nil feature source"}
	}
	if opts.SourceCRS == "" {
		opts.SourceCRS = src.CRS()
	}
	opts = opts.withDefaults()

	t, err := NewTransform(opts.SourceCRS, opts.TargetCRS)
	if err != nil {
		return nil, err
	}

	return &Generator{
		source:    src,
		transform: t,
		clipper:   NewClipper(t, opts),
		extent:    opts.Extent,
		log:       opts.Logger,
	}, nil
}

// Transform returns the generator's reprojection.
func (g *Generator) Transform() *Transform { return g.transform }

// Extent returns the tile-local coordinate resolution.
func (g *Generator) Extent() uint32 { return g.extent }

// Generate produces the layers of one tile.
//
// A tile with no features is returned with Empty() true and a nil error.
// Per-feature failures are collected in Tile.Skipped. The error is non-nil
// only if the feature source fails or the tile's bounding box is
// degenerate (*ConfigurationError).
func (g *Generator) Generate(ctx context.Context, addr Address) (*Tile, error) {
	bbox := ComputeBBox(addr)
	if err := bbox.Validate(); err != nil {
		return nil, fmt.Errorf("tile %s: %w", addr, err)
	}

	features, err := g.candidates(ctx, addr, bbox)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", addr, err)
	}

	clipped, skipped := g.clipper.Process(features, bbox)

	layers, err := Quantize(clipped, bbox, g.extent)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", addr, err)
	}

	g.log.WithFields(logrus.Fields{
		"tile":       addr.String(),
		"candidates": len(features),
		"clipped":    len(clipped),
		"skipped":    len(skipped),
	}).Debug("generated tile")

	return &Tile{
		Address: addr,
		BBox:    bbox,
		Layers:  layers,
		Skipped: skipped,
	}, nil
}

// candidates reads the features that may intersect the tile.
func (g *Generator) candidates(ctx context.Context, addr Address, bbox BoundingBox) ([]SourceFeature, error) {
	var (
		features []SourceFeature
		err      error
	)
	if bs, ok := g.source.(BoundedSource); ok {
		query := bbox.Bound()
		if g.transform.Geographic() {
			query = TileLonLat(addr)
		}
		features, err = bs.FeaturesInBounds(ctx, query)
	} else {
		features, err = g.source.Features(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", g.source.Name(), err)
	}

	name := g.source.Name()
	out := make([]SourceFeature, len(features))
	for i, f := range features {
		if f.Layer == "" {
			f.Layer = name
		}
		out[i] = f
	}
	return out, nil
}
