package vtile

import (
	"github.com/paulmach/orb/clip"
	"github.com/sirupsen/logrus"
)

// Clipper reprojects source features into the planar CRS and clips them to
// a tile bounding box.
type Clipper struct {
	transform *Transform
	workers   int
	log       logrus.FieldLogger
}

// NewClipper creates a clipper using the given transform. Only the Workers
// and Logger fields of opts are used.
func NewClipper(t *Transform, opts Options) *Clipper {
	opts = opts.withDefaults()
	return &Clipper{
		transform: t,
		workers:   opts.Workers,
		log:       opts.Logger,
	}
}

// clipResult is the outcome of processing a single feature.
type clipResult struct {
	feature ClippedFeature
	keep    bool
	err     error
}

// Process reprojects and clips features against bbox.
//
// Features that do not intersect bbox, or whose clipped geometry is empty
// or degenerate, are discarded. Features whose geometry cannot be
// reprojected are skipped and reported in the returned error slice; they
// never stop the remaining features from being processed.
//
// The output keeps the relative order of the input.
//
// Example:
//
//	clipped, skipped := clipper.Process(features, vtile.ComputeBBox(addr))
//	if len(skipped) > 0 {
//	    fmt.Printf("skipped %d features\n", len(skipped))
//	}
func (c *Clipper) Process(features []SourceFeature, bbox BoundingBox) ([]ClippedFeature, []error) {
	results := make([]clipResult, len(features))
	evaluate(len(features), c.workers, func(i int) {
		results[i] = c.processOne(i, features[i], bbox)
	})

	clipped := make([]ClippedFeature, 0, len(features))
	var errs []error
	for i, r := range results {
		if r.err != nil {
			c.log.WithFields(logrus.Fields{
				"layer":   features[i].Layer,
				"feature": i,
			}).WithError(r.err).Warn("skipping feature")
			errs = append(errs, r.err)
			continue
		}
		if r.keep {
			clipped = append(clipped, r.feature)
		}
	}
	return clipped, errs
}

func (c *Clipper) processOne(index int, f SourceFeature, bbox BoundingBox) clipResult {
	projected, err := c.transform.Geometry(f.Geometry)
	if err != nil {
		return clipResult{err: &ErrInvalidGeometry{
			Index:  index,
			ID:     f.ID,
			Reason: "reprojection failed",
			Err:    err,
		}}
	}

	b, ok := geometryBound(projected)
	if !ok || !bbox.Intersects(b) {
		return clipResult{}
	}

	clipped := clip.Geometry(bbox.Bound(), projected)
	if clipped == nil {
		return clipResult{}
	}
	clipped = dropDegenerate(clipped)
	if clipped == nil {
		return clipResult{}
	}

	return clipResult{
		keep: true,
		feature: ClippedFeature{
			ID:         f.ID,
			Layer:      f.Layer,
			Geometry:   clipped,
			Attributes: f.Attributes,
		},
	}
}
