package vtile

import (
	"github.com/sirupsen/logrus"
)

// DefaultExtent is the conventional tile-local coordinate resolution.
const DefaultExtent = 4096

// Options configures tile generation.
type Options struct {
	// Extent is the tile-local coordinate range [0, Extent].
	Extent uint32

	// SourceCRS is the CRS of the feature source geometry.
	// Default is EPSG:4326.
	SourceCRS string

	// TargetCRS is the planar CRS used for clipping and quantization.
	// Default is EPSG:3857.
	TargetCRS string

	// Workers is the number of goroutines projecting and clipping features
	// within one tile. 0 or 1 evaluates features sequentially.
	// Output order does not depend on this setting.
	Workers int

	// Logger receives per-feature skip reports. Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		Extent:    DefaultExtent,
		SourceCRS: CRSGeographic,
		TargetCRS: CRSWebMercator,
		Workers:   1,
		Logger:    logrus.StandardLogger(),
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Extent == 0 {
		o.Extent = d.Extent
	}
	if o.SourceCRS == "" {
		o.SourceCRS = d.SourceCRS
	}
	if o.TargetCRS == "" {
		o.TargetCRS = d.TargetCRS
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	return o
}
