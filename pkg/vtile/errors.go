package vtile

import (
	"fmt"
)

// ErrInvalidCoordinate indicates a coordinate outside the domain of the
// forward transform.
type ErrInvalidCoordinate struct {
	Lon, Lat float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lon=%f lat=%f (must be finite, |lat| < 90)",
		e.Lon, e.Lat)
}

// ErrInvalidGeometry indicates a source feature whose geometry cannot be
// reprojected or is of an unsupported kind. The feature is skipped and the
// remainder of the tile is still produced.
type ErrInvalidGeometry struct {
	Index  int    // Position of the feature among the tile candidates
	ID     uint64 // Source feature ID, 0 if the source has none
	Reason string
	Err    error
}

func (e *ErrInvalidGeometry) Error() string {
	msg := fmt.Sprintf("feature %d (id %d): invalid geometry: %s", e.Index, e.ID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrInvalidGeometry) Unwrap() error {
	return e.Err
}

// ConfigurationError indicates the pipeline cannot run with the given
// settings, e.g. an unsupported CRS or a degenerate tile bounding box.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// ErrUnsupportedAttribute indicates an attribute value that is not one of
// the scalar kinds carried into a tile.
type ErrUnsupportedAttribute struct {
	Name  string
	Value interface{}
}

func (e *ErrUnsupportedAttribute) Error() string {
	return fmt.Sprintf("attribute %q: unsupported value type %T", e.Name, e.Value)
}
