package source

import (
	"path/filepath"
	"strings"
)

// Open loads a feature source, choosing the reader by file extension.
// An empty layer uses the file's base name.
func Open(path, layer string) (*Memory, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".shp":
		return OpenShapefile(path, layer)
	case ".geojson", ".json":
		return OpenGeoJSON(path, layer)
	default:
		return nil, &ErrUnsupportedFormat{Path: path, Ext: ext}
	}
}
