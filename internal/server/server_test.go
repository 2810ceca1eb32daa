package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asifgis/shp-mvt-test/internal/source"
	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	src := source.NewMemory("harbours", vtile.CRSGeographic, []vtile.SourceFeature{
		{
			ID:       1,
			Geometry: orb.Point{4.4, 51.9},
			Attributes: vtile.Attributes{
				{Name: "name", Value: vtile.String("rotterdam")},
			},
		},
		{ID: 2, Geometry: orb.Point{4.5, 95}},
	})
	opts := vtile.DefaultOptions()
	opts.Logger = logger
	gen, err := vtile.NewGenerator(src, opts)
	require.NoError(t, err)

	return New(cfg, gen, logger), hook
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestTileEndpoint(t *testing.T) {
	srv, hook := newTestServer(t, Config{})

	w := get(srv, "/tiles/0/0/0.pbf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.mapbox-vector-tile", w.Header().Get("Content-Type"))
	assert.Equal(t, "inline; filename=tile_0_0_0.pbf", w.Header().Get("Content-Disposition"))
	assert.Empty(t, w.Header().Get("Content-Encoding"))

	_, err := uuid.Parse(w.Header().Get("X-Request-Id"))
	assert.NoError(t, err)

	layers, err := mvt.Unmarshal(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, "harbours", layers[0].Name)
	require.Len(t, layers[0].Features, 1)
	assert.Equal(t, "rotterdam", layers[0].Features[0].Properties["name"])

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "served tile", entry.Message)
	assert.Equal(t, 1, entry.Data["features"])
	assert.Equal(t, 1, entry.Data["skipped"])
	assert.Equal(t, "0", entry.Data["z"])
}

func TestTileEndpointGzip(t *testing.T) {
	srv, _ := newTestServer(t, Config{Gzip: true})

	w := get(srv, "/tiles/3/4/2.pbf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	layers, err := mvt.UnmarshalGzipped(w.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, layers, 1)
}

func TestTileEndpointStatus(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		path   string
		status int
	}{
		{name: "empty tile", path: "/tiles/3/0/0.pbf", status: http.StatusNoContent},
		{name: "bad zoom", path: "/tiles/a/0/0.pbf", status: http.StatusBadRequest},
		{name: "bad row", path: "/tiles/1/0/1.5.pbf", status: http.StatusBadRequest},
		{name: "missing suffix", path: "/tiles/0/0/0", status: http.StatusNotFound},
		{name: "out of range lenient", path: "/tiles/1/5/0.pbf", status: http.StatusNoContent},
		{name: "out of range strict", cfg: Config{Strict: true}, path: "/tiles/1/5/0.pbf", status: http.StatusNotFound},
		{name: "degenerate box", path: "/tiles/0/0/-3.pbf", status: http.StatusInternalServerError},
		{name: "unknown route", path: "/tiles", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.cfg)
			w := get(srv, tt.path)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, addr vtile.Address) (*vtile.Tile, error) {
	return nil, errors.New("source unavailable")
}

func TestTileEndpointGeneratorError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	srv := New(Config{}, failingGenerator{}, logger)

	w := get(srv, "/tiles/2/1/1.pbf")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.NotEmpty(t, entry.Data["request_id"])
}

func TestStaticAndIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "map1.html"), []byte("<html>map</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.json"), []byte(`{"version": 8}`), 0o644))

	srv, _ := newTestServer(t, Config{
		StaticDir: dir,
		IndexFile: filepath.Join(dir, "map1.html"),
	})

	w := get(srv, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "map")

	w = get(srv, "/static/style.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version": 8}`, w.Body.String())

	w = get(srv, "/static/missing.js")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Only the root path serves the index
	w = get(srv, "/other")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticDisabled(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	assert.Equal(t, http.StatusNotFound, get(srv, "/").Code)
	assert.Equal(t, http.StatusNotFound, get(srv, "/static/x").Code)
}
