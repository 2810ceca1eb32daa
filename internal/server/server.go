// Package server serves generated vector tiles over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/asifgis/shp-mvt-test/internal/encoder"
	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

// tileSuffix is the file extension of the tile route.
const tileSuffix = ".pbf"

// TileGenerator produces the layers of one tile.
type TileGenerator interface {
	Generate(ctx context.Context, addr vtile.Address) (*vtile.Tile, error)
}

// Config holds configuration for the HTTP server.
type Config struct {
	Addr      string
	Gzip      bool
	Strict    bool   // 404 for addresses outside the pyramid
	StaticDir string // Served under /static/; disabled if empty
	IndexFile string // Served at /; disabled if empty
}

// Server is the HTTP front end of a tile generator.
type Server struct {
	config  Config
	gen     TileGenerator
	encoder encoder.MVT
	log     logrus.FieldLogger
	mux     *http.ServeMux
	server  *http.Server
}

// New creates a server. A nil logger uses the logrus standard logger.
func New(cfg Config, gen TileGenerator, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		config:  cfg,
		gen:     gen,
		encoder: encoder.MVT{Gzip: cfg.Gzip},
		log:     log,
		mux:     http.NewServeMux(),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /tiles/{z}/{x}/{y}", s.handleTile)

	if s.config.StaticDir != "" {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.config.StaticDir))))
	}
	if s.config.IndexFile != "" {
		s.mux.HandleFunc("GET /{$}", s.handleIndex)
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.config.Addr).Info("serving tiles")
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleTile serves /tiles/{z}/{x}/{y}.pbf.
func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	z, x := r.PathValue("z"), r.PathValue("x")
	y, ok := strings.CutSuffix(r.PathValue("y"), tileSuffix)
	log := s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"z":          z,
		"x":          x,
		"y":          y,
	})
	if !ok {
		http.NotFound(w, r)
		return
	}

	addr, err := vtile.ParseAddress(z, x, y)
	if err != nil {
		log.WithError(err).Debug("bad tile address")
		http.Error(w, "Invalid tile address", http.StatusBadRequest)
		return
	}
	if s.config.Strict && !addr.Valid() {
		http.Error(w, "Tile out of range", http.StatusNotFound)
		return
	}

	tile, err := s.gen.Generate(r.Context(), addr)
	if err != nil {
		log.WithError(err).Error("tile generation failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := s.encoder.Encode(tile.Layers)
	if err != nil {
		log.WithError(err).Error("tile encoding failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log = log.WithFields(logrus.Fields{
		"features": tile.FeatureCount(),
		"skipped":  len(tile.Skipped),
		"duration": time.Since(start),
	})
	if len(data) == 0 {
		log.Debug("empty tile")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h := w.Header()
	h.Set("Content-Type", encoder.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf("inline; filename=tile_%d_%d_%d%s", addr.Zoom, addr.Col, addr.Row, tileSuffix))
	if s.config.Gzip {
		h.Set("Content-Encoding", "gzip")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.WithError(err).Warn("write tile")
		return
	}
	log.WithField("bytes", len(data)).Info("served tile")
}

// handleIndex serves the map page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.config.IndexFile)
}
