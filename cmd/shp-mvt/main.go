// Command shp-mvt serves Mapbox Vector Tiles generated on request from a
// Shapefile or GeoJSON file.
//
// Usage:
//
//	shp-mvt [flags]
//
// Flags:
//
//	-config string     YAML configuration file
//	-addr string       Listen address (default "0.0.0.0:8000")
//	-source string     Feature file, .shp, .geojson or .json (default "shp/test_shp.shp")
//	-layer string      Layer name (default: file base name)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-tile string       Render one tile z/x/y and exit
//	-out string        Output file for -tile, "-" for stdout (default "-")
//
// Examples:
//
//	# Serve tiles and the map page on port 8000
//	shp-mvt
//
//	# Serve a GeoJSON file on a custom port
//	shp-mvt -source data/harbours.geojson -addr 127.0.0.1:9000
//
//	# Write tile 3/4/2 to a file
//	shp-mvt -tile 3/4/2 -out tile.pbf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/asifgis/shp-mvt-test/internal/config"
	"github.com/asifgis/shp-mvt-test/internal/encoder"
	"github.com/asifgis/shp-mvt-test/internal/server"
	"github.com/asifgis/shp-mvt-test/internal/source"
	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

var (
	configPath  = flag.String("config", "", "YAML configuration file")
	addr        = flag.String("addr", "", "Listen address (overrides config)")
	sourcePath  = flag.String("source", "", "Feature file (overrides config)")
	layer       = flag.String("layer", "", "Layer name (overrides config)")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
	tileArg     = flag.String("tile", "", "Render one tile z/x/y and exit")
	outPath     = flag.String("out", "-", "Output file for -tile, - for stdout")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("shp-mvt %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return 0
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := newGenerator(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to load source")
		return 1
	}

	if *tileArg != "" {
		if err := renderOne(ctx, gen, cfg, *tileArg, *outPath, log); err != nil {
			log.WithError(err).Error("render failed")
			return 1
		}
		return 0
	}

	if err := serve(ctx, gen, cfg, log); err != nil {
		log.WithError(err).Error("server failed")
		return 1
	}
	return 0
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}

	if *addr != "" {
		cfg.Listen = *addr
	}
	if *sourcePath != "" {
		cfg.Source.Path = *sourcePath
	}
	if *layer != "" {
		cfg.Source.Layer = *layer
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	return cfg, cfg.Validate()
}

// newGenerator loads the feature source and builds the tile generator.
func newGenerator(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*vtile.Generator, error) {
	start := time.Now()
	mem, err := source.Open(cfg.Source.Path, cfg.Source.Layer)
	if err != nil {
		return nil, err
	}
	for _, skip := range mem.Skipped() {
		log.WithField("source", cfg.Source.Path).WithError(skip).Warn("skipping record")
	}

	var src vtile.FeatureSource = mem
	if cfg.Index {
		if src, err = vtile.NewIndexedSource(ctx, mem); err != nil {
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"source":   cfg.Source.Path,
		"layer":    mem.Name(),
		"features": mem.Len(),
		"skipped":  len(mem.Skipped()),
		"indexed":  cfg.Index,
		"duration": time.Since(start),
	}).Info("loaded source")

	return vtile.NewGenerator(src, cfg.Options(log))
}

// parseTileArg parses a z/x/y tile address.
func parseTileArg(s string) (vtile.Address, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return vtile.Address{}, fmt.Errorf("tile %q: want z/x/y", s)
	}
	return vtile.ParseAddress(parts[0], parts[1], parts[2])
}

// renderTile generates and encodes one tile into w. It returns the number
// of bytes written; 0 means the tile is empty.
func renderTile(ctx context.Context, gen *vtile.Generator, enc encoder.MVT, a vtile.Address, w io.Writer) (int, error) {
	tile, err := gen.Generate(ctx, a)
	if err != nil {
		return 0, err
	}
	data, err := enc.Encode(tile.Layers)
	if err != nil {
		return 0, err
	}
	return w.Write(data)
}

func renderOne(ctx context.Context, gen *vtile.Generator, cfg config.Config, arg, out string, log logrus.FieldLogger) error {
	a, err := parseTileArg(arg)
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := renderTile(ctx, gen, encoder.MVT{Gzip: cfg.Gzip}, a, w)
	if err != nil {
		return err
	}
	if n == 0 {
		log.WithField("tile", a.String()).Info("tile is empty")
		return nil
	}
	log.WithFields(logrus.Fields{"tile": a.String(), "bytes": n, "out": out}).Info("wrote tile")
	return nil
}

func serve(ctx context.Context, gen *vtile.Generator, cfg config.Config, log logrus.FieldLogger) error {
	srv := server.New(server.Config{
		Addr:      cfg.Listen,
		Gzip:      cfg.Gzip,
		Strict:    cfg.Strict,
		StaticDir: cfg.StaticDir,
		IndexFile: cfg.IndexFile,
	}, gen, log)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errc
}
