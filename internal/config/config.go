// Package config loads the tile server configuration from YAML.
package config

import (
	"fmt"
	"net"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/asifgis/shp-mvt-test/pkg/vtile"
)

// Config holds settings for the tile server and the one-shot renderer.
type Config struct {
	Listen    string `yaml:"listen"`
	Extent    uint32 `yaml:"extent"`
	SourceCRS string `yaml:"source_crs"`
	TargetCRS string `yaml:"target_crs"`

	// Workers is the per-tile clipping parallelism.
	Workers int `yaml:"workers"`

	// Index builds an R-tree over the source at startup.
	Index bool `yaml:"index"`

	// Strict answers 404 for addresses outside the tile pyramid.
	Strict bool `yaml:"strict"`

	Gzip      bool   `yaml:"gzip"`
	StaticDir string `yaml:"static_dir"`
	IndexFile string `yaml:"index_file"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text or json

	Source Source `yaml:"source"`
}

// Source locates the feature data.
type Source struct {
	Path  string `yaml:"path"`
	Layer string `yaml:"layer"` // Defaults to the file's base name
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:    "0.0.0.0:8000",
		Extent:    vtile.DefaultExtent,
		SourceCRS: vtile.CRSGeographic,
		TargetCRS: vtile.CRSWebMercator,
		Workers:   1,
		Index:     true,
		StaticDir: "static",
		IndexFile: "static/map1.html",
		LogLevel:  "info",
		LogFormat: "text",
		Source: Source{
			Path: "shp/test_shp.shp",
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &LoadError{File: path, Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, &LoadError{File: path, Message: "invalid configuration", Cause: err}
	}
	return cfg, nil
}

// Validate checks field values. CRS pairs are checked by building the
// transform, so the error matches what tile generation would report.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return &vtile.ConfigurationError{Field: "listen", Reason: err.Error()}
	}
	if c.Extent == 0 {
		return &vtile.ConfigurationError{Field: "extent", Reason: "must be positive"}
	}
	if c.Workers < 0 {
		return &vtile.ConfigurationError{Field: "workers", Reason: "must not be negative"}
	}
	if c.Source.Path == "" {
		return &vtile.ConfigurationError{Field: "source.path", Reason: "required"}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return &vtile.ConfigurationError{Field: "log_level", Reason: err.Error()}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return &vtile.ConfigurationError{Field: "log_format", Reason: fmt.Sprintf("unknown format %q", c.LogFormat)}
	}
	if _, err := vtile.NewTransform(c.SourceCRS, c.TargetCRS); err != nil {
		return err
	}
	return nil
}

// Options converts the configuration into generator options.
func (c Config) Options(logger logrus.FieldLogger) vtile.Options {
	return vtile.Options{
		Extent:    c.Extent,
		SourceCRS: c.SourceCRS,
		TargetCRS: c.TargetCRS,
		Workers:   c.Workers,
		Logger:    logger,
	}
}

// Logger builds a logrus logger with the configured level and format.
func (c Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// LoadError describes a configuration file that could not be used.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
