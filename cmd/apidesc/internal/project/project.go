// Package project loads the configuration and handler directives shared by
// the apidesc subcommands.
package project

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/broady/apidesc/apigen"
	"github.com/broady/apidesc/internal/directive"
)

// Globals are the flags shared by every subcommand.
type Globals struct {
	Config  string `help:"Configuration file (default: apidesc.yaml if present)." short:"c"`
	Package string `help:"Package to scan (default: current directory)." short:"p" default:"."`
	ID      string `help:"API description ID (overrides the configuration file)."`
	Verbose bool   `help:"Log debug messages." short:"v"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

// Out returns the writer for command output.
func (g *Globals) Out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// Logger returns a text logger on stderr.
func (g *Globals) Logger() *slog.Logger {
	w := g.Stderr
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if g.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Project is a loaded package ready for generation.
type Project struct {
	// Config has relative directories resolved against the config file.
	Config *apigen.Config

	// Directives are the handlers found in the package.
	Directives *directive.Result

	// Generator has every handler added.
	Generator *apigen.Generator
}

// Load reads the configuration file and parses the package.
// Without --config, apidesc.yaml is read if it exists.
func Load(g *Globals) (*Project, error) {
	logger := g.Logger()

	path, explicit := g.Config, g.Config != ""
	if !explicit {
		path = apigen.DefaultConfigFile
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return nil, err
	}
	if g.ID != "" {
		cfg.ID = g.ID
	}

	result, err := directive.Parse(g.Package)
	if err != nil {
		return nil, fmt.Errorf("parse directives: %w", err)
	}
	if len(result.Handlers) == 0 {
		return nil, fmt.Errorf("no //api:handler directives found in %s", result.PackagePath)
	}

	gen := apigen.FromConfig(*cfg).WithLogger(logger)
	for _, h := range result.Handlers {
		logger.Debug("found handler", slog.String("type", h.TypeName), slog.String("path", h.Path),
			slog.Int("methods", len(h.Spec.Methods)))
		gen.Spec(h.Path, h.Spec)
	}
	return &Project{Config: cfg, Directives: result, Generator: gen}, nil
}

func loadConfig(path string, explicit bool) (*apigen.Config, error) {
	cfg, err := apigen.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return &apigen.Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	base := filepath.Dir(path)
	for _, dir := range []*string{&cfg.BundleDir, &cfg.OutDir} {
		if *dir != "" && !filepath.IsAbs(*dir) {
			*dir = filepath.Join(base, *dir)
		}
	}
	return cfg, nil
}
