// Package apigen generates localized API description documents from
// resource handlers.
//
// Example:
//
//	apigen.New("frapi:test").
//	    WithLocales("en", "fr").
//	    WithCatalog(catalog).
//	    Handler("/users", UserHandler{}).
//	    ToDir("./docs/api")
package apigen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/broady/apidesc"
	"github.com/broady/apidesc/annotation"
	"github.com/broady/apidesc/i18n"
	"github.com/broady/apidesc/scan"
	"github.com/broady/apidesc/sink"
)

// Generator provides a fluent API for description generation.
// Create with New or FromConfig and configure with method chaining.
type Generator struct {
	cfg      Config
	dict     i18n.Dictionary
	handlers []handler
	logger   *slog.Logger
}

type handler struct {
	path string
	spec *annotation.Handler
	v    any
}

// New creates a Generator for the API description id.
func New(id string) *Generator {
	return &Generator{cfg: Config{ID: id}}
}

// FromConfig creates a Generator from cfg. If cfg.BundleDir is set, the
// bundles are loaded when the description is generated, unless a catalog is
// set explicitly with WithCatalog.
func FromConfig(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// WithVersion sets the API version.
func (g *Generator) WithVersion(v string) *Generator {
	g.cfg.Version = v
	return g
}

// WithDescription sets the API description. It may be a translation key.
func (g *Generator) WithDescription(d string) *Generator {
	g.cfg.Description = d
	return g
}

// WithLocales sets the locales to render. One document is produced per
// locale.
func (g *Generator) WithLocales(locales ...string) *Generator {
	g.cfg.Locales = locales
	return g
}

// WithDefaultLocale sets the locale tried after a locale's own parents.
func (g *Generator) WithDefaultLocale(locale string) *Generator {
	g.cfg.DefaultLocale = locale
	return g
}

// WithFilePattern sets the document name pattern.
func (g *Generator) WithFilePattern(pattern string) *Generator {
	g.cfg.FilePattern = pattern
	return g
}

// WithCatalog sets the dictionary used to resolve translation keys.
func (g *Generator) WithCatalog(dict i18n.Dictionary) *Generator {
	g.dict = dict
	return g
}

// WithLogger sets the logger for scanning and translation.
// If not set, slog.Default() will be used.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.logger = logger
	return g
}

// Handler adds a handler value implementing annotation.Annotated, served
// under path.
func (g *Generator) Handler(path string, v any) *Generator {
	g.handlers = append(g.handlers, handler{path: path, v: v})
	return g
}

// Spec adds a handler described by an annotation table, served under path.
func (g *Generator) Spec(path string, h annotation.Handler) *Generator {
	g.handlers = append(g.handlers, handler{path: path, spec: &h})
	return g
}

// File is one generated document.
type File struct {
	Path    string
	Locale  language.Tag
	Content []byte
}

// Result holds the outcome of generation.
type Result struct {
	// Description is the assembled API description.
	Description *apidesc.APIDescription

	// Files are the rendered documents in locale order.
	Files []File
}

// Build scans every handler into a new APIDescription.
//
// A failing handler is skipped and leaves no definitions or errors behind.
// The remaining handlers are still scanned and the returned error joins every
// handler failure. The description is returned whenever it could be created.
func (g *Generator) Build() (*apidesc.APIDescription, error) {
	desc, err := apidesc.NewAPIDescription().
		ID(g.cfg.ID).
		Version(g.cfg.Version).
		Description(g.cfg.Description).
		Build()
	if err != nil {
		return nil, err
	}

	scanner := scan.New().WithLogger(g.log())
	var errs []error
	for _, h := range g.handlers {
		var r *apidesc.Resource
		if h.spec != nil {
			r, err = scanner.Mount(h.path, *h.spec, desc)
		} else {
			r, err = scanner.MountType(h.path, h.v, desc)
		}
		if err != nil {
			g.log().Warn("skipping handler", slog.String("path", h.path), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", h.path, err))
			continue
		}
		g.log().Debug("added resource", slog.String("path", h.path), slog.Int("operations", len(r.Operations())))
	}
	return desc, errors.Join(errs...)
}

// Generate renders every locale in memory.
func (g *Generator) Generate() (*Result, error) {
	return g.ToSink(context.Background(), nil)
}

// ToDir renders every locale and writes the documents below dir.
// An empty dir falls back to the configured OutDir.
func (g *Generator) ToDir(dir string) (*Result, error) {
	if dir == "" {
		dir = g.cfg.OutDir
	}
	if dir == "" {
		return nil, apidesc.Configurationf("output directory is required")
	}
	return g.ToSink(context.Background(), sink.NewDir(dir))
}

// ToSink renders every locale and writes the documents to out.
// A nil out only renders.
func (g *Generator) ToSink(ctx context.Context, out sink.Sink) (*Result, error) {
	cfg, err := g.cfg.resolve()
	if err != nil {
		return nil, err
	}
	dict, err := g.dictionary(cfg)
	if err != nil {
		return nil, err
	}

	desc, err := g.Build()
	if err != nil {
		return nil, err
	}

	tr := i18n.NewTranslator(dict, cfg.defaultLocale).WithLogger(g.log())
	result := &Result{Description: desc}
	for _, tag := range cfg.locales {
		content, err := render(desc, tr, tag)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", tag, err)
		}
		f := File{Path: cfg.fileName(tag), Locale: tag, Content: content}
		if out != nil {
			if err := out.WriteFile(ctx, f.Path, f.Content); err != nil {
				return nil, fmt.Errorf("write %s: %w", f.Path, err)
			}
		}
		result.Files = append(result.Files, f)
	}
	return result, nil
}

func (g *Generator) dictionary(cfg *resolved) (i18n.Dictionary, error) {
	if g.dict != nil || cfg.BundleDir == "" {
		return g.dict, nil
	}
	catalog, err := i18n.LoadDir(cfg.BundleDir)
	if err != nil {
		return nil, fmt.Errorf("load bundles: %w", err)
	}
	return catalog, nil
}

// render encodes desc for tag as indented JSON with a trailing newline.
func render(desc *apidesc.APIDescription, tr *i18n.Translator, tag language.Tag) ([]byte, error) {
	raw, err := desc.MarshalLocalized(tr, tag)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (g *Generator) log() *slog.Logger {
	if g.logger == nil {
		return slog.Default()
	}
	return g.logger
}
