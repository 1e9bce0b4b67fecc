package gen

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/broady/apidesc/cmd/apidesc/internal/project"
	"github.com/broady/apidesc/sink"
)

type Cmd struct {
	Out     string   `arg:"" optional:"" help:"Output directory (default: out_dir from the configuration file)."`
	Locales []string `help:"Locales to render (overrides the configuration file)." short:"l"`
	Stdout  bool     `help:"Write documents to stdout instead of files."`
}

func (c *Cmd) Run(g *project.Globals) error {
	p, err := project.Load(g)
	if err != nil {
		return err
	}
	if len(c.Locales) > 0 {
		p.Generator.WithLocales(c.Locales...)
	}

	var out sink.Sink
	dir := c.Out
	switch {
	case c.Stdout:
		out = sink.NewWriter(g.Out())
	default:
		if dir == "" {
			dir = p.Config.OutDir
		}
		if dir == "" {
			return fmt.Errorf("output directory is required: pass it as an argument or set out_dir")
		}
		if dir, err = filepath.Abs(dir); err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		out = sink.NewDir(dir)
	}

	result, err := p.Generator.ToSink(context.Background(), out)
	if err != nil {
		return err
	}
	if c.Stdout {
		return nil
	}
	for _, f := range result.Files {
		fmt.Fprintf(g.Out(), "wrote %s\n", filepath.Join(dir, filepath.FromSlash(f.Path)))
	}
	return nil
}
