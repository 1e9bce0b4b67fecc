package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/broady/apidesc/cmd/apidesc/internal/project"
	"github.com/broady/apidesc/sink"
)

type Cmd struct {
	Out string `help:"Fail if the documents in this directory are missing or out of date." short:"o"`
}

func (c *Cmd) Run(g *project.Globals) error {
	p, err := project.Load(g)
	if err != nil {
		return err
	}

	dir := c.Out
	var compare *sink.Compare
	var out sink.Sink
	if dir != "" {
		compare = sink.NewCompare(dir)
		out = compare
	}

	result, err := p.Generator.ToSink(context.Background(), out)
	if err != nil {
		return err
	}

	desc := result.Description
	fmt.Fprintf(g.Out(), "✓ %d resources, %d definitions, %d errors\n",
		len(desc.Paths()), desc.Definitions().Len(), desc.Errors().Len())

	if compare == nil {
		return nil
	}
	if stale := compare.Stale(); len(stale) > 0 {
		return fmt.Errorf("documents out of date in %s: %s (run apidesc gen)", dir, strings.Join(stale, ", "))
	}
	fmt.Fprintf(g.Out(), "✓ %d documents up to date\n", len(result.Files))
	return nil
}
