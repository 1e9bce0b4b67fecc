package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/broady/apidesc/cmd/apidesc/internal/check"
	"github.com/broady/apidesc/cmd/apidesc/internal/gen"
	"github.com/broady/apidesc/cmd/apidesc/internal/project"
)

type CLI struct {
	project.Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate one API description document per locale."`
	Check   check.Cmd  `cmd:"" help:"Validate handler directives without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *project.Globals) error {
	fmt.Fprintln(g.Out(), Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("apidesc"),
		kong.Description("Generate localized API descriptions from annotated Go handlers."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
