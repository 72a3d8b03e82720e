package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docversions/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = config.DefaultConfigFile
	}
	if err := config.WriteExample(path, i.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "%s %s\n", newStyler(g.out()).success("Wrote"), path)
	return nil
}
