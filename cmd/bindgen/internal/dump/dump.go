package dump

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/broady/bindgen/cmd/bindgen/internal/source"
	"github.com/broady/bindgen/graph"
)

// Cmd prints the merged and resolved type graph.
type Cmd struct {
	source.Flags `embed:""`

	JSON bool `help:"Print the table as JSON instead of a text report." name:"json"`
}

func (c *Cmd) Run(g *source.Globals) error {
	gen, err := c.Generator(g)
	if err != nil {
		return err
	}
	model, err := gen.Build(g.Ctx)
	if err != nil {
		return err
	}
	for _, d := range model.Diagnostics.All() {
		fmt.Fprintln(g.Stderr, d.String())
	}

	if !c.JSON {
		return graph.WriteSummary(g.Stdout, model.Table)
	}
	data, err := json.MarshalIndent(model.Table, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal table")
	}
	data = append(data, '\n')
	_, err = g.Stdout.Write(data)
	return err
}
