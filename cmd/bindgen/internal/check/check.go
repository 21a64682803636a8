package check

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/broady/bindgen/cmd/bindgen/internal/source"
	"github.com/broady/bindgen/ir"
)

type Cmd struct {
	source.Flags `embed:""`

	Strict bool `help:"Fail on warnings as well as errors."`
}

func (c *Cmd) Run(g *source.Globals) error {
	gen, err := c.Generator(g)
	if err != nil {
		return err
	}

	result, err := gen.Check(g.Ctx)
	if err != nil {
		return err
	}

	var errs, warnings int
	for _, d := range result.Diagnostics {
		fmt.Fprintln(g.Stderr, d.String())
		if d.Severity == ir.SeverityError {
			errs++
		} else {
			warnings++
		}
	}

	fmt.Fprintf(g.Stdout, "✓ %d types, %d placeholders, %d headers\n",
		result.TypesGenerated, result.Placeholders, len(result.Files))

	switch {
	case errs > 0:
		return errors.Newf("%d errors, %d warnings", errs, warnings)
	case c.Strict && warnings > 0:
		return errors.Newf("%d warnings", warnings)
	}
	fmt.Fprintln(g.Stdout, "✓ All types resolvable")
	return nil
}
