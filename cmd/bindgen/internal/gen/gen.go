package gen

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/broady/bindgen/cmd/bindgen/internal/source"
	"github.com/broady/bindgen/ir"
	"github.com/broady/bindgen/sink"
)

// Cmd writes one header per type family into the output directory.
type Cmd struct {
	source.Flags `embed:""`

	Out       string `arg:"" help:"Output directory for generated headers."`
	Ext       string `help:"Header file extension." placeholder:".h"`
	Tabs      bool   `help:"Indent with tabs."`
	CRLF      bool   `help:"Use CRLF line endings." name:"crlf"`
	NoBanner  bool   `help:"Omit the generated-code banner."`
	Overwrite bool   `help:"Replace existing headers." default:"true" negatable:""`
}

func (c *Cmd) Run(g *source.Globals) error {
	gen, err := c.Generator(g)
	if err != nil {
		return err
	}
	if c.Ext != "" {
		gen.HeaderExtension(c.Ext)
	}
	if c.Tabs {
		gen.IndentTabs()
	}
	if c.CRLF {
		gen.LineEnding("crlf")
	}
	if c.NoBanner {
		gen.Banner("")
	}

	outDir, err := filepath.Abs(c.Out)
	if err != nil {
		return errors.Wrap(err, "resolve output path")
	}

	out := sink.NewFilesystemSink(outDir)
	out.Overwrite = c.Overwrite
	res, err := gen.ToSink(g.Ctx, out)
	if err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintln(g.Stderr, d.String())
	}
	fmt.Fprintf(g.Stdout, "✓ %d types, %d placeholders, %d headers written to %s\n",
		res.TypesGenerated, res.Placeholders, len(res.Files), outDir)
	if n := errorCount(res.Diagnostics); n > 0 {
		return errors.Newf("%d errors", n)
	}
	return nil
}

// errorCount returns the number of error-severity diagnostics. Warnings
// never fail a run.
func errorCount(diags []ir.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == ir.SeverityError {
			n++
		}
	}
	return n
}
