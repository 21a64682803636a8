// Package source holds the flags shared by commands that read types.
package source

import (
	"context"
	"io"
	"log/slog"

	"github.com/broady/bindgen"
)

// Globals are bound to every command's Run method.
type Globals struct {
	Ctx    context.Context
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// Flags select the discovery sources and namespace mapping.
type Flags struct {
	Config      string   `help:"YAML config file. Flags override its values." short:"c" type:"existingfile"`
	Package     []string `help:"Go package patterns to analyze." short:"p"`
	Manifest    []string `help:"YAML type manifests to read." short:"m"`
	Dir         string   `help:"Working directory for package loading." type:"existingdir"`
	Namespace   []string `help:"Root C++ namespace segments." short:"n"`
	StripPrefix string   `help:"Package path prefix removed before mapping to namespaces." name:"strip-prefix"`
	Jobs        int      `help:"Parallel tasks (0 = one per CPU)." short:"j"`
}

// Generator returns a generator for the selected sources, starting from
// the config file when one is given.
func (f *Flags) Generator(g *Globals) (*bindgen.Generator, error) {
	var cfg bindgen.Config
	if f.Config != "" {
		loaded, err := bindgen.LoadConfig(f.Config)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	gen := (&bindgen.Generator{}).WithConfig(cfg).WithLogger(g.Logger).
		Packages(f.Package...).
		Manifests(f.Manifest...)
	if f.Dir != "" {
		gen.Dir(f.Dir)
	}
	if len(f.Namespace) > 0 {
		gen.Namespace(f.Namespace...)
	}
	if f.StripPrefix != "" {
		gen.StripPackagePrefix(f.StripPrefix)
	}
	if f.Jobs != 0 {
		gen.Concurrency(f.Jobs)
	}
	return gen, nil
}
