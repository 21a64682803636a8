// Package bindgen generates C++ headers that mirror Go types for
// cross-language interop.
//
// Types are discovered from Go packages, YAML manifests, runtime types, or
// prebuilt batches. Discoveries are merged into one canonical record per
// type, inheritance is resolved, and each record is emitted as a C++
// declaration in a header per type family.
//
//	result, err := bindgen.FromPackages("github.com/myorg/game/scene").
//	    Namespace("Game").
//	    StripPackagePrefix("github.com/myorg/game").
//	    ToDir(ctx, "./include")
package bindgen

import (
	"context"
	"io"
	"log/slog"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/broady/bindgen/cpp"
	"github.com/broady/bindgen/graph"
	"github.com/broady/bindgen/ir"
	"github.com/broady/bindgen/provider"
	"github.com/broady/bindgen/sink"
)

// Generator provides a fluent API for header generation.
// Create with FromPackages, FromManifests, FromTypes, or FromBatches and
// configure with method chaining. Sources may be combined.
type Generator struct {
	batches      []ir.Batch
	types        []any
	cfg          Config
	logger       *slog.Logger
	interceptors []provider.Interceptor
}

// FromPackages creates a Generator that discovers types from Go source.
func FromPackages(pkgs ...string) *Generator {
	return (&Generator{}).Packages(pkgs...)
}

// FromManifests creates a Generator that reads YAML type manifests.
func FromManifests(files ...string) *Generator {
	return (&Generator{}).Manifests(files...)
}

// FromTypes creates a Generator that discovers types by reflection.
// Pass zero values, pointers, or reflect.Type values. Interfaces must be
// passed as reflect.TypeFor[I]() or a typed nil pointer such as (*I)(nil).
func FromTypes(types ...any) *Generator {
	return &Generator{types: types}
}

// FromBatches creates a Generator over already discovered batches.
func FromBatches(batches ...ir.Batch) *Generator {
	return &Generator{batches: batches}
}

// WithConfig replaces the configuration. Packages and manifests added
// earlier are kept ahead of the ones in cfg, and an empty cfg.Dir keeps
// the current directory.
func (g *Generator) WithConfig(cfg Config) *Generator {
	cfg.Packages = append(append([]string(nil), g.cfg.Packages...), cfg.Packages...)
	cfg.Manifests = append(append([]string(nil), g.cfg.Manifests...), cfg.Manifests...)
	if cfg.Dir == "" {
		cfg.Dir = g.cfg.Dir
	}
	g.cfg = cfg
	return g
}

// WithLogger sets the logger for progress messages.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.logger = logger
	return g
}

// WithInterceptor adds interceptors around every discovery pass. They run
// inside the logging interceptor, in the order given.
func (g *Generator) WithInterceptor(interceptors ...provider.Interceptor) *Generator {
	g.interceptors = append(g.interceptors, interceptors...)
	return g
}

// Packages adds Go package patterns to analyze.
func (g *Generator) Packages(pkgs ...string) *Generator {
	g.cfg.Packages = append(g.cfg.Packages, pkgs...)
	return g
}

// Dir sets the working directory for package loading.
func (g *Generator) Dir(dir string) *Generator {
	g.cfg.Dir = dir
	return g
}

// Manifests adds YAML manifest files.
func (g *Generator) Manifests(files ...string) *Generator {
	g.cfg.Manifests = append(g.cfg.Manifests, files...)
	return g
}

// Namespace sets the root C++ namespace.
func (g *Generator) Namespace(path ...string) *Generator {
	g.cfg.Namespace = path
	return g
}

// StripPackagePrefix sets the prefix to remove from package paths.
func (g *Generator) StripPackagePrefix(prefix string) *Generator {
	g.cfg.StripPackagePrefix = prefix
	return g
}

// HeaderExtension sets the header file extension, e.g. ".hpp".
func (g *Generator) HeaderExtension(ext string) *Generator {
	g.cfg.HeaderExtension = ext
	return g
}

// Banner sets the comment written at the top of every header. An empty
// banner omits it.
func (g *Generator) Banner(banner string) *Generator {
	g.cfg.Banner = banner
	g.cfg.NoBanner = banner == ""
	return g
}

// IndentTabs indents members with tabs.
func (g *Generator) IndentTabs() *Generator {
	g.cfg.IndentStyle = "tab"
	return g
}

// IndentSpaces indents members with n spaces.
func (g *Generator) IndentSpaces(n int) *Generator {
	g.cfg.IndentStyle = "space"
	g.cfg.IndentSize = n
	return g
}

// LineEnding sets "lf" or "crlf".
func (g *Generator) LineEnding(ending string) *Generator {
	g.cfg.LineEnding = ending
	return g
}

// Concurrency bounds parallel discovery and emission.
func (g *Generator) Concurrency(n int) *Generator {
	g.cfg.Concurrency = n
	return g
}

// Model is a merged and resolved type graph.
type Model struct {
	Table *ir.Table

	// Diagnostics holds discovery and resolution diagnostics. Emission
	// reports into it too.
	Diagnostics *ir.Diagnostics
}

// Build discovers, merges, and resolves the configured sources.
// A malformed batch aborts the build; other problems become diagnostics.
func (g *Generator) Build(ctx context.Context) (*Model, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	logger := g.log()

	diags := &ir.Diagnostics{}
	providers, err := g.providers(diags)
	if err != nil {
		return nil, err
	}
	if len(providers) == 0 && len(g.batches) == 0 {
		return nil, errors.New("no sources configured")
	}

	interceptors := append([]provider.Interceptor{provider.LoggingInterceptor(logger)}, g.interceptors...)
	batches := append([]ir.Batch(nil), g.batches...)
	for _, p := range providers {
		name := providerName(p)
		found, err := provider.Intercept(p, name, interceptors...).Discover(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "%s provider", name)
		}
		batches = append(batches, found...)
	}

	table, err := graph.Merge(batches...)
	if err != nil {
		return nil, err
	}
	if err := graph.Resolve(ctx, table, diags); err != nil {
		return nil, err
	}

	logger.Info("built model",
		slog.Int("batches", len(batches)),
		slog.Int("records", table.Len()),
		slog.Int("diagnostics", diags.Len()),
	)
	return &Model{Table: table, Diagnostics: diags}, nil
}

// ToDir generates headers into dir.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(ctx context.Context, dir string) (*cpp.GenerateResult, error) {
	if dir == "" {
		return nil, errors.New("output directory is required")
	}
	return g.ToSink(ctx, sink.NewFilesystemSink(dir))
}

// ToSink generates headers into s. The result's diagnostics include those
// from discovery and resolution.
func (g *Generator) ToSink(ctx context.Context, s sink.OutputSink) (*cpp.GenerateResult, error) {
	model, err := g.Build(ctx)
	if err != nil {
		return nil, err
	}
	return g.emit(ctx, model, s)
}

// Generate returns the generated headers in memory without writing to disk.
func (g *Generator) Generate(ctx context.Context) (*sink.MemorySink, *cpp.GenerateResult, error) {
	mem := sink.NewMemorySink()
	result, err := g.ToSink(ctx, mem)
	if err != nil {
		return nil, nil, err
	}
	return mem, result, nil
}

// Check runs the whole pipeline without writing any file.
func (g *Generator) Check(ctx context.Context) (*cpp.GenerateResult, error) {
	return g.ToSink(ctx, &sink.DiscardSink{})
}

func (g *Generator) emit(ctx context.Context, model *Model, s sink.OutputSink) (*cpp.GenerateResult, error) {
	cfg := applyConfigDefaults(&g.cfg)
	gen := &cpp.HeaderGenerator{}
	result, err := gen.Generate(ctx, model.Table, cpp.GenerateOptions{
		Sink:   s,
		Config: cfg.generatorConfig(),
		Logger: g.log(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "generate %s", gen.Name())
	}
	for _, d := range result.Diagnostics {
		model.Diagnostics.Report(d)
	}
	result.Diagnostics = model.Diagnostics.All()
	return result, nil
}

func (g *Generator) providers(diags ir.DiagnosticSink) ([]provider.Provider, error) {
	ns := provider.Namespacer{Root: g.cfg.Namespace, StripPrefix: g.cfg.StripPackagePrefix}
	var out []provider.Provider
	if len(g.cfg.Packages) > 0 {
		out = append(out, &provider.SourceProvider{
			Packages:    g.cfg.Packages,
			Dir:         g.cfg.Dir,
			Namespace:   ns,
			Diagnostics: diags,
			Concurrency: g.cfg.Concurrency,
		})
	}
	if len(g.cfg.Manifests) > 0 {
		out = append(out, &provider.ManifestProvider{Files: g.cfg.Manifests})
	}
	if len(g.types) > 0 {
		types := make([]reflect.Type, 0, len(g.types))
		for i, v := range g.types {
			switch t := v.(type) {
			case nil:
				return nil, errors.Newf("type %d is an untyped nil", i)
			case reflect.Type:
				types = append(types, t)
			default:
				types = append(types, reflect.TypeOf(v))
			}
		}
		out = append(out, &provider.ReflectionProvider{
			Types:       types,
			Namespace:   ns,
			Diagnostics: diags,
		})
	}
	return out, nil
}

func providerName(p provider.Provider) string {
	switch p.(type) {
	case *provider.SourceProvider:
		return "source"
	case *provider.ManifestProvider:
		return "manifest"
	case *provider.ReflectionProvider:
		return "reflection"
	default:
		return "custom"
	}
}

func (g *Generator) log() *slog.Logger {
	if g.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g.logger
}
