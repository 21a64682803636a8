// Package cpp renders a resolved binding graph as C++ headers.
//
// Emission happens per record and yields a Declaration: the declaration
// text plus the includes and forward declarations it needs. Declarations
// that share a header are assembled by SourceFile, which owns cross
// declaration deduplication.
package cpp

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sort"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/broady/bindgen/ir"
)

// HeaderGenerator writes one header per type family. All instantiations of
// a generic type share the header of the generic type.
type HeaderGenerator struct{}

// Name returns "cpp".
func (g *HeaderGenerator) Name() string { return "cpp" }

// Generate emits every record of a resolved table and writes the assembled
// headers to opts.Sink.
func (g *HeaderGenerator) Generate(ctx context.Context, table *ir.Table, opts GenerateOptions) (*GenerateResult, error) {
	if opts.Sink == nil {
		return nil, errors.New("cpp: no output sink")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	config := opts.Config.withDefaults()

	decls, diags, err := EmitAll(ctx, table, config)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{Diagnostics: diags}
	for _, d := range decls {
		if d.Placeholder {
			result.Placeholders++
		} else {
			result.TypesGenerated++
		}
	}

	for _, f := range Assemble(decls, config) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content := f.Bytes()
		if err := opts.Sink.WriteFile(ctx, f.Path, content); err != nil {
			return nil, errors.Wrapf(err, "write %s", f.Path)
		}
		logger.Debug("wrote header",
			slog.String("path", f.Path),
			slog.Int("bytes", len(content)),
		)
		result.Files = append(result.Files, OutputFile{Path: f.Path, Size: int64(len(content))})
	}

	logger.Info("generated headers",
		slog.Int("types", result.TypesGenerated),
		slog.Int("placeholders", result.Placeholders),
		slog.Int("files", len(result.Files)),
		slog.Int("diagnostics", len(result.Diagnostics)),
	)
	return result, nil
}

// EmitAll emits every record of table, one task per record. The table must
// not be modified while EmitAll runs. Cancellation is honoured before each
// task starts; a started emission always completes. Declarations are
// returned in table order.
func EmitAll(ctx context.Context, table *ir.Table, config GeneratorConfig) ([]Declaration, []ir.Diagnostic, error) {
	config = config.withDefaults()
	emitter := NewEmitter(table, config)
	ids := table.IDs()
	decls := make([]Declaration, len(ids))
	var diags ir.Diagnostics

	limit := config.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decl, ds := emitter.Emit(id)
			decls[i] = decl
			for _, d := range ds {
				diags.Report(d)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return decls, diags.All(), nil
}

// Assemble groups declarations into headers, sorted by path.
// Null-type placeholders go to config.PlaceholderFile.
func Assemble(decls []Declaration, config GeneratorConfig) []*SourceFile {
	config = config.withDefaults()
	files := make(map[string]*SourceFile)
	for _, d := range decls {
		path := config.PlaceholderFile
		if d.Type != nil {
			path = d.Type.HeaderPath(config.HeaderExtension)
		}
		f, ok := files[path]
		if !ok {
			f = NewSourceFile(path, config)
			files[path] = f
		}
		f.Add(d)
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]*SourceFile, len(paths))
	for i, p := range paths {
		out[i] = files[p]
	}
	return out
}
