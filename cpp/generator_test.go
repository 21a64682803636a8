package cpp

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/bindgen/graph"
	"github.com/broady/bindgen/ir"
	"github.com/broady/bindgen/sink"
)

func sceneTable(t *testing.T) *ir.Table {
	t.Helper()
	table, err := graph.Merge(
		ir.Batch{Unit: "a", Records: []*ir.Record{
			ir.NewRecord(point()).AddProperty(ir.Property{Name: "x", Type: ir.Value(ir.Int(32))}),
			ir.NewRecord(box(ir.Int(32))),
			ir.NewRecord(nil),
		}},
		ir.Batch{Unit: "b", Records: []*ir.Record{
			ir.NewRecord(box(ir.Bool())).AddProperty(ir.Property{Name: "p", Type: ir.Ptr(point())}),
			ir.NewRecord(point()).AddProperty(ir.Property{Name: "y", Type: ir.Value(ir.Int(32))}),
		}},
	)
	require.NoError(t, err)
	require.NoError(t, graph.Resolve(context.Background(), table, nil))
	return table
}

func TestHeaderGenerator_Generate(t *testing.T) {
	mem := sink.NewMemorySink()
	g := &HeaderGenerator{}
	assert.Equal(t, "cpp", g.Name())

	result, err := g.Generate(context.Background(), sceneTable(t), GenerateOptions{
		Sink:   mem,
		Config: GeneratorConfig{TrailingNewline: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Demo/Box.h", "Demo/Point.h", "bindgen/Placeholders.h"}, mem.Paths())
	assert.Equal(t, 3, result.TypesGenerated)
	assert.Equal(t, 1, result.Placeholders)
	require.Len(t, result.Files, 3)
	assert.Equal(t, int64(len(mem.Get("Demo/Point.h"))), result.Files[1].Size)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, ir.CodeNullType, result.Diagnostics[0].Code)

	assert.Equal(t,
		"#pragma once\n\n#include <cstdint>\n\nnamespace Demo {\n\nstruct Point {\n  public: int32_t x;\n  public: int32_t y;\n};\n\n} // namespace Demo\n",
		string(mem.Get("Demo/Point.h")))
	assert.Contains(t, string(mem.Get("bindgen/Placeholders.h")), "struct TypeIsNull {};")
	assert.Contains(t, string(mem.Get("Demo/Box.h")), "namespace Demo {\nstruct Point;\n} // namespace Demo")
}

func TestHeaderGenerator_RequiresSink(t *testing.T) {
	_, err := (&HeaderGenerator{}).Generate(context.Background(), sceneTable(t), GenerateOptions{})
	assert.Error(t, err)
}

func TestEmitAll_ConcurrencyDoesNotChangeOutput(t *testing.T) {
	table := sceneTable(t)
	serial, serialDiags, err := EmitAll(context.Background(), table, GeneratorConfig{Concurrency: 1})
	require.NoError(t, err)
	parallel, parallelDiags, err := EmitAll(context.Background(), table, GeneratorConfig{Concurrency: 8})
	require.NoError(t, err)

	require.Len(t, parallel, len(serial))
	for i := range serial {
		assert.Equal(t, serial[i].Text(), parallel[i].Text())
		assert.Equal(t, serial[i].Includes.Values(), parallel[i].Includes.Values())
	}
	require.Len(t, parallelDiags, len(serialDiags))
	for i := range serialDiags {
		assert.Equal(t, serialDiags[i].String(), parallelDiags[i].String())
	}
}

func TestEmitAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := EmitAll(ctx, sceneTable(t), GeneratorConfig{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAssemble_GroupsFamilies(t *testing.T) {
	decls, _, err := EmitAll(context.Background(), sceneTable(t), GeneratorConfig{})
	require.NoError(t, err)

	files := Assemble(decls, GeneratorConfig{HeaderExtension: ".hpp"})
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{"Demo/Box.hpp", "Demo/Point.hpp", "bindgen/Placeholders.hpp"}, paths)
}
