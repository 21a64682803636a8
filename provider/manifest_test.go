package provider

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/bindgen/graph"
	"github.com/broady/bindgen/ir"
)

const engineManifest = `unit: engine
namespace: UnityEngine
types:
  - name: Camera
    kind: class
    base: Behaviour
    interfaces: ["System::IDisposable"]
    properties:
      - {name: fieldOfView, type: float32}
      - {name: target, type: "Transform*"}
      - {name: handle, type: int64, private: true}
    methods:
      - name: Render
        params: [{name: other, type: "const Camera&"}]
        const: true
      - name: Find
        returns: "Camera*"
        params: [{name: name, type: "std::string"}]
        static: true
  - name: Behaviour
    kind: class
  - name: CameraMode
    kind: enum
    properties:
      - {name: Perspective, value: 0}
      - {name: Orthographic, value: 1}
  - name: List
    kind: class
    args: [int32_t]
  - name: Scene
    properties:
      - {name: cameras, type: "List<int32_t>"}
---
namespace: System
types:
  - name: IDisposable
    kind: class
    methods:
      - {name: Dispose}
`

func discoverManifest(t *testing.T, files map[string]string) ([]ir.Batch, error) {
	t.Helper()
	fsys := fstest.MapFS{}
	var names []string
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
		names = append(names, name)
	}
	return (&ManifestProvider{Files: names, FS: fsys}).Discover(context.Background())
}

func TestManifestProvider(t *testing.T) {
	batches, err := discoverManifest(t, map[string]string{"engine.yaml": engineManifest})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "engine", batches[0].Unit)
	assert.Equal(t, "engine.yaml#1", batches[1].Unit)

	cam := findRecord(batches, "UnityEngine::Camera")
	require.NotNil(t, cam)
	assert.Equal(t, ir.KindClassWrapper, cam.Type.Kind())
	assert.Equal(t, "UnityEngine::Behaviour#ClassWrapper", cam.DeclaredBase.Key())
	require.Len(t, cam.DeclaredInterfaces, 1)
	assert.Equal(t, "System::IDisposable#ClassWrapper", cam.DeclaredInterfaces[0].Key(), "kind found in another document")
	assert.Equal(t, ir.Source{File: "engine.yaml", Line: 4, Column: 5}, cam.Source)

	props := cam.Properties.All()
	require.Len(t, props, 3)
	assert.Equal(t, "float", props[0].Type.Type.Name())
	assert.Equal(t, ir.Pointer, props[1].Type.Mode)
	assert.Equal(t, "UnityEngine::Transform", props[1].Type.Type.QualifiedName())
	assert.True(t, props[2].IsPrivate)

	render, ok := methodByName(cam, "Render")
	require.True(t, ok)
	assert.True(t, render.IsConst)
	assert.True(t, render.Return.IsVoid())
	assert.Equal(t, ir.ConstReference, render.Params[0].Type.Mode)

	find, ok := methodByName(cam, "Find")
	require.True(t, ok)
	assert.True(t, find.IsStatic)
	assert.Equal(t, "UnityEngine::Camera*", find.Return.Type.QualifiedName()+"*")
	assert.Equal(t, "std::string", find.Params[0].Type.Type.Name())

	mode := findRecord(batches, "UnityEngine::CameraMode")
	require.NotNil(t, mode)
	assert.Equal(t, ir.KindEnum, mode.Type.Kind())
	assert.Equal(t, int64(1), *mode.Properties.All()[1].Value)

	list := findRecord(batches, "UnityEngine::List<int32_t>")
	require.NotNil(t, list)
	assert.True(t, list.Type.IsGeneric())

	scene := findRecord(batches, "UnityEngine::Scene")
	require.NotNil(t, scene)
	assert.Equal(t, list.Type.Key(), scene.Properties.All()[0].Type.Type.Key())
}

func TestManifestProvider_ResolvesAcrossFiles(t *testing.T) {
	batches, err := discoverManifest(t, map[string]string{
		"engine.yaml": engineManifest,
		"core.yaml": `unit: core
namespace: UnityEngine
types:
  - name: Transform
    kind: class
`,
	})
	require.NoError(t, err)

	table, err := graph.Merge(batches...)
	require.NoError(t, err)
	var diags ir.Diagnostics
	require.NoError(t, graph.Resolve(context.Background(), table, &diags))
	assert.Zero(t, diags.Len())

	cam := table.Find(ir.NewType([]string{"UnityEngine"}, "Camera", ir.KindClassWrapper))
	require.NotNil(t, cam)
	assert.Equal(t, "UnityEngine::Behaviour", table.Record(cam.Base).Name())
	assert.Equal(t, "System::IDisposable", table.Record(cam.Interfaces[0]).Name())
}

func TestManifestProvider_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   string
		malformed bool
	}{
		{
			name:    "unknown field",
			content: "types:\n  - name: A\n    colour: red\n",
			wantErr: "colour",
		},
		{
			name:    "missing type name",
			content: "types:\n  - kind: class\n",
			wantErr: "required",
		},
		{
			name:    "qualified type name",
			content: "types:\n  - name: A::B\n",
			wantErr: "excludesall",
		},
		{
			name:      "unknown kind",
			content:   "types:\n  - name: A\n    kind: union\n",
			wantErr:   "union",
			malformed: true,
		},
		{
			name:      "unbalanced generic",
			content:   "types:\n  - name: A\n    base: \"List<int32\"\n",
			wantErr:   "unbalanced",
			malformed: true,
		},
		{
			name:    "bad yaml",
			content: "types: [\n",
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := discoverManifest(t, map[string]string{"bad.yaml": tt.content})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "bad.yaml")
			assert.Equal(t, tt.malformed, errors.Is(err, ir.ErrMalformedBatch))
		})
	}
}

func TestParseRef(t *testing.T) {
	r := refParser{
		namespace: []string{"Game"},
		kinds:     map[string]ir.Kind{"Game::Player": ir.KindClassWrapper, "Util::Map": ir.KindPlain},
	}
	tests := []struct {
		in, key string
		mode    ir.RefMode
	}{
		{"", "void", ir.ByValue},
		{"void", "void", ir.ByValue},
		{"bool", "builtin:bool", ir.ByValue},
		{"uint64_t", "builtin:uint64_t", ir.ByValue},
		{"Player*", "Game::Player#ClassWrapper*", ir.Pointer},
		{"const Player&", "const Game::Player#ClassWrapper&", ir.ConstReference},
		{"Player &", "Game::Player#ClassWrapper&", ir.Reference},
		{"::Global", "Global#Plain", ir.ByValue},
		{"Util::Map<int32, Player>", "Util::Map<builtin:int32_t,Game::Player#ClassWrapper>#Plain", ir.ByValue},
		{"Util::Map<Util::Map<bool, bool>, float>", "Util::Map<Util::Map<builtin:bool,builtin:bool>#Plain,builtin:float>#Plain", ir.ByValue},
	}
	for _, tt := range tests {
		got, err := r.parseRef(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.key, got.Key(), tt.in)
		assert.Equal(t, tt.mode, got.Mode, tt.in)
	}

	for _, bad := range []string{"List<int", "List<int>>", "A B", "Map<,>"} {
		_, err := r.parseRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseManifests_Empty(t *testing.T) {
	ms, err := ParseManifests(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ms)
}
