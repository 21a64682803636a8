package provider

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/bindgen/ir"
)

type reflectNode struct {
	ID int32
}

func (n *reflectNode) Rename(name string) error { return nil }

type reflectCloser interface {
	Close() error
}

type reflectHook func(n *reflectNode) bool

type reflectScene struct {
	reflectNode
	Root    *reflectNode
	Name    string
	OnLoad  reflectHook
	Weights []float32
	Mode    reflectMode
	hidden  bool
}

func (s reflectScene) Count() int { return 0 }

func (s *reflectScene) Find(name string, depth int) (*reflectNode, error) { return nil, nil }

func (s *reflectScene) Log(format string, args ...any) {}

type reflectMode int

func reflectDiscover(t *testing.T, types ...reflect.Type) (ir.Batch, *ir.Diagnostics) {
	t.Helper()
	var diags ir.Diagnostics
	p := &ReflectionProvider{
		Types:       types,
		Namespace:   Namespacer{Root: []string{"Demo"}, StripPrefix: "github.com/broady/bindgen"},
		Diagnostics: &diags,
	}
	batches, err := p.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	return batches[0], &diags
}

func TestReflectionProvider(t *testing.T) {
	batch, diags := reflectDiscover(t, reflect.TypeFor[*reflectScene]())
	assert.Equal(t, "reflect", batch.Unit)

	var names []string
	for _, r := range batch.Records {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{
		"Demo::provider::reflectScene",
		"Demo::provider::reflectNode",
		"Demo::provider::reflectHook",
	}, names)

	scene := batch.Records[0]
	assert.Equal(t, ir.KindPlain, scene.Type.Kind())
	require.NotNil(t, scene.DeclaredBase)
	assert.Equal(t, "reflectNode", scene.DeclaredBase.Name())
	assert.Equal(t, []string{"Root", "Name", "OnLoad"}, propertyNames(scene))

	root := scene.Properties.All()[0]
	assert.Equal(t, ir.Pointer, root.Type.Mode)
	hook := scene.Properties.All()[2]
	assert.Equal(t, ir.Pointer, hook.Type.Mode)
	assert.Equal(t, ir.KindDelegate, hook.Type.Type.Kind())

	count, ok := methodByName(scene, "Count")
	require.True(t, ok)
	assert.True(t, count.IsConst)
	assert.Equal(t, "int64_t", count.Return.Type.Name())

	find, ok := methodByName(scene, "Find")
	require.True(t, ok)
	assert.False(t, find.IsConst)
	require.Len(t, find.Params, 2)
	assert.Equal(t, "std::string", find.Params[0].Type.Type.Name())
	assert.Equal(t, ir.Pointer, find.Return.Mode)

	_, ok = methodByName(scene, "Rename")
	assert.False(t, ok, "promoted methods belong to the base")
	_, ok = methodByName(scene, "Log")
	assert.False(t, ok)

	node := batch.Records[1]
	rename, ok := methodByName(node, "Rename")
	require.True(t, ok)
	assert.True(t, rename.Return.IsVoid())

	invoke, ok := methodByName(batch.Records[2], "Invoke")
	require.True(t, ok)
	assert.True(t, invoke.IsConst)
	assert.Equal(t, "bool", invoke.Return.Type.Name())

	assert.Equal(t, 3, diags.Count(ir.CodeUnsupportedType))
}

func TestReflectionProvider_Interface(t *testing.T) {
	batch, diags := reflectDiscover(t, reflect.TypeFor[reflectCloser]())
	require.Len(t, batch.Records, 1)
	rec := batch.Records[0]
	assert.Equal(t, ir.KindClassWrapper, rec.Type.Kind())
	closeMethod, ok := methodByName(rec, "Close")
	require.True(t, ok)
	assert.False(t, closeMethod.IsConst)
	assert.Zero(t, diags.Len())
}

func TestReflectionProvider_UnsupportedRoot(t *testing.T) {
	batch, diags := reflectDiscover(t, reflect.TypeFor[reflectMode]())
	assert.Empty(t, batch.Records)
	all := diags.All()
	require.Len(t, all, 1)
	assert.Contains(t, all[0].TypeName, "reflectMode")
}

func TestReflectionProvider_NoTypes(t *testing.T) {
	_, err := (&ReflectionProvider{}).Discover(context.Background())
	require.Error(t, err)
}
