package directive

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/bindgen/ir"
)

func parse(t *testing.T, src string) (*Result, error) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "scene.go", src, parser.ParseComments)
	require.NoError(t, err)
	return ParseFiles(fset, []*ast.File{f})
}

func TestParseFiles(t *testing.T) {
	src := `package scene

// Camera renders the scene.
//
//bindgen:kind class
//bindgen:name SceneCamera
type Camera struct {
	Behaviour

	// handle is native.
	//bindgen:private
	Handle uintptr

	//bindgen:skip
	Cache map[string]int

	//bindgen:name depth
	Depth float32
}

//bindgen:private
func (c *Camera) Render() {}

type (
	//bindgen:kind flags
	Layer int

	//bindgen:skip
	internal struct{}
)

type Renderer interface {
	//bindgen:name draw
	Draw()
}

const (
	//bindgen:skip
	LayerNone Layer = 0
	LayerUI   Layer = 1
)

type Box[T any] struct{ V T }

//bindgen:skip
func (b Box[T]) Get() T { return b.V }
`
	r, err := parse(t, src)
	require.NoError(t, err)

	cam := r.Type("Camera")
	assert.True(t, cam.HasKind)
	assert.Equal(t, ir.KindClassWrapper, cam.Kind)
	assert.Equal(t, "SceneCamera", cam.Name)
	assert.Equal(t, 6, cam.Pos.Line)

	layer := r.Type("Layer")
	assert.True(t, layer.HasKind)
	assert.Equal(t, ir.KindEnumFlags, layer.Kind)
	assert.True(t, r.Type("internal").Skip)
	assert.Equal(t, Type{}, r.Type("Renderer"), "no directives")

	tests := []struct {
		typ, member string
		want        Member
	}{
		{"Camera", "Handle", Member{Private: true}},
		{"Camera", "Cache", Member{Skip: true}},
		{"Camera", "Depth", Member{Name: "depth"}},
		{"Camera", "Render", Member{Private: true}},
		{"Renderer", "Draw", Member{Name: "draw"}},
		{"Box", "Get", Member{Skip: true}},
		{"Camera", "Behaviour", Member{}},
	}
	for _, tt := range tests {
		got := r.Member(tt.typ, tt.member)
		got.Pos = token.Position{}
		assert.Equal(t, tt.want, got, "Member(%s, %s)", tt.typ, tt.member)
	}

	assert.True(t, r.Const("LayerNone").Skip)
	assert.False(t, r.Const("LayerUI").Skip)
}

func TestParseFiles_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name: "unknown verb",
			src: `package p

//bindgen:export
type T struct{}
`,
			wantErr: "unknown directive //bindgen:export",
		},
		{
			name: "bad kind",
			src: `package p

//bindgen:kind union
type T struct{}
`,
			wantErr: "union",
		},
		{
			name: "kind without argument",
			src: `package p

//bindgen:kind
type T struct{}
`,
			wantErr: "exactly one argument",
		},
		{
			name: "private on type",
			src: `package p

//bindgen:private
type T struct{}
`,
			wantErr: "applies to members",
		},
		{
			name: "kind on member",
			src: `package p

type T struct {
	//bindgen:kind enum
	F int
}
`,
			wantErr: "applies to types",
		},
		{
			name: "plain function",
			src: `package p

//bindgen:skip
func F() {}
`,
			wantErr: "must be part of the doc comment",
		},
		{
			name: "floating comment",
			src: `package p

//bindgen:skip

type T struct{}
`,
			wantErr: "must be part of the doc comment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "scene.go:", "error carries a position")
		})
	}
}

func TestNilResult(t *testing.T) {
	var r *Result
	assert.Equal(t, Type{}, r.Type("T"))
	assert.Equal(t, Member{}, r.Member("T", "F"))
	assert.Equal(t, Member{}, r.Const("C"))
}
