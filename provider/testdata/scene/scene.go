// Package scene is a fixture for the source provider tests.
package scene

// Object is the root of the scene hierarchy.
type Object struct {
	ID   int64
	Name string
}

func (o Object) String() string { return o.Name }

func (o *Object) Rename(name string) error {
	o.Name = name
	return nil
}

type Disposer interface {
	Dispose()
}

// Renderer draws objects.
type Renderer interface {
	Disposer
	Draw(target *Object, pass int) bool

	//bindgen:skip
	Debug()
}

type Component struct {
	Object
	Disposer

	Owner *Object

	//bindgen:private
	Handle uintptr

	//bindgen:name enabled
	Enabled bool

	Tags  []string
	inner int
}

func (c *Component) Log(args ...string) {}

//bindgen:name Behaviour
type Behavior struct {
	Component
	Layer Layer
	Mode  Mode
}

type Layer uint32

const (
	LayerNone  Layer = 0
	LayerUI    Layer = 1
	LayerWorld Layer = 2
	LayerFX    Layer = 4
)

type Mode int

const (
	ModeIdle Mode = iota
	ModeRunning
	ModeStopped

	//bindgen:skip
	ModeDebug
)

type Callback func(o *Object) error

type Box[T any] struct {
	Value T
}

func (b Box[T]) Get() T { return b.Value }

type Holder struct {
	Ints Box[int32]
	Objs *Box[Object]
}

//bindgen:kind class
type Handle struct {
	Ptr uintptr
}

type Names []string

//bindgen:skip
type Internal struct{}
