package provider

import (
	"context"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/bindgen/ir"
)

// ReflectionProvider discovers types from runtime type information.
//
// Reflection cannot see constants, parameter names, or generic type
// arguments, so named integer types and generic instantiations are
// reported as unsupported. Prefer SourceProvider where sources are
// available. Types reachable from Types through fields, embedding, and
// method signatures are discovered too.
type ReflectionProvider struct {
	// Types are the root types. Use reflect.TypeFor[T]() for interfaces.
	Types []reflect.Type

	// Unit names the single batch. Default "reflect".
	Unit string

	// Namespace maps package paths to C++ namespaces.
	Namespace Namespacer

	// Diagnostics receives unsupported-type reports. Nil discards them.
	Diagnostics ir.DiagnosticSink
}

var _ Provider = (*ReflectionProvider)(nil)

// Discover converts the root types and everything they reach into one
// batch.
func (p *ReflectionProvider) Discover(ctx context.Context) ([]ir.Batch, error) {
	if len(p.Types) == 0 {
		return nil, errors.New("no root types provided")
	}
	unit := p.Unit
	if unit == "" {
		unit = "reflect"
	}

	b := &reflectionBuilder{
		ns:      p.Namespace,
		diags:   sinkOrDiscard(p.Diagnostics),
		unit:    unit,
		visited: make(map[reflect.Type]bool),
	}
	for _, t := range p.Types {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		b.enqueue(t)
	}
	for len(b.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := b.queue[0]
		b.queue = b.queue[1:]
		b.add(t)
	}
	return []ir.Batch{{Unit: unit, Records: b.records}}, nil
}

type reflectionBuilder struct {
	ns      Namespacer
	diags   ir.DiagnosticSink
	unit    string
	visited map[reflect.Type]bool
	queue   []reflect.Type
	records []*ir.Record
}

func (b *reflectionBuilder) enqueue(t reflect.Type) {
	if b.visited[t] {
		return
	}
	b.visited[t] = true
	b.queue = append(b.queue, t)
}

func qualifiedGoName(t reflect.Type) string {
	return t.PkgPath() + "." + t.Name()
}

func (b *reflectionBuilder) add(t reflect.Type) {
	typ, ok := b.typeOf(t)
	if !ok {
		unsupported(b.diags, nil, qualifiedGoName(t), "", ir.Source{},
			"type %s has no C++ representation", t)
		return
	}
	rec := ir.NewRecord(typ)
	rec.Unit = b.unit

	switch t.Kind() {
	case reflect.Struct:
		b.fields(rec, t)
		b.methods(rec, t)
	case reflect.Interface:
		for i := 0; i < t.NumMethod(); i++ {
			m := t.Method(i)
			b.method(rec, m.Name, m.Type, 0, false)
		}
	case reflect.Func:
		b.method(rec, "Invoke", t, 0, true)
	}
	b.records = append(b.records, rec)
}

// typeOf returns the descriptor of a named struct, interface, or function
// type.
func (b *reflectionBuilder) typeOf(t reflect.Type) (*ir.Type, bool) {
	if t.Name() == "" || t.PkgPath() == "" || strings.Contains(t.Name(), "[") {
		return nil, false
	}
	var kind ir.Kind
	switch t.Kind() {
	case reflect.Struct:
		kind = ir.KindPlain
	case reflect.Interface:
		kind = ir.KindClassWrapper
	case reflect.Func:
		kind = ir.KindDelegate
	default:
		return nil, false
	}
	return ir.NewType(b.ns.For(t.PkgPath()), t.Name(), kind), true
}

func (b *reflectionBuilder) ref(t reflect.Type) (ir.TypeRef, bool) {
	if t.Kind() == reflect.Pointer {
		elem, ok := b.ref(t.Elem())
		switch {
		case !ok:
			return ir.TypeRef{}, false
		case elem.Mode == ir.ByValue:
			return ir.Ptr(elem.Type), true
		case elem.Mode == ir.Pointer && !elem.Type.IsBuiltin():
			return elem, true
		}
		return ir.TypeRef{}, false
	}
	if t.PkgPath() == "" {
		if bt := builtin(t.Kind().String()); bt != nil && t.Name() == t.Kind().String() {
			return ir.Value(bt), true
		}
		return ir.TypeRef{}, false
	}
	typ, ok := b.typeOf(t)
	if !ok {
		return ir.TypeRef{}, false
	}
	b.enqueue(t)
	if typ.Kind() == ir.KindPlain {
		return ir.Value(typ), true
	}
	return ir.Ptr(typ), true
}

func (b *reflectionBuilder) fields(rec *ir.Record, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			et := f.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if parent, ok := b.typeOf(et); ok {
				b.enqueue(et)
				if et.Kind() == reflect.Struct && rec.DeclaredBase == nil {
					rec.Extends(parent)
				} else {
					rec.Implements(parent)
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		ref, ok := b.ref(f.Type)
		if !ok {
			unsupported(b.diags, rec, "", f.Name, ir.Source{},
				"%s.%s: field type %s has no C++ representation", rec.Name(), f.Name, f.Type)
			continue
		}
		rec.AddProperty(ir.Property{Name: f.Name, Type: ref})
	}
}

// methods adds the methods declared on the value and pointer receivers.
// Methods promoted from embedded fields are left to the parent record.
func (b *reflectionBuilder) methods(rec *ir.Record, t reflect.Type) {
	promoted := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.Anonymous {
			for _, et := range []reflect.Type{f.Type, reflect.PointerTo(f.Type)} {
				for j := 0; j < et.NumMethod(); j++ {
					promoted[et.Method(j).Name] = true
				}
			}
		}
	}

	value := make(map[string]bool)
	for i := 0; i < t.NumMethod(); i++ {
		value[t.Method(i).Name] = true
	}
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if promoted[m.Name] {
			continue
		}
		// Method types include the receiver as the first input.
		b.method(rec, m.Name, m.Type, 1, value[m.Name])
	}
}

func (b *reflectionBuilder) method(rec *ir.Record, name string, ft reflect.Type, skip int, isConst bool) {
	if ft.IsVariadic() {
		unsupported(b.diags, rec, "", name, ir.Source{}, "%s.%s: variadic methods are not supported", rec.Name(), name)
		return
	}
	params := make([]ir.Param, 0, ft.NumIn()-skip)
	for i := skip; i < ft.NumIn(); i++ {
		ref, ok := b.ref(ft.In(i))
		if !ok {
			unsupported(b.diags, rec, "", name, ir.Source{},
				"%s.%s: parameter %d type %s has no C++ representation", rec.Name(), name, i-skip, ft.In(i))
			return
		}
		params = append(params, ir.Param{Type: ref})
	}

	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == reflect.TypeFor[error]() {
		n--
	}
	var ret ir.TypeRef
	switch n {
	case 0:
	case 1:
		r, ok := b.ref(ft.Out(0))
		if !ok {
			unsupported(b.diags, rec, "", name, ir.Source{},
				"%s.%s: result type %s has no C++ representation", rec.Name(), name, ft.Out(0))
			return
		}
		ret = r
	default:
		unsupported(b.diags, rec, "", name, ir.Source{}, "%s.%s: multiple results are not supported", rec.Name(), name)
		return
	}
	rec.AddMethod(ir.Method{Name: name, Return: ret, Params: params, IsConst: isConst})
}
