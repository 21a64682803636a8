package provider

import (
	"context"
	"go/constant"
	"go/types"
	"runtime"
	"sort"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/broady/bindgen/internal/directive"
	"github.com/broady/bindgen/ir"
)

// SourceProvider discovers types by type-checking Go packages.
//
// Each loaded package becomes one batch. Exported named types map to
// records: structs to Plain, interfaces to ClassWrapper, function types to
// Delegate, and integer types with constants to Enum or EnumFlags.
// Generic types are recorded per instantiation reachable from exported
// members. Directives in doc comments override the defaults.
type SourceProvider struct {
	// Packages are the package patterns to load.
	Packages []string

	// Dir is the working directory for package loading. Empty means the
	// current directory.
	Dir string

	// Namespace maps package paths to C++ namespaces.
	Namespace Namespacer

	// Diagnostics receives unsupported-type reports. Nil discards them.
	Diagnostics ir.DiagnosticSink

	// Concurrency bounds the packages converted in parallel.
	// Zero means one per CPU.
	Concurrency int
}

var _ Provider = (*SourceProvider)(nil)

// Discover loads the packages and converts each into a batch, ordered by
// package path.
func (p *SourceProvider) Discover(ctx context.Context) ([]ir.Batch, error) {
	if len(p.Packages) == 0 {
		return nil, errors.New("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     p.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, p.Packages...)
	if err != nil {
		return nil, errors.Wrap(err, "load packages")
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages found matching %v", p.Packages)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, errors.Newf("package %s: %v", pkg.PkgPath, pkg.Errors[0])
		}
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	// Directives are parsed up front so conversion can look up overrides
	// for types declared in any loaded package.
	dirs := make(map[*types.Package]*directive.Result, len(pkgs))
	for _, pkg := range pkgs {
		r, err := directive.ParseFiles(pkg.Fset, pkg.Syntax)
		if err != nil {
			return nil, errors.Wrapf(err, "package %s", pkg.PkgPath)
		}
		dirs[pkg.Types] = r
	}

	limit := p.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	batches := make([]ir.Batch, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := &batchBuilder{
				pkg:   pkg,
				dirs:  dirs,
				ns:    p.Namespace,
				diags: sinkOrDiscard(p.Diagnostics),
				seen:  make(map[string]bool),
			}
			batches[i] = b.build()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// batchBuilder converts one package. Everything it shares with other
// builders is read-only.
type batchBuilder struct {
	pkg     *packages.Package
	dirs    map[*types.Package]*directive.Result
	ns      Namespacer
	diags   ir.DiagnosticSink
	records []*ir.Record
	pending []*types.Named
	seen    map[string]bool
}

func (b *batchBuilder) build() ir.Batch {
	scope := b.pkg.Types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		if b.dirs[tn.Pkg()].Type(tn.Name()).Skip {
			continue
		}
		b.add(named)
	}
	for len(b.pending) > 0 {
		inst := b.pending[0]
		b.pending = b.pending[1:]
		b.add(inst)
	}
	return ir.Batch{Unit: b.pkg.PkgPath, Records: b.records}
}

func (b *batchBuilder) add(named *types.Named) {
	obj := named.Obj()
	typ, ok := b.typeOf(named)
	if !ok {
		unsupported(b.diags, nil, obj.Pkg().Path()+"."+obj.Name(), "", b.source(obj),
			"type %s has no C++ representation", named)
		return
	}
	b.seen[typ.Key()] = true

	rec := ir.NewRecord(typ)
	rec.Unit = b.pkg.PkgPath
	rec.Source = b.source(obj)
	dirs := b.dirs[obj.Pkg()]

	switch u := named.Underlying().(type) {
	case *types.Struct:
		b.structMembers(rec, dirs, obj.Name(), u)
	case *types.Interface:
		b.interfaceMembers(rec, dirs, obj.Name(), u)
	case *types.Signature:
		b.method(rec, directive.Member{}, "Invoke", u, true)
	case *types.Basic:
		if typ.Kind().IsEnum() {
			b.enumerators(rec, dirs, named)
		}
	}
	if _, ok := named.Underlying().(*types.Interface); !ok {
		for i := 0; i < named.NumMethods(); i++ {
			m := named.Method(i)
			if !m.Exported() {
				continue
			}
			sig := m.Type().(*types.Signature)
			_, ptrRecv := sig.Recv().Type().(*types.Pointer)
			b.method(rec, dirs.Member(obj.Name(), m.Name()), m.Name(), sig, !ptrRecv)
		}
	}
	b.records = append(b.records, rec)
}

// kindOf classifies a named type. It reports false for types with no C++
// representation.
func (b *batchBuilder) kindOf(named *types.Named) (ir.Kind, bool) {
	obj := named.Obj()
	if d := b.dirs[obj.Pkg()].Type(obj.Name()); d.HasKind {
		return d.Kind, true
	}
	switch u := named.Underlying().(type) {
	case *types.Struct:
		return ir.KindPlain, true
	case *types.Interface:
		return ir.KindClassWrapper, u.IsMethodSet()
	case *types.Signature:
		return ir.KindDelegate, true
	case *types.Basic:
		if u.Info()&types.IsInteger == 0 {
			return 0, false
		}
		consts := enumConstants(named)
		if len(consts) == 0 {
			return 0, false
		}
		if u.Info()&types.IsUnsigned != 0 && isFlagSet(constValues(consts)) {
			return ir.KindEnumFlags, true
		}
		return ir.KindEnum, true
	default:
		return 0, false
	}
}

// typeOf returns the descriptor for a named type, queueing generic
// instantiations from loaded packages for conversion.
func (b *batchBuilder) typeOf(named *types.Named) (*ir.Type, bool) {
	obj := named.Obj()
	if obj.Pkg() == nil {
		return nil, false
	}
	kind, ok := b.kindOf(named)
	if !ok {
		return nil, false
	}

	targs := named.TypeArgs()
	args := make([]*ir.Type, 0, targs.Len())
	for i := 0; i < targs.Len(); i++ {
		ref, ok := b.ref(targs.At(i))
		if !ok {
			return nil, false
		}
		args = append(args, ref.Type)
	}

	name := obj.Name()
	if d := b.dirs[obj.Pkg()].Type(name); d.Name != "" {
		name = d.Name
	}
	typ := ir.NewType(b.ns.For(obj.Pkg().Path()), name, kind, args...)

	if len(args) > 0 && !b.seen[typ.Key()] {
		if _, loaded := b.dirs[obj.Pkg()]; loaded {
			b.seen[typ.Key()] = true
			b.pending = append(b.pending, named)
		}
	}
	return typ, true
}

// ref converts a Go type used by a member. Wrappers and delegates are
// handles and are always referenced through a pointer.
func (b *batchBuilder) ref(t types.Type) (ir.TypeRef, bool) {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		if bt := builtin(t.Name()); bt != nil {
			return ir.Value(bt), true
		}
	case *types.Named:
		typ, ok := b.typeOf(t)
		if !ok {
			return ir.TypeRef{}, false
		}
		if typ.Kind() == ir.KindClassWrapper || typ.Kind() == ir.KindDelegate {
			return ir.Ptr(typ), true
		}
		return ir.Value(typ), true
	case *types.Pointer:
		elem, ok := b.ref(t.Elem())
		switch {
		case !ok:
		case elem.Mode == ir.ByValue:
			return ir.Ptr(elem.Type), true
		case elem.Mode == ir.Pointer && !elem.Type.IsBuiltin():
			return elem, true
		}
	}
	return ir.TypeRef{}, false
}

func (b *batchBuilder) structMembers(rec *ir.Record, dirs *directive.Result, goName string, s *types.Struct) {
	for i := 0; i < s.NumFields(); i++ {
		f := s.Field(i)
		if !f.Exported() {
			continue
		}
		md := dirs.Member(goName, f.Name())
		if md.Skip {
			continue
		}
		if f.Embedded() && b.embed(rec, f.Type()) {
			continue
		}
		ref, ok := b.ref(f.Type())
		if !ok {
			unsupported(b.diags, rec, "", f.Name(), ir.Source{},
				"%s.%s: field type %s has no C++ representation", rec.Name(), f.Name(), f.Type())
			continue
		}
		name := f.Name()
		if md.Name != "" {
			name = md.Name
		}
		rec.AddProperty(ir.Property{Name: name, Type: ref, IsPrivate: md.Private})
	}
}

// embed records an embedded struct or interface as a parent. The first
// embedded struct becomes the base; every other parent is listed as an
// interface.
func (b *batchBuilder) embed(rec *ir.Record, t types.Type) bool {
	if p, ok := types.Unalias(t).(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	parent, ok := b.typeOf(named)
	if !ok {
		return false
	}
	_, isStruct := named.Underlying().(*types.Struct)
	if isStruct && rec.DeclaredBase == nil {
		rec.Extends(parent)
	} else {
		rec.Implements(parent)
	}
	return true
}

func (b *batchBuilder) interfaceMembers(rec *ir.Record, dirs *directive.Result, goName string, iface *types.Interface) {
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		if named, ok := types.Unalias(iface.EmbeddedType(i)).(*types.Named); ok {
			if parent, ok := b.typeOf(named); ok {
				rec.Implements(parent)
			}
		}
	}
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		m := iface.ExplicitMethod(i)
		if !m.Exported() {
			continue
		}
		b.method(rec, dirs.Member(goName, m.Name()), m.Name(), m.Type().(*types.Signature), false)
	}
}

func (b *batchBuilder) method(rec *ir.Record, md directive.Member, goName string, sig *types.Signature, isConst bool) {
	if md.Skip {
		return
	}
	if sig.Variadic() {
		unsupported(b.diags, rec, "", goName, ir.Source{}, "%s.%s: variadic methods are not supported", rec.Name(), goName)
		return
	}

	params := make([]ir.Param, sig.Params().Len())
	for i := range params {
		v := sig.Params().At(i)
		ref, ok := b.ref(v.Type())
		if !ok {
			unsupported(b.diags, rec, "", goName, ir.Source{},
				"%s.%s: parameter %d type %s has no C++ representation", rec.Name(), goName, i, v.Type())
			return
		}
		name := v.Name()
		if name == "_" {
			name = ""
		}
		params[i] = ir.Param{Name: name, Type: ref}
	}

	ret, ok := b.result(sig.Results())
	if !ok {
		unsupported(b.diags, rec, "", goName, ir.Source{},
			"%s.%s: results %s have no C++ representation", rec.Name(), goName, sig.Results())
		return
	}

	name := goName
	if md.Name != "" {
		name = md.Name
	}
	rec.AddMethod(ir.Method{
		Name:      name,
		Return:    ret,
		Params:    params,
		IsPrivate: md.Private,
		IsConst:   isConst,
	})
}

// result maps a result tuple to a single return type. A trailing error is
// dropped.
func (b *batchBuilder) result(results *types.Tuple) (ir.TypeRef, bool) {
	n := results.Len()
	if n > 0 && types.Identical(results.At(n-1).Type(), types.Universe.Lookup("error").Type()) {
		n--
	}
	switch n {
	case 0:
		return ir.TypeRef{}, true
	case 1:
		return b.ref(results.At(0).Type())
	default:
		return ir.TypeRef{}, false
	}
}

func (b *batchBuilder) enumerators(rec *ir.Record, dirs *directive.Result, named *types.Named) {
	underlying := builtin(named.Underlying().(*types.Basic).Name())
	for _, c := range enumConstants(named) {
		md := dirs.Const(c.Name())
		if md.Skip {
			continue
		}
		v, exact := constant.Int64Val(constant.ToInt(c.Val()))
		if !exact {
			unsupported(b.diags, rec, "", c.Name(), ir.Source{}, "%s: value %s does not fit in 64 bits", c.Name(), c.Val())
			continue
		}
		name := md.Name
		if name == "" {
			name = c.Name()
			if rec.Type.Kind() == ir.KindEnum {
				name = trimEnumPrefix(named.Obj().Name(), name)
			}
		}
		rec.AddProperty(ir.Property{Name: name, Type: ir.Value(underlying), Value: ir.EnumValue(v)})
	}
}

func (b *batchBuilder) source(obj types.Object) ir.Source {
	if !obj.Pos().IsValid() || b.pkg.Fset == nil {
		return ir.Source{}
	}
	pos := b.pkg.Fset.Position(obj.Pos())
	return ir.Source{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

// enumConstants returns the constants of exactly type named in declaration
// order.
func enumConstants(named *types.Named) []*types.Const {
	pkg := named.Obj().Pkg()
	if pkg == nil {
		return nil
	}
	var out []*types.Const
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		if c, ok := scope.Lookup(name).(*types.Const); ok && types.Identical(c.Type(), named) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos() < out[j].Pos() })
	return out
}

func constValues(consts []*types.Const) []int64 {
	out := make([]int64, 0, len(consts))
	for _, c := range consts {
		v, _ := constant.Int64Val(constant.ToInt(c.Val()))
		out = append(out, v)
	}
	return out
}
