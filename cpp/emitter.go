package cpp

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/bindgen/ir"
)

// Declaration is the rendered form of one record: the declaration text plus
// the includes and forward declarations the text needs from its file.
type Declaration struct {
	// Type is the declared type. Nil for null-type placeholders.
	Type *ir.Type

	// Namespace is the C++ namespace the declaration belongs in.
	Namespace string

	// Template is the primary template declaration for generic types,
	// empty otherwise. It must precede Body in the file.
	Template string

	// Body is the class, struct, or enum declaration.
	Body string

	// Includes holds include identifiers such as "<cstdint>".
	Includes ir.Set[string]

	// ForwardDeclarations holds the qualified template names of types that
	// only need to be declared.
	ForwardDeclarations ir.Set[string]

	// Placeholder is set when the record could not be emitted.
	Placeholder bool

	forwards map[string]*ir.Type
	complete ir.Set[string]
}

// Text returns the complete declaration text.
func (d Declaration) Text() string {
	if d.Template == "" {
		return d.Body
	}
	return d.Template + "\n" + d.Body
}

// ForwardType returns the type behind a forward declaration name.
func (d Declaration) ForwardType(name string) *ir.Type {
	return d.forwards[name]
}

func (d *Declaration) addForward(t *ir.Type) {
	name := t.TemplateName()
	d.ForwardDeclarations.Add(name)
	if d.forwards == nil {
		d.forwards = make(map[string]*ir.Type)
	}
	d.forwards[name] = t
}

// Keyword returns the C++ class-key for kind. Plain is the one intentional
// default; values outside the defined kinds are rejected.
func Keyword(kind ir.Kind) (string, error) {
	switch kind {
	case ir.KindClassWrapper, ir.KindDelegate:
		return "class", nil
	case ir.KindEnum:
		return "enum class", nil
	case ir.KindEnumFlags:
		return "enum", nil
	case ir.KindPlain:
		return "struct", nil
	default:
		return "", errors.Mark(errors.Newf("kind tag %d has no C++ representation", int(kind)), ir.ErrUnknownKind)
	}
}

// Emitter renders records of a resolved table as C++ declarations.
// It only reads the table and is safe for concurrent use.
type Emitter struct {
	table  *ir.Table
	config GeneratorConfig
	indent string
}

// NewEmitter returns an emitter over table.
func NewEmitter(table *ir.Table, config GeneratorConfig) *Emitter {
	config = config.withDefaults()
	return &Emitter{table: table, config: config, indent: config.indent()}
}

// Emit renders one record. It never fails: records with a null type or an
// unknown kind produce a placeholder declaration and a diagnostic.
func (e *Emitter) Emit(id ir.RecordID) (Declaration, []ir.Diagnostic) {
	rec := e.table.Record(id)
	if rec == nil || rec.Type == nil {
		return e.placeholder(rec), []ir.Diagnostic{
			ir.NewDiagnostic(ir.ErrNullType, rec, "", "record %d has no type", id),
		}
	}

	typ := rec.Type
	keyword, err := Keyword(typ.Kind())
	if err != nil {
		return e.placeholder(rec), []ir.Diagnostic{
			ir.NewDiagnostic(ir.ErrUnknownKind, rec, "", "%s: %v", rec.Name(), err),
		}
	}

	if typ.Kind().IsEnum() && typ.IsGeneric() {
		return e.placeholder(rec), []ir.Diagnostic{
			ir.NewDiagnostic(ir.ErrUnsupportedType, rec, "", "%s: enums cannot be templates", rec.Name()),
		}
	}

	decl := Declaration{Type: typ, Namespace: typ.CppNamespace()}
	var diags []ir.Diagnostic

	suffix := ""
	if typ.Kind() == ir.KindEnumFlags {
		decl.Includes.Add(ir.IncludeCstdint)
		suffix = " : uint32_t"
	}

	head := keyword + " " + typ.Name()
	if typ.IsGeneric() {
		args := typ.GenericArguments()
		decl.Template = templateHeader(len(args)) + "\n" + head + suffix + ";"
		head = "template <> " + head + ir.ArgumentList(args)
		for _, a := range args {
			e.requireDeclared(&decl, a)
		}
	}
	head += suffix
	if !typ.Kind().IsEnum() {
		head += e.baseClause(&decl, rec)
	}

	var lines []string
	for _, p := range rec.Properties.All() {
		if typ.Kind() == ir.KindEnumFlags && p.Value != nil && (*p.Value < 0 || *p.Value > math.MaxUint32) {
			d := ir.NewDiagnostic(ir.ErrUnsupportedType, rec, p.Name,
				"enumerator %s of %s: value %d does not fit uint32_t", p.Name, rec.Name(), *p.Value)
			d.Code = ir.CodeUnsupportedMember
			diags = append(diags, d)
			continue
		}
		lines = append(lines, e.property(&decl, typ.Kind(), p))
	}
	for _, m := range rec.Methods.All() {
		if typ.Kind().IsEnum() {
			d := ir.NewDiagnostic(ir.ErrUnsupportedType, rec, m.Name, "enum %s cannot declare method %s", rec.Name(), m.Name)
			d.Code = ir.CodeUnsupportedMember
			diags = append(diags, d)
			continue
		}
		lines = append(lines, e.method(&decl, m))
	}

	decl.Body = e.body(head, lines)
	return decl, diags
}

func (e *Emitter) body(head string, lines []string) string {
	if len(lines) == 0 {
		return head + " {};"
	}
	var b strings.Builder
	b.WriteString(head)
	b.WriteString(" {\n")
	for _, line := range lines {
		b.WriteString(e.indent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("};")
	return b.String()
}

func (e *Emitter) placeholder(rec *ir.Record) Declaration {
	decl := Declaration{Placeholder: true}
	name := "TypeIsNull"
	if rec != nil && rec.Type != nil {
		decl.Type = rec.Type
		decl.Namespace = rec.Type.CppNamespace()
		name = rec.Type.Name()
	}
	decl.Body = "// bindgen: placeholder for " + rec.Name() + "\nstruct " + name + " {};"
	return decl
}

func templateHeader(n int) string {
	params := make([]string, n)
	for i := range params {
		params[i] = "typename T" + strconv.Itoa(i)
	}
	return "template <" + strings.Join(params, ", ") + ">"
}

// baseClause renders the resolved base and interfaces. Each parent must be
// a complete type, so each contributes an include.
func (e *Emitter) baseClause(decl *Declaration, rec *ir.Record) string {
	related := make([]ir.RecordID, 0, len(rec.Interfaces)+1)
	if rec.Base != ir.NoRecord {
		related = append(related, rec.Base)
	}
	related = append(related, rec.Interfaces...)

	var parents []string
	for _, id := range related {
		parent := e.table.Record(id)
		if parent == nil || parent.Type == nil || parent.Type.Kind().IsEnum() || !parent.Type.Kind().Valid() {
			continue
		}
		e.requireComplete(decl, parent.Type)
		parents = append(parents, "public "+parent.Type.QualifiedName())
	}
	if len(parents) == 0 {
		return ""
	}
	return " : " + strings.Join(parents, ", ")
}

func access(p bool) string {
	if p {
		return "private: "
	}
	return "public: "
}

func (e *Emitter) property(decl *Declaration, kind ir.Kind, p ir.Property) string {
	name := sanitizeIdentifier(p.Name)
	if kind.IsEnum() {
		if p.Value != nil {
			return name + " = " + strconv.FormatInt(*p.Value, 10) + ","
		}
		return name + ","
	}

	if p.Type.NeedsDefinition() {
		e.requireComplete(decl, p.Type.Type)
	} else {
		e.requireDeclared(decl, p.Type.Type)
	}

	var b strings.Builder
	b.WriteString(access(p.IsPrivate))
	if p.IsStatic {
		b.WriteString("static ")
	}
	b.WriteString(typeExpr(p.Type))
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteByte(';')
	return b.String()
}

// method renders a member function declaration. Signatures only need
// their types declared, never defined.
func (e *Emitter) method(decl *Declaration, m ir.Method) string {
	e.requireDeclared(decl, m.Return.Type)

	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		e.requireDeclared(decl, p.Type.Type)
		name := p.Name
		if name == "" {
			name = "arg" + strconv.Itoa(i)
		}
		params[i] = typeExpr(p.Type) + " " + sanitizeIdentifier(name)
	}

	var b strings.Builder
	b.WriteString(access(m.IsPrivate))
	if m.IsStatic {
		b.WriteString("static ")
	}
	b.WriteString(typeExpr(m.Return))
	b.WriteByte(' ')
	b.WriteString(sanitizeIdentifier(m.Name))
	b.WriteByte('(')
	b.WriteString(strings.Join(params, ", "))
	b.WriteByte(')')
	if m.IsConst && !m.IsStatic {
		b.WriteString(" const")
	}
	b.WriteByte(';')
	return b.String()
}

func typeExpr(r ir.TypeRef) string {
	if r.IsVoid() {
		return "void"
	}
	name := r.Type.QualifiedName()
	switch r.Mode {
	case ir.Pointer:
		return name + "*"
	case ir.Reference:
		return name + "&"
	case ir.ConstReference:
		return "const " + name + "&"
	default:
		return name
	}
}

// requireComplete records that t is used by value.
func (e *Emitter) requireComplete(decl *Declaration, t *ir.Type) {
	if t == nil {
		return
	}
	decl.complete.Add(t.Key())
	if inc := t.Include(e.config.HeaderExtension); inc != "" {
		decl.Includes.Add(inc)
	}
	for _, a := range t.GenericArguments() {
		e.requireDeclared(decl, a)
	}
}

// requireDeclared records that t is only referenced. Types whose kind has
// no forward-declarable form fall back to an include.
func (e *Emitter) requireDeclared(decl *Declaration, t *ir.Type) {
	if t == nil {
		return
	}
	if t.IsBuiltin() || !t.Kind().Valid() {
		if inc := t.Include(e.config.HeaderExtension); inc != "" {
			decl.Includes.Add(inc)
		}
		return
	}
	decl.addForward(t)
	for _, a := range t.GenericArguments() {
		e.requireDeclared(decl, a)
	}
}
