// Package directive parses bindgen directives from Go source files.
//
// Directives are line comments placed in the doc comment of a type, a
// struct field, an interface method, a method declaration, or a constant:
//
//	//bindgen:kind <kind>    override the kind tag of a type
//	//bindgen:name <name>    rename a type or member on the C++ side
//	//bindgen:skip           leave a type or member out of the binding graph
//	//bindgen:private        emit a member with private access
//
// Kind values are parsed with ir.ParseKind.
package directive

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/bindgen/ir"
)

const prefix = "//bindgen:"

// Verb names a directive.
type Verb string

const (
	VerbKind    Verb = "kind"
	VerbName    Verb = "name"
	VerbSkip    Verb = "skip"
	VerbPrivate Verb = "private"
)

// Type holds the directives attached to one type declaration.
type Type struct {
	Kind    ir.Kind
	HasKind bool
	Name    string
	Skip    bool
	Pos     token.Position
}

// Member holds the directives attached to a field, method, or constant.
type Member struct {
	Name    string
	Skip    bool
	Private bool
	Pos     token.Position
}

// Result holds the directives found in a set of files, keyed by Go name.
type Result struct {
	Types map[string]Type

	// Members is keyed by "Type.Member". Constants are keyed by their own
	// name since their type is only known after type checking.
	Members map[string]Member
}

func newResult() *Result {
	return &Result{
		Types:   make(map[string]Type),
		Members: make(map[string]Member),
	}
}

// Type returns the directives of the named type. The zero value means none.
func (r *Result) Type(name string) Type {
	if r == nil {
		return Type{}
	}
	return r.Types[name]
}

// Member returns the directives of a member of typeName.
func (r *Result) Member(typeName, member string) Member {
	if r == nil {
		return Member{}
	}
	return r.Members[typeName+"."+member]
}

// Const returns the directives of a constant.
func (r *Result) Const(name string) Member {
	if r == nil {
		return Member{}
	}
	return r.Members[name]
}

// ParseFiles scans files for directives.
//
// It fails when a directive is unknown, malformed, used where it does not
// apply, or not part of a doc comment that precedes a declaration.
func ParseFiles(fset *token.FileSet, files []*ast.File) (*Result, error) {
	r := newResult()
	for _, f := range files {
		if err := r.parseFile(fset, f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Result) parseFile(fset *token.FileSet, f *ast.File) error {
	used := make(map[*ast.CommentGroup]bool)
	typeDoc := func(doc *ast.CommentGroup, name string) error {
		if doc == nil {
			return nil
		}
		used[doc] = true
		return r.parseType(fset, doc, name)
	}
	memberDoc := func(doc *ast.CommentGroup, key string) error {
		if doc == nil {
			return nil
		}
		used[doc] = true
		return r.parseMember(fset, doc, key)
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			recv := receiverName(d)
			if recv == "" {
				continue
			}
			if err := memberDoc(d.Doc, recv+"."+d.Name.Name); err != nil {
				return err
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					doc := s.Doc
					if doc == nil && len(d.Specs) == 1 {
						doc = d.Doc
					}
					if err := typeDoc(doc, s.Name.Name); err != nil {
						return err
					}
					if err := r.parseFields(s, memberDoc); err != nil {
						return err
					}
				case *ast.ValueSpec:
					if d.Tok != token.CONST {
						continue
					}
					doc := s.Doc
					if doc == nil && len(d.Specs) == 1 {
						doc = d.Doc
					}
					for _, name := range s.Names {
						if err := memberDoc(doc, name.Name); err != nil {
							return err
						}
					}
				}
			}
		}
	}

	for _, cg := range f.Comments {
		if used[cg] {
			continue
		}
		for _, c := range cg.List {
			if strings.HasPrefix(c.Text, prefix) {
				return errors.Newf("%s: %s must be part of the doc comment of a declaration",
					fset.Position(c.Pos()), strings.Fields(c.Text)[0])
			}
		}
	}
	return nil
}

func (r *Result) parseFields(s *ast.TypeSpec, memberDoc func(*ast.CommentGroup, string) error) error {
	var fields *ast.FieldList
	switch t := s.Type.(type) {
	case *ast.StructType:
		fields = t.Fields
	case *ast.InterfaceType:
		fields = t.Methods
	default:
		return nil
	}
	for _, field := range fields.List {
		for _, name := range field.Names {
			if err := memberDoc(field.Doc, s.Name.Name+"."+name.Name); err != nil {
				return err
			}
		}
		if len(field.Names) == 0 {
			if name := embeddedName(field.Type); name != "" {
				if err := memberDoc(field.Doc, s.Name.Name+"."+name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *Result) parseType(fset *token.FileSet, doc *ast.CommentGroup, name string) error {
	t := r.Types[name]
	for _, c := range doc.List {
		verb, args, ok := split(c.Text)
		if !ok {
			continue
		}
		pos := fset.Position(c.Pos())
		t.Pos = pos
		switch verb {
		case VerbKind:
			if len(args) != 1 {
				return errors.Newf("%s: %skind takes exactly one argument", pos, prefix)
			}
			k, err := ir.ParseKind(args[0])
			if err != nil {
				return errors.Wrapf(err, "%s", pos)
			}
			t.Kind, t.HasKind = k, true
		case VerbName:
			if len(args) != 1 {
				return errors.Newf("%s: %sname takes exactly one argument", pos, prefix)
			}
			t.Name = args[0]
		case VerbSkip:
			t.Skip = true
		case VerbPrivate:
			return errors.Newf("%s: %sprivate applies to members, not type %s", pos, prefix, name)
		default:
			return errors.Newf("%s: unknown directive %s%s", pos, prefix, verb)
		}
	}
	if t != (Type{}) {
		r.Types[name] = t
	}
	return nil
}

func (r *Result) parseMember(fset *token.FileSet, doc *ast.CommentGroup, key string) error {
	m := r.Members[key]
	for _, c := range doc.List {
		verb, args, ok := split(c.Text)
		if !ok {
			continue
		}
		pos := fset.Position(c.Pos())
		m.Pos = pos
		switch verb {
		case VerbName:
			if len(args) != 1 {
				return errors.Newf("%s: %sname takes exactly one argument", pos, prefix)
			}
			m.Name = args[0]
		case VerbSkip:
			m.Skip = true
		case VerbPrivate:
			m.Private = true
		case VerbKind:
			return errors.Newf("%s: %skind applies to types, not member %s", pos, prefix, key)
		default:
			return errors.Newf("%s: unknown directive %s%s", pos, prefix, verb)
		}
	}
	if m != (Member{}) {
		r.Members[key] = m
	}
	return nil
}

func split(text string) (Verb, []string, bool) {
	if !strings.HasPrefix(text, prefix) {
		return "", nil, false
	}
	parts := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(parts) == 0 {
		return "", nil, false
	}
	return Verb(parts[0]), parts[1:], true
}

func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	return embeddedName(fn.Recv.List[0].Type)
}

// embeddedName returns the base type name of an embedded field or receiver
// expression such as *T, T[K], or pkg.T.
func embeddedName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	case *ast.ParenExpr:
		return embeddedName(e.X)
	default:
		return ""
	}
}
