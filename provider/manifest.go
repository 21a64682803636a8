package provider

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/broady/bindgen/ir"
)

// Manifest is one YAML document describing the types of one unit.
//
//	unit: engine
//	namespace: UnityEngine
//	types:
//	  - name: Camera
//	    kind: class
//	    base: Behaviour
//	    interfaces: [System::IDisposable]
//	    properties:
//	      - {name: fieldOfView, type: float32}
//	      - {name: target, type: "Transform*"}
//	    methods:
//	      - name: Render
//	        params: [{name: other, type: "const Camera&"}]
//	        const: true
//
// Type references use C++ spelling. A reference without "::" lives in the
// document namespace; a leading "::" names the global namespace. A
// trailing "*" or "&", or a "const T&" form, selects the reference mode.
type Manifest struct {
	Unit      string         `yaml:"unit"`
	Namespace string         `yaml:"namespace"`
	Types     []ManifestType `yaml:"types" validate:"dive"`

	file string
}

// ManifestType declares one type or one generic instantiation.
type ManifestType struct {
	Name       string             `yaml:"name" validate:"required,excludesall=<>:*&"`
	Kind       string             `yaml:"kind"`
	Args       []string           `yaml:"args" validate:"dive,required"`
	Base       string             `yaml:"base"`
	Interfaces []string           `yaml:"interfaces" validate:"dive,required"`
	Properties []ManifestProperty `yaml:"properties" validate:"dive"`
	Methods    []ManifestMethod   `yaml:"methods" validate:"dive"`

	line, column int
}

// ManifestProperty declares a property or, for enums, an enumerator.
type ManifestProperty struct {
	Name    string `yaml:"name" validate:"required"`
	Type    string `yaml:"type"`
	Private bool   `yaml:"private"`
	Static  bool   `yaml:"static"`
	Value   *int64 `yaml:"value"`
}

// ManifestMethod declares a method.
type ManifestMethod struct {
	Name    string          `yaml:"name" validate:"required"`
	Returns string          `yaml:"returns"`
	Params  []ManifestParam `yaml:"params" validate:"dive"`
	Private bool            `yaml:"private"`
	Static  bool            `yaml:"static"`
	Const   bool            `yaml:"const"`
}

// ManifestParam declares a method parameter.
type ManifestParam struct {
	Name string `yaml:"name"`
	Type string `yaml:"type" validate:"required"`
}

// ManifestProvider discovers types from YAML manifests. Each document
// becomes one batch.
type ManifestProvider struct {
	// Files are the manifest paths, read from FS when set and from the
	// local filesystem otherwise.
	Files []string
	FS    fs.FS
}

var _ Provider = (*ManifestProvider)(nil)

var manifestValidator = validator.New(validator.WithRequiredStructEnabled())

// Discover reads every manifest and converts its documents. Type
// references are resolved against the types declared across all files,
// so a base may be declared in another manifest.
func (p *ManifestProvider) Discover(ctx context.Context) ([]ir.Batch, error) {
	if len(p.Files) == 0 {
		return nil, errors.New("no manifest files specified")
	}

	var docs []Manifest
	for _, name := range p.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ms, err := p.read(name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, ms...)
	}

	kinds := make(map[string]ir.Kind)
	for _, m := range docs {
		for _, t := range m.Types {
			k, err := ir.ParseKind(t.Kind)
			if err != nil {
				return nil, manifestError(m, t.line, err)
			}
			kinds[qualify(m.namespace(), t.Name)] = k
		}
	}

	batches := make([]ir.Batch, 0, len(docs))
	for _, m := range docs {
		b, err := m.batch(kinds)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func (p *ManifestProvider) read(name string) ([]Manifest, error) {
	var (
		f   io.ReadCloser
		err error
	)
	if p.FS != nil {
		f, err = p.FS.Open(name)
	} else {
		f, err = os.Open(name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open manifest")
	}
	defer f.Close()

	ms, err := ParseManifests(f)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", name)
	}
	for i := range ms {
		ms[i].file = name
		if ms[i].Unit == "" {
			ms[i].Unit = name
			if len(ms) > 1 {
				ms[i].Unit += "#" + strconv.Itoa(i)
			}
		}
	}
	return ms, nil
}

// ParseManifests decodes every YAML document in r. Unknown fields are
// rejected.
func ParseManifests(r io.Reader) ([]Manifest, error) {
	dec := yaml.NewDecoder(r)
	var out []Manifest
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "decode")
		}

		var m Manifest
		if err := decodeStrict(&node, &m); err != nil {
			return nil, errors.Wrapf(err, "document %d", len(out))
		}
		if err := manifestValidator.Struct(m); err != nil {
			return nil, errors.Wrapf(err, "document %d", len(out))
		}
		recordPositions(&node, &m)
		out = append(out, m)
	}
}

// decodeStrict decodes node into v, rejecting unknown fields. yaml.Node
// has no strict decode, so the node is re-encoded through a decoder.
func decodeStrict(node *yaml.Node, v any) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// recordPositions copies the line of every entry of "types" from the
// document node.
func recordPositions(doc *yaml.Node, m *Manifest) {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "types" {
			continue
		}
		seq := root.Content[i+1]
		for j, item := range seq.Content {
			if j < len(m.Types) {
				m.Types[j].line, m.Types[j].column = item.Line, item.Column
			}
		}
	}
}

func (m Manifest) namespace() []string {
	return splitNamespace(m.Namespace)
}

func (m Manifest) batch(kinds map[string]ir.Kind) (ir.Batch, error) {
	r := refParser{namespace: m.namespace(), kinds: kinds}
	b := ir.Batch{Unit: m.Unit}
	for _, t := range m.Types {
		rec, err := m.record(r, t)
		if err != nil {
			return ir.Batch{}, manifestError(m, t.line, err)
		}
		b.Records = append(b.Records, rec)
	}
	return b, nil
}

func (m Manifest) record(r refParser, t ManifestType) (*ir.Record, error) {
	kind := r.kinds[qualify(r.namespace, t.Name)]
	args := make([]*ir.Type, len(t.Args))
	for i, a := range t.Args {
		typ, err := r.parseType(a)
		if err != nil {
			return nil, err
		}
		args[i] = typ
	}

	rec := ir.NewRecord(ir.NewType(r.namespace, t.Name, kind, args...))
	rec.Unit = m.Unit
	rec.Source = ir.Source{File: m.file, Line: t.line, Column: t.column}

	if t.Base != "" {
		base, err := r.parseType(t.Base)
		if err != nil {
			return nil, errors.Wrap(err, "base")
		}
		rec.Extends(base)
	}
	for _, s := range t.Interfaces {
		iface, err := r.parseType(s)
		if err != nil {
			return nil, errors.Wrap(err, "interface")
		}
		rec.Implements(iface)
	}

	for _, p := range t.Properties {
		var ref ir.TypeRef
		if !kind.IsEnum() || p.Type != "" {
			var err error
			if ref, err = r.parseRef(p.Type); err != nil {
				return nil, errors.Wrapf(err, "property %s", p.Name)
			}
		}
		rec.AddProperty(ir.Property{
			Name:      p.Name,
			Type:      ref,
			IsPrivate: p.Private,
			IsStatic:  p.Static,
			Value:     p.Value,
		})
	}

	for _, mm := range t.Methods {
		ret, err := r.parseRef(mm.Returns)
		if err != nil {
			return nil, errors.Wrapf(err, "method %s", mm.Name)
		}
		params := make([]ir.Param, len(mm.Params))
		for i, p := range mm.Params {
			ref, err := r.parseRef(p.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "method %s parameter %d", mm.Name, i)
			}
			params[i] = ir.Param{Name: p.Name, Type: ref}
		}
		rec.AddMethod(ir.Method{
			Name:      mm.Name,
			Return:    ret,
			Params:    params,
			IsPrivate: mm.Private,
			IsStatic:  mm.Static,
			IsConst:   mm.Const,
		})
	}
	return rec, nil
}

func manifestError(m Manifest, line int, err error) error {
	loc := m.file
	if line > 0 {
		loc += ":" + strconv.Itoa(line)
	}
	return errors.Mark(errors.Wrapf(err, "%s (unit %s)", loc, m.Unit), ir.ErrMalformedBatch)
}

// refParser parses C++ spelled type references.
type refParser struct {
	namespace []string
	kinds     map[string]ir.Kind
}

// parseRef parses a type with an optional reference mode. An empty string
// or "void" is the void type.
func (r refParser) parseRef(s string) (ir.TypeRef, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "void" {
		return ir.TypeRef{}, nil
	}
	mode := ir.ByValue
	switch {
	case strings.HasPrefix(s, "const ") && strings.HasSuffix(s, "&"):
		mode = ir.ConstReference
		s = strings.TrimSuffix(strings.TrimPrefix(s, "const "), "&")
	case strings.HasSuffix(s, "*"):
		mode = ir.Pointer
		s = strings.TrimSuffix(s, "*")
	case strings.HasSuffix(s, "&"):
		mode = ir.Reference
		s = strings.TrimSuffix(s, "&")
	}
	typ, err := r.parseType(s)
	if err != nil {
		return ir.TypeRef{}, err
	}
	return ir.TypeRef{Type: typ, Mode: mode}, nil
}

// parseType parses "A::B::Name<Arg, ...>" or a builtin spelling.
func (r refParser) parseType(s string) (*ir.Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty type reference")
	}
	if t := cppBuiltin(s); t != nil {
		return t, nil
	}

	name, argList := s, ""
	if i := strings.IndexByte(s, '<'); i >= 0 {
		if !strings.HasSuffix(s, ">") {
			return nil, errors.Newf("unbalanced generic arguments in %q", s)
		}
		name, argList = strings.TrimSpace(s[:i]), s[i+1:len(s)-1]
	}
	if strings.ContainsAny(name, "<>*& ") || name == "" {
		return nil, errors.Newf("invalid type reference %q", s)
	}

	var args []*ir.Type
	if argList != "" {
		parts, err := splitArgs(argList)
		if err != nil {
			return nil, errors.Wrapf(err, "%q", s)
		}
		for _, p := range parts {
			a, err := r.parseType(p)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
	}

	var ns []string
	switch {
	case strings.HasPrefix(name, "::"):
		name = strings.TrimPrefix(name, "::")
	case strings.Contains(name, "::"):
	default:
		name = qualify(r.namespace, name)
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		ns = splitNamespace(name[:i])
		name = name[i+2:]
	}
	return ir.NewType(ns, name, r.kinds[qualify(ns, name)], args...), nil
}

// splitArgs splits a generic argument list at top-level commas.
func splitArgs(s string) ([]string, error) {
	var out []string
	depth, start := 0, 0
	for i, c := range s {
		switch c {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced generic arguments")
			}
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unbalanced generic arguments")
	}
	return append(out, s[start:]), nil
}

func cppBuiltin(s string) *ir.Type {
	if t := builtin(s); t != nil {
		return t
	}
	switch s {
	case "float":
		return ir.Float(32)
	case "double":
		return ir.Float(64)
	case "std::string":
		return ir.String()
	case "int8_t", "int16_t", "int32_t", "int64_t",
		"uint8_t", "uint16_t", "uint32_t", "uint64_t":
		return ir.Builtin(s, ir.IncludeCstdint)
	}
	return nil
}

func splitNamespace(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "::") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func qualify(ns []string, name string) string {
	if len(ns) == 0 {
		return name
	}
	return strings.Join(ns, "::") + "::" + name
}
