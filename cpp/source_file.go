package cpp

import (
	"sort"
	"strings"

	"github.com/broady/bindgen/ir"
)

// SourceFile assembles the declarations that share one header.
//
// It deduplicates includes and forward declarations across declarations,
// drops a forward declaration when the header defining the same type is
// already included or the type is defined in this file, and drops the
// file's own include. Within a namespace, a declaration that uses another
// declaration of the same file by value is written after it; declarations
// otherwise keep the order they were added in.
type SourceFile struct {
	// Path is the slash-separated output path relative to the sink root.
	Path string

	config       GeneratorConfig
	self         string
	includes     ir.Set[string]
	forwards     ir.Set[string]
	forwardTypes map[string]*ir.Type
	defined      ir.Set[string]
	namespaces   []string
	members      map[string][]member
	bodies       ir.Set[string]
}

type member struct {
	key      string
	template string
	body     string
	requires []string
}

// NewSourceFile returns an empty header at path.
func NewSourceFile(path string, config GeneratorConfig) *SourceFile {
	return &SourceFile{
		Path:         path,
		config:       config.withDefaults(),
		self:         "<" + path + ">",
		forwardTypes: make(map[string]*ir.Type),
		members:      make(map[string][]member),
	}
}

// Add appends a declaration and merges its requirements.
func (f *SourceFile) Add(d Declaration) {
	f.includes.AddAll(d.Includes)
	for _, name := range d.ForwardDeclarations.Values() {
		f.forwards.Add(name)
		if t := d.ForwardType(name); t != nil {
			f.forwardTypes[name] = t
		}
	}
	if d.Type != nil {
		f.defined.Add(d.Type.TemplateName())
	}

	if _, ok := f.members[d.Namespace]; !ok {
		f.namespaces = append(f.namespaces, d.Namespace)
	}
	if !f.bodies.Add(d.Body) {
		return
	}
	m := member{template: d.Template, body: d.Body, requires: d.complete.Values()}
	if d.Type != nil {
		m.key = d.Type.Key()
	}
	f.members[d.Namespace] = append(f.members[d.Namespace], m)
}

// ordered returns the namespace block with every declaration after the
// declarations it needs complete. Ties and cycles keep insertion order.
func (f *SourceFile) ordered(ns string) []string {
	block := f.members[ns]
	local := make(map[string]bool, len(block))
	for _, m := range block {
		if m.key != "" {
			local[m.key] = true
		}
	}

	written := make(map[string]bool, len(block))
	placed := make([]bool, len(block))
	var templates ir.Set[string]
	var out []string
	place := func(i int) {
		m := block[i]
		placed[i] = true
		written[m.key] = true
		if m.template != "" && templates.Add(m.template) {
			out = append(out, m.template)
		}
		out = append(out, m.body)
	}
	ready := func(m member) bool {
		for _, dep := range m.requires {
			if dep != m.key && local[dep] && !written[dep] {
				return false
			}
		}
		return true
	}

	for n := 0; n < len(block); n++ {
		next := -1
		for i, m := range block {
			if placed[i] {
				continue
			}
			if next < 0 {
				next = i
			}
			if ready(m) {
				next = i
				break
			}
		}
		place(next)
	}
	return out
}

// Includes returns the include identifiers the file needs, sorted.
func (f *SourceFile) Includes() []string {
	set := ir.NewSet[string]()
	for _, inc := range f.includes.Values() {
		if inc != f.self {
			set.Add(inc)
		}
	}
	for _, name := range f.ForwardDeclarations() {
		if t := f.forwardTypes[name]; t != nil && t.Kind() == ir.KindEnumFlags {
			set.Add(ir.IncludeCstdint)
		}
	}
	return ir.Sorted(set)
}

// ForwardDeclarations returns the qualified names that still need a forward
// declaration after includes and local definitions are accounted for.
func (f *SourceFile) ForwardDeclarations() []string {
	var out []string
	for _, name := range ir.Sorted(f.forwards) {
		if f.defined.Has(name) {
			continue
		}
		if t := f.forwardTypes[name]; t != nil {
			inc := t.Include(f.config.HeaderExtension)
			if inc == f.self || f.includes.Has(inc) {
				continue
			}
		}
		out = append(out, name)
	}
	return out
}

// Bytes renders the file.
func (f *SourceFile) Bytes() []byte {
	var b strings.Builder

	if f.config.Banner != "" {
		b.WriteString(strings.TrimRight(f.config.Banner, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("#pragma once\n")

	if includes := f.Includes(); len(includes) > 0 {
		b.WriteByte('\n')
		for _, inc := range includes {
			b.WriteString("#include ")
			b.WriteString(inc)
			b.WriteByte('\n')
		}
	}

	f.writeForwardDeclarations(&b)

	for _, ns := range f.sortedNamespaces() {
		b.WriteByte('\n')
		if ns != "" {
			b.WriteString("namespace " + ns + " {\n\n")
		}
		for i, text := range f.ordered(ns) {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(text)
			b.WriteByte('\n')
		}
		if ns != "" {
			b.WriteString("\n} // namespace " + ns + "\n")
		}
	}

	out := b.String()
	if !f.config.TrailingNewline {
		out = strings.TrimRight(out, "\n")
	}
	if f.config.LineEnding == "crlf" {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	return []byte(out)
}

func (f *SourceFile) writeForwardDeclarations(b *strings.Builder) {
	grouped := make(map[string][]string)
	var order []string
	for _, name := range f.ForwardDeclarations() {
		t := f.forwardTypes[name]
		stmt, ok := forwardStatement(t)
		if !ok {
			continue
		}
		ns := t.CppNamespace()
		if _, seen := grouped[ns]; !seen {
			order = append(order, ns)
		}
		grouped[ns] = append(grouped[ns], stmt)
	}
	sort.Strings(order)

	for _, ns := range order {
		b.WriteByte('\n')
		if ns != "" {
			b.WriteString("namespace " + ns + " {\n")
		}
		for _, stmt := range grouped[ns] {
			b.WriteString(stmt)
			b.WriteByte('\n')
		}
		if ns != "" {
			b.WriteString("} // namespace " + ns + "\n")
		}
	}
}

func (f *SourceFile) sortedNamespaces() []string {
	out := append([]string(nil), f.namespaces...)
	sort.Strings(out)
	return out
}

// forwardStatement renders the forward declaration of t without its
// namespace.
func forwardStatement(t *ir.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	keyword, err := Keyword(t.Kind())
	if err != nil {
		return "", false
	}
	switch {
	case t.IsGeneric() && t.Kind().IsEnum():
		return "", false
	case t.IsGeneric():
		return templateHeader(len(t.GenericArguments())) + " " + keyword + " " + t.Name() + ";", true
	case t.Kind() == ir.KindEnumFlags:
		return keyword + " " + t.Name() + " : uint32_t;", true
	default:
		return keyword + " " + t.Name() + ";", true
	}
}
