package ir

import "strings"

// Param is a method parameter.
type Param struct {
	Name string
	Type TypeRef
}

// Method describes one method of a record.
// Identity is the name plus the parameter type list.
type Method struct {
	Name      string
	Return    TypeRef
	Params    []Param
	IsPrivate bool
	IsStatic  bool
	IsConst   bool
}

// Key returns the identity of the method within its record.
func (m Method) Key() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Type.Key())
	}
	b.WriteByte(')')
	return b.String()
}

// Property describes one property of a record. For enum kinds a property is
// an enumerator and Value optionally holds its explicit value.
// Identity is the name plus the type.
type Property struct {
	Name      string
	Type      TypeRef
	IsPrivate bool
	IsStatic  bool
	Value     *int64
}

// Key returns the identity of the property within its record.
func (p Property) Key() string {
	return p.Name + ":" + p.Type.Key()
}

// EnumValue returns a pointer to v, for Property.Value.
func EnumValue(v int64) *int64 { return &v }

type keyed interface {
	Key() string
}

// MemberSet is an insertion-ordered collection of members deduplicated by
// Key. The zero value is ready to use.
type MemberSet[T keyed] struct {
	items []T
	index map[string]int
}

// Add appends m unless a member with the same key exists. It reports whether
// m was added.
func (s *MemberSet[T]) Add(m T) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	k := m.Key()
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, m)
	return true
}

// Has reports whether a member with key k exists.
func (s *MemberSet[T]) Has(k string) bool {
	_, ok := s.index[k]
	return ok
}

// Len returns the number of members.
func (s *MemberSet[T]) Len() int { return len(s.items) }

// All returns the members in first-seen order.
func (s *MemberSet[T]) All() []T {
	return append([]T(nil), s.items...)
}
