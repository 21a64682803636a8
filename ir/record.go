package ir

// RecordID indexes a record in a Table.
type RecordID int

// NoRecord marks an unresolved link.
const NoRecord RecordID = -1

// Record aggregates everything known about one type.
//
// Discovery fills Type, the member sets, and the declared links. The merge
// step produces one canonical Record per type; resolution binds Base and
// Interfaces to indices in the same Table.
type Record struct {
	// Type is the identity of the record. Nil marks a record whose type
	// could not be determined; it is emitted as a placeholder.
	Type *Type

	Methods    MemberSet[Method]
	Properties MemberSet[Property]

	// DeclaredBase and DeclaredInterfaces are the relationships reported by
	// discovery, not yet linked to records.
	DeclaredBase       *Type
	DeclaredInterfaces []*Type

	// Base is the resolved base record, or NoRecord when the base type is
	// outside the model, absent, or was cut to break a cycle.
	Base RecordID

	// Interfaces are the resolved interface records in declaration order.
	Interfaces []RecordID

	// Unit names the compilation unit that first reported the record.
	Unit string

	// Source is the location that first declared the type, if known.
	Source Source
}

// NewRecord returns an empty record for t with no resolved base.
func NewRecord(t *Type) *Record {
	return &Record{Type: t, Base: NoRecord}
}

// AddMethod adds m, ignoring duplicates.
func (r *Record) AddMethod(m Method) *Record {
	r.Methods.Add(m)
	return r
}

// AddProperty adds p, ignoring duplicates.
func (r *Record) AddProperty(p Property) *Record {
	r.Properties.Add(p)
	return r
}

// Extends sets the declared base type.
func (r *Record) Extends(base *Type) *Record {
	r.DeclaredBase = base
	return r
}

// Implements appends declared interface types.
func (r *Record) Implements(ifaces ...*Type) *Record {
	r.DeclaredInterfaces = append(r.DeclaredInterfaces, ifaces...)
	return r
}

// Name returns a printable name for diagnostics.
func (r *Record) Name() string {
	if r == nil || r.Type == nil {
		return "<null>"
	}
	return r.Type.QualifiedName()
}

// Batch is the output of one discovery pass over one compilation unit.
type Batch struct {
	Unit    string
	Records []*Record
}
