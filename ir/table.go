package ir

// Table is the canonical arena of records keyed by type identity.
//
// Records are only ever appended. Records without a type live in the arena
// but are not indexed.
type Table struct {
	records []*Record
	index   map[string]RecordID
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]RecordID)}
}

// Insert appends r and returns its ID. If a record for the same type exists
// the table is unchanged and the existing ID is returned with false.
func (t *Table) Insert(r *Record) (RecordID, bool) {
	if r.Type != nil {
		if id, ok := t.index[r.Type.Key()]; ok {
			return id, false
		}
	}
	id := RecordID(len(t.records))
	t.records = append(t.records, r)
	if r.Type != nil {
		t.index[r.Type.Key()] = id
	}
	return id, true
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Record returns the record for id, or nil if id is out of range.
func (t *Table) Record(id RecordID) *Record {
	if id < 0 || int(id) >= len(t.records) {
		return nil
	}
	return t.records[id]
}

// Lookup returns the ID of the record for typ.
func (t *Table) Lookup(typ *Type) (RecordID, bool) {
	if typ == nil {
		return NoRecord, false
	}
	return t.LookupKey(typ.Key())
}

// LookupKey returns the ID of the record whose type has the given key.
func (t *Table) LookupKey(key string) (RecordID, bool) {
	id, ok := t.index[key]
	if !ok {
		return NoRecord, false
	}
	return id, true
}

// Find returns the record for typ, or nil.
func (t *Table) Find(typ *Type) *Record {
	id, ok := t.Lookup(typ)
	if !ok {
		return nil
	}
	return t.records[id]
}

// IDs returns every record ID in arena order.
func (t *Table) IDs() []RecordID {
	ids := make([]RecordID, len(t.records))
	for i := range ids {
		ids[i] = RecordID(i)
	}
	return ids
}
