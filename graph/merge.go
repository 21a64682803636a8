// Package graph builds the binding graph: it merges discovery batches into
// one canonical table and resolves base and interface links between records.
package graph

import (
	"github.com/cockroachdb/errors"

	"github.com/broady/bindgen/ir"
)

// Merge reduces batches into a new canonical table with exactly one record
// per distinct type. Member order reflects first-seen order across batches;
// members whose identity already exists are skipped. The input records are
// not modified.
//
// Records without a type are kept as separate entries so they can be
// emitted as placeholders. A batch that violates structural invariants
// aborts the merge with an error marked ir.ErrMalformedBatch.
func Merge(batches ...ir.Batch) (*ir.Table, error) {
	for _, b := range batches {
		if err := ValidateBatch(b); err != nil {
			return nil, err
		}
	}

	table := ir.NewTable()
	for _, b := range batches {
		for _, rec := range b.Records {
			mergeRecord(table, b.Unit, rec)
		}
	}
	return table, nil
}

func mergeRecord(table *ir.Table, unit string, rec *ir.Record) {
	var canon *ir.Record
	if id, ok := table.Lookup(rec.Type); ok {
		canon = table.Record(id)
	} else {
		canon = ir.NewRecord(rec.Type)
		canon.Unit = unit
		canon.Source = rec.Source
		table.Insert(canon)
	}

	for _, m := range rec.Methods.All() {
		canon.Methods.Add(m)
	}
	for _, p := range rec.Properties.All() {
		canon.Properties.Add(p)
	}

	if canon.DeclaredBase == nil {
		canon.DeclaredBase = rec.DeclaredBase
	}
	for _, iface := range rec.DeclaredInterfaces {
		if !containsType(canon.DeclaredInterfaces, iface) {
			canon.DeclaredInterfaces = append(canon.DeclaredInterfaces, iface)
		}
	}
}

func containsType(list []*ir.Type, t *ir.Type) bool {
	for _, x := range list {
		if x.Key() == t.Key() {
			return true
		}
	}
	return false
}

// ValidateBatch checks the structural invariants the merge step relies on.
func ValidateBatch(b ir.Batch) error {
	for i, rec := range b.Records {
		if rec == nil {
			return malformed(b.Unit, "record %d is nil", i)
		}
		for _, m := range rec.Methods.All() {
			if m.Name == "" {
				return malformed(b.Unit, "%s has a method without a name", rec.Name())
			}
			for j, p := range m.Params {
				if p.Type.IsVoid() {
					return malformed(b.Unit, "%s.%s parameter %d has no type", rec.Name(), m.Name, j)
				}
			}
		}
		for _, p := range rec.Properties.All() {
			if p.Name == "" {
				return malformed(b.Unit, "%s has a property without a name", rec.Name())
			}
			// Enumerators take the enum's underlying type.
			if p.Type.IsVoid() && !rec.Type.Kind().IsEnum() {
				return malformed(b.Unit, "%s.%s has no type", rec.Name(), p.Name)
			}
		}
		for j, iface := range rec.DeclaredInterfaces {
			if iface == nil {
				return malformed(b.Unit, "%s interface %d is nil", rec.Name(), j)
			}
		}
	}
	return nil
}

func malformed(unit, format string, args ...any) error {
	err := errors.Newf(format, args...)
	if unit != "" {
		err = errors.Wrapf(err, "unit %s", unit)
	}
	return errors.Mark(err, ir.ErrMalformedBatch)
}
