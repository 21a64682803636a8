package graph

import (
	"context"
	"strings"

	"github.com/broady/bindgen/ir"
)

// Resolve binds every record's declared base and interfaces to records in
// table. It must run on a fully merged table.
//
// A declared type that is not in the table is left unresolved and reported
// as ir.CodeMissingType; this is the normal outcome for types outside the
// model. Base and interface links are then walked together: when a walk
// revisits a record, the link that closes the cycle is cut and one
// ir.CodeCyclicInheritance diagnostic is reported for that cycle.
//
// Resolve never touches members. Cancellation is checked between records.
func Resolve(ctx context.Context, table *ir.Table, diags ir.DiagnosticSink) error {
	if diags == nil {
		diags = new(ir.Diagnostics)
	}
	for _, id := range table.IDs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := table.Record(id)
		rec.Base = ir.NoRecord
		rec.Interfaces = nil
		if rec.Type == nil {
			continue
		}

		if rec.DeclaredBase != nil {
			if baseID, ok := table.Lookup(rec.DeclaredBase); ok {
				rec.Base = baseID
			} else {
				diags.Report(ir.NewDiagnostic(ir.ErrMissingType, rec, rec.DeclaredBase.QualifiedName(),
					"base type %s of %s was not discovered", rec.DeclaredBase.QualifiedName(), rec.Name()))
			}
		}

		for _, iface := range rec.DeclaredInterfaces {
			ifaceID, ok := table.Lookup(iface)
			if !ok {
				diags.Report(ir.NewDiagnostic(ir.ErrMissingType, rec, iface.QualifiedName(),
					"interface %s of %s was not discovered", iface.QualifiedName(), rec.Name()))
				continue
			}
			rec.Interfaces = append(rec.Interfaces, ifaceID)
		}
	}

	breakCycles(table, diags)
	return nil
}

const (
	unvisited = iota
	onPath
	done
)

// breakCycles runs a depth-first walk over base and interface links. Base
// links are followed before interface links, each in declared order. Every
// link that reaches a record still on the walk closes exactly one cycle;
// that link is cut and reported, which leaves the graph acyclic.
func breakCycles(table *ir.Table, diags ir.DiagnosticSink) {
	state := make([]int, table.Len())
	var path []ir.RecordID

	var visit func(id ir.RecordID)
	visit = func(id ir.RecordID) {
		state[id] = onPath
		path = append(path, id)
		rec := table.Record(id)

		if rec.Base != ir.NoRecord {
			switch state[rec.Base] {
			case onPath:
				diags.Report(ir.NewDiagnostic(ir.ErrCyclicInheritance, rec, rec.DeclaredBase.QualifiedName(),
					"inheritance cycle %s; base of %s left unresolved", cyclePath(table, path, rec.Base), rec.Name()))
				rec.Base = ir.NoRecord
			case unvisited:
				visit(rec.Base)
			}
		}

		kept := rec.Interfaces[:0]
		for _, iface := range rec.Interfaces {
			switch state[iface] {
			case onPath:
				target := table.Record(iface)
				diags.Report(ir.NewDiagnostic(ir.ErrCyclicInheritance, rec, target.Name(),
					"inheritance cycle %s; interface %s of %s left unresolved",
					cyclePath(table, path, iface), target.Name(), rec.Name()))
				continue
			case unvisited:
				visit(iface)
			}
			kept = append(kept, iface)
		}
		rec.Interfaces = kept

		path = path[:len(path)-1]
		state[id] = done
	}

	for _, id := range table.IDs() {
		if state[id] == unvisited {
			visit(id)
		}
	}
}

func cyclePath(table *ir.Table, path []ir.RecordID, repeat ir.RecordID) string {
	var names []string
	inCycle := false
	for _, id := range path {
		if id == repeat {
			inCycle = true
		}
		if inCycle {
			names = append(names, table.Record(id).Name())
		}
	}
	names = append(names, table.Record(repeat).Name())
	return strings.Join(names, " -> ")
}
