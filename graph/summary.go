package graph

import (
	"fmt"
	"io"

	"github.com/broady/bindgen/ir"
)

// WriteSummary prints each record of a resolved table with its base class,
// interfaces, properties, and methods. It stops at the first write error.
func WriteSummary(w io.Writer, table *ir.Table) error {
	sw := &summaryWriter{w: w}
	for _, id := range table.IDs() {
		rec := table.Record(id)
		sw.line("%s", rec.Name())
		if base := table.Record(rec.Base); base != nil {
			sw.line("  Base Class: %s", base.Name())
		}
		sw.line("  Interfaces")
		for _, iface := range rec.Interfaces {
			sw.line("    %s", table.Record(iface).Name())
		}
		sw.line("  Properties")
		for _, p := range rec.Properties.All() {
			sw.line("    %s", p.Name)
		}
		sw.line("  Methods")
		for _, m := range rec.Methods.All() {
			sw.line("    %s", m.Name)
		}
		if sw.err != nil {
			return sw.err
		}
	}
	return sw.err
}

// summaryWriter turns writes into no-ops after the first error.
type summaryWriter struct {
	w   io.Writer
	err error
}

func (s *summaryWriter) line(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format+"\n", args...)
}
