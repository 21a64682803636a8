package cpp

import (
	"context"
	"log/slog"

	"github.com/broady/bindgen/ir"
	"github.com/broady/bindgen/sink"
)

// Generator transforms a resolved table into target language source files.
type Generator interface {
	// Name returns the generator's identifier.
	Name() string

	// Generate produces source files for every record in table.
	Generate(ctx context.Context, table *ir.Table, opts GenerateOptions) (*GenerateResult, error)
}

// GenerateOptions configures generation behavior.
type GenerateOptions struct {
	// Sink receives generated output files.
	Sink sink.OutputSink

	// Config contains formatting and layout options.
	Config GeneratorConfig

	// Logger receives progress messages. Nil discards them.
	Logger *slog.Logger
}

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists all files that were written.
	Files []OutputFile

	// TypesGenerated is the count of records emitted with a real declaration.
	TypesGenerated int

	// Placeholders is the count of records emitted as placeholders.
	Placeholders int

	// Diagnostics contains non-fatal issues, sorted by type name.
	Diagnostics []ir.Diagnostic
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// GeneratorConfig provides formatting and layout options.
type GeneratorConfig struct {
	// Formatting
	IndentStyle     string // "space" or "tab"
	IndentSize      int    // Spaces per indent level (when IndentStyle is "space")
	LineEnding      string // "lf" or "crlf"
	TrailingNewline bool   // Ensure files end with a newline

	// HeaderExtension is appended to header paths. Default ".h".
	HeaderExtension string

	// PlaceholderFile holds placeholder declarations for records without a
	// type. Default "bindgen/Placeholders.h".
	PlaceholderFile string

	// Banner is written at the top of every file, before #pragma once.
	Banner string

	// Concurrency bounds parallel emission tasks. Zero means one task per CPU.
	Concurrency int
}

func (c GeneratorConfig) withDefaults() GeneratorConfig {
	if c.IndentStyle == "" {
		c.IndentStyle = "space"
	}
	if c.IndentSize == 0 {
		c.IndentSize = 2
	}
	if c.LineEnding == "" {
		c.LineEnding = "lf"
	}
	if c.HeaderExtension == "" {
		c.HeaderExtension = ".h"
	}
	if c.PlaceholderFile == "" {
		c.PlaceholderFile = "bindgen/Placeholders" + c.HeaderExtension
	}
	return c
}

func (c GeneratorConfig) indent() string {
	if c.IndentStyle == "tab" {
		return "\t"
	}
	n := c.IndentSize
	if n <= 0 {
		n = 2
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
