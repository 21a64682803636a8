package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/bindgen/cmd/bindgen/internal/check"
	"github.com/broady/bindgen/cmd/bindgen/internal/dump"
	"github.com/broady/bindgen/cmd/bindgen/internal/gen"
	"github.com/broady/bindgen/cmd/bindgen/internal/source"
)

type CLI struct {
	Verbose bool `help:"Log progress to stderr." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate C++ headers."`
	Check   check.Cmd  `cmd:"" help:"Merge, resolve, and emit without writing files."`
	Dump    dump.Cmd   `cmd:"" help:"Print the resolved type graph."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *source.Globals) error {
	fmt.Fprintln(g.Stdout, Version())
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("bindgen"),
		kong.Description("Generate C++ interop headers from Go types and type manifests."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&source.Globals{
		Ctx:    ctx,
		Logger: newLogger(stderr, cli.Verbose),
		Stdout: stdout,
		Stderr: stderr,
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "bindgen: %v\n", err)
		stop()
		os.Exit(1)
	}
}
