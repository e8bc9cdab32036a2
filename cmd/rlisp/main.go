// Command rlisp runs a Reduced Lisp file, or starts an interactive
// session when given none.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nukata/reduced-lisp-in-go"
)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[0;32m" + s + "\x1b[0m" }
func cyan(s string) string  { return "\x1b[0;36m" + s + "\x1b[0m" }
func bold(s string) string  { return "\x1b[1m" + s + "\x1b[0m" }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("rlisp", flag.ContinueOnError)
	configPath := fs.String("config", "", "configuration file (default $HOME/"+configFile+")")
	maxDepth := fs.Int("max-depth", 0, "limit of nested evaluation")
	includePath := fs.String("I", "", "directories searched by include, "+string(filepath.ListSeparator)+"-separated")
	verbose := fs.Bool("v", false, "log evaluator events")
	noColor := fs.Bool("no-color", false, "disable colored output")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: rlisp [flags] [file.rl]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rlisp:", err)
		return 2
	}
	if *maxDepth > 0 {
		cfg.MaxDepth = *maxDepth
	}
	if *includePath != "" {
		cfg.IncludePath = filepath.SplitList(*includePath)
	}
	if *noColor {
		cfg.Color = false
	}
	level, _ := cfg.Level()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	in := rlisp.New(
		rlisp.WithLoader(&rlisp.FileLoader{Path: cfg.IncludePath}),
		rlisp.WithMaxDepth(cfg.MaxDepth),
		rlisp.WithLogger(logger),
	)
	if fs.NArg() > 0 {
		return runFile(context.Background(), in, fs.Arg(0), os.Stderr)
	}
	return repl(in, cfg)
}

// runFile evaluates a whole file. The first error ends the run.
func runFile(ctx context.Context, in *rlisp.Interp, path string, stderr io.Writer) int {
	src, err := rlisp.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stderr, "rlisp:", err)
		return 1
	}
	src = strings.TrimSpace(src)
	if src == "" {
		return 0
	}
	if err := in.Run(ctx, src); err != nil {
		return report(stderr, err, false)
	}
	return 0
}

// report prints a diagnostic for err and returns the exit status it
// calls for.
func report(w io.Writer, err error, color bool) int {
	var exit *rlisp.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	paint := func(s string) string { return s }
	if color {
		paint = red
	}
	fmt.Fprintln(w, paint("# "+err.Error()))
	var e *rlisp.Error
	if errors.As(err, &e) && e.Form != nil {
		fmt.Fprintln(w, paint("# "+e.Detail()))
	}
	return 1
}
