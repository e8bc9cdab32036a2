// Package rlisp implements a small Lisp with closures, a global table
// plus immutable local frames, and a minimal class/instance system.
package rlisp

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// DefaultMaxDepth bounds nested, non-tail evaluation.
const DefaultMaxDepth = 10000

// Interp evaluates forms against one global table. An Interp is one
// evaluation unit (a script, a module or a REPL session) and must not be
// used from more than one goroutine at a time.
type Interp struct {
	Globals  *Table
	Loader   Loader
	Stdout   io.Writer
	MaxDepth int
	Logger   *slog.Logger

	depth   int
	loading map[string]bool // units being included, shared with children
}

// Option configures an Interp.
type Option func(*Interp)

// WithStdout sets where print writes.
func WithStdout(w io.Writer) Option { return func(in *Interp) { in.Stdout = w } }

// WithLoader sets the loader used by include.
func WithLoader(l Loader) Option { return func(in *Interp) { in.Loader = l } }

// WithMaxDepth sets the limit of nested, non-tail evaluation.
func WithMaxDepth(n int) Option { return func(in *Interp) { in.MaxDepth = n } }

// WithLogger sets the logger for evaluator events.
func WithLogger(l *slog.Logger) Option { return func(in *Interp) { in.Logger = l } }

// New returns an interpreter whose global table holds the built-ins.
func New(opts ...Option) *Interp {
	in := &Interp{
		Globals:  Builtins(),
		Loader:   &FileLoader{},
		Stdout:   os.Stdout,
		MaxDepth: DefaultMaxDepth,
		Logger:   slog.Default(),
		loading:  map[string]bool{},
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// child returns a fresh unit with the same settings.
func (in *Interp) child() *Interp {
	return &Interp{
		Globals:  Builtins(),
		Loader:   in.Loader,
		Stdout:   in.Stdout,
		MaxDepth: in.MaxDepth,
		Logger:   in.Logger,
		loading:  in.loading,
	}
}

// Eval evaluates a top-level form. Definitions made before a failure
// stay in the global table.
func (in *Interp) Eval(ctx context.Context, form *Form) (Value, error) {
	return in.eval(ctx, form, &scope{table: in.Globals, top: true})
}

// EvalForms evaluates forms in order and returns the value of the last.
func (in *Interp) EvalForms(ctx context.Context, forms []*Form) (Value, error) {
	var result Value = Null
	for _, f := range forms {
		v, err := in.Eval(ctx, f)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// EvalString parses, validates and evaluates src.
func (in *Interp) EvalString(ctx context.Context, src string) (Value, error) {
	forms, err := ParseString(src)
	if err != nil {
		return nil, err
	}
	if err := Validate(forms...); err != nil {
		return nil, err
	}
	return in.EvalForms(ctx, forms)
}

// Run evaluates src for its effects.
func (in *Interp) Run(ctx context.Context, src string) error {
	_, err := in.EvalString(ctx, src)
	return err
}

// Apply calls fn with args.
func (in *Interp) Apply(ctx context.Context, fn Value, args ...Value) (Value, error) {
	return in.call(ctx, fn, args, nil)
}
