package rlisp

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
)

// testInterp returns an interpreter that prints into out and logs nothing.
func testInterp(out io.Writer, opts ...Option) *Interp {
	opts = append([]Option{
		WithStdout(out),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return New(opts...)
}

// evalSource evaluates src in a fresh interpreter and returns the value
// of the last form along with everything printed.
func evalSource(t *testing.T, src string, opts ...Option) (Value, string, error) {
	t.Helper()
	var out bytes.Buffer
	in := testInterp(&out, opts...)
	v, err := in.EvalString(context.Background(), src)
	return v, out.String(), err
}

// mustEval is evalSource for programs that must succeed.
func mustEval(t *testing.T, src string) (Value, string) {
	t.Helper()
	v, out, err := evalSource(t, src)
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	return v, out
}

// A sourceCase is a program and the printed form of its last value.
type sourceCase struct {
	src  string
	want string
}

func runSourceCases(t *testing.T, cases map[string]sourceCase) {
	t.Helper()
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			v, _ := mustEval(t, c.src)
			if got := v.String(); got != c.want {
				t.Errorf("%s = %s, want %s", c.src, got, c.want)
			}
		})
	}
}

// An errorCase is a program expected to fail with a kind of error.
type errorCase struct {
	src  string
	kind ErrorKind
}

func runErrorCases(t *testing.T, cases map[string]errorCase) {
	t.Helper()
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			v, _, err := evalSource(t, c.src)
			if err == nil {
				t.Fatalf("%s = %v, want %v", c.src, v, c.kind)
			}
			if !IsKind(err, c.kind) {
				t.Errorf("%s: got %v, want %v", c.src, err, c.kind)
			}
		})
	}
}
