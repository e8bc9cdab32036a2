package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nukata/reduced-lisp-in-go"
)

func quietInterp(out io.Writer) *rlisp.Interp {
	return rlisp.New(
		rlisp.WithStdout(out),
		rlisp.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func writeFile(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunFile(t *testing.T) {
	cases := map[string]struct {
		src    string
		code   int
		stdout string
		stderr string
	}{
		"Print": {
			src:    "(defun sq (x) (* x x))\n(print (sq 5))\n",
			stdout: "(integer 25)\n",
		},
		"Empty": {src: "  \n"},
		"Exit":  {src: "(print 1)\n(exit 4)\n(print 2)", code: 4, stdout: "(integer 1)\n"},
		"Error": {
			src:    "(print 1)\n(print nothing)\n(print 2)",
			code:   1,
			stdout: "(integer 1)\n",
			stderr: "# name error: invalid name in line 2\n# nothing\n",
		},
		"Syntax": {
			src:    "(print 1)\n(print ())",
			code:   1,
			stderr: "# syntax error: empty expression in line 2\n# ()\n",
		},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "prog.rl", c.src)
			var stdout, stderr bytes.Buffer
			code := runFile(context.Background(), quietInterp(&stdout), path, &stderr)
			if code != c.code {
				t.Errorf("exit status %d, want %d", code, c.code)
			}
			if got := stdout.String(); got != c.stdout {
				t.Errorf("stdout %q, want %q", got, c.stdout)
			}
			if got := stderr.String(); got != c.stderr {
				t.Errorf("stderr %q, want %q", got, c.stderr)
			}
		})
	}
}

func TestRunFileMissing(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runFile(context.Background(), quietInterp(&stdout), filepath.Join(t.TempDir(), "none.rl"), &stderr)
	if code != 1 || stderr.Len() == 0 {
		t.Errorf("exit status %d, stderr %q", code, stderr.String())
	}
}

func TestEvalInput(t *testing.T) {
	var out, errOut bytes.Buffer
	in := quietInterp(&out)
	steps := []struct {
		src    string
		stdout string
		stderr string
	}{
		{"(define x 2)", "", ""},
		{"(* x 21) (list x)", "(integer 42)\n(list (integer 2))\n", ""},
		{"(print x)", "(integer 2)\n", ""},
		{"(undefined 1)", "", "# name error: invalid name in line 1\n# undefined\n"},
		{"()", "", "# syntax error: empty expression in line 1\n# ()\n"},
		{"x", "(integer 2)\n", ""},
	}
	for _, s := range steps {
		out.Reset()
		errOut.Reset()
		if code, done := evalInput(in, s.src, &out, &errOut, false); done {
			t.Fatalf("%s ended the session with %d", s.src, code)
		}
		if got := out.String(); got != s.stdout {
			t.Errorf("%s printed %q, want %q", s.src, got, s.stdout)
		}
		if got := errOut.String(); got != s.stderr {
			t.Errorf("%s reported %q, want %q", s.src, got, s.stderr)
		}
	}

	code, done := evalInput(in, "(exit 3)", &out, &errOut, false)
	if !done || code != 3 {
		t.Errorf("(exit 3) gave %d, %t", code, done)
	}
}

func TestEvalInputColor(t *testing.T) {
	var out, errOut bytes.Buffer
	in := quietInterp(&out)
	evalInput(in, "1 nothing", &out, &errOut, true)
	if !strings.Contains(out.String(), green("(integer 1)")) {
		t.Errorf("result not colored: %q", out.String())
	}
	if !strings.HasPrefix(errOut.String(), "\x1b[31m# ") {
		t.Errorf("error not colored: %q", errOut.String())
	}
}

func TestComplete(t *testing.T) {
	cases := map[string]bool{
		"(print 1)":         true,
		"(defun f (x)":      false,
		"(defun f (x)\n x)": true,
		`(print ")"`:        false,
		"x":                 true,
		"(a))":              true,
		"(print \"abc":      false,
		"(a ; comment )\n":  false,
	}
	for src, want := range cases {
		if got := complete(src); got != want {
			t.Errorf("complete(%q) = %t, want %t", src, got, want)
		}
	}
}
