package rlisp

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParse(t *testing.T) {
	cases := map[string]struct {
		src  string
		want []string
	}{
		"Atom":     {"x", []string{"x"}},
		"Nested":   {"(a (b c)) d", []string{"(a (b c))", "d"}},
		"Comments": {"; head\n(a { skip } b)", []string{"(a b)"}},
		"Strings":  {`(print "a b" 1)`, []string{`(print "a b" 1)`}},
		"Attrs":    {"(:: p x (: q y))", []string{"(:: p x (: q y))"}},
		"Empty":    {"()", []string{"()"}},
		"Nothing":  {"  \n", nil},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			forms, err := ParseString(c.src)
			if err != nil {
				t.Fatalf("%q: %v", c.src, err)
			}
			if len(forms) != len(c.want) {
				t.Fatalf("%q parsed as %v, want %v", c.src, forms, c.want)
			}
			for i, f := range forms {
				if got := f.String(); got != c.want[i] {
					t.Errorf("form %d of %q is %s, want %s", i, c.src, got, c.want[i])
				}
			}
		})
	}
}

func TestParsePositions(t *testing.T) {
	forms, err := ParseString("(a)\n\n  (b\n c)")
	if err != nil {
		t.Fatal(err)
	}
	if f := forms[1]; f.Line != 3 || f.Col != 3 {
		t.Errorf("second form at %d:%d, want 3:3", f.Line, f.Col)
	}
	if f := forms[1].Items[1]; f.Text != "c" || f.Line != 4 {
		t.Errorf("atom c at line %d, want 4", f.Line)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]struct {
		src  string
		hint string
	}{
		"Unclosed":   {"(a (b)", "unbalanced parenthesis"},
		"Extra":      {"(a))", "unexpected )"},
		"OpenString": {`(print "abc)`, "invalid token"},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			_, err := ParseString(c.src)
			if !IsKind(err, SyntaxError) {
				t.Fatalf("%q: got %v, want a syntax error", c.src, err)
			}
			if e := err.(*Error); e.Hint != c.hint {
				t.Errorf("%q: hint %q, want %q", c.src, e.Hint, c.hint)
			}
		})
	}
}

func TestFormHead(t *testing.T) {
	forms, _ := ParseString("(defun f (x) x) ((g) 1) () y")
	want := []string{"defun", "", "", ""}
	for i, f := range forms {
		if got := f.Head(); got != want[i] {
			t.Errorf("Head of %s = %q, want %q", f, got, want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		src  string
		hint string
	}{
		"Fine":         {"(defun f (x) (* x x)) (f 2)", ""},
		"Empty":        {"(print ())", "empty expression"},
		"TopEmpty":     {"()", "empty expression"},
		"ShortFun":     {"(fun f)", "malformed function"},
		"LongFun":      {"(fun f (x) x y)", "malformed function"},
		"Fun3":         {"(fun (x) x)", ""},
		"Fun4":         {"(fun f (x) x)", ""},
		"FunUnchecked": {"(fun f (x) ())", ""},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			forms, err := ParseString(c.src)
			if err != nil {
				t.Fatal(err)
			}
			err = Validate(forms...)
			if c.hint == "" {
				if err != nil {
					t.Errorf("%q: %v", c.src, err)
				}
				return
			}
			if !IsKind(err, SyntaxError) || err.(*Error).Hint != c.hint {
				t.Errorf("%q: got %v, want syntax error %q", c.src, err, c.hint)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	forms, _ := ParseString("\n(print\n ())")
	err := Validate(forms...)
	if got, want := err.Error(), "syntax error: empty expression in line 3"; got != want {
		t.Errorf("message %q, want %q", got, want)
	}
	if got := err.(*Error).Detail(); got != "()" {
		t.Errorf("detail %q, want ()", got)
	}

	long := &Error{Kind: NameError, Hint: "invalid name", Form: &Form{Atom: true,
		Text: "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghij"}}
	if got := long.Detail(); len(got) != 57 || got[54:] != "..." {
		t.Errorf("detail of a long form is %q", got)
	}

	wide := &Error{Kind: NameError, Hint: "invalid name", Form: &Form{Atom: true,
		Text: strings.Repeat("é", 60)}}
	if got := wide.Detail(); !utf8.ValidString(got) || got != strings.Repeat("é", 54)+"..." {
		t.Errorf("detail of a long non-ASCII form is %q", got)
	}
}
