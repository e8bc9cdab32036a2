package rlisp

import "strings"

// Form is a parsed unit: an atom when Items is nil and Text is set,
// otherwise a parenthesized sequence of forms.
type Form struct {
	Text  string
	Items []*Form
	Atom  bool
	Line  int
	Col   int
}

// Head returns the text of the first item when it is an atom.
func (f *Form) Head() string {
	if f.Atom || len(f.Items) == 0 || !f.Items[0].Atom {
		return ""
	}
	return f.Items[0].Text
}

func (f *Form) String() string {
	if f.Atom {
		return f.Text
	}
	ss := make([]string, len(f.Items))
	for i, x := range f.Items {
		ss[i] = x.String()
	}
	return "(" + strings.Join(ss, " ") + ")"
}

// Parse reads every top-level form of tokens.
func Parse(tokens []Token) ([]*Form, error) {
	top := &Form{Line: 1, Col: 1}
	stack := []*Form{top}
	for _, tok := range tokens {
		s := stack[len(stack)-1]
		switch tok.Kind {
		case Whitespace, Comment:
		case EOF:
			if len(stack) != 1 {
				return nil, newError(SyntaxError, "unbalanced parenthesis", s)
			}
			return top.Items, nil
		case Open:
			x := &Form{Items: []*Form{}, Line: tok.Line, Col: tok.Col}
			s.Items = append(s.Items, x)
			stack = append(stack, x)
		case Close:
			if len(stack) == 1 {
				return nil, newError(SyntaxError, "unexpected )",
					&Form{Text: ")", Atom: true, Line: tok.Line, Col: tok.Col})
			}
			stack = stack[:len(stack)-1]
		case Invalid:
			return nil, newError(SyntaxError, "invalid token",
				&Form{Text: tok.Text, Atom: true, Line: tok.Line, Col: tok.Col})
		default:
			s.Items = append(s.Items,
				&Form{Text: tok.Text, Atom: true, Line: tok.Line, Col: tok.Col})
		}
	}
	if len(stack) != 1 {
		return nil, newError(SyntaxError, "unbalanced parenthesis", stack[len(stack)-1])
	}
	return top.Items, nil
}

// ParseString tokenizes and parses src.
func ParseString(src string) ([]*Form, error) {
	return Parse(Tokenize(src))
}
