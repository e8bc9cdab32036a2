package rlisp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// eval evaluates x in a working copy of caller. Forms in tail position
// replace x and loop instead of recursing. A for loop writes the names it
// introduces back into caller.
func (in *Interp) eval(ctx context.Context, x *Form, caller *scope) (Value, error) {
	in.depth++
	defer func() { in.depth-- }()
	if in.MaxDepth > 0 && in.depth > in.MaxDepth {
		in.Logger.Debug("evaluation too deep", slog.Int("depth", in.depth), slog.Int("line", x.Line))
		return nil, newError(ResourceError, "maximum recursion depth exceeded", x)
	}
	sc := &scope{frame: caller.frame, table: caller.table}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if x.Atom {
			return in.atom(x, sc)
		}
		items := x.Items
		if len(items) == 0 {
			return nil, newError(SyntaxError, "empty expression", x)
		}
		switch x.Head() {
		case "defun": // (defun f (x) (* x x))
			if len(items) != 4 || !items[1].Atom {
				return nil, newError(MalformedFormError, "malformed defun", x)
			}
			c, err := makeClosure(items[2], items[3], sc)
			if err != nil {
				return nil, err
			}
			sc.table.Set(items[1].Text, c)
			return Null, nil
		case "lambda": // (lambda (x) (* x x))
			if len(items) != 3 {
				return nil, newError(MalformedFormError, "malformed lambda", x)
			}
			return makeClosure(items[1], items[2], sc)
		case "let": // (let (greeting "hello") (print greeting))
			if len(items) < 2 {
				return nil, newError(MalformedFormError, "malformed let", x)
			}
			for _, b := range items[1 : len(items)-1] {
				name, e, err := binding(b)
				if err != nil {
					return nil, err
				}
				v, err := in.eval(ctx, e, sc)
				if err != nil {
					return nil, err
				}
				sc.frame = sc.frame.Bind(name, v)
			}
			x = items[len(items)-1]
		case "define": // (define (greeting "hello")) or (define greeting "hello")
			bs := items[1:]
			if len(items) == 3 && items[1].Atom {
				bs = []*Form{{Items: items[1:], Line: x.Line, Col: x.Col}}
			}
			for _, b := range bs {
				name, e, err := binding(b)
				if err != nil {
					return nil, err
				}
				v, err := in.eval(ctx, e, sc)
				if err != nil {
					return nil, err
				}
				sc.table.Set(name, v)
				sc.frame = sc.frame.Bind(name, v)
			}
			return Null, nil
		case "class": // (class Point (defun new (self x) (:: self x x)) ...)
			if len(items) < 2 || !items[1].Atom {
				return nil, newError(MalformedFormError, "malformed class", x)
			}
			c, err := in.defineClass(ctx, items[1].Text, items[2:], sc)
			if err != nil {
				return nil, err
			}
			sc.table.Set(c.Name, c)
			return Null, nil
		case "begin": // (begin (print "hello") (print "world"))
			if len(items) == 1 {
				return Null, nil
			}
			for _, e := range items[1 : len(items)-1] {
				if _, err := in.eval(ctx, e, sc); err != nil {
					return nil, err
				}
			}
			x = items[len(items)-1]
		case ":": // (: point x)
			if len(items) != 3 || !items[2].Atom {
				return nil, newError(MalformedFormError, "malformed attribute access", x)
			}
			o, err := in.eval(ctx, items[1], sc)
			if err != nil {
				return nil, err
			}
			return getAttr(o, items[2].Text, x)
		case "::": // (:: point x 3)
			if len(items) != 4 || !items[2].Atom {
				return nil, newError(MalformedFormError, "malformed attribute assignment", x)
			}
			o, err := in.eval(ctx, items[1], sc)
			if err != nil {
				return nil, err
			}
			v, err := in.eval(ctx, items[3], sc)
			if err != nil {
				return nil, err
			}
			if err := setAttr(o, items[2].Text, v, x); err != nil {
				return nil, err
			}
			return Null, nil
		case "if": // (if (< n 0) (- 0 n) n)
			if len(items) != 3 && len(items) != 4 {
				return nil, newError(MalformedFormError, "malformed if", x)
			}
			c, err := in.eval(ctx, items[1], sc)
			if err != nil {
				return nil, err
			}
			if Truthy(c) {
				x = items[2]
			} else if len(items) == 4 {
				x = items[3]
			} else {
				return Null, nil
			}
		case "while": // (while true (print "hello"))
			if len(items) != 3 {
				return nil, newError(MalformedFormError, "malformed while", x)
			}
			// Both parts see the table only, never the local frame.
			ws := &scope{table: sc.table, top: true}
			var r Value = Null
			for {
				c, err := in.eval(ctx, items[1], ws)
				if err != nil {
					return nil, err
				}
				if !Truthy(c) {
					return r, nil
				}
				if r, err = in.eval(ctx, items[2], ws); err != nil {
					return nil, err
				}
			}
		case "assert": // (assert true)
			if len(items) != 2 {
				return nil, newError(MalformedFormError, "malformed assert", x)
			}
			c, err := in.eval(ctx, items[1], sc)
			if err != nil {
				return nil, err
			}
			if !Truthy(c) {
				return nil, newError(AssertionError, "assertion failed", x)
			}
			return Null, nil
		case "include": // (include util)
			if len(items) != 2 || !items[1].Atom {
				return nil, newError(MalformedFormError, "malformed include", x)
			}
			if err := in.include(ctx, items[1].Text, sc.table, x); err != nil {
				return nil, err
			}
			return Null, nil
		case "for": // (for i (range 10) (print i)) or (for (i j) (zip a b) (print i j))
			return in.loop(ctx, x, sc, caller)
		default: // (print 1 2 3)
			vals := make([]Value, len(items))
			for i, e := range items {
				v, err := in.eval(ctx, e, sc)
				if err != nil {
					return nil, err
				}
				vals[i] = v
			}
			fn, args := vals[0], vals[1:]
			var c *Closure
			var self *Instance
			switch f := fn.(type) {
			case *Closure:
				c = f
			case *BoundMethod:
				c, self = f.Fn, f.Self
			default:
				return in.callHost(ctx, fn, args, x)
			}
			in.Logger.Debug("tail call",
				slog.String("function", c.String()),
				slog.Int("argument-count", len(args)),
				slog.Int("line", x.Line))
			// Loops in the body leak into the body's own frame, not ours.
			caller = &scope{table: c.Table}
			sc = &scope{frame: c.bind(self, args), table: c.Table}
			x = c.Body
		}
	}
}

// atom evaluates a name or, failing that, a literal.
func (in *Interp) atom(x *Form, sc *scope) (Value, error) {
	if v, ok := sc.lookup(x.Text); ok {
		return v, nil
	}
	if v, ok := ParseLiteral(x.Text); ok {
		return v, nil
	}
	return nil, newError(NameError, "invalid name", x)
}

// binding splits (NAME VALUE).
func binding(b *Form) (string, *Form, error) {
	if b.Atom || len(b.Items) != 2 || !b.Items[0].Atom {
		return "", nil, newError(MalformedFormError, "malformed binding", b)
	}
	return b.Items[0].Text, b.Items[1], nil
}

// makeClosure builds a closure over the current frame. A parameter list
// that is a single name binds all arguments as a list.
func makeClosure(params, body *Form, sc *scope) (*Closure, error) {
	c := &Closure{Body: body, Frame: sc.frame, Table: sc.table}
	if params.Atom {
		c.Rest = params.Text
		return c, nil
	}
	c.Params = make([]string, len(params.Items))
	for i, p := range params.Items {
		if !p.Atom {
			return nil, newError(MalformedFormError, "malformed parameter list", params)
		}
		c.Params[i] = p.Text
	}
	return c, nil
}

// bind binds the parameters of c in front of its captured frame. A
// receiver, if any, comes first.
func (c *Closure) bind(self *Instance, args []Value) *Frame {
	if self != nil {
		args = append([]Value{self}, args...)
	}
	if c.Rest != "" {
		return c.Frame.Bind(c.Rest, NewList(args...))
	}
	return c.Frame.BindAll(c.Params, args)
}

// call applies fn to args outside of tail position.
func (in *Interp) call(ctx context.Context, fn Value, args []Value, at *Form) (Value, error) {
	switch f := fn.(type) {
	case *Closure:
		return in.eval(ctx, f.Body, &scope{frame: f.bind(nil, args), table: f.Table})
	case *BoundMethod:
		return in.eval(ctx, f.Fn.Body, &scope{frame: f.Fn.bind(f.Self, args), table: f.Fn.Table})
	}
	return in.callHost(ctx, fn, args, at)
}

// callHost applies a built-in or instantiates a class.
func (in *Interp) callHost(ctx context.Context, fn Value, args []Value, at *Form) (v Value, err error) {
	switch f := fn.(type) {
	case *Builtin:
		defer func() {
			if r := recover(); r != nil {
				v, err = nil, &Error{Kind: RuntimeError, Hint: f.Name, Form: at, Err: fmt.Errorf("%v", r)}
			}
		}()
		v, err = f.Fn(ctx, in, args)
		if err != nil {
			return nil, hostError(f.Name, err, at)
		}
		if v == nil {
			v = Null
		}
		return v, nil
	case *Class:
		return in.instantiate(ctx, f, args, at)
	}
	return nil, &Error{Kind: RuntimeError, Hint: "not callable", Form: at,
		Err: fmt.Errorf("%s is not a function", fn)}
}

// hostError gives a failure of a built-in a position, leaving errors
// that already carry one alone.
func hostError(name string, err error, at *Form) error {
	var e *Error
	var exit *ExitError
	switch {
	case errors.As(err, &e), errors.As(err, &exit),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &Error{Kind: RuntimeError, Hint: name, Form: at, Err: err}
}

//----------------------------------------------------------------------

// loop runs (for NAMES ITERABLE BODY). Names bound by one iteration, by
// the loop itself or by loops nested in its body, stay visible to the
// next one and finally leak into caller.
func (in *Interp) loop(ctx context.Context, x *Form, sc, caller *scope) (Value, error) {
	items := x.Items
	if len(items) != 4 {
		return nil, newError(MalformedFormError, "malformed for", x)
	}
	var names []string
	if items[1].Atom {
		names = []string{items[1].Text}
	} else {
		for _, n := range items[1].Items {
			if !n.Atom {
				return nil, newError(MalformedFormError, "malformed loop variables", items[1])
			}
			names = append(names, n.Text)
		}
	}
	seq, err := in.eval(ctx, items[2], sc)
	if err != nil {
		return nil, err
	}
	elems, ok := iterate(seq)
	if !ok {
		return nil, &Error{Kind: RuntimeError, Hint: "for", Form: x,
			Err: fmt.Errorf("%s is not iterable", typeName(seq))}
	}
	base := sc.frame
	var carried []*Frame // newest first
	var r Value = Null
	for _, e := range elems {
		f := base
		for i := len(carried) - 1; i >= 0; i-- {
			f = f.Bind(carried[i].Name, carried[i].Val)
		}
		if items[1].Atom {
			f = f.Bind(names[0], e)
		} else {
			parts, ok := iterate(e)
			if !ok {
				return nil, &Error{Kind: RuntimeError, Hint: "for", Form: x,
					Err: fmt.Errorf("cannot unpack %s", typeName(e))}
			}
			f = f.BindAll(names, parts)
		}
		body := &scope{frame: f, table: sc.table}
		if r, err = in.eval(ctx, items[3], body); err != nil {
			return nil, err
		}
		carried = body.frame.Since(base)
	}
	for i := len(carried) - 1; i >= 0; i-- {
		b := carried[i]
		caller.frame = caller.frame.Bind(b.Name, b.Val)
		if caller.top {
			caller.table.Set(b.Name, b.Val)
		}
	}
	return r, nil
}

// include merges the bindings of a unit, qualified by its name, into t.
func (in *Interp) include(ctx context.Context, name string, t *Table, at *Form) error {
	if lit, ok := ParseLiteral(name); ok {
		if s, ok := lit.(Str); ok {
			name = string(s)
		}
	}
	if in.Loader == nil {
		return newError(IncludeError, "no loader", at)
	}
	bindings, err := in.Loader.Load(ctx, in, name)
	switch {
	case errors.Is(err, ErrNotFound):
		return newError(IncludeError, "file not found", at)
	case err != nil:
		var e *Error
		if errors.As(err, &e) || errors.Is(err, context.Canceled) {
			return err
		}
		return &Error{Kind: IncludeError, Hint: "cannot include " + name, Form: at, Err: err}
	}
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.Set(k, bindings[k])
	}
	in.Logger.Debug("include", slog.String("unit", name), slog.Int("bindings", len(keys)))
	return nil
}
