package rlisp

import (
	"context"
	"log/slog"
	"strings"
)

// defineClass evaluates a class body against a fresh member table. Every
// name the body defines there, with defun, define or a leaking for loop,
// becomes a member. Methods keep the member table as their table, so they
// reach sibling members by name and globals through it.
func (in *Interp) defineClass(ctx context.Context, name string, body []*Form, sc *scope) (*Class, error) {
	members := NewTable(sc.table)
	bs := &scope{frame: sc.frame, table: members, top: true}
	for _, f := range body {
		if _, err := in.eval(ctx, f, bs); err != nil {
			return nil, err
		}
	}
	in.Logger.Debug("class", slog.String("name", name), slog.Any("members", members.Names()))
	return &Class{Name: name, Members: members}, nil
}

// instantiate makes an instance of c. Methods are bound to it and other
// members copied; then its new method, if any, runs with args.
func (in *Interp) instantiate(ctx context.Context, c *Class, args []Value, at *Form) (Value, error) {
	obj := &Instance{Class: c, Attrs: make(map[string]Value, c.Members.Len())}
	for _, name := range c.Members.Names() {
		v, _ := c.Members.Own(name)
		if fn, ok := v.(*Closure); ok {
			obj.Attrs[name] = &BoundMethod{Fn: fn, Self: obj}
		} else {
			obj.Attrs[name] = v
		}
	}
	if ctor, ok := obj.Attrs["new"]; ok {
		if _, err := in.call(ctx, ctor, args, at); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// getAttr reads an attribute. Names starting with __ are private.
func getAttr(o Value, name string, at *Form) (Value, error) {
	if !strings.HasPrefix(name, "__") {
		switch x := o.(type) {
		case *Instance:
			if v, ok := x.Attrs[name]; ok {
				return v, nil
			}
		case *Class:
			if v, ok := x.Members.Own(name); ok {
				return v, nil
			}
			if name == "name" {
				return Str(x.Name), nil
			}
		case Integer, Real, Complex:
			c, _ := toComplex(x)
			switch name {
			case "real":
				return Real(real(c)), nil
			case "imag":
				return Real(imag(c)), nil
			}
		}
	}
	return nil, newError(AttributeError, "invalid attribute", at)
}

// setAttr assigns an attribute of an instance, or a member of a class.
func setAttr(o Value, name string, v Value, at *Form) error {
	switch x := o.(type) {
	case *Instance:
		x.Attrs[name] = v
		return nil
	case *Class:
		x.Members.Set(name, v)
		return nil
	}
	return newError(AttributeError, "cannot set attribute", at)
}
