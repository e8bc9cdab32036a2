package rlisp

import "sort"

// Frame is a set of local bindings, as a linked list of name/value pairs.
// A frame never changes after it is made; binding a name returns a new
// frame in front of the old one, so holding a *Frame is holding a
// snapshot. The nil *Frame is the empty frame.
type Frame struct {
	Name string
	Val  Value
	Next *Frame
}

// Lookup searches the frame for a name.
func (f *Frame) Lookup(name string) (Value, bool) {
	for f != nil {
		if f.Name == name {
			return f.Val, true
		}
		f = f.Next
	}
	return nil, false
}

// Bind returns a frame which has name bound to v in front of f.
func (f *Frame) Bind(name string, v Value) *Frame {
	return &Frame{name, v, f}
}

// BindAll pairs names with vals position by position. Surplus values are
// dropped and surplus names are left unbound.
func (f *Frame) BindAll(names []string, vals []Value) *Frame {
	for i, name := range names {
		if i >= len(vals) {
			break
		}
		f = f.Bind(name, vals[i])
	}
	return f
}

// Since returns the bindings made in front of base, newest first and each
// name once. base must be f itself or one of its tails.
func (f *Frame) Since(base *Frame) []*Frame {
	var out []*Frame
	seen := map[string]bool{}
	for ; f != nil && f != base; f = f.Next {
		if !seen[f.Name] {
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	return out
}

//----------------------------------------------------------------------

// Table is a mutable set of definitions shared by a whole evaluation
// unit. A table made for a class body has the enclosing table as Outer;
// lookups fall through to it while definitions stay in the inner table.
type Table struct {
	vars  map[string]Value
	names []string
	Outer *Table
}

// NewTable returns an empty table in front of outer, which may be nil.
func NewTable(outer *Table) *Table {
	return &Table{vars: map[string]Value{}, Outer: outer}
}

// Get looks a name up in t and then in its outer tables.
func (t *Table) Get(name string) (Value, bool) {
	for ; t != nil; t = t.Outer {
		if v, ok := t.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Own looks a name up in t alone.
func (t *Table) Own(name string) (Value, bool) {
	v, ok := t.vars[name]
	return v, ok
}

// Set defines or redefines a name in t.
func (t *Table) Set(name string, v Value) {
	if _, ok := t.vars[name]; !ok {
		t.names = append(t.names, name)
	}
	t.vars[name] = v
}

// Names returns the names defined in t, in order of first definition.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// SortedNames returns the names defined in t in lexical order.
func (t *Table) SortedNames() []string {
	ns := t.Names()
	sort.Strings(ns)
	return ns
}

// Len returns the number of names defined in t.
func (t *Table) Len() int { return len(t.names) }

// Clone returns a copy of t sharing its values and outer table.
func (t *Table) Clone() *Table {
	c := &Table{vars: make(map[string]Value, len(t.vars)), Outer: t.Outer}
	for _, name := range t.names {
		c.Set(name, t.vars[name])
	}
	return c
}

//----------------------------------------------------------------------

// scope is the working state of one evaluation call: the local frame it
// has built up so far and the table definitions go to. A top scope has no
// enclosing local frame, so bindings leaking out of a for loop into it go
// to the table instead. Working copies made inside eval are never top.
type scope struct {
	frame *Frame
	table *Table
	top   bool
}

func (sc *scope) lookup(name string) (Value, bool) {
	if v, ok := sc.frame.Lookup(name); ok {
		return v, true
	}
	return sc.table.Get(name)
}
