package rlisp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var builtins map[string]HostFunc

// Builtins returns a new table holding the built-in functions.
func Builtins() *Table {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	t := NewTable(nil)
	for _, name := range names {
		t.Set(name, &Builtin{Name: name, Fn: builtins[name]})
	}
	return t
}

func init() {
	builtins = map[string]HostFunc{
		"list": fnList,
		"set":  fnSet,
		"to-list": func(_ context.Context, _ *Interp, a []Value) (Value, error) {
			items, err := iterArg(a)
			if err != nil {
				return nil, err
			}
			return NewList(append([]Value(nil), items...)...), nil
		},
		"to-set": func(_ context.Context, _ *Interp, a []Value) (Value, error) {
			items, err := iterArg(a)
			if err != nil {
				return nil, err
			}
			return NewSet(items...), nil
		},
		"integer": fnInteger,
		"hex":     radix("0x", 16),
		"oct":     radix("0o", 8),
		"bin":     radix("0b", 2),
		"boolean": func(_ context.Context, _ *Interp, a []Value) (Value, error) {
			if err := arity(a, 1, 1); err != nil {
				return nil, err
			}
			return Boolean(Truthy(a[0])), nil
		},
		"real":    fnReal,
		"complex": fnComplex,
		"str": func(_ context.Context, _ *Interp, a []Value) (Value, error) {
			if err := arity(a, 1, 1); err != nil {
				return nil, err
			}
			return Str(display(a[0])), nil
		},
		"print": func(_ context.Context, in *Interp, a []Value) (Value, error) {
			ss := make([]string, len(a))
			for i, v := range a {
				ss[i] = v.String()
			}
			_, err := fmt.Fprintln(in.Stdout, strings.Join(ss, " "))
			return Null, err
		},
		"+":   reduced(arith("+")),
		"-":   reduced(arith("-")),
		"*":   reduced(arith("*")),
		"^":   reduced(arith("^")),
		"/":   reduced(arith("/")),
		"mod": reduced(arith("mod")),
		"<":   compare(func(c int) bool { return c < 0 }),
		">":   compare(func(c int) bool { return c > 0 }),
		"=": func(_ context.Context, _ *Interp, a []Value) (Value, error) {
			if err := arity(a, 2, 2); err != nil {
				return nil, err
			}
			return Boolean(Equal(a[0], a[1])), nil
		},
		"and": reduced(func(a, b Value) (Value, error) {
			return Boolean(Truthy(a) && Truthy(b)), nil
		}),
		"or": reduced(func(a, b Value) (Value, error) {
			return Boolean(Truthy(a) || Truthy(b)), nil
		}),
		"not": func(_ context.Context, _ *Interp, a []Value) (Value, error) {
			if err := arity(a, 1, 1); err != nil {
				return nil, err
			}
			return Boolean(!Truthy(a[0])), nil
		},
		"head":   fnHead,
		"tail":   fnTail,
		"get":    fnGet,
		"pop":    fnPop,
		"push":   fnPush,
		"append": fnAppend,
		"extend": reduced(func(a, b Value) (Value, error) {
			x, ok1 := iterate(a)
			y, ok2 := iterate(b)
			if !ok1 || !ok2 {
				return nil, unsupported("extend", a, b)
			}
			items := make([]Value, 0, len(x)+len(y))
			return NewList(append(append(items, x...), y...)...), nil
		}),
		"length": fnLength,
		"map":    fnMap,
		"reduce": fnReduce,
		"filter": fnFilter,
		"exit": func(_ context.Context, _ *Interp, a []Value) (Value, error) {
			if err := arity(a, 0, 1); err != nil {
				return nil, err
			}
			code := 0
			if len(a) == 1 {
				n, err := intArg(a[0])
				if err != nil {
					return nil, err
				}
				code = n
			}
			return nil, &ExitError{Code: code}
		},
		"union":                setOp(Union),
		"symmetric-difference": setOp(SymmetricDifference),
		"difference":           setOp(Difference),
		"intersection":         setOp(Intersection),
		"cross-product":        setOp(CrossProduct),
		"range":                fnRange,
		"sqrt":                 fnSqrt,
		"imag": func(_ context.Context, _ *Interp, a []Value) (Value, error) {
			if err := arity(a, 1, 1); err != nil {
				return nil, err
			}
			c, ok := toComplex(a[0])
			if !ok {
				return nil, fmt.Errorf("%s has no imaginary part", typeName(a[0]))
			}
			return Real(imag(c)), nil
		},
		"zip":  fnZip,
		"help": fnHelp,
	}
}

//----------------------------------------------------------------------

func arity(a []Value, min, max int) error {
	if len(a) < min || (max >= 0 && len(a) > max) {
		switch {
		case min == max:
			return fmt.Errorf("takes %d arguments (%d given)", min, len(a))
		case max < 0:
			return fmt.Errorf("takes at least %d arguments (%d given)", min, len(a))
		}
		return fmt.Errorf("takes %d to %d arguments (%d given)", min, max, len(a))
	}
	return nil
}

func intArg(v Value) (int, error) {
	if x, ok := v.(Integer); ok {
		if n, ok := x.Int(); ok {
			return n, nil
		}
		return 0, fmt.Errorf("integer %s out of range", fmt.Sprint(x.N))
	}
	return 0, fmt.Errorf("expected integer, got %s", typeName(v))
}

func iterArg(a []Value) ([]Value, error) {
	if err := arity(a, 1, 1); err != nil {
		return nil, err
	}
	items, ok := iterate(a[0])
	if !ok {
		return nil, fmt.Errorf("%s is not iterable", typeName(a[0]))
	}
	return items, nil
}

// indexable returns the elements of a list or the characters of a string.
func indexable(v Value) ([]Value, error) {
	switch v.(type) {
	case *List, Str:
		items, _ := iterate(v)
		return items, nil
	}
	return nil, fmt.Errorf("%s is not subscriptable", typeName(v))
}

// reduced folds a binary operation across one or more arguments.
func reduced(fn func(a, b Value) (Value, error)) HostFunc {
	return func(_ context.Context, _ *Interp, a []Value) (Value, error) {
		if err := arity(a, 1, -1); err != nil {
			return nil, err
		}
		acc := a[0]
		for _, b := range a[1:] {
			v, err := fn(acc, b)
			if err != nil {
				return nil, err
			}
			acc = v
		}
		return acc, nil
	}
}

func arith(op string) func(a, b Value) (Value, error) {
	return func(a, b Value) (Value, error) { return Arith(op, a, b) }
}

func compare(test func(int) bool) HostFunc {
	return func(_ context.Context, _ *Interp, a []Value) (Value, error) {
		if err := arity(a, 2, 2); err != nil {
			return nil, err
		}
		c, err := Compare(a[0], a[1])
		if err != nil {
			return nil, err
		}
		return Boolean(test(c)), nil
	}
}

// display is the text str gives: strings and numbers bare, everything
// else as printed.
func display(v Value) string {
	switch x := v.(type) {
	case Str:
		return string(x)
	case Integer:
		return fmt.Sprint(x.N)
	case Real:
		return formatReal(float64(x))
	case Complex:
		return formatComplex(complex128(x))
	}
	return v.String()
}

//----------------------------------------------------------------------

func fnList(_ context.Context, _ *Interp, a []Value) (Value, error) {
	return NewList(append([]Value(nil), a...)...), nil
}

func fnSet(_ context.Context, _ *Interp, a []Value) (Value, error) {
	return NewSet(a...), nil
}

func fnInteger(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 1, 1); err != nil {
		return nil, err
	}
	switch x := a[0].(type) {
	case Integer:
		return x, nil
	case Real:
		return intFromFloat(float64(x))
	case Str:
		if z, ok := parseInt(strings.TrimSpace(string(x))); ok {
			return NewBigInt(z), nil
		}
		return nil, fmt.Errorf("invalid literal for integer: %s", x)
	}
	return nil, fmt.Errorf("cannot convert %s to integer", typeName(a[0]))
}

func fnReal(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 1, 1); err != nil {
		return nil, err
	}
	switch x := a[0].(type) {
	case Integer:
		return Real(x.Float()), nil
	case Real:
		return x, nil
	case Complex:
		return Real(real(x)), nil
	case Str:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal for real: %s", x)
		}
		return Real(f), nil
	}
	return nil, fmt.Errorf("cannot convert %s to real", typeName(a[0]))
}

func fnComplex(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 1, 1); err != nil {
		return nil, err
	}
	if s, ok := a[0].(Str); ok {
		t := strings.TrimSpace(string(s))
		if c, ok := parseComplex(t); ok {
			return Complex(c), nil
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return Complex(complex(f, 0)), nil
		}
		return nil, fmt.Errorf("invalid literal for complex: %s", s)
	}
	if c, ok := toComplex(a[0]); ok {
		return Complex(c), nil
	}
	return nil, fmt.Errorf("cannot convert %s to complex", typeName(a[0]))
}

// radix renders an integer in a base, the way 0x1f, -0o17 and 0b101 read.
func radix(prefix string, base int) HostFunc {
	return func(_ context.Context, _ *Interp, a []Value) (Value, error) {
		if err := arity(a, 1, 1); err != nil {
			return nil, err
		}
		x, ok := a[0].(Integer)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %s", typeName(a[0]))
		}
		z := x.Big()
		sign := ""
		if z.Sign() < 0 {
			sign = "-"
			z.Neg(z)
		}
		return Str(sign + prefix + z.Text(base)), nil
	}
}

func fnHead(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 1, 1); err != nil {
		return nil, err
	}
	items, err := indexable(a[0])
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("index out of range")
	}
	return items[0], nil
}

func fnTail(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 1, 1); err != nil {
		return nil, err
	}
	items, err := indexable(a[0])
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return NewList(), nil
	}
	return NewList(append([]Value(nil), items[1:]...)...), nil
}

// fnGet indexes a list or string, counting from the end for negative
// indexes, or reads a key of a foreign mapping.
func fnGet(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 2, 2); err != nil {
		return nil, err
	}
	if f, ok := a[0].(Foreign); ok {
		if m, ok := f.V.(map[string]interface{}); ok {
			k, ok := a[1].(Str)
			if !ok {
				return nil, fmt.Errorf("expected string key, got %s", typeName(a[1]))
			}
			v, ok := m[string(k)]
			if !ok {
				return nil, fmt.Errorf("no key %s", k)
			}
			return FromHost(v), nil
		}
	}
	items, err := indexable(a[0])
	if err != nil {
		return nil, err
	}
	n, err := intArg(a[1])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n += len(items)
	}
	if n < 0 || n >= len(items) {
		return nil, errors.New("index out of range")
	}
	return items[n], nil
}

// fnPop drops the element at a non-negative index; other indexes drop
// nothing.
func fnPop(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 2, 2); err != nil {
		return nil, err
	}
	items, err := indexable(a[0])
	if err != nil {
		return nil, err
	}
	n, err := intArg(a[1])
	if err != nil {
		return nil, err
	}
	out := make([]Value, 0, len(items))
	for i, v := range items {
		if i != n {
			out = append(out, v)
		}
	}
	return NewList(out...), nil
}

// fnPush inserts x before index n, which defaults to -1: before the last
// element.
func fnPush(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 2, 3); err != nil {
		return nil, err
	}
	items, err := indexable(a[0])
	if err != nil {
		return nil, err
	}
	n := -1
	if len(a) == 3 {
		if n, err = intArg(a[2]); err != nil {
			return nil, err
		}
	}
	if n < 0 {
		n += len(items)
	}
	if n < 0 {
		n = 0
	}
	if n > len(items) {
		n = len(items)
	}
	out := make([]Value, 0, len(items)+1)
	out = append(out, items[:n]...)
	out = append(out, a[1])
	out = append(out, items[n:]...)
	return NewList(out...), nil
}

func fnAppend(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 2, 2); err != nil {
		return nil, err
	}
	items, ok := iterate(a[0])
	if !ok {
		return nil, fmt.Errorf("%s is not iterable", typeName(a[0]))
	}
	out := make([]Value, 0, len(items)+1)
	return NewList(append(append(out, items...), a[1])...), nil
}

func fnLength(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 1, 1); err != nil {
		return nil, err
	}
	switch x := a[0].(type) {
	case Str:
		return NewInt(int64(utf8.RuneCountInString(string(x)))), nil
	case *Set:
		return NewInt(int64(x.Len())), nil
	case Foreign:
		if m, ok := x.V.(map[string]interface{}); ok {
			return NewInt(int64(len(m))), nil
		}
	}
	items, ok := iterate(a[0])
	if !ok {
		return nil, fmt.Errorf("%s has no length", typeName(a[0]))
	}
	return NewInt(int64(len(items))), nil
}

func fnMap(ctx context.Context, in *Interp, a []Value) (Value, error) {
	if err := arity(a, 2, 2); err != nil {
		return nil, err
	}
	items, err := iterArg(a[1:])
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(items))
	for i, v := range items {
		if out[i], err = in.Apply(ctx, a[0], v); err != nil {
			return nil, err
		}
	}
	return NewList(out...), nil
}

func fnFilter(ctx context.Context, in *Interp, a []Value) (Value, error) {
	if err := arity(a, 2, 2); err != nil {
		return nil, err
	}
	items, err := iterArg(a[1:])
	if err != nil {
		return nil, err
	}
	var out []Value
	for _, v := range items {
		ok, err := in.Apply(ctx, a[0], v)
		if err != nil {
			return nil, err
		}
		if Truthy(ok) {
			out = append(out, v)
		}
	}
	return NewList(out...), nil
}

func fnReduce(ctx context.Context, in *Interp, a []Value) (Value, error) {
	if err := arity(a, 2, 2); err != nil {
		return nil, err
	}
	items, err := iterArg(a[1:])
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("reduce of empty sequence")
	}
	acc := items[0]
	for _, v := range items[1:] {
		if acc, err = in.Apply(ctx, a[0], acc, v); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func fnRange(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 1, 3); err != nil {
		return nil, err
	}
	ns := make([]int, len(a))
	for i, v := range a {
		n, err := intArg(v)
		if err != nil {
			return nil, err
		}
		ns[i] = n
	}
	start, stop, step := 0, ns[0], 1
	if len(ns) > 1 {
		start, stop = ns[0], ns[1]
	}
	if len(ns) > 2 {
		step = ns[2]
	}
	if step == 0 {
		return nil, errors.New("range step must not be zero")
	}
	var out []Value
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, NewInt(int64(i)))
	}
	return NewList(out...), nil
}

func fnSqrt(_ context.Context, _ *Interp, a []Value) (Value, error) {
	if err := arity(a, 1, 1); err != nil {
		return nil, err
	}
	f, ok := toFloat(a[0])
	if !ok {
		return nil, fmt.Errorf("cannot take the square root of %s", typeName(a[0]))
	}
	if f >= 0 {
		return Real(math.Sqrt(f)), nil
	}
	return Complex(cmplx.Sqrt(complex(f, 0))), nil
}

func fnZip(_ context.Context, _ *Interp, a []Value) (Value, error) {
	seqs := make([][]Value, len(a))
	n := -1
	for i, v := range a {
		items, ok := iterate(v)
		if !ok {
			return nil, fmt.Errorf("%s is not iterable", typeName(v))
		}
		seqs[i] = items
		if n < 0 || len(items) < n {
			n = len(items)
		}
	}
	out := make([]Value, 0, n+1)
	for i := 0; i < n; i++ {
		row := make([]Value, len(seqs))
		for j := range seqs {
			row[j] = seqs[j][i]
		}
		out = append(out, NewList(row...))
	}
	return NewList(out...), nil
}

//----------------------------------------------------------------------

func setOp(fn func(a, b *Set) *Set) HostFunc {
	return reduced(func(a, b Value) (Value, error) {
		x, ok1 := a.(*Set)
		y, ok2 := b.(*Set)
		if !ok1 || !ok2 {
			return nil, unsupported("set operation", a, b)
		}
		return fn(x, y), nil
	})
}

// Union returns the members of either set.
func Union(a, b *Set) *Set {
	return NewSet(append(append([]Value(nil), a.items...), b.items...)...)
}

// Intersection returns the members of both sets.
func Intersection(a, b *Set) *Set {
	s := NewSet()
	for _, v := range a.items {
		if b.Has(v) {
			s.add(v)
		}
	}
	return s
}

// Difference returns the members of a that are not in b.
func Difference(a, b *Set) *Set {
	s := NewSet()
	for _, v := range a.items {
		if !b.Has(v) {
			s.add(v)
		}
	}
	return s
}

// SymmetricDifference returns the members of exactly one of the sets.
func SymmetricDifference(a, b *Set) *Set {
	return Union(Difference(a, b), Difference(b, a))
}

// CrossProduct returns the set of two-element lists pairing members of a
// with members of b.
func CrossProduct(a, b *Set) *Set {
	s := NewSet()
	for _, x := range a.items {
		for _, y := range b.items {
			s.add(NewList(x, y))
		}
	}
	return s
}

//----------------------------------------------------------------------

const helpIntro = `Welcome to reduced lisp. Let's quickly go over the basics:
 - to define the function f(x)=x*x, type
       (defun f (x) (* x x))
 - to call it, type (f 12)
 - define variables with (define name value)
 - anonymous functions look like this:
       (lambda (x) (* x x))
 - try calling the built-in functions (list) and (set) with
   some arguments.
Type (help 1) for more.`

const helpTypes = `The built-in types are integer, real, complex, list,
  set, lambda, and string.
The built-in objects are null, true, and false.
Type (help "functions") for a list of all built-in functions.`

func fnHelp(_ context.Context, in *Interp, a []Value) (Value, error) {
	if err := arity(a, 0, 1); err != nil {
		return nil, err
	}
	text := "nothing here..."
	switch {
	case len(a) == 0 || Equal(a[0], NewInt(0)):
		text = helpIntro
	case Equal(a[0], NewInt(1)):
		text = helpTypes
	case Equal(a[0], Str("functions")):
		text = strings.Join(Builtins().SortedNames(), ", ")
	}
	_, err := fmt.Fprintln(in.Stdout, text)
	return Null, err
}
