package rlisp

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nukata/goarith"
)

// Value is a runtime value. The set of implementations is closed.
type Value interface {
	// String returns the printable representation.
	String() string
	value()
}

// Integer is an integer of any size.
type Integer struct {
	N goarith.Number
}

// Real is a floating point number.
type Real float64

// Complex is a complex number.
type Complex complex128

// Boolean is true or false.
type Boolean bool

// NullValue is the type of Null.
type NullValue struct{}

// Null is the value of no value.
var Null = NullValue{}

// Str is a string.
type Str string

// List is an immutable sequence.
type List struct {
	Items []Value
}

// Set is an immutable collection without duplicates.
type Set struct {
	items []Value
	keys  map[string]bool
}

// Closure represents a lambda expression with its captured frame.
// When Rest is set the closure binds all its arguments, as a list, to Rest.
type Closure struct {
	Params []string
	Rest   string
	Body   *Form
	Frame  *Frame
	Table  *Table
}

// BoundMethod is a closure whose first parameter is fixed to Self.
type BoundMethod struct {
	Fn   *Closure
	Self *Instance
}

// Class is a name and the members defined by its body.
type Class struct {
	Name    string
	Members *Table
}

// Instance is an object made by calling a Class.
type Instance struct {
	Class *Class
	Attrs map[string]Value
}

// HostFunc is the Go side of a Builtin.
type HostFunc func(ctx context.Context, in *Interp, args []Value) (Value, error)

// Builtin is a function supplied by the host.
type Builtin struct {
	Name string
	Fn   HostFunc
}

// Foreign is a host value with no direct counterpart, passed through as is.
type Foreign struct {
	V interface{}
}

func (Integer) value()      {}
func (Real) value()         {}
func (Complex) value()      {}
func (Boolean) value()      {}
func (NullValue) value()    {}
func (Str) value()          {}
func (*List) value()        {}
func (*Set) value()         {}
func (*Closure) value()     {}
func (*BoundMethod) value() {}
func (*Class) value()       {}
func (*Instance) value()    {}
func (*Builtin) value()     {}
func (Foreign) value()      {}

//----------------------------------------------------------------------

func (x Integer) String() string { return "(integer " + fmt.Sprint(x.N) + ")" }
func (x Real) String() string    { return "(real " + formatReal(float64(x)) + ")" }
func (x Complex) String() string { return "(complex " + formatComplex(complex128(x)) + ")" }
func (x Boolean) String() string {
	if x {
		return "true"
	}
	return "false"
}
func (NullValue) String() string { return "null" }
func (x Str) String() string     { return quote(string(x)) }
func (x *List) String() string   { return joinRepr("list", x.Items) }
func (x *Set) String() string    { return joinRepr("set", x.items) }
func (x *Closure) String() string {
	if x.Rest != "" {
		return "(lambda " + x.Rest + " ...)"
	}
	return "(lambda (" + strings.Join(x.Params, " ") + ") ...)"
}
func (x *BoundMethod) String() string { return x.Fn.String() }
func (x *Class) String() string       { return "(class " + x.Name + " ...)" }
func (x *Instance) String() string    { return "(" + x.Class.Name + " ...)" }
func (x *Builtin) String() string     { return "(lambda ...)" }
func (Foreign) String() string        { return "..." }

func joinRepr(name string, items []Value) string {
	ss := make([]string, 0, len(items)+1)
	ss = append(ss, name)
	for _, v := range items {
		ss = append(ss, v.String())
	}
	return "(" + strings.Join(ss, " ") + ")"
}

// formatReal renders f the shortest way that reads back, always with a
// fraction or exponent.
func formatReal(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatComplex(c complex128) string {
	re, im := real(c), imag(c)
	ims := formatReal(im)
	ims = strings.TrimSuffix(ims, ".0") + "j"
	if re == 0 && !math.Signbit(re) {
		return ims
	}
	sign := "+"
	if math.Signbit(im) {
		sign = ""
	}
	return strings.TrimSuffix(formatReal(re), ".0") + sign + ims
}

// quote renders s single-quoted, or double-quoted when s holds a single
// quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == rune(q) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < ' ' || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

//----------------------------------------------------------------------

// NewList returns a list of items.
func NewList(items ...Value) *List {
	return &List{Items: items}
}

// NewSet returns a set of items, dropping duplicates.
func NewSet(items ...Value) *Set {
	s := &Set{keys: make(map[string]bool, len(items))}
	for _, v := range items {
		s.add(v)
	}
	return s
}

func (s *Set) add(v Value) {
	k := key(v)
	if !s.keys[k] {
		s.keys[k] = true
		s.items = append(s.items, v)
	}
}

// Items returns the members of s in insertion order.
func (s *Set) Items() []Value { return s.items }

// Has reports whether v is a member of s.
func (s *Set) Has(v Value) bool { return s.keys[key(v)] }

// Len returns the number of members of s.
func (s *Set) Len() int { return len(s.items) }

// key returns a string that is the same for equal values.
func key(v Value) string {
	switch x := v.(type) {
	case Integer:
		return "n" + fmt.Sprint(x.N)
	case Real:
		f := float64(x)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return "n" + bigFromFloat(f).String()
		}
		return "r" + strconv.FormatFloat(f, 'g', -1, 64)
	case Complex:
		if imag(x) == 0 {
			return key(Real(real(x)))
		}
		return "c" + formatComplex(complex128(x))
	case Boolean, NullValue:
		return x.String()
	case Str:
		return "s" + strconv.Quote(string(x))
	case *List:
		ks := make([]string, len(x.Items))
		for i, v := range x.Items {
			ks[i] = key(v)
		}
		return "l(" + strings.Join(ks, ",") + ")"
	case *Set:
		// Order-independent: a set's key is the sorted keys of its members.
		ks := make([]string, 0, len(x.keys))
		for k := range x.keys {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		return "t(" + strings.Join(ks, ",") + ")"
	case Foreign:
		return fmt.Sprintf("f%#v", x.V)
	}
	return fmt.Sprintf("p%p", v)
}

//----------------------------------------------------------------------

// Truthy reports whether v counts as true in a condition.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case Boolean:
		return bool(x)
	case NullValue:
		return false
	case Integer:
		return x.N.Cmp(zero) != 0
	case Real:
		return x != 0
	case Complex:
		return x != 0
	case Str:
		return x != ""
	case *List:
		return len(x.Items) != 0
	case *Set:
		return x.Len() != 0
	}
	return true
}

// Equal reports whether a and b are the same value. Numbers of different
// kinds compare by magnitude.
func Equal(a, b Value) bool {
	if isNumber(a) && isNumber(b) {
		if c, ok := compareNumbers(a, b); ok {
			return c == 0
		}
		return key(a) == key(b)
	}
	switch x := a.(type) {
	case *Instance, *Class, *Closure, *Builtin:
		return a == b
	case *BoundMethod:
		y, ok := b.(*BoundMethod)
		return ok && x.Fn == y.Fn && x.Self == y.Self
	case Foreign:
		return false
	}
	return key(a) == key(b)
}

// iterate returns the elements a for loop or collection builtin walks.
func iterate(v Value) ([]Value, bool) {
	switch x := v.(type) {
	case *List:
		return x.Items, true
	case *Set:
		return x.items, true
	case Str:
		out := make([]Value, 0, utf8.RuneCountInString(string(x)))
		for _, r := range string(x) {
			out = append(out, Str(r))
		}
		return out, true
	case Foreign:
		if s, ok := x.V.([]interface{}); ok {
			out := make([]Value, len(s))
			for i, e := range s {
				out[i] = FromHost(e)
			}
			return out, true
		}
	}
	return nil, false
}

// FromHost adapts a decoded host value into a Value where a direct
// counterpart exists, and wraps it as Foreign otherwise.
func FromHost(x interface{}) Value {
	switch v := x.(type) {
	case nil:
		return Null
	case Value:
		return v
	case bool:
		return Boolean(v)
	case int:
		return NewInt(int64(v))
	case int64:
		return NewInt(v)
	case uint64:
		return NewBigInt(new(big.Int).SetUint64(v))
	case float64:
		return Real(v)
	case string:
		return Str(v)
	case []interface{}:
		items := make([]Value, len(v))
		for i, e := range v {
			items[i] = FromHost(e)
		}
		return NewList(items...)
	}
	return Foreign{x}
}
