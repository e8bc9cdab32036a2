package rlisp

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/nukata/goarith"
)

var zero = goarith.AsNumber(new(big.Int))

// NewInt returns the Integer i.
func NewInt(i int64) Integer {
	return Integer{goarith.AsNumber(big.NewInt(i))}
}

// NewBigInt returns the Integer z.
func NewBigInt(z *big.Int) Integer {
	return Integer{goarith.AsNumber(z)}
}

// Big returns x as a new big.Int.
func (x Integer) Big() *big.Int {
	switch n := x.N.(type) {
	case goarith.Int32:
		return big.NewInt(int64(n))
	case goarith.Int64:
		return big.NewInt(int64(n))
	case *goarith.BigInt:
		return new(big.Int).Set((*big.Int)(n))
	case goarith.Float64:
		return bigFromFloat(float64(n))
	}
	return new(big.Int)
}

// Int returns x as an int, if it fits.
func (x Integer) Int() (int, bool) {
	var i int64
	switch n := x.N.(type) {
	case goarith.Int32:
		i = int64(n)
	case goarith.Int64:
		i = int64(n)
	default:
		z := x.Big()
		if !z.IsInt64() {
			return 0, false
		}
		i = z.Int64()
	}
	return int(i), int64(int(i)) == i
}

// Float returns x as a float64, possibly rounded or infinite.
func (x Integer) Float() float64 {
	f, _ := new(big.Float).SetInt(x.Big()).Float64()
	return f
}

func bigFromFloat(f float64) *big.Int {
	z, _ := big.NewFloat(f).Int(nil)
	return z
}

// intFromFloat truncates f towards zero.
func intFromFloat(f float64) (Integer, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Integer{}, fmt.Errorf("cannot convert float %s to integer", formatReal(f))
	}
	return NewBigInt(bigFromFloat(f)), nil
}

func isNumber(v Value) bool {
	switch v.(type) {
	case Integer, Real, Complex:
		return true
	}
	return false
}

// compareNumbers orders two non-complex numbers.
func compareNumbers(a, b Value) (int, bool) {
	switch x := a.(type) {
	case Integer:
		switch y := b.(type) {
		case Integer:
			return x.N.Cmp(y.N), true
		case Real:
			if math.IsNaN(float64(y)) {
				return 0, false
			}
			return x.N.Cmp(goarith.AsNumber(float64(y))), true
		}
	case Real:
		switch y := b.(type) {
		case Integer:
			if math.IsNaN(float64(x)) {
				return 0, false
			}
			return goarith.AsNumber(float64(x)).Cmp(y.N), true
		case Real:
			switch {
			case x < y:
				return -1, true
			case x > y:
				return 1, true
			case x == y:
				return 0, true
			}
		}
	}
	return 0, false
}

func toFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Integer:
		return x.Float(), true
	case Real:
		return float64(x), true
	}
	return 0, false
}

func toComplex(v Value) (complex128, bool) {
	switch x := v.(type) {
	case Complex:
		return complex128(x), true
	default:
		f, ok := toFloat(v)
		return complex(f, 0), ok
	}
}

// typeName names the kind of v for diagnostics.
func typeName(v Value) string {
	switch x := v.(type) {
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Complex:
		return "complex"
	case Boolean:
		return "boolean"
	case NullValue:
		return "null"
	case Str:
		return "string"
	case *List:
		return "list"
	case *Set:
		return "set"
	case *Closure, *BoundMethod, *Builtin:
		return "lambda"
	case *Class:
		return "class"
	case *Instance:
		return x.Class.Name
	}
	return "foreign"
}

var errDivByZero = errors.New("division by zero")

func unsupported(op string, a, b Value) error {
	return fmt.Errorf("unsupported operand types for %s: %s and %s", op, typeName(a), typeName(b))
}

//----------------------------------------------------------------------

// Arith applies a binary operator. The result keeps the kind of the left
// operand, (+ 1 2.5) being the integer 3 and (+ 2.5 1) the real 3.5,
// except that a complex operand always gives a complex result.
// Operators are + - * / ^ and mod.
func Arith(op string, a, b Value) (Value, error) {
	if _, ok := b.(Complex); ok && isNumber(a) {
		x, _ := toComplex(a)
		return complexArith(op, x, complex128(b.(Complex)))
	}
	switch x := a.(type) {
	case Integer:
		switch y := b.(type) {
		case Integer:
			return intArith(op, x, y)
		case Real:
			f, err := floatArith(op, x.Float(), float64(y))
			if err != nil {
				return nil, err
			}
			return intFromFloat(f)
		}
	case Real:
		if y, ok := toFloat(b); ok {
			f, err := floatArith(op, float64(x), y)
			if err != nil {
				return nil, err
			}
			return Real(f), nil
		}
	case Complex:
		if y, ok := toComplex(b); ok {
			return complexArith(op, complex128(x), y)
		}
	case Str:
		switch y := b.(type) {
		case Str:
			if op == "+" {
				return x + y, nil
			}
		case Integer:
			if op == "*" {
				n, _ := y.Int()
				if n < 0 {
					n = 0
				}
				return Str(strings.Repeat(string(x), n)), nil
			}
		}
	case *List:
		switch y := b.(type) {
		case *List:
			if op == "+" {
				items := make([]Value, 0, len(x.Items)+len(y.Items))
				return NewList(append(append(items, x.Items...), y.Items...)...), nil
			}
		case Integer:
			if op == "*" {
				n, _ := y.Int()
				var items []Value
				for i := 0; i < n; i++ {
					items = append(items, x.Items...)
				}
				return NewList(items...), nil
			}
		}
	case *Set:
		if y, ok := b.(*Set); ok && op == "-" {
			return Difference(x, y), nil
		}
	}
	return nil, unsupported(op, a, b)
}

func intArith(op string, x, y Integer) (Value, error) {
	switch op {
	case "+":
		return Integer{x.N.Add(y.N)}, nil
	case "-":
		return Integer{x.N.Sub(y.N)}, nil
	case "*":
		return Integer{x.N.Mul(y.N)}, nil
	}
	a, b := x.Big(), y.Big()
	switch op {
	case "/":
		if b.Sign() == 0 {
			return nil, errDivByZero
		}
		return NewBigInt(new(big.Int).Quo(a, b)), nil
	case "mod":
		if b.Sign() == 0 {
			return nil, errDivByZero
		}
		r := new(big.Int).Rem(a, b)
		if r.Sign() != 0 && r.Sign() != b.Sign() {
			r.Add(r, b)
		}
		return NewBigInt(r), nil
	case "^":
		if b.Sign() >= 0 {
			if b.BitLen() > 32 {
				return nil, fmt.Errorf("exponent too large: %s", b)
			}
			return NewBigInt(new(big.Int).Exp(a, b, nil)), nil
		}
		return intFromFloat(math.Pow(x.Float(), y.Float()))
	}
	return nil, unsupported(op, x, y)
}

func floatArith(op string, x, y float64) (float64, error) {
	switch op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		if y == 0 {
			return 0, errDivByZero
		}
		return x / y, nil
	case "mod":
		if y == 0 {
			return 0, errDivByZero
		}
		r := math.Mod(x, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return r, nil
	case "^":
		if x < 0 && y != math.Trunc(y) {
			return 0, errors.New("negative number raised to a fractional power is complex")
		}
		return math.Pow(x, y), nil
	}
	return 0, fmt.Errorf("unknown operator %s", op)
}

func complexArith(op string, x, y complex128) (Value, error) {
	switch op {
	case "+":
		return Complex(x + y), nil
	case "-":
		return Complex(x - y), nil
	case "*":
		return Complex(x * y), nil
	case "/":
		if y == 0 {
			return nil, errDivByZero
		}
		return Complex(x / y), nil
	case "^":
		return Complex(cmplx.Pow(x, y)), nil
	}
	return nil, unsupported(op, Complex(x), Complex(y))
}

// Compare orders a and b: numbers by magnitude, strings and lists
// lexicographically, and sets by inclusion.
func Compare(a, b Value) (int, error) {
	if c, ok := compareNumbers(a, b); ok {
		return c, nil
	}
	switch x := a.(type) {
	case Str:
		if y, ok := b.(Str); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	case *List:
		if y, ok := b.(*List); ok {
			for i := 0; i < len(x.Items) && i < len(y.Items); i++ {
				if Equal(x.Items[i], y.Items[i]) {
					continue
				}
				return Compare(x.Items[i], y.Items[i])
			}
			return len(x.Items) - len(y.Items), nil
		}
	case *Set:
		if y, ok := b.(*Set); ok {
			switch {
			case Equal(x, y):
				return 0, nil
			case subset(x, y):
				return -1, nil
			case subset(y, x):
				return 1, nil
			}
			return 0, errors.New("sets are not ordered")
		}
	}
	return 0, unsupported("<", a, b)
}

func subset(x, y *Set) bool {
	for k := range x.keys {
		if !y.keys[k] {
			return false
		}
	}
	return true
}

//----------------------------------------------------------------------

// ParseLiteral reads a number, string or constant from the text of an atom.
func ParseLiteral(s string) (Value, bool) {
	if s == "" {
		return nil, false
	}
	if s[0] == '"' {
		if len(s) < 2 {
			return nil, false
		}
		return Str(strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`)), true
	}
	if z, ok := parseInt(s); ok {
		return NewBigInt(z), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Real(f), true
	}
	if c, ok := parseComplex(s); ok {
		return Complex(c), true
	}
	switch s {
	case "true":
		return Boolean(true), true
	case "false":
		return Boolean(false), true
	case "null":
		return Null, true
	}
	return nil, false
}

// parseInt accepts decimal and 0x, 0o, 0b prefixed integers. A leading
// zero followed by more digits is not an integer unless every digit is zero.
func parseInt(s string) (*big.Int, bool) {
	t := strings.TrimLeft(s, "+-")
	if len(t) > 1 && t[0] == '0' && t[1] >= '0' && t[1] <= '9' {
		if strings.Trim(t, "0") != "" {
			return nil, false
		}
		return new(big.Int), true
	}
	return new(big.Int).SetString(s, 0)
}

// parseComplex reads forms like 1+2j, -3.5j and j.
func parseComplex(s string) (complex128, bool) {
	n := len(s)
	if n == 0 || (s[n-1] != 'j' && s[n-1] != 'J') {
		return 0, false
	}
	body := s[:n-1]
	if body == "" || body == "+" || body == "-" {
		body += "1"
	} else if c := body[len(body)-1]; c == '+' || c == '-' {
		body += "1"
	}
	c, err := strconv.ParseComplex(body+"i", 128)
	return c, err == nil
}
