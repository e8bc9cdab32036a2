package rlisp

import (
	"errors"
	"math/big"
	"testing"

	"github.com/nukata/goarith"
)

func TestArith(t *testing.T) {
	cases := map[string]struct {
		op   string
		a, b Value
		want string
	}{
		"IntAdd":       {"+", NewInt(1), NewInt(2), "(integer 3)"},
		"IntRealLeft":  {"+", NewInt(1), Real(2.5), "(integer 3)"},
		"RealIntLeft":  {"+", Real(2.5), NewInt(1), "(real 3.5)"},
		"IntDiv":       {"/", NewInt(7), NewInt(2), "(integer 3)"},
		"IntDivNeg":    {"/", NewInt(-7), NewInt(2), "(integer -3)"},
		"RealDiv":      {"/", Real(7), NewInt(2), "(real 3.5)"},
		"IntMod":       {"mod", NewInt(-7), NewInt(2), "(integer 1)"},
		"IntModNeg":    {"mod", NewInt(7), NewInt(-2), "(integer -1)"},
		"RealMod":      {"mod", Real(7.5), NewInt(-2), "(real -0.5)"},
		"IntPow":       {"^", NewInt(2), NewInt(100), "(integer 1267650600228229401496703205376)"},
		"IntPowNeg":    {"^", NewInt(2), NewInt(-1), "(integer 0)"},
		"RealPow":      {"^", Real(2), NewInt(-1), "(real 0.5)"},
		"IntMulBig":    {"*", NewInt(4294967296), NewInt(4294967296), "(integer 18446744073709551616)"},
		"IntSub":       {"-", NewInt(1), NewInt(3), "(integer -2)"},
		"ComplexAdd":   {"+", Complex(1 + 1i), NewInt(1), "(complex 2+1j)"},
		"ComplexRight": {"*", NewInt(2), Complex(1i), "(complex 2j)"},
		"StrConcat":    {"+", Str("ab"), Str("cd"), "'abcd'"},
		"StrRepeat":    {"*", Str("ab"), NewInt(3), "'ababab'"},
		"ListConcat":   {"+", NewList(NewInt(1)), NewList(NewInt(2)), "(list (integer 1) (integer 2))"},
		"ListRepeat":   {"*", NewList(NewInt(1)), NewInt(2), "(list (integer 1) (integer 1))"},
		"SetDiff":      {"-", NewSet(NewInt(1), NewInt(2)), NewSet(NewInt(2)), "(set (integer 1))"},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			v, err := Arith(c.op, c.a, c.b)
			if err != nil {
				t.Fatalf("%s %s %s: %v", c.a, c.op, c.b, err)
			}
			if got := v.String(); got != c.want {
				t.Errorf("%s %s %s = %s, want %s", c.a, c.op, c.b, got, c.want)
			}
		})
	}
}

func TestArithErrors(t *testing.T) {
	cases := map[string]struct {
		op   string
		a, b Value
	}{
		"IntDivZero":  {"/", NewInt(1), NewInt(0)},
		"IntModZero":  {"mod", NewInt(1), NewInt(0)},
		"RealDivZero": {"/", Real(1), Real(0)},
		"MixedTypes":  {"+", Str("a"), NewInt(1)},
		"BoolAdd":     {"+", Boolean(true), NewInt(1)},
		"ComplexMod":  {"mod", Complex(1i), NewInt(2)},
		"HugeExp":     {"^", NewInt(2), NewInt(1 << 40)},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			if v, err := Arith(c.op, c.a, c.b); err == nil {
				t.Errorf("%s %s %s = %s, want an error", c.a, c.op, c.b, v)
			}
		})
	}
	if _, err := Arith("/", NewInt(1), NewInt(0)); !errors.Is(err, errDivByZero) {
		t.Errorf("got %v, want %v", err, errDivByZero)
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b Value
		want int
	}{
		{NewInt(1), NewInt(2), -1},
		{NewInt(3), Real(2.5), 1},
		{Real(2), NewInt(2), 0},
		{Str("abc"), Str("abd"), -1},
		{NewList(NewInt(1), NewInt(2)), NewList(NewInt(1)), 1},
		{NewList(NewInt(1), NewInt(2)), NewList(NewInt(1), NewInt(3)), -1},
		{NewSet(NewInt(1)), NewSet(NewInt(1), NewInt(2)), -1},
	}
	for _, c := range cases {
		got, err := Compare(c.a, c.b)
		if err != nil {
			t.Errorf("Compare(%s, %s): %v", c.a, c.b, err)
			continue
		}
		if sign(got) != c.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
	if _, err := Compare(NewSet(NewInt(1)), NewSet(NewInt(2))); err == nil {
		t.Error("disjoint sets compared")
	}
	if _, err := Compare(Str("a"), NewInt(1)); err == nil {
		t.Error("string compared with integer")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestParseLiteral(t *testing.T) {
	cases := map[string]string{
		"42":       "(integer 42)",
		"-42":      "(integer -42)",
		"0x1f":     "(integer 31)",
		"0b101":    "(integer 5)",
		"1.5":      "(real 1.5)",
		"1e3":      "(real 1000.0)",
		"-.5":      "(real -0.5)",
		"2j":       "(complex 2j)",
		"1+2j":     "(complex 1+2j)",
		"1.5-0.5j": "(complex 1.5-0.5j)",
		`"hi"`:     "'hi'",
		`"a\"b"`:   `'a"b'`,
		"true":     "true",
		"false":    "false",
		"null":     "null",
		"012":      "(real 12.0)",
		"00":       "(integer 0)",
		"-000":     "(integer 0)",
	}
	for src, want := range cases {
		v, ok := ParseLiteral(src)
		if !ok {
			t.Errorf("ParseLiteral(%q) failed", src)
			continue
		}
		if got := v.String(); got != want {
			t.Errorf("ParseLiteral(%q) = %s, want %s", src, got, want)
		}
	}
	for _, src := range []string{"x", "util.sq", "+", "-", ""} {
		if v, ok := ParseLiteral(src); ok {
			t.Errorf("ParseLiteral(%q) = %s, want no literal", src, v)
		}
	}
}

func TestIntegerConversions(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	cases := map[string]struct {
		x     Integer
		big   string
		fits  bool
		asInt int
	}{
		"Int32":  {Integer{goarith.Int32(-7)}, "-7", true, -7},
		"Int64":  {Integer{goarith.Int64(1 << 30)}, "1073741824", true, 1 << 30},
		"BigInt": {NewBigInt(huge), "123456789012345678901234567890", false, 0},
		"Small":  {NewInt(12), "12", true, 12},
	}
	for name, c := range cases {
		if got := c.x.Big().String(); got != c.big {
			t.Errorf("%s: Big() = %s, want %s", name, got, c.big)
		}
		n, ok := c.x.Int()
		if ok != c.fits || (ok && n != c.asInt) {
			t.Errorf("%s: Int() = %d, %t", name, n, ok)
		}
	}

	z := NewBigInt(huge).Big()
	z.SetInt64(0)
	if huge.Sign() == 0 {
		t.Error("Big shares storage with the Integer")
	}
}
