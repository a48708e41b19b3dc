package values

import (
	"strconv"
	"strings"

	"github.com/reverie-lang/reverie/source/ast"

	"src.elv.sh/pkg/persistent/vector"
)

type ValueType uint32

const (
	NIL ValueType = iota
	BOOL
	INT
	UINT
	CHAR
	STRING
	ARRAY
	FUNC
)

var typeNames = []string{"nil", "bool", "int", "uint", "char", "string", "array", "fn"}

func (t ValueType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown type " + strconv.Itoa(int(t))
}

// The payload V is a bool, int64, uint64, rune, string, vector.Vector of Values, or *Func,
// according to T. Values are never mutated: an array with an element changed is a new
// vector sharing structure with the old one.
type Value struct {
	T ValueType
	V any
}

type Func struct {
	Params []string
	Body   ast.Expression
}

var (
	NULL  = Value{T: NIL}
	FALSE = Value{T: BOOL, V: false}
	TRUE  = Value{T: BOOL, V: true}
)

func Bool(b bool) Value {
	if b {
		return TRUE
	}
	return FALSE
}

func Int(i int64) Value     { return Value{INT, i} }
func UInt(u uint64) Value   { return Value{UINT, u} }
func Char(r rune) Value     { return Value{CHAR, r} }
func String(s string) Value { return Value{STRING, s} }

func Array(elements ...Value) Value {
	vec := vector.Empty
	for _, el := range elements {
		vec = vec.Conj(el)
	}
	return Value{ARRAY, vec}
}

func Fn(params []string, body ast.Expression) Value {
	return Value{FUNC, &Func{Params: params, Body: body}}
}

// The zero value of each kind: this is what a variable must hold before it can be popped
// into, and what it is left holding after it is pushed.
func Zero(t ValueType) Value {
	switch t {
	case BOOL:
		return FALSE
	case INT:
		return Int(0)
	case UINT:
		return UInt(0)
	case CHAR:
		return Char(0)
	case STRING:
		return String("")
	case ARRAY:
		return Value{ARRAY, vector.Empty}
	}
	return NULL
}

func (v Value) IsZero() bool {
	return v.Equal(Zero(v.T))
}

// The number of elements of an array or characters of a string.
func (v Value) Len() (int, bool) {
	switch v.T {
	case STRING:
		return len([]rune(v.V.(string))), true
	case ARRAY:
		return v.V.(vector.Vector).Len(), true
	}
	return 0, false
}

// The ith element of an array or character of a string.
func (v Value) Index(i int) (Value, bool) {
	switch v.T {
	case STRING:
		runes := []rune(v.V.(string))
		if i < 0 || i >= len(runes) {
			return NULL, false
		}
		return Char(runes[i]), true
	case ARRAY:
		el, ok := v.V.(vector.Vector).Index(i)
		if !ok {
			return NULL, false
		}
		return el.(Value), true
	}
	return NULL, false
}

// Returns a copy of an array or string with the ith element replaced. Only characters can
// be put into strings.
func (v Value) WithIndex(i int, el Value) (Value, bool) {
	switch v.T {
	case STRING:
		runes := []rune(v.V.(string))
		if i < 0 || i >= len(runes) || el.T != CHAR {
			return NULL, false
		}
		runes[i] = el.V.(rune)
		return String(string(runes)), true
	case ARRAY:
		vec := v.V.(vector.Vector)
		if i < 0 || i >= vec.Len() {
			return NULL, false
		}
		return Value{ARRAY, vec.Assoc(i, el)}, true
	}
	return NULL, false
}

// Returns a copy of an array with an element added at the end.
func (v Value) Append(el Value) (Value, bool) {
	if v.T != ARRAY {
		return NULL, false
	}
	return Value{ARRAY, v.V.(vector.Vector).Conj(el)}, true
}

// Splits a non-empty array into its last element and the array without it.
func (v Value) Pop() (Value, Value, bool) {
	if v.T != ARRAY || v.V.(vector.Vector).Len() == 0 {
		return NULL, NULL, false
	}
	vec := v.V.(vector.Vector)
	last, _ := vec.Index(vec.Len() - 1)
	return last.(Value), Value{ARRAY, vec.Pop()}, true
}

func (v Value) Elements() []Value {
	if v.T != ARRAY {
		return nil
	}
	result := []Value{}
	for it := v.V.(vector.Vector).Iterator(); it.HasElem(); it.Next() {
		result = append(result, it.Elem().(Value))
	}
	return result
}

// Structural equality. Values of different kinds are never equal, so in particular
// Int(1) and UInt(1) are different.
func (v Value) Equal(w Value) bool {
	if v.T != w.T {
		return false
	}
	switch v.T {
	case NIL:
		return true
	case ARRAY:
		vv, wv := v.V.(vector.Vector), w.V.(vector.Vector)
		if vv.Len() != wv.Len() {
			return false
		}
		for i := 0; i < vv.Len(); i++ {
			x, _ := vv.Index(i)
			y, _ := wv.Index(i)
			if !x.(Value).Equal(y.(Value)) {
				return false
			}
		}
		return true
	case FUNC:
		f, g := v.V.(*Func), w.V.(*Func)
		if f == g {
			return true
		}
		return strings.Join(f.Params, ",") == strings.Join(g.Params, ",") && f.Body.String() == g.Body.String()
	}
	return v.V == w.V
}

// Renders the value as a literal which would evaluate to it.
func (v Value) String() string {
	switch v.T {
	case NIL:
		return "nil"
	case BOOL:
		return strconv.FormatBool(v.V.(bool))
	case INT:
		return strconv.FormatInt(v.V.(int64), 10)
	case UINT:
		return strconv.FormatUint(v.V.(uint64), 10) + "u"
	case CHAR:
		return strconv.QuoteRune(v.V.(rune))
	case STRING:
		return strconv.Quote(v.V.(string))
	case ARRAY:
		elements := []string{}
		for _, el := range v.Elements() {
			elements = append(elements, el.String())
		}
		return "[" + strings.Join(elements, ", ") + "]"
	case FUNC:
		f := v.V.(*Func)
		return "fn(" + strings.Join(f.Params, ", ") + "): " + f.Body.String()
	}
	return "<" + v.T.String() + ">"
}

// Renders the value as the print builtin shows it, with strings and characters unquoted.
func (v Value) Literal() string {
	switch v.T {
	case CHAR:
		return string(v.V.(rune))
	case STRING:
		return v.V.(string)
	}
	return v.String()
}
