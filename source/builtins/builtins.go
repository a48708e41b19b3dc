package builtins

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/reverie-lang/reverie/source/err"
	"github.com/reverie-lang/reverie/source/registry"
	"github.com/reverie-lang/reverie/source/values"
)

// The native procedures. Each is a pair of methods, the second undoing the first.
type forwardAndBackward struct {
	forward  func(bt *Builtins, args []values.Value) ([]values.Value, error)
	backward func(bt *Builtins, args []values.Value) ([]values.Value, error)
}

var BUILTINS = map[string]forwardAndBackward{
	"pop":   {(*Builtins).btPop, (*Builtins).btPush},
	"print": {(*Builtins).btPrint, (*Builtins).btPrint},
	"push":  {(*Builtins).btPush, (*Builtins).btPop},
}

// Builtins holds what the native procedures need from the outside world, which at
// present is somewhere to print to.
type Builtins struct {
	out io.Writer
}

// Adds the native procedures to the registry. Any names already taken are left alone.
func Register(r *registry.Registry, out io.Writer) *Builtins {
	bt := &Builtins{out: out}
	for _, name := range sortedNames() {
		pair := BUILTINS[name]
		r.AddNative(name, bt.bind(pair.forward), bt.bind(pair.backward))
	}
	return bt
}

func (bt *Builtins) bind(f func(bt *Builtins, args []values.Value) ([]values.Value, error)) registry.NativeFunc {
	return func(args []values.Value) ([]values.Value, error) {
		return f(bt, args)
	}
}

func sortedNames() []string {
	result := make([]string, 0, len(BUILTINS))
	for name := range BUILTINS {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Printing is its own inverse: running a program backward prints the same things in the
// reverse order.
func (bt *Builtins) btPrint(args []values.Value) ([]values.Value, error) {
	strs := make([]string, len(args))
	for i, arg := range args {
		strs[i] = arg.Literal()
	}
	fmt.Fprintln(bt.out, strings.Join(strs, " "))
	return nil, nil
}

// `push: x, a` moves x onto the end of the array a, leaving x holding its zero value.
func (bt *Builtins) btPush(args []values.Value) ([]values.Value, error) {
	if len(args) != 2 || args[1].T != values.ARRAY {
		return nil, err.CreateErr("builtin/args", nil, "push", "a value and an array", kinds(args))
	}
	arr, _ := args[1].Append(args[0])
	return []values.Value{values.Zero(args[0].T), arr}, nil
}

// `pop: x, a` moves the last element of a into x, which must hold a zero value.
func (bt *Builtins) btPop(args []values.Value) ([]values.Value, error) {
	if len(args) != 2 || args[1].T != values.ARRAY {
		return nil, err.CreateErr("builtin/args", nil, "pop", "a variable and an array", kinds(args))
	}
	if !args[0].IsZero() {
		return nil, err.CreateErr("builtin/pop/zero", nil, args[0])
	}
	last, arr, ok := args[1].Pop()
	if !ok {
		return nil, err.CreateErr("builtin/pop/empty", nil)
	}
	return []values.Value{last, arr}, nil
}

func kinds(args []values.Value) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = arg.T.String()
	}
	return result
}
