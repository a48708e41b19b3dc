package registry

import (
	"sort"

	"github.com/reverie-lang/reverie/source/ast"
	"github.com/reverie-lang/reverie/source/values"
)

// A native procedure takes the values of its arguments. If it returns a non-nil slice, it
// must be of the same length, and each element is written back into the corresponding
// argument, where that argument is a plain variable.
type NativeFunc func(args []values.Value) ([]values.Value, error)

type EntryKind int

const (
	USER EntryKind = iota
	NATIVE
)

type Entry struct {
	Kind     EntryKind
	Name     string
	Proc     *ast.Procedure // For USER.
	Forward  NativeFunc     // For NATIVE.
	Backward NativeFunc     // For NATIVE.
}

// The arity of a native procedure isn't known in advance, and is reported as -1.
func (e *Entry) Arity() int {
	if e.Kind == USER {
		return len(e.Proc.Params)
	}
	return -1
}

// The Registry is the table of named procedures consulted by `do` and `undo`. It is built
// before a program runs and only read while it runs.
type Registry struct {
	entries map[string]*Entry
	order   []string
}

func New() *Registry {
	return &Registry{entries: map[string]*Entry{}}
}

// Adds a user procedure. If the name is already taken the first definition wins, and
// this returns false.
func (r *Registry) AddProc(proc *ast.Procedure) bool {
	return r.add(&Entry{Kind: USER, Name: proc.Name, Proc: proc})
}

// Adds a native procedure as a pair of functions, the second undoing the first. If the
// name is already taken the first definition wins, and this returns false.
func (r *Registry) AddNative(name string, forward, backward NativeFunc) bool {
	return r.add(&Entry{Kind: NATIVE, Name: name, Forward: forward, Backward: backward})
}

func (r *Registry) add(e *Entry) bool {
	if _, ok := r.entries[e.Name]; ok {
		return false
	}
	r.entries[e.Name] = e
	r.order = append(r.order, e.Name)
	return true
}

// Replaces any existing user procedure of the same name. The REPL uses this so that a
// procedure can be redefined.
func (r *Registry) Replace(proc *ast.Procedure) {
	if _, ok := r.entries[proc.Name]; !ok {
		r.order = append(r.order, proc.Name)
	}
	r.entries[proc.Name] = &Entry{Kind: USER, Name: proc.Name, Proc: proc}
}

func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names in order of registration.
func (r *Registry) Names() []string {
	return append([]string{}, r.order...)
}

func (r *Registry) SortedNames() []string {
	result := r.Names()
	sort.Strings(result)
	return result
}

func (r *Registry) Len() int {
	return len(r.order)
}
