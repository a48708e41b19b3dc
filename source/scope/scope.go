package scope

import (
	"github.com/reverie-lang/reverie/source/values"

	"src.elv.sh/pkg/persistent/vector"
)

type Binding struct {
	Name  string
	Value values.Value
}

// A Stack is the ordered store of live bindings. Lookups and updates find the most
// recently pushed binding with the name asked for, so an inner binding shadows an outer
// one until it is popped.
//
// The bindings are kept in a persistent vector, so taking a snapshot costs nothing and
// restoring one undoes every push, pop and update made since.
type Stack struct {
	bindings vector.Vector
}

func New() *Stack {
	return &Stack{bindings: vector.Empty}
}

type Snapshot struct {
	bindings vector.Vector
}

func (s *Stack) Snapshot() Snapshot {
	return Snapshot{s.bindings}
}

func (s *Stack) Restore(snap Snapshot) {
	s.bindings = snap.bindings
}

// Makes an independent stack with the same bindings, for evaluating the body of a function
// without disturbing the caller's stack.
func (s *Stack) Copy() *Stack {
	return &Stack{bindings: s.bindings}
}

func (s *Stack) Len() int {
	return s.bindings.Len()
}

func (s *Stack) Push(name string, v values.Value) {
	s.bindings = s.bindings.Conj(Binding{name, v})
}

// Removes and returns the top binding. The bool is false if the stack was empty.
func (s *Stack) Pop() (Binding, bool) {
	top, ok := s.Top()
	if !ok {
		return Binding{}, false
	}
	s.bindings = s.bindings.Pop()
	return top, true
}

func (s *Stack) Top() (Binding, bool) {
	if s.bindings.Len() == 0 {
		return Binding{}, false
	}
	return s.Get(s.bindings.Len() - 1), true
}

// The position of the most recent binding of the name, or -1 if there isn't one.
func (s *Stack) Find(name string) int {
	for i := s.bindings.Len() - 1; i >= 0; i-- {
		if s.Get(i).Name == name {
			return i
		}
	}
	return -1
}

func (s *Stack) Lookup(name string) (values.Value, bool) {
	i := s.Find(name)
	if i < 0 {
		return values.NULL, false
	}
	return s.Get(i).Value, true
}

// Panics if i is out of range, like indexing a slice would.
func (s *Stack) Get(i int) Binding {
	b, ok := s.bindings.Index(i)
	if !ok {
		panic("scope: index out of range")
	}
	return b.(Binding)
}

// Replaces the value in the ith slot. The slot keeps its name.
func (s *Stack) Set(i int, v values.Value) {
	s.bindings = s.bindings.Assoc(i, Binding{s.Get(i).Name, v})
}

// Replaces the value of the most recent binding of the name.
func (s *Stack) Update(name string, v values.Value) bool {
	i := s.Find(name)
	if i < 0 {
		return false
	}
	s.Set(i, v)
	return true
}

// Takes the most recent binding of the name out of the stack, wherever it is. Only the REPL
// does this: statements only ever pop from the top.
func (s *Stack) Remove(name string) (Binding, bool) {
	i := s.Find(name)
	if i < 0 {
		return Binding{}, false
	}
	removed := s.Get(i)
	kept := vector.Empty
	for j, b := range s.Bindings() {
		if j != i {
			kept = kept.Conj(b)
		}
	}
	s.bindings = kept
	return removed, true
}

// Returns the bindings from the bottom of the stack to the top.
func (s *Stack) Bindings() []Binding {
	result := make([]Binding, 0, s.bindings.Len())
	for it := s.bindings.Iterator(); it.HasElem(); it.Next() {
		result = append(result, it.Elem().(Binding))
	}
	return result
}

// Names lists the names visible from the top of the stack, most recent first, without
// repetition.
func (s *Stack) Names() []string {
	seen := map[string]bool{}
	result := []string{}
	for i := s.bindings.Len() - 1; i >= 0; i-- {
		name := s.Get(i).Name
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	return result
}
