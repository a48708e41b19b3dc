package set

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type Set[E comparable] map[E]struct{}

func MakeFromSlice[E comparable](slice []E) Set[E] {
	S := Set[E]{}
	for _, v := range slice {
		S.Add(v)
	}
	return S
}

func (S Set[E]) String() string {
	elements := []string{}
	for e := range S {
		elements = append(elements, fmt.Sprintf("%v", e))
	}
	slices.Sort(elements)
	return "{" + strings.Join(elements, ", ") + "}"
}

func (S Set[E]) Add(e E) {
	S[e] = struct{}{}
}

// Adds the element, and reports whether it was new.
func (S Set[E]) Insert(e E) bool {
	if S.Contains(e) {
		return false
	}
	S.Add(e)
	return true
}

func (S Set[E]) Contains(e E) bool {
	_, found := S[e]
	return found
}

func (S Set[E]) IsEmpty() bool {
	return len(S) == 0
}

// The elements in order, for when the caller wants to show them to a human.
func Sorted[E cmp.Ordered](S Set[E]) []E {
	result := make([]E, 0, len(S))
	for e := range S {
		result = append(result, e)
	}
	slices.Sort(result)
	return result
}
