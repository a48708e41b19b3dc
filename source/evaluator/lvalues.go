package evaluator

import (
	"math"

	"github.com/reverie-lang/reverie/source/ast"
	"github.com/reverie-lang/reverie/source/token"
	"github.com/reverie-lang/reverie/source/values"
)

// Finds the value of an lvalue: the most recent binding of its name, followed through each
// of its dereferences in turn.
func Resolve(node *ast.LValue, c *Context) (values.Value, error) {
	v, ok := c.Scope.Lookup(node.Name)
	if !ok {
		return values.NULL, newError("eval/unbound", &node.Token, node.Name)
	}
	for _, op := range node.Ops {
		switch op.Kind {
		case ast.DIRECT:
			return values.NULL, newError("eval/deref/direct", &op.Token, node.Name)
		case ast.FIELD:
			result, e := field(v, op)
			if e != nil {
				return values.NULL, e
			}
			v = result
		case ast.INDEX:
			i, e := index(v, op, c)
			if e != nil {
				return values.NULL, e
			}
			v, _ = v.Index(i)
		}
	}
	return v, nil
}

func field(v values.Value, op *ast.Deref) (values.Value, error) {
	if op.Name == "len" {
		if n, ok := v.Len(); ok {
			return values.UInt(uint64(n)), nil
		}
	}
	return values.NULL, newError("eval/deref/field", &op.Token, op.Name, v.T)
}

// Evaluates the index of an INDEX dereference and checks it against the container.
func index(container values.Value, op *ast.Deref, c *Context) (int, error) {
	iv, e := Eval(op.Index, c)
	if e != nil {
		return 0, e
	}
	n, ok := container.Len()
	if !ok || (iv.T != values.INT && iv.T != values.UINT) {
		return 0, newError("eval/deref/index/kind", &op.Token, container.T, iv.T)
	}
	var i int64
	if iv.T == values.INT {
		i = iv.V.(int64)
	} else if u := iv.V.(uint64); u <= math.MaxInt64 {
		i = int64(u)
	} else {
		i = -1
	}
	if i < 0 || i >= int64(n) {
		return 0, newError("eval/deref/index/range", &op.Token, container, iv, n)
	}
	return int(i), nil
}

// A location is a slot of the scope stack together with a path of indices into the value
// held there.
type location struct {
	slot  int
	path  []int
	value values.Value
}

func (l *location) same(m *location) bool {
	return l.slot == m.slot && len(l.path) == len(m.path) && l.contains(m)
}

// Reports whether m is at or inside l.
func (l *location) contains(m *location) bool {
	if l.slot != m.slot || len(l.path) > len(m.path) {
		return false
	}
	for i, j := range l.path {
		if m.path[i] != j {
			return false
		}
	}
	return true
}

// Finds where an lvalue lives so that it can be written to. Fields are computed and can't
// be written to.
func locate(node *ast.LValue, c *Context) (*location, error) {
	slot := c.Scope.Find(node.Name)
	if slot < 0 {
		return nil, newError("eval/unbound", &node.Token, node.Name)
	}
	loc := &location{slot: slot, value: c.Scope.Get(slot).Value}
	for _, op := range node.Ops {
		switch op.Kind {
		case ast.DIRECT:
			return nil, newError("eval/deref/direct", &op.Token, node.Name)
		case ast.FIELD:
			return nil, newError("eval/assign/field", &op.Token, op.Name)
		case ast.INDEX:
			i, e := index(loc.value, op, c)
			if e != nil {
				return nil, e
			}
			loc.value, _ = loc.value.Index(i)
			loc.path = append(loc.path, i)
		}
	}
	return loc, nil
}

// Writes a value into a location. The slot keeps its name.
func store(loc *location, v values.Value, tok *token.Token, c *Context) error {
	result, e := replaceAt(c.Scope.Get(loc.slot).Value, loc.path, v, tok)
	if e != nil {
		return e
	}
	c.Scope.Set(loc.slot, result)
	return nil
}

func replaceAt(container values.Value, path []int, v values.Value, tok *token.Token) (values.Value, error) {
	if len(path) == 0 {
		return v, nil
	}
	inner, _ := container.Index(path[0])
	replacement, e := replaceAt(inner, path[1:], v, tok)
	if e != nil {
		return values.NULL, e
	}
	result, ok := container.WithIndex(path[0], replacement)
	if !ok {
		return values.NULL, newError("eval/assign/char", tok, replacement.T)
	}
	return result, nil
}
