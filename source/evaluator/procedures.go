package evaluator

import (
	"fmt"
	"math/bits"

	"github.com/reverie-lang/reverie/source/ast"
	"github.com/reverie-lang/reverie/source/err"
	"github.com/reverie-lang/reverie/source/registry"
	"github.com/reverie-lang/reverie/source/set"
	"github.com/reverie-lang/reverie/source/settings"
	"github.com/reverie-lang/reverie/source/values"
)

// Procedures are called by value-result: the arguments are evaluated, the procedure runs,
// and the final values of its parameters are written back into those arguments which are
// plain variables.
func execCall(node *ast.CallStatement, c *Context) error {
	args, e := evalList(node.Args, c)
	if e != nil {
		return e
	}
	entry, ok := c.Procs.Lookup(node.Name)
	if !ok {
		return newError("eval/proc/missing", &node.Token, node.Name)
	}
	if e := checkAliasing(node); e != nil {
		return e
	}
	c.Log.Debug().Str("proc", node.Name).Bool("undo", node.Undo).Int("args", len(args)).Msg("call")
	var results []values.Value
	switch entry.Kind {
	case registry.USER:
		slots := writeBackSlots(node, c)
		results, e = callProcedure(entry.Proc, node, args, c)
		if e == nil {
			e = checkUntouched(node, slots, args, c)
		}
	case registry.NATIVE:
		results, e = callNative(entry, node, args)
	}
	if e != nil {
		return e
	}
	writeBack(node, results, c)
	return nil
}

// Where each argument which will be written back lives on the caller's side of the stack,
// or -1 for the other arguments.
func writeBackSlots(node *ast.CallStatement, c *Context) []int {
	slots := make([]int, len(node.Args))
	for i, arg := range node.Args {
		slots[i] = -1
		if name, ok := plainVariable(arg); ok {
			slots[i] = c.Scope.Find(name)
		}
	}
	return slots
}

// A procedure body can see the caller's bindings. If it changes one which is also about to
// receive the final value of a parameter, one of the two changes would be lost.
func checkUntouched(node *ast.CallStatement, slots []int, args []values.Value, c *Context) error {
	for i, slot := range slots {
		if slot < 0 {
			continue
		}
		if b := c.Scope.Get(slot); !b.Value.Equal(args[i]) {
			return newError("eval/call/shared", node.Args[i].GetToken(), node.Name, b.Name)
		}
	}
	return nil
}

func checkAliasing(node *ast.CallStatement) error {
	seen := set.Set[string]{}
	for _, arg := range node.Args {
		name, ok := plainVariable(arg)
		if ok && !seen.Insert(name) {
			return newError("eval/call/alias", arg.GetToken(), name, node.Name)
		}
	}
	return nil
}

func plainVariable(arg ast.Expression) (string, bool) {
	if lv, ok := arg.(*ast.LValue); ok && len(lv.Ops) == 0 {
		return lv.Name, true
	}
	return "", false
}

// The parameters are pushed as a frame on top of the caller's stack. Undoing a procedure
// runs the inverse of its body.
func callProcedure(proc *ast.Procedure, node *ast.CallStatement, args []values.Value, c *Context) ([]values.Value, error) {
	params := proc.ParamNames()
	if len(args) != len(params) {
		return nil, newError("eval/call/arity", &node.Token, proc.Name, len(params), len(args))
	}
	base := c.Scope.Len()
	for i, name := range params {
		c.push(name, args[i])
	}
	body := proc.Body
	if node.Undo {
		body = ast.InvertSequence(body)
		if settings.SHOW_INVERSE {
			fmt.Println("Inverse of " + proc.Name + ":\n" + ast.SequenceString(body))
		}
	}
	if e := ExecSequence(body, c); e != nil {
		return nil, e
	}
	if c.Scope.Len() != base+len(params) {
		found := "nothing"
		if top, ok := c.Scope.Top(); ok {
			found = top.Name
		}
		expected := "nothing"
		if len(params) > 0 {
			expected = params[len(params)-1]
		}
		return nil, newError("eval/proc/frame", &node.Token, proc.Name, expected, found)
	}
	results := make([]values.Value, len(params))
	for i := len(params) - 1; i >= 0; i-- {
		b, _ := c.pop()
		if b.Name != params[i] {
			return nil, newError("eval/proc/frame", &node.Token, proc.Name, params[i], b.Name)
		}
		results[i] = b.Value
	}
	return results, nil
}

// Errors from native procedures don't know where they happened, so we tell them.
func callNative(entry *registry.Entry, node *ast.CallStatement, args []values.Value) ([]values.Value, error) {
	f := entry.Forward
	if node.Undo {
		f = entry.Backward
	}
	results, e := f(args)
	if e != nil {
		if ours, ok := e.(*err.Error); ok && ours.Token == nil {
			ours.Token = &node.Token
		}
		return nil, e
	}
	return results, nil
}

func writeBack(node *ast.CallStatement, results []values.Value, c *Context) {
	for i, arg := range node.Args {
		if i >= len(results) {
			return
		}
		if name, ok := plainVariable(arg); ok {
			c.Scope.Update(name, results[i])
		}
	}
}

// Both sides of an update must be integers of the same kind. Rotations are by the amount
// modulo 64.
func applyUpdate(node *ast.UpdateStatement, cur, rhs values.Value) (values.Value, error) {
	if cur.T == rhs.T {
		switch cur.T {
		case values.INT:
			a, b := cur.V.(int64), rhs.V.(int64)
			return values.Int(int64(updateBits(node.Operator, uint64(a), uint64(b), int(((b%64)+64)%64)))), nil
		case values.UINT:
			a, b := cur.V.(uint64), rhs.V.(uint64)
			return values.UInt(updateBits(node.Operator, a, b, int(b%64))), nil
		}
	}
	return values.NULL, newError("eval/update/type", &node.Token, node.Operator, cur.T, rhs.T)
}

// Two's complement means that signed and unsigned integers can share the same bit twiddling.
func updateBits(op ast.UpdateOp, a, b uint64, rotation int) uint64 {
	switch op {
	case ast.XOR:
		return a ^ b
	case ast.ADD:
		return a + b
	case ast.SUB:
		return a - b
	case ast.ROL:
		return bits.RotateLeft64(a, rotation)
	case ast.ROR:
		return bits.RotateLeft64(a, -rotation)
	}
	panic("evaluator: unknown update operator")
}
