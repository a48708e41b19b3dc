package evaluator

// This is a tree-walking evaluator for reversible statements. Every statement either runs to
// completion or fails with an *err.Error, and running it backward is a matter of running its
// inverse, which the ast package supplies.

import (
	"fmt"

	"github.com/reverie-lang/reverie/source/ast"
	"github.com/reverie-lang/reverie/source/err"
	"github.com/reverie-lang/reverie/source/registry"
	"github.com/reverie-lang/reverie/source/scope"
	"github.com/reverie-lang/reverie/source/token"
	"github.com/reverie-lang/reverie/source/values"

	"github.com/rs/zerolog"
)

// The evaluator itself is stateless: the state is in the Context, which is passed from
// function to function.
// * The scope stack is the only thing a statement mutates.
// * The registry of procedures is only read.
// * The logger is disabled unless the configuration asks otherwise.
type Context struct {
	Scope *scope.Stack
	Procs *registry.Registry
	Log   zerolog.Logger
}

func NewContext(s *scope.Stack, procs *registry.Registry, log zerolog.Logger) *Context {
	return &Context{Scope: s, Procs: procs, Log: log}
}

// Runs a statement forward.
func Exec(node ast.Statement, c *Context) error {
	c.Log.Trace().Str("stmt", describeStatement(node)).Int("line", node.GetToken().Line).Msg("exec")
	var e error
	switch node := node.(type) {
	case *ast.SkipStatement:
	case *ast.VarStatement:
		e = execVar(node, c)
	case *ast.IfStatement:
		e = execIf(node, c)
	case *ast.FromStatement:
		e = execFrom(node, c)
	case *ast.CallStatement:
		e = execCall(node, c)
	case *ast.UpdateStatement:
		e = execUpdate(node, c)
	case *ast.SwapStatement:
		e = execSwap(node, c)
	default:
		panic(fmt.Sprintf("evaluator: unhandled statement %T", node))
	}
	if e != nil {
		c.report(e, node)
	}
	return e
}

// Runs the statements in order, stopping at the first failure.
func ExecSequence(stmts []ast.Statement, c *Context) error {
	for _, stmt := range stmts {
		if e := Exec(stmt, c); e != nil {
			return e
		}
	}
	return nil
}

// Runs a sequence backward, by running its inverse forward.
func ExecBackward(stmts []ast.Statement, c *Context) error {
	return ExecSequence(ast.InvertSequence(stmts), c)
}

func execVar(node *ast.VarStatement, c *Context) error {
	init, e := Eval(node.Init, c)
	if e != nil {
		return e
	}
	c.push(node.Name, init)
	depth := c.Scope.Len()
	if e := ExecSequence(node.Body, c); e != nil {
		return e
	}
	found := "nothing"
	if top, ok := c.Scope.Top(); ok {
		found = top.Name
	}
	if c.Scope.Len() != depth || found != node.Name {
		return newError("eval/scope/pop", &node.Token, node.Name, found)
	}
	top, _ := c.pop()
	dest, e := Eval(node.Dest, c)
	if e != nil {
		return e
	}
	if !top.Value.Equal(dest) {
		return newError("eval/var/drop", node.Dest.GetToken(), node.Name, dest, top.Value)
	}
	return nil
}

func execIf(node *ast.IfStatement, c *Context) error {
	test, e := evalBool(node.Test, "eval/if/type/test", c)
	if e != nil {
		return e
	}
	branch := "then"
	if test {
		e = ExecSequence(node.Then, c)
	} else {
		branch = "else"
		e = ExecSequence(node.Else, c)
	}
	if e != nil {
		return e
	}
	assert, e := evalBool(node.Assert, "eval/if/type/assert", c)
	if e != nil {
		return e
	}
	if assert != test {
		return newError("eval/if/assert", node.Assert.GetToken(), branch, assert)
	}
	return nil
}

// The loop goes: check the entry assertion, run forward, test; then, for as long as the test
// fails, run backward, check the assertion is now false, run forward, test.
func execFrom(node *ast.FromStatement, c *Context) error {
	assert, e := evalBool(node.Assert, "eval/from/type/assert", c)
	if e != nil {
		return e
	}
	if !assert {
		return newError("eval/from/entry", node.Assert.GetToken())
	}
	for {
		if e := ExecSequence(node.Forward, c); e != nil {
			return e
		}
		done, e := evalBool(node.Test, "eval/from/type/test", c)
		if e != nil {
			return e
		}
		if done {
			return nil
		}
		if e := ExecSequence(node.Backward, c); e != nil {
			return e
		}
		assert, e := evalBool(node.Assert, "eval/from/type/assert", c)
		if e != nil {
			return e
		}
		if assert {
			return newError("eval/from/loop", node.Assert.GetToken())
		}
	}
}

func execUpdate(node *ast.UpdateStatement, c *Context) error {
	if ast.Mentions(node.Value, node.Target.Name) {
		return newError("eval/update/self", &node.Token, node.Target.Name, node.Operator)
	}
	if node.Target.IndexMentions(node.Target.Name) {
		return newError("eval/update/index", &node.Token, node.Target, node.Target.Name)
	}
	rhs, e := Eval(node.Value, c)
	if e != nil {
		return e
	}
	loc, e := locate(node.Target, c)
	if e != nil {
		return e
	}
	result, e := applyUpdate(node, loc.value, rhs)
	if e != nil {
		return e
	}
	return store(loc, result, &node.Token, c)
}

// Swapping a location with itself does nothing. Otherwise both locations are found before
// either is written to, so that an index on one side can't be disturbed by the other.
func execSwap(node *ast.SwapStatement, c *Context) error {
	for _, lv := range []*ast.LValue{node.Left, node.Right} {
		if lv.IndexMentions(node.Left.Name, node.Right.Name) {
			return newError("eval/swap/index", &node.Token, lv, node.Left.Name, node.Right.Name)
		}
	}
	left, e := locate(node.Left, c)
	if e != nil {
		return e
	}
	right, e := locate(node.Right, c)
	if e != nil {
		return e
	}
	if left.same(right) {
		return nil
	}
	if left.contains(right) || right.contains(left) {
		return newError("eval/swap/overlap", &node.Token, node.Left, node.Right)
	}
	if left.value.T != right.value.T {
		return newError("eval/swap/type", &node.Token, left.value.T, right.value.T)
	}
	if e := store(left, right.value, &node.Token, c); e != nil {
		return e
	}
	return store(right, left.value, &node.Token, c)
}

func evalBool(node ast.Expression, errorId string, c *Context) (bool, error) {
	v, e := Eval(node, c)
	if e != nil {
		return false, e
	}
	if v.T != values.BOOL {
		return false, newError(errorId, node.GetToken(), v.T)
	}
	return v.V.(bool), nil
}

func (c *Context) push(name string, v values.Value) {
	c.Scope.Push(name, v)
	c.Log.Trace().Str("name", name).Int("size", c.Scope.Len()).Msg("push")
}

func (c *Context) pop() (scope.Binding, bool) {
	b, ok := c.Scope.Pop()
	c.Log.Trace().Str("name", b.Name).Int("size", c.Scope.Len()).Msg("pop")
	return b, ok
}

// As a failure passes up through the statements enclosing the one that caused it, each adds
// itself to the trace. The first to see it also logs it, if it's serious.
func (c *Context) report(e error, node ast.Statement) {
	ours, ok := e.(*err.Error)
	if !ok {
		return
	}
	if len(ours.Trace) == 0 {
		switch {
		case ours.IsReversibility():
			c.Log.Warn().Str("id", ours.ErrorId).Int("line", node.GetToken().Line).Msg(ours.Message)
		case ours.IsInternal():
			c.Log.Error().Str("id", ours.ErrorId).Int("line", node.GetToken().Line).Msg(ours.Message)
		}
	}
	ours.AddToTrace(node.GetToken())
}

func newError(ident string, tok *token.Token, args ...any) *err.Error {
	return err.CreateErr(ident, tok, args...)
}

func describeStatement(node ast.Statement) string {
	switch node := node.(type) {
	case *ast.SkipStatement:
		return "skip"
	case *ast.VarStatement:
		return "var"
	case *ast.IfStatement:
		return "if"
	case *ast.FromStatement:
		return "from"
	case *ast.CallStatement:
		if node.Undo {
			return "undo"
		}
		return "do"
	case *ast.UpdateStatement:
		return node.Operator.String()
	case *ast.SwapStatement:
		return "<>"
	}
	return "statement"
}
