package evaluator

import (
	"cmp"
	"fmt"

	"github.com/reverie-lang/reverie/source/ast"
	"github.com/reverie-lang/reverie/source/values"
)

// Evaluates an expression. This never changes the scope stack.
func Eval(node ast.Expression, c *Context) (values.Value, error) {
	switch node := node.(type) {

	case *ast.NilLiteral:
		return values.NULL, nil

	case *ast.BooleanLiteral:
		return values.Bool(node.Value), nil

	case *ast.IntegerLiteral:
		return values.Int(node.Value), nil

	case *ast.UIntLiteral:
		return values.UInt(node.Value), nil

	case *ast.CharLiteral:
		return values.Char(node.Value), nil

	case *ast.StringLiteral:
		return values.String(node.Value), nil

	case *ast.ArrayLiteral:
		elements, e := evalList(node.Elements, c)
		if e != nil {
			return values.NULL, e
		}
		return values.Array(elements...), nil

	case *ast.FnLiteral:
		return values.Fn(node.Params, node.Body), nil

	case *ast.LValue:
		return Resolve(node, c)

	case *ast.PrefixExpression:
		return evalPrefixExpression(node, c)

	case *ast.InfixExpression:
		return evalInfixExpression(node, c)

	case *ast.ApplyExpression:
		return evalApplyExpression(node, c)
	}
	panic(fmt.Sprintf("evaluator: unhandled expression %T", node))
}

func evalList(nodes []ast.Expression, c *Context) ([]values.Value, error) {
	result := make([]values.Value, len(nodes))
	for i, node := range nodes {
		v, e := Eval(node, c)
		if e != nil {
			return nil, e
		}
		result[i] = v
	}
	return result, nil
}

func evalPrefixExpression(node *ast.PrefixExpression, c *Context) (values.Value, error) {
	right, e := Eval(node.Right, c)
	if e != nil {
		return values.NULL, e
	}
	switch {
	case node.Operator == "-" && right.T == values.INT:
		return values.Int(-right.V.(int64)), nil
	case node.Operator == "not" && right.T == values.BOOL:
		return values.Bool(!right.V.(bool)), nil
	case node.Operator == "~" && right.T == values.INT:
		return values.Int(^right.V.(int64)), nil
	case node.Operator == "~" && right.T == values.UINT:
		return values.UInt(^right.V.(uint64)), nil
	}
	return values.NULL, newError("eval/prefix/type", &node.Token, node.Operator, right.T)
}

func evalInfixExpression(node *ast.InfixExpression, c *Context) (values.Value, error) {
	if node.Operator == "and" || node.Operator == "or" {
		return evalLazyExpression(node, c)
	}
	left, e := Eval(node.Left, c)
	if e != nil {
		return values.NULL, e
	}
	right, e := Eval(node.Right, c)
	if e != nil {
		return values.NULL, e
	}
	switch node.Operator {
	case "=":
		return values.Bool(left.Equal(right)), nil
	case "!=":
		return values.Bool(!left.Equal(right)), nil
	}
	if left.T == right.T {
		switch left.T {
		case values.INT:
			return evalIntegerInfix(node, left.V.(int64), right.V.(int64), values.Int)
		case values.UINT:
			return evalIntegerInfix(node, left.V.(uint64), right.V.(uint64), values.UInt)
		case values.CHAR:
			if result, ok := compare(node.Operator, left.V.(rune), right.V.(rune)); ok {
				return result, nil
			}
		case values.STRING:
			if node.Operator == "+" {
				return values.String(left.V.(string) + right.V.(string)), nil
			}
			if result, ok := compare(node.Operator, left.V.(string), right.V.(string)); ok {
				return result, nil
			}
		}
	}
	return values.NULL, newError("eval/infix/type", &node.Token, node.Operator, left.T, right.T)
}

// `and` and `or` only evaluate their right-hand side if they need to.
func evalLazyExpression(node *ast.InfixExpression, c *Context) (values.Value, error) {
	left, e := Eval(node.Left, c)
	if e != nil {
		return values.NULL, e
	}
	if left.T != values.BOOL {
		return values.NULL, newError("eval/infix/type", &node.Token, node.Operator, left.T, values.BOOL)
	}
	if left.V.(bool) == (node.Operator == "or") {
		return left, nil
	}
	right, e := Eval(node.Right, c)
	if e != nil {
		return values.NULL, e
	}
	if right.T != values.BOOL {
		return values.NULL, newError("eval/infix/type", &node.Token, node.Operator, left.T, right.T)
	}
	return right, nil
}

type integer interface {
	~int64 | ~uint64
}

// Arithmetic wraps around, as Go's does.
func evalIntegerInfix[T integer](node *ast.InfixExpression, a, b T, wrap func(T) values.Value) (values.Value, error) {
	switch node.Operator {
	case "+":
		return wrap(a + b), nil
	case "-":
		return wrap(a - b), nil
	case "*":
		return wrap(a * b), nil
	case "/", "%":
		if b == 0 {
			return values.NULL, newError("eval/div/zero", &node.Token)
		}
		if node.Operator == "/" {
			return wrap(a / b), nil
		}
		return wrap(a % b), nil
	case "&":
		return wrap(a & b), nil
	case "|":
		return wrap(a | b), nil
	case "^":
		return wrap(a ^ b), nil
	}
	if result, ok := compare(node.Operator, a, b); ok {
		return result, nil
	}
	var zero T
	kind := wrap(zero).T
	return values.NULL, newError("eval/infix/type", &node.Token, node.Operator, kind, kind)
}

func compare[T cmp.Ordered](op string, a, b T) (values.Value, bool) {
	switch op {
	case "<":
		return values.Bool(a < b), true
	case "<=":
		return values.Bool(a <= b), true
	case ">":
		return values.Bool(a > b), true
	case ">=":
		return values.Bool(a >= b), true
	}
	return values.NULL, false
}

// A function is applied by binding its parameters on a copy of the caller's stack, so the
// body can see the caller's variables but can't disturb them.
func evalApplyExpression(node *ast.ApplyExpression, c *Context) (values.Value, error) {
	fv, e := Eval(node.Fn, c)
	if e != nil {
		return values.NULL, e
	}
	if fv.T != values.FUNC {
		return values.NULL, newError("eval/fn/apply", &node.Token, fv.T)
	}
	f := fv.V.(*values.Func)
	args, e := evalList(node.Args, c)
	if e != nil {
		return values.NULL, e
	}
	if len(args) != len(f.Params) {
		return values.NULL, newError("eval/fn/arity", &node.Token, len(f.Params), len(args))
	}
	inner := &Context{Scope: c.Scope.Copy(), Procs: c.Procs, Log: c.Log}
	for i, param := range f.Params {
		inner.Scope.Push(param, args[i])
	}
	return Eval(f.Body, inner)
}
