package ast

// Invert flips a single statement into its inverse without looking inside its bodies.
// Applying it twice gives back a statement equal to the one we started with.
//
// Add and Sub undo one another, as do RotLeft and RotRight, and Do and Undo. A Var
// swaps its initializer and destination, and an If or From swaps its two boundary
// expressions. Xor, Swap and Skip are their own inverses.
func Invert(s Statement) Statement {
	switch s := s.(type) {
	case *VarStatement:
		result := *s
		result.Init, result.Dest = s.Dest, s.Init
		return &result
	case *IfStatement:
		result := *s
		result.Test, result.Assert = s.Assert, s.Test
		return &result
	case *FromStatement:
		result := *s
		result.Assert, result.Test = s.Test, s.Assert
		return &result
	case *CallStatement:
		result := *s
		result.Undo = !s.Undo
		return &result
	case *UpdateStatement:
		result := *s
		switch s.Operator {
		case ADD:
			result.Operator = SUB
		case SUB:
			result.Operator = ADD
		case ROL:
			result.Operator = ROR
		case ROR:
			result.Operator = ROL
		}
		return &result
	}
	return s
}

// InvertSequence gives the statements which undo the given sequence when run forward:
// the order is reversed and every statement is inverted, together with every body
// nested inside it.
func InvertSequence(stmts []Statement) []Statement {
	if len(stmts) == 0 {
		return stmts
	}
	result := make([]Statement, len(stmts))
	for i, s := range stmts {
		result[len(stmts)-1-i] = invertDeep(s)
	}
	return result
}

func invertDeep(s Statement) Statement {
	inverse := Invert(s)
	switch inverse := inverse.(type) {
	case *VarStatement:
		inverse.Body = InvertSequence(inverse.Body)
	case *IfStatement:
		inverse.Then = InvertSequence(inverse.Then)
		inverse.Else = InvertSequence(inverse.Else)
	case *FromStatement:
		inverse.Forward = InvertSequence(inverse.Forward)
		inverse.Backward = InvertSequence(inverse.Backward)
	}
	return inverse
}
