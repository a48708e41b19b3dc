package err

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reverie-lang/reverie/source/token"
)

// A map from error identifiers to functions that supply the corresponding error messages and explanations.
//
// Errors in the map are in alphabetical order of their identifers.
//
// Major categories are builtin, eval, hub, lex, and parse.
//
// Two otherwise identical errors thrown in different places in the Go code must be assigned
// different identifiers, if only by suffixing /a, /b, etc to the identifier.
//
// A new entry looks like this:
//
//	"category/what/went/wrong": {
//		Kind: TYPE_MISMATCH,
//		Message: func(tok *token.Token, args ...any) string {
//			return ""
//		},
//		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
//			return ""
//		},
//	},

var ErrorCreatorMap = map[string]ErrorCreator{

	"builtin/args": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "builtin " + emph(args[0]) + " wants " + emph(args[1]) + " but was given " + describe(args[2])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The builtin procedures check the number and kinds of their arguments before doing anything."
		},
	},

	"builtin/pop/empty": {
		Kind: INDEX_OUT_OF_RANGE,
		Message: func(tok *token.Token, args ...any) string {
			return "popping from an empty array"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The " + emph("pop") + " builtin moves the last element of an array into a variable, " +
				"and so there has to be a last element."
		},
	},

	"builtin/pop/zero": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "popping into a variable which holds " + emph(args[0]) + " rather than the zero value"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Popping overwrites the target variable, and so to be undoable it must only ever overwrite " +
				"a value we can reconstruct, namely the zero value of its kind. Likewise " + emph("push") +
				" leaves the variable it pushed holding the zero value."
		},
	},

	"eval/assign/char": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "can't put a value of kind " + emph(args[0]) + " into a string"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Each element of a string is a " + emph("char") + ", and so only a " + emph("char") +
				" can be put in its place."
		},
	},

	"eval/assign/field": {
		Kind: UNSUPPORTED_DEREFERENCE,
		Message: func(tok *token.Token, args ...any) string {
			return "can't assign to field " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Fields such as " + emph("len") + " are computed from a value and can be read but not written."
		},
	},

	"eval/call/shared": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "procedure " + emph(args[0]) + " changed " + emph(args[1]) + ", which was also passed to it as an argument"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The final values of the parameters of a procedure are written back into the variables passed " +
				"to it. If the body of the procedure also changed one of those variables directly, then the " +
				"write-back would destroy that change, which couldn't be undone."
		},
	},

	"eval/call/alias": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "variable " + emph(args[0]) + " is passed more than once to procedure " + emph(args[1])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The final values of the parameters of a procedure are written back into the variables passed " +
				"to it. If the same variable were passed twice then one of the results would be lost, which " +
				"couldn't be undone."
		},
	},

	"eval/call/arity": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "procedure " + emph(args[0]) + " takes " + strconv.Itoa(args[1].(int)) + " argument" +
				plural(args[1].(int)) + " but was given " + strconv.Itoa(args[2].(int))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Each argument of a " + emph("do") + " or " + emph("undo") + " is bound to one parameter of the procedure."
		},
	},

	"eval/deref/direct": {
		Kind: UNSUPPORTED_DEREFERENCE,
		Message: func(tok *token.Token, args ...any) string {
			return "can't dereference " + emph(args[0]) + " with " + emph("!")
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The " + emph("!") + " operator follows a reference, and no value in this version of the " +
				"language is a reference."
		},
	},

	"eval/deref/field": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "value of kind " + emph(args[1]) + " has no field " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "At present the only field is " + emph("len") + ", which is defined for strings and arrays."
		},
	},

	"eval/deref/index/kind": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "can't index value of kind " + emph(args[0]) + " by value of kind " + emph(args[1])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Strings and arrays can be indexed, and their indices must be integers."
		},
	},

	"eval/deref/index/range": {
		Kind: INDEX_OUT_OF_RANGE,
		Message: func(tok *token.Token, args ...any) string {
			return "index " + emph(args[1]) + " is out of range for " + emph(args[0]) + " of length " + emph(args[2])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Indices start at 0 and must be less than the length of the thing being indexed."
		},
	},

	"eval/div/zero": {
		Kind: DIVISION_BY_ZERO,
		Message: func(tok *token.Token, args ...any) string {
			return "division by zero"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Both " + emph("/") + " and " + emph("%") + " need a non-zero right-hand side."
		},
	},

	"eval/fn/apply": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "can't apply value of kind " + emph(args[0]) + " as a function"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Only values made by a " + emph("fn") + " literal can be applied to arguments."
		},
	},

	"eval/fn/arity": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "function takes " + strconv.Itoa(args[0].(int)) + " argument" + plural(args[0].(int)) +
				" but was given " + strconv.Itoa(args[1].(int))
		},
	},

	"eval/from/entry": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "entry assertion of " + emph("from") + " loop was " + emph("false") + " before the first iteration"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The expression after " + emph("from") + " must be true when the loop is entered and false at the " +
				"start of every later iteration. This is what lets the loop be run backwards: going backwards, it tells " +
				"us when we have arrived back at the beginning."
		},
	},

	"eval/from/loop": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "entry assertion of " + emph("from") + " loop was " + emph("true") + " on a later iteration"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The expression after " + emph("from") + " must be true when the loop is entered and false at the " +
				"start of every later iteration, or else running the loop backwards would stop too soon."
		},
	},

	"eval/from/type/assert": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "entry assertion of " + emph("from") + " loop is of kind " + emph(args[0]) + " rather than " + emph("bool")
		},
	},

	"eval/from/type/test": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "exit test of " + emph("from") + " loop is of kind " + emph(args[0]) + " rather than " + emph("bool")
		},
	},

	"eval/if/assert": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "assertion after " + emph("fi") + " was " + emph(args[1]) + " but the " + emph(args[0]) +
				" branch was taken"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The expression after " + emph("fi") + " must be true just when the first branch of the " + emph("if") +
				" was taken. Running the statement backwards, it is this expression which decides which branch to take, " +
				"so if it disagrees with the test the statement can't be undone."
		},
	},

	"eval/if/type/assert": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "assertion after " + emph("fi") + " is of kind " + emph(args[0]) + " rather than " + emph("bool")
		},
	},

	"eval/if/type/test": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "condition of " + emph("if") + " is of kind " + emph(args[0]) + " rather than " + emph("bool")
		},
	},

	"eval/infix/type": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "can't apply " + emph(args[0]) + " to values of kind " + emph(args[1]) + " and " + emph(args[2])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Values are never converted implicitly: in particular " + emph("int") + " and " + emph("uint") +
				" are different kinds and can't be mixed in arithmetic or comparison."
		},
	},

	"eval/prefix/type": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "can't apply " + emph(args[0]) + " to a value of kind " + emph(args[1])
		},
	},

	"eval/proc/frame": {
		Kind: SCOPE_CORRUPTION,
		Message: func(tok *token.Token, args ...any) string {
			return "frame of procedure " + emph(args[0]) + " ended with binding " + emph(args[2]) + " where " +
				emph(args[1]) + " was expected"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "This is a bug in the interpreter rather than in your program: bindings are only ever pushed and " +
				"popped in matched pairs."
		},
	},

	"eval/proc/missing": {
		Kind: PROCEDURE_NOT_FOUND,
		Message: func(tok *token.Token, args ...any) string {
			return "there is no procedure called " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A " + emph("do") + " or " + emph("undo") + " statement can only call a procedure defined with " +
				emph("proc") + " or supplied as a builtin."
		},
	},

	"eval/scope/pop": {
		Kind: SCOPE_CORRUPTION,
		Message: func(tok *token.Token, args ...any) string {
			return "expected to drop variable " + emph(args[0]) + " but found " + emph(args[1]) + " on top of the scope stack"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "This is a bug in the interpreter rather than in your program: a " + emph("var") +
				" statement always drops the binding it made."
		},
	},

	"eval/swap/overlap": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "can't swap " + emph(args[0]) + " with " + emph(args[1]) + ", which contains it"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "After swapping a container with one of its own elements, the element would no longer be " +
				"where it was, and so the swap couldn't be undone by swapping back."
		},
	},

	"eval/swap/type": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "can't swap value of kind " + emph(args[0]) + " with value of kind " + emph(args[1])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Both sides of " + emph("<>") + " must hold values of the same kind."
		},
	},

	"eval/unbound": {
		Kind: UNBOUND_NAME,
		Message: func(tok *token.Token, args ...any) string {
			return "variable " + emph(args[0]) + " does not exist"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Variables exist between a " + emph("var") + " and its matching " + emph("drop") +
				", or as parameters of a procedure while it runs, or as bindings made in the REPL with " + emph("let") + "."
		},
	},

	"eval/swap/index": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "the index of " + emph(args[0]) + " depends on " + emph(args[1]) + " or " + emph(args[2]) +
				", which the swap changes"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "If a swap changes the variable which one of its indices is computed from, then swapping " +
				"back would look in a different place, and so the swap couldn't be undone."
		},
	},

	"eval/update/index": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "the index of " + emph(args[0]) + " depends on " + emph(args[1]) + ", which the update changes"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "An update such as " + emph("a.(a.(0)) += 1") + " may change the very element that chose " +
				"which element to update, so that undoing it would update a different one."
		},
	},

	"eval/update/self": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "variable " + emph(args[0]) + " appears on both sides of " + emph(args[1])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "An update such as " + emph("x -= x") + " destroys information, since afterwards we can no longer " +
				"tell what " + emph("x") + " used to be. The right-hand side of an update therefore may not mention " +
				"the variable being updated."
		},
	},

	"eval/update/type": {
		Kind: TYPE_MISMATCH,
		Message: func(tok *token.Token, args ...any) string {
			return "can't apply " + emph(args[0]) + " to values of kind " + emph(args[1]) + " and " + emph(args[2])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The update operators only apply to integers, and both sides must be of the same kind: either " +
				"both " + emph("int") + " or both " + emph("uint") + "."
		},
	},

	"eval/var/drop": {
		Kind: REVERSIBILITY_VIOLATION,
		Message: func(tok *token.Token, args ...any) string {
			return "variable " + emph(args[0]) + " was dropped with value " + emph(args[2]) + " where " +
				emph(args[1]) + " was declared"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The expression after " + emph("drop") + " says what the variable must hold when it goes out of " +
				"scope. Run backwards, the " + emph("drop") + " becomes the " + emph("var") +
				", and so if the two disagree the statement can't be undone."
		},
	},

	"hub/command": {
		Kind: HUB,
		Message: func(tok *token.Token, args ...any) string {
			return "unknown hub command " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The hub understands " + emph("hub why <n>") + ", " + emph("hub stack") + ", " + emph("hub procs") +
				", " + emph("hub run <file> [backward]") + ", " + emph("hub help") + " and " + emph("hub quit") + "."
		},
	},

	"hub/drop": {
		Kind: UNBOUND_NAME,
		Message: func(tok *token.Token, args ...any) string {
			return "there is no binding called " + emph(args[0]) + " to drop"
		},
	},

	"hub/run": {
		Kind: HUB,
		Message: func(tok *token.Token, args ...any) string {
			return "can't read " + emph(args[0]) + ": " + fmt.Sprint(args[1])
		},
	},

	"hub/why": {
		Kind: HUB,
		Message: func(tok *token.Token, args ...any) string {
			return "there is no error numbered " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The " + emph("hub why") + " command explains an error from the most recent list of errors, " +
				"numbered from 0."
		},
	},

	"lex/char": {
		Kind: PARSE,
		Message: func(tok *token.Token, args ...any) string {
			return "malformed character literal"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A character literal is a single character, or an escape such as " + emph(`'\n'`) +
				", between single quotes."
		},
	},

	"lex/ill": {
		Kind: PARSE,
		Message: func(tok *token.Token, args ...any) string {
			return "illegal character"
		},
	},

	"lex/num": {
		Kind: PARSE,
		Message: func(tok *token.Token, args ...any) string {
			return "malformed or oversized number"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Integer literals must fit in 64 bits: signed unless they end in " + emph("u") + "."
		},
	},

	"lex/op": {
		Kind: PARSE,
		Message: func(tok *token.Token, args ...any) string {
			return "unknown operator"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The rotation operators are " + emph("<<=") + " and " + emph(">>=") + "; there is no shift operator."
		},
	},

	"lex/string": {
		Kind: PARSE,
		Message: func(tok *token.Token, args ...any) string {
			return "unterminated string literal"
		},
	},

	"parse/else/empty": {
		Kind: PARSE,
		Message: func(tok *token.Token, args ...any) string {
			return "expected else-block to have at least 1 statement"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "If there is nothing to do in the " + emph("else") + " branch of an " + emph("if") +
				" then leave the " + emph("else") + " out altogether."
		},
	},

	"parse/expected": {
		Kind: PARSE,
		Message: func(tok *token.Token, args ...any) string {
			return "expected " + fmt.Sprint(args[0]) + ", found " + describeToken(tok)
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The parser was expecting " + fmt.Sprint(args[0]) + " at this point." + blame(errors, pos, "parse/illegal")
		},
	},

	"parse/from/empty": {
		Kind: PARSE,
		Message: func(tok *token.Token, args ...any) string {
			return "expected at least one of the bodies of a " + emph("from") + " loop to have a statement"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A loop with nothing in either body would either do nothing or never finish."
		},
	},

	"parse/illegal": {
		Kind: PARSE,
		Message: func(tok *token.Token, args ...any) string {
			return "can't make sense of the input: " + lexMessages[tok.Literal]
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The lexer couldn't turn this part of the input into a token."
		},
	},

	"parse/var/name": {
		Kind: PARSE,
		Message: func(tok *token.Token, args ...any) string {
			return "expected same variable name as before, " + emph(args[0]) + ", found " + describeToken(tok)
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A " + emph("var") + " statement must be closed by a " + emph("drop") + " of the same variable."
		},
	},
}

// What the lexer means by the literal of an ILLEGAL token.
var lexMessages = map[string]string{
	"lex/char":   "malformed character literal",
	"lex/ill":    "illegal character",
	"lex/num":    "malformed or oversized number",
	"lex/op":     "unknown operator",
	"lex/string": "unterminated string literal",
}

func blame(errors Errors, pos int, args ...string) string {
	if pos == 0 {
		return ""
	}
	for _, v := range args {
		if errors[pos-1].ErrorId == v {
			very := ""
			if (*errors[pos]).Token.Line-errors[pos-1].Token.Line <= 1 {
				very = "very "
			}
			return "\n\nIn this case the problem is " + very + "likely a knock-on effect of the previous error ([" +
				strconv.Itoa(pos-1) + "] " + errors[pos-1].Message + ".)"
		}
	}
	return ""
}

func emph(s any) string {
	if t, ok := s.(string); ok {
		s = strings.TrimSpace(t)
	}
	return fmt.Sprintf("'%v'", s)
}

func describeToken(tok *token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "newline"
	}
	return emph(tok.Literal)
}

func describe(a any) string {
	if l, ok := a.([]string); ok {
		if len(l) == 0 {
			return "no arguments"
		}
		result := ""
		sep := ""
		for _, s := range l {
			result = result + sep + emph(s)
			sep = ", "
		}
		return result
	}
	return emph(a)
}

func plural(i int) string {
	if i == 1 {
		return ""
	}
	return "s"
}
