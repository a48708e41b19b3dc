package err

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/reverie-lang/reverie/source/text"
	"github.com/reverie-lang/reverie/source/token"
)

// The kind of an error says what sort of thing went wrong, so that the caller can tell
// a program which isn't reversible apart from a program with a type bug, and both of
// those apart from a bug in the interpreter itself.
type Kind int

const (
	PARSE Kind = iota
	TYPE_MISMATCH
	UNBOUND_NAME
	INDEX_OUT_OF_RANGE
	UNSUPPORTED_DEREFERENCE
	REVERSIBILITY_VIOLATION
	SCOPE_CORRUPTION
	PROCEDURE_NOT_FOUND
	DIVISION_BY_ZERO
	HUB
)

var kindNames = []string{"parse error", "type mismatch", "unbound name", "index out of range",
	"unsupported dereference", "reversibility violation", "scope corruption",
	"procedure not found", "division by zero", "hub error"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind " + strconv.Itoa(int(k))
}

type Error struct {
	ErrorId string
	Kind    Kind
	Message string
	Args    []any
	Token   *token.Token
	Trace   []*token.Token
}

type Errors []*Error

type ErrorCreator struct {
	Kind        Kind
	Message     func(tok *token.Token, args ...any) string
	Explanation func(errors Errors, pos int, tok *token.Token, args ...any) string
}

func (e *Error) Error() string {
	if e.Token == nil {
		return e.Message
	}
	return e.Message + Position(e.Token)
}

func (e *Error) AddToTrace(tok *token.Token) {
	e.Trace = append(e.Trace, tok)
}

// For parse errors, the description of what the parser wanted to find.
func (e *Error) Expected() string {
	if e.Kind != PARSE || len(e.Args) == 0 {
		return ""
	}
	if s, ok := e.Args[0].(string); ok {
		return s
	}
	return ""
}

// A parse error found at the end of the input means that the input may merely be
// incomplete, which the REPL treats as a request for more lines.
func (e *Error) AtEOF() bool {
	return e.Kind == PARSE && e.Token != nil && e.Token.Type == token.EOF
}

func (e *Error) IsReversibility() bool {
	return e.Kind == REVERSIBILITY_VIOLATION
}

// Scope corruption can only arise from a bug in the parser or evaluator.
func (e *Error) IsInternal() bool {
	return e.Kind == SCOPE_CORRUPTION
}

// Makes an error from an identifier in the ErrorCreatorMap.
func CreateErr(errorId string, tok *token.Token, args ...any) *Error {
	creator, ok := ErrorCreatorMap[errorId]
	if !ok {
		panic("Unknown error identifier " + errorId)
	}
	return &Error{
		ErrorId: errorId,
		Kind:    creator.Kind,
		Message: creator.Message(tok, args...),
		Args:    args,
		Token:   tok,
	}
}

func Throw(errorId string, errors Errors, tok *token.Token, args ...any) Errors {
	return append(errors, CreateErr(errorId, tok, args...))
}

func (es Errors) Explain(pos int) string {
	if pos < 0 || pos >= len(es) {
		return ""
	}
	e := es[pos]
	creator := ErrorCreatorMap[e.ErrorId]
	if creator.Explanation == nil {
		return "There is no further explanation of this error."
	}
	return creator.Explanation(es, pos, e.Token, e.Args...)
}

func GetList(errors Errors) string {
	result := ""
	for i, e := range errors {
		result = result + "[" + strconv.Itoa(i) + "] " + text.Red(e.Kind.String()) + ": " + e.Message + Position(e.Token) + "\n"
	}
	return result
}

func Position(tok *token.Token) string {
	if tok == nil {
		return ""
	}
	src := ""
	if tok.Source != "" {
		src = " of " + tok.Source
	}
	return fmt.Sprintf(" at line %d:%d%s", tok.Line, tok.ChStart, src)
}

// Finds the kind of an error if it is one of ours.
func KindOf(e error) (Kind, bool) {
	var ours *Error
	if errors.As(e, &ours) {
		return ours.Kind, true
	}
	return 0, false
}

func Is(e error, k Kind) bool {
	kind, ok := KindOf(e)
	return ok && kind == k
}
