package parser

import (
	"github.com/reverie-lang/reverie/source/ast"
	"github.com/reverie-lang/reverie/source/err"
	"github.com/reverie-lang/reverie/source/lexer"
	"github.com/reverie-lang/reverie/source/token"
)

// A script is a mixture of procedure definitions and statements. The procedures are
// registered before any of the statements run.
type Program struct {
	Procedures []*ast.Procedure
	Statements []ast.Statement
}

type ReplKind int

const (
	REPL_STATEMENT ReplKind = iota
	REPL_PROCEDURE
	REPL_LET  // let x := expr
	REPL_DROP // drop x
	REPL_SHOW // show expr
)

// What the user typed into the REPL.
type ReplLine struct {
	Kind      ReplKind
	Token     token.Token
	Name      string
	Value     ast.Expression
	Procedure *ast.Procedure
	Statement ast.Statement
}

func (rl *ReplLine) String() string {
	switch rl.Kind {
	case REPL_PROCEDURE:
		return rl.Procedure.String()
	case REPL_LET:
		return "let " + rl.Name + " := " + rl.Value.String()
	case REPL_DROP:
		return "drop " + rl.Name
	case REPL_SHOW:
		return "show " + rl.Value.String()
	}
	return rl.Statement.String()
}

func (p *Parser) start(source, input string) *lexer.Relexer {
	rl := lexer.NewRelexer(source, input)
	p.Init(rl)
	return rl
}

// Lexer errors go in front of the parser's, since any parser error will be a knock-on
// effect of the first of them.
func (p *Parser) finish(rl *lexer.Relexer) {
	if len(rl.Errors()) > 0 && p.ErrorsExist() {
		p.Errors = append(rl.Errors(), p.Errors...)
	}
}

// After a thing has been parsed there may be a newline, and then there must be the end.
func (p *Parser) expectEnd() {
	for p.peekTokenIs(token.NEWLINE) {
		p.NextToken()
	}
	if !p.peekTokenIs(token.EOF) {
		p.throwExpected(&p.peekToken, "end of input")
	}
}

func (p *Parser) ParseStatement(source, input string) ast.Statement {
	rl := p.start(source, input)
	defer p.finish(rl)
	stmt := p.parseStatement()
	if p.ErrorsExist() {
		return nil
	}
	p.expectEnd()
	if p.ErrorsExist() {
		return nil
	}
	p.dump(stmt)
	return stmt
}

func (p *Parser) ParseExpression(source, input string) ast.Expression {
	rl := p.start(source, input)
	defer p.finish(rl)
	exp := p.parseExpression(LOWEST)
	if p.ErrorsExist() {
		return nil
	}
	p.expectEnd()
	if p.ErrorsExist() {
		return nil
	}
	return exp
}

func (p *Parser) ParseProgram(source, input string) *Program {
	rl := p.start(source, input)
	defer p.finish(rl)
	program := &Program{Procedures: []*ast.Procedure{}, Statements: []ast.Statement{}}
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.PROC) {
			proc := p.parseProcedure()
			if p.ErrorsExist() {
				return nil
			}
			program.Procedures = append(program.Procedures, proc)
		} else {
			stmt := p.parseStatement()
			if p.ErrorsExist() {
				return nil
			}
			program.Statements = append(program.Statements, stmt)
		}
		if !p.atLineEnd() {
			p.throwExpected(&p.peekToken, "newline")
			return nil
		}
		p.NextToken()
		for p.curTokenIs(token.NEWLINE) {
			p.NextToken()
		}
	}
	return program
}

func (p *Parser) ParseReplLine(source, input string) *ReplLine {
	rl := p.start(source, input)
	defer p.finish(rl)
	line := &ReplLine{Token: p.curToken}
	switch {
	case p.curTokenIs(token.PROC):
		line.Kind = REPL_PROCEDURE
		line.Procedure = p.parseProcedure()
	case p.curTokenIs(token.LET):
		line.Kind = REPL_LET
		if !p.expectPeek(token.IDENT, "variable name") {
			return nil
		}
		line.Name = p.curToken.Literal
		if !p.expectPeek(token.ASSIGN, "':='") {
			return nil
		}
		p.NextToken()
		line.Value = p.parseExpression(LOWEST)
	case p.curTokenIs(token.DROP):
		line.Kind = REPL_DROP
		if !p.expectPeek(token.IDENT, "variable name") {
			return nil
		}
		line.Name = p.curToken.Literal
	case p.curTokenIs(token.IDENT) && p.curToken.Literal == "show" && p.startsShow():
		line.Kind = REPL_SHOW
		p.NextToken()
		line.Value = p.parseExpression(LOWEST)
	default:
		line.Kind = REPL_STATEMENT
		line.Statement = p.parseStatement()
	}
	if p.ErrorsExist() {
		return nil
	}
	p.expectEnd()
	if p.ErrorsExist() {
		return nil
	}
	p.dump(line)
	return line
}

// `show` is only a command if what follows it couldn't continue an update statement with
// a variable called show.
func (p *Parser) startsShow() bool {
	if _, ok := updateOperators[p.peekToken.Type]; ok {
		return false
	}
	return !(p.peekTokenIs(token.SWAP) || p.peekTokenIs(token.PERIOD) || p.peekTokenIs(token.BANG) ||
		p.peekTokenIs(token.EOF) || p.peekTokenIs(token.NEWLINE))
}

// The things the parser may be expecting at the end of the input because the user hasn't
// finished typing a block yet.
var continuations = map[string]bool{
	"newline":         true,
	"newline or 'if'": true,
	"'drop'":          true,
	"'else' or 'fi'":  true,
	"'fi'":            true,
	"'until'":         true,
	"'loop'":          true,
	"'end'":           true,
}

// Reports whether the errors mean that the input is merely unfinished, in which case the
// REPL should ask for another line rather than complain.
func Incomplete(errors err.Errors) bool {
	if len(errors) == 0 {
		return false
	}
	e := errors[0]
	return e.ErrorId == "parse/expected" && e.AtEOF() && continuations[e.Expected()]
}

// Convenience functions which return the first error, if any, as an error.

func ParseStatement(source, input string) (ast.Statement, error) {
	p := New()
	stmt := p.ParseStatement(source, input)
	return stmt, p.Err()
}

func ParseExpression(source, input string) (ast.Expression, error) {
	p := New()
	exp := p.ParseExpression(source, input)
	return exp, p.Err()
}

func ParseProgram(source, input string) (*Program, error) {
	p := New()
	program := p.ParseProgram(source, input)
	return program, p.Err()
}
