package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/reverie-lang/reverie/source/ast"
	"github.com/reverie-lang/reverie/source/err"
	"github.com/reverie-lang/reverie/source/lexer"
	"github.com/reverie-lang/reverie/source/settings"
	"github.com/reverie-lang/reverie/source/token"
)

// Statements are parsed by recursive descent and expressions by Pratt parsing. Each of the
// parseX methods starts with curToken on the first token of X and finishes with curToken
// on the last token of X.
//
// Parsing stops at the first error: after anything which might have thrown one, we check
// ErrorsExist and give up if so.

const (
	_ int = iota
	LOWEST
	OR          // or
	AND         // and
	EQUALS      // = or !=
	LESSGREATER // > or < or <= or >=
	SUM         // + or - or | or ^
	PRODUCT     // * or / or % or &
	PREFIX      // -x, not x, ~x
	CALL        // f(x)
)

var precedences = map[token.TokenType]int{
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.LT_EQ:    LESSGREATER,
	token.GT:       LESSGREATER,
	token.GT_EQ:    LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.PIPE:     SUM,
	token.CARET:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.AMP:      PRODUCT,
	token.LPAREN:   CALL,
}

var updateOperators = map[token.TokenType]ast.UpdateOp{
	token.ASSIGN: ast.XOR,
	token.ADD:    ast.ADD,
	token.SUB:    ast.SUB,
	token.ROL:    ast.ROL,
	token.ROR:    ast.ROR,
}

const UPDATE_OPERATORS = "':=', '+=', '-=', '<<=', '>>=' or '<>'"

type Parser struct {
	TokenizedCode lexer.TokenSupplier
	curToken      token.Token
	peekToken     token.Token
	Errors        err.Errors
}

func New() *Parser {
	return &Parser{Errors: []*err.Error{}}
}

// Points the parser at a new supply of tokens, and clears the errors.
func (p *Parser) Init(ts lexer.TokenSupplier) {
	p.ClearErrors()
	p.TokenizedCode = ts
	p.SafeNextToken()
	p.SafeNextToken()
}

func (p *Parser) NextToken() {
	p.SafeNextToken()
}

func (p *Parser) SafeNextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.TokenizedCode.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// If the next token is of the given type we move on to it. If not, we complain that we
// expected whatever the description says.
func (p *Parser) expectPeek(t token.TokenType, description string) bool {
	if p.peekTokenIs(t) {
		p.NextToken()
		return true
	}
	p.throwExpected(&p.peekToken, description)
	return false
}

// Lexer errors come to us as ILLEGAL tokens, and should be reported as such rather than as
// whatever we were expecting.
func (p *Parser) throwExpected(tok *token.Token, description string) {
	if tok.Type == token.ILLEGAL {
		p.Throw("parse/illegal", tok)
		return
	}
	p.Throw("parse/expected", tok, description)
}

func (p *Parser) atLineEnd() bool {
	return p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF)
}

// Statements.

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.SKIP:
		return &ast.SkipStatement{Token: p.curToken}
	case token.VAR:
		return p.parseVarStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.FROM:
		return p.parseFromStatement()
	case token.DO, token.UNDO:
		return p.parseCallStatement()
	case token.IDENT:
		return p.parseUpdateStatement()
	}
	p.throwExpected(&p.curToken, "statement")
	return nil
}

// Starts on the newline before the block, and finishes on the token which ends the block,
// which the caller must check is the one it wants.
func (p *Parser) parseBlock() []ast.Statement {
	block := []ast.Statement{}
	for {
		p.NextToken()
		for p.curTokenIs(token.NEWLINE) {
			p.NextToken()
		}
		if token.TokenTypeIsTerminator(p.curToken.Type) {
			return block
		}
		stmt := p.parseStatement()
		if p.ErrorsExist() {
			return nil
		}
		block = append(block, stmt)
		if p.peekTokenIs(token.NEWLINE) {
			p.NextToken()
			continue
		}
		if !token.TokenTypeIsTerminator(p.peekToken.Type) {
			p.throwExpected(&p.peekToken, "newline")
			return nil
		}
	}
}

func (p *Parser) parseVarStatement() ast.Statement {
	stmt := &ast.VarStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT, "variable name") {
		return nil
	}
	stmt.Name = p.curToken.Literal
	if p.peekTokenIs(token.COLON) {
		p.NextToken()
		if !p.expectPeek(token.IDENT, "type name") {
			return nil
		}
		stmt.Type = p.curToken.Literal
	}
	if !p.expectPeek(token.ASSIGN, "':='") {
		return nil
	}
	p.NextToken()
	stmt.Init = p.parseExpression(LOWEST)
	if p.ErrorsExist() || !p.expectPeek(token.NEWLINE, "newline") {
		return nil
	}
	stmt.Body = p.parseBlock()
	if p.ErrorsExist() {
		return nil
	}
	if !p.curTokenIs(token.DROP) {
		p.throwExpected(&p.curToken, "'drop'")
		return nil
	}
	if !p.expectPeek(token.IDENT, "variable name") {
		return nil
	}
	if p.curToken.Literal != stmt.Name {
		p.Throw("parse/var/name", &p.curToken, stmt.Name)
		return nil
	}
	if !p.expectPeek(token.ASSIGN, "':='") {
		return nil
	}
	p.NextToken()
	stmt.Dest = p.parseExpression(LOWEST)
	if p.ErrorsExist() {
		return nil
	}
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}
	p.NextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if p.ErrorsExist() || !p.expectPeek(token.NEWLINE, "newline") {
		return nil
	}
	stmt.Then = p.parseBlock()
	if p.ErrorsExist() {
		return nil
	}
	if p.curTokenIs(token.ELSE) {
		elseToken := p.curToken
		switch {
		case p.peekTokenIs(token.NEWLINE):
			p.NextToken()
			stmt.Else = p.parseBlock()
			if p.ErrorsExist() {
				return nil
			}
			if len(stmt.Else) == 0 {
				p.Throw("parse/else/empty", &elseToken)
				return nil
			}
		case p.peekTokenIs(token.IF):
			p.NextToken()
			nested := p.parseIfStatement()
			if p.ErrorsExist() {
				return nil
			}
			stmt.Else = []ast.Statement{nested}
			for p.peekTokenIs(token.NEWLINE) {
				p.NextToken()
			}
			p.NextToken()
		default:
			p.throwExpected(&p.peekToken, "newline or 'if'")
			return nil
		}
	}
	if !p.curTokenIs(token.FI) {
		if stmt.Else == nil {
			p.throwExpected(&p.curToken, "'else' or 'fi'")
		} else {
			p.throwExpected(&p.curToken, "'fi'")
		}
		return nil
	}
	if p.atLineEnd() || token.TokenTypeIsTerminator(p.peekToken.Type) {
		stmt.Assert = stmt.Test
		return stmt
	}
	p.NextToken()
	stmt.Assert = p.parseExpression(LOWEST)
	if p.ErrorsExist() {
		return nil
	}
	return stmt
}

func (p *Parser) parseFromStatement() ast.Statement {
	stmt := &ast.FromStatement{Token: p.curToken}
	p.NextToken()
	stmt.Assert = p.parseExpression(LOWEST)
	if p.ErrorsExist() || !p.expectPeek(token.NEWLINE, "newline") {
		return nil
	}
	stmt.Forward = p.parseBlock()
	if p.ErrorsExist() {
		return nil
	}
	if !p.curTokenIs(token.UNTIL) {
		p.throwExpected(&p.curToken, "'until'")
		return nil
	}
	p.NextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if p.ErrorsExist() || !p.expectPeek(token.NEWLINE, "newline") {
		return nil
	}
	stmt.Backward = p.parseBlock()
	if p.ErrorsExist() {
		return nil
	}
	if !p.curTokenIs(token.LOOP) {
		p.throwExpected(&p.curToken, "'loop'")
		return nil
	}
	if len(stmt.Forward) == 0 && len(stmt.Backward) == 0 {
		p.Throw("parse/from/empty", &stmt.Token)
		return nil
	}
	return stmt
}

func (p *Parser) parseCallStatement() ast.Statement {
	stmt := &ast.CallStatement{Token: p.curToken, Undo: p.curTokenIs(token.UNDO)}
	if !p.expectPeek(token.IDENT, "procedure name") {
		return nil
	}
	stmt.Name = p.curToken.Literal
	if p.atLineEnd() {
		return stmt
	}
	if !p.expectPeek(token.COLON, "':' or newline") {
		return nil
	}
	p.NextToken()
	stmt.Args = p.parseExpressionList()
	if p.ErrorsExist() {
		return nil
	}
	return stmt
}

func (p *Parser) parseUpdateStatement() ast.Statement {
	target := p.parseLValue()
	if p.ErrorsExist() {
		return nil
	}
	if p.peekTokenIs(token.SWAP) {
		p.NextToken()
		stmt := &ast.SwapStatement{Token: p.curToken, Left: target}
		if !p.expectPeek(token.IDENT, "variable") {
			return nil
		}
		stmt.Right = p.parseLValue()
		if p.ErrorsExist() {
			return nil
		}
		return stmt
	}
	op, ok := updateOperators[p.peekToken.Type]
	if !ok {
		p.throwExpected(&p.peekToken, UPDATE_OPERATORS)
		return nil
	}
	p.NextToken()
	stmt := &ast.UpdateStatement{Token: p.curToken, Operator: op, Target: target}
	p.NextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if p.ErrorsExist() {
		return nil
	}
	return stmt
}

func (p *Parser) parseLValue() *ast.LValue {
	lv := &ast.LValue{Token: p.curToken, Name: p.curToken.Literal}
	for {
		switch {
		case p.peekTokenIs(token.BANG):
			p.NextToken()
			lv.Ops = append(lv.Ops, &ast.Deref{Token: p.curToken, Kind: ast.DIRECT})
		case p.peekTokenIs(token.PERIOD):
			p.NextToken()
			switch {
			case p.peekTokenIs(token.LPAREN):
				p.NextToken()
				op := &ast.Deref{Token: p.curToken, Kind: ast.INDEX}
				p.NextToken()
				op.Index = p.parseExpression(LOWEST)
				if p.ErrorsExist() || !p.expectPeek(token.RPAREN, "')'") {
					return nil
				}
				lv.Ops = append(lv.Ops, op)
			case p.peekTokenIs(token.IDENT):
				p.NextToken()
				lv.Ops = append(lv.Ops, &ast.Deref{Token: p.curToken, Kind: ast.FIELD, Name: p.curToken.Literal})
			default:
				p.throwExpected(&p.peekToken, "field name or '('")
				return nil
			}
		default:
			return lv
		}
	}
}

// Items.

func (p *Parser) parseProcedure() *ast.Procedure {
	proc := &ast.Procedure{Token: p.curToken, Params: []ast.Param{}}
	if !p.expectPeek(token.IDENT, "procedure name") {
		return nil
	}
	proc.Name = p.curToken.Literal
	if !p.expectPeek(token.LPAREN, "'('") {
		return nil
	}
	if p.peekTokenIs(token.RPAREN) {
		p.NextToken()
	} else {
		for {
			if !p.expectPeek(token.IDENT, "parameter name") {
				return nil
			}
			param := ast.Param{Name: p.curToken.Literal}
			if p.peekTokenIs(token.COLON) {
				p.NextToken()
				if !p.expectPeek(token.IDENT, "type name") {
					return nil
				}
				param.Type = p.curToken.Literal
			}
			proc.Params = append(proc.Params, param)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.NextToken()
		}
		if !p.expectPeek(token.RPAREN, "',' or ')'") {
			return nil
		}
	}
	if !p.expectPeek(token.NEWLINE, "newline") {
		return nil
	}
	proc.Body = p.parseBlock()
	if p.ErrorsExist() {
		return nil
	}
	if !p.curTokenIs(token.END) {
		p.throwExpected(&p.curToken, "'end'")
		return nil
	}
	return proc
}

// Expressions.

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	var left ast.Expression
	switch p.curToken.Type {
	case token.INT:
		left = p.parseIntegerLiteral()
	case token.UINT:
		left = p.parseUIntLiteral()
	case token.CHAR:
		left = &ast.CharLiteral{Token: p.curToken, Value: []rune(p.curToken.Literal)[0]}
	case token.STRING:
		left = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	case token.IDENT:
		left = p.parseIdentifier()
	case token.LBRACK:
		left = p.parseArrayLiteral()
	case token.LPAREN:
		left = p.parseGroupedExpression()
	case token.FN:
		left = p.parseFnLiteral()
	case token.MINUS, token.NOT, token.TILDE:
		left = p.parsePrefixExpression()
	default:
		p.throwExpected(&p.curToken, "expression")
		return nil
	}
	if p.ErrorsExist() {
		return nil
	}
	for precedence < p.peekPrecedence() {
		p.NextToken()
		if p.curTokenIs(token.LPAREN) {
			left = p.parseApplyExpression(left)
		} else {
			left = p.parseInfixExpression(left)
		}
		if p.ErrorsExist() {
			return nil
		}
	}
	return left
}

// The literals nil, true and false are identifiers rather than keywords, so that they
// can't be used as variable names in the first place.
func (p *Parser) parseIdentifier() ast.Expression {
	switch p.curToken.Literal {
	case "nil":
		return &ast.NilLiteral{Token: p.curToken}
	case "true":
		return &ast.BooleanLiteral{Token: p.curToken, Value: true}
	case "false":
		return &ast.BooleanLiteral{Token: p.curToken, Value: false}
	}
	lv := p.parseLValue()
	if lv == nil {
		return nil
	}
	return lv
}

// The only integer literal which needs its minus sign to fit in an int.
const MIN_INT_MAGNITUDE = "9223372036854775808"

func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, e := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if e != nil {
		p.Throw("lex/num", &p.curToken)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseUIntLiteral() ast.Expression {
	value, e := strconv.ParseUint(p.curToken.Literal, 10, 64)
	if e != nil {
		p.Throw("lex/num", &p.curToken)
		return nil
	}
	return &ast.UIntLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	expression := &ast.ArrayLiteral{Token: p.curToken, Elements: []ast.Expression{}}
	if p.peekTokenIs(token.RBRACK) {
		p.NextToken()
		return expression
	}
	p.NextToken()
	expression.Elements = p.parseExpressionList()
	if p.ErrorsExist() || !p.expectPeek(token.RBRACK, "',' or ']'") {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.NextToken()
	exp := p.parseExpression(LOWEST)
	if p.ErrorsExist() || !p.expectPeek(token.RPAREN, "')'") {
		return nil
	}
	return exp
}

func (p *Parser) parseFnLiteral() ast.Expression {
	expression := &ast.FnLiteral{Token: p.curToken, Params: []string{}}
	if !p.expectPeek(token.LPAREN, "'('") {
		return nil
	}
	if p.peekTokenIs(token.RPAREN) {
		p.NextToken()
	} else {
		for {
			if !p.expectPeek(token.IDENT, "parameter name") {
				return nil
			}
			expression.Params = append(expression.Params, p.curToken.Literal)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.NextToken()
		}
		if !p.expectPeek(token.RPAREN, "',' or ')'") {
			return nil
		}
	}
	if !p.expectPeek(token.COLON, "':'") {
		return nil
	}
	p.NextToken()
	expression.Body = p.parseExpression(LOWEST)
	if p.ErrorsExist() {
		return nil
	}
	return expression
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	if p.curToken.Literal == "-" && p.peekTokenIs(token.INT) && p.peekToken.Literal == MIN_INT_MAGNITUDE {
		tok := p.curToken
		p.NextToken()
		return &ast.IntegerLiteral{Token: tok, Value: math.MinInt64}
	}
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}
	p.NextToken()
	expression.Right = p.parseExpression(PREFIX)
	if p.ErrorsExist() {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.NextToken()
	expression.Right = p.parseExpression(precedence)
	if p.ErrorsExist() {
		return nil
	}
	return expression
}

func (p *Parser) parseApplyExpression(left ast.Expression) ast.Expression {
	expression := &ast.ApplyExpression{Token: p.curToken, Fn: left, Args: []ast.Expression{}}
	if p.peekTokenIs(token.RPAREN) {
		p.NextToken()
		return expression
	}
	p.NextToken()
	expression.Args = p.parseExpressionList()
	if p.ErrorsExist() || !p.expectPeek(token.RPAREN, "',' or ')'") {
		return nil
	}
	return expression
}

// Parses one or more comma-separated expressions, starting on the first token of the first.
func (p *Parser) parseExpressionList() []ast.Expression {
	result := []ast.Expression{}
	for {
		exp := p.parseExpression(LOWEST)
		if p.ErrorsExist() {
			return nil
		}
		result = append(result, exp)
		if !p.peekTokenIs(token.COMMA) {
			return result
		}
		p.NextToken()
		p.NextToken()
	}
}

// Errors.

// The token is copied, since it may be one of the parser's own, which will change.
func (p *Parser) Throw(errorID string, tok *token.Token, args ...any) {
	copied := *tok
	p.Errors = err.Throw(errorID, p.Errors, &copied, args...)
}

func (p *Parser) ErrorsExist() bool {
	return len(p.Errors) > 0
}

func (p *Parser) ReturnErrors() string {
	return err.GetList(p.Errors)
}

func (p *Parser) ClearErrors() {
	p.Errors = []*err.Error{}
}

// The first error, as an error, or nil if there isn't one.
func (p *Parser) Err() error {
	if len(p.Errors) == 0 {
		return nil
	}
	return p.Errors[0]
}

func (p *Parser) dump(node fmt.Stringer) {
	if settings.SHOW_PARSER {
		fmt.Printf("Parser returns: %v\n\n", node.String())
	}
}
