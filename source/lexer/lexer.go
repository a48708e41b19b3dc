package lexer

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/reverie-lang/reverie/source/err"
	"github.com/reverie-lang/reverie/source/settings"
	"github.com/reverie-lang/reverie/source/token"
)

type lexer struct {
	runes  *RuneSupplier
	tstart int // the column at the start of a token
	lineNo int
	Ers    err.Errors
	source string
}

func NewLexer(source, input string) *lexer {
	return &lexer{
		runes:  NewRuneSupplier([]rune(input)),
		Ers:    []*err.Error{},
		source: source,
		lineNo: 1,
	}
}

// The lexer wrapped in the standard chain of relexers: this is what the parser wants.
type Relexer struct {
	TokenSupplier
	lexer *lexer
}

func NewRelexer(source, input string) *Relexer {
	l := NewLexer(source, input)
	return &Relexer{relex(l), l}
}

// Errors found by the lexer. Each of them also appears in the token stream as an ILLEGAL
// token, so the parser can say where it was.
func (rl *Relexer) Errors() err.Errors {
	return rl.lexer.Ers
}

// The lexer is the head of the relexing pipeline.
func (l *lexer) NextToken() token.Token {
	l.skipWhitespace()
	l.lineNo, l.tstart = l.runes.Position()
	switch l.runes.CurrentRune() {
	case 0:
		return l.MakeToken(token.EOF, "EOF")
	case '\n':
		return l.NewToken(token.NEWLINE, "\n")
	case ':':
		if l.runes.PeekRune() == '=' {
			l.runes.Next()
			return l.NewToken(token.ASSIGN, ":=")
		}
		return l.NewToken(token.COLON, ":")
	case '+':
		if l.runes.PeekRune() == '=' {
			l.runes.Next()
			return l.NewToken(token.ADD, "+=")
		}
		return l.NewToken(token.PLUS, "+")
	case '-':
		if l.runes.PeekRune() == '=' {
			l.runes.Next()
			return l.NewToken(token.SUB, "-=")
		}
		return l.NewToken(token.MINUS, "-")
	case '<':
		switch l.runes.PeekRune() {
		case '<':
			l.runes.Next()
			if l.runes.PeekRune() == '=' {
				l.runes.Next()
				return l.NewToken(token.ROL, "<<=")
			}
			return l.Throw("lex/op")
		case '>':
			l.runes.Next()
			return l.NewToken(token.SWAP, "<>")
		case '=':
			l.runes.Next()
			return l.NewToken(token.LT_EQ, "<=")
		}
		return l.NewToken(token.LT, "<")
	case '>':
		switch l.runes.PeekRune() {
		case '>':
			l.runes.Next()
			if l.runes.PeekRune() == '=' {
				l.runes.Next()
				return l.NewToken(token.ROR, ">>=")
			}
			return l.Throw("lex/op")
		case '=':
			l.runes.Next()
			return l.NewToken(token.GT_EQ, ">=")
		}
		return l.NewToken(token.GT, ">")
	case '!':
		if l.runes.PeekRune() == '=' {
			l.runes.Next()
			return l.NewToken(token.NOT_EQ, "!=")
		}
		return l.NewToken(token.BANG, "!")
	case '/':
		if l.runes.PeekRune() == '/' {
			l.runes.Next()
			return l.MakeToken(token.COMMENT, l.runes.ReadComment())
		}
		return l.NewToken(token.SLASH, "/")
	case '=':
		return l.NewToken(token.EQ, "=")
	case '*':
		return l.NewToken(token.ASTERISK, "*")
	case '%':
		return l.NewToken(token.PERCENT, "%")
	case '&':
		return l.NewToken(token.AMP, "&")
	case '|':
		return l.NewToken(token.PIPE, "|")
	case '^':
		return l.NewToken(token.CARET, "^")
	case '~':
		return l.NewToken(token.TILDE, "~")
	case ',':
		return l.NewToken(token.COMMA, ",")
	case '.':
		return l.NewToken(token.PERIOD, ".")
	case '(':
		return l.NewToken(token.LPAREN, "(")
	case ')':
		return l.NewToken(token.RPAREN, ")")
	case '[':
		return l.NewToken(token.LBRACK, "[")
	case ']':
		return l.NewToken(token.RBRACK, "]")
	case '"':
		s, ok := l.runes.ReadFormattedString()
		if !ok {
			return l.Throw("lex/string")
		}
		return l.NewToken(token.STRING, s)
	case '\'':
		r, ok := l.runes.ReadRuneLiteral()
		if !ok {
			return l.Throw("lex/char")
		}
		return l.NewToken(token.CHAR, r)
	}
	if IsDigit(l.runes.CurrentRune()) {
		return l.readNumber()
	}
	if IsLetter(l.runes.CurrentRune()) || IsUnderscore(l.runes.CurrentRune()) {
		text := l.runes.ReadIdentifier()
		return l.NewToken(token.LookupIdent(text), text)
	}
	return l.Throw("lex/ill")
}

// Integers may be written in decimal, or in hex or binary with a 0x or 0b prefix, and
// a trailing u makes them unsigned. The literal of the token is always in decimal.
func (l *lexer) readNumber() token.Token {
	base := 10
	if l.runes.CurrentRune() == '0' && (l.runes.PeekRune() == 'x' || l.runes.PeekRune() == 'b') {
		base = 16
		if l.runes.PeekRune() == 'b' {
			base = 2
		}
		l.runes.Next()
		l.runes.Next()
	}
	numString := l.runes.ReadDigits(base)
	unsigned := false
	if l.runes.PeekRune() == 'u' {
		unsigned = true
		l.runes.Next()
	}
	if IsLetter(l.runes.PeekRune()) || IsDigit(l.runes.PeekRune()) || IsUnderscore(l.runes.PeekRune()) {
		l.runes.Next()
		for IsLetter(l.runes.PeekRune()) || IsDigit(l.runes.PeekRune()) {
			l.runes.Next()
		}
		return l.Throw("lex/num")
	}
	if unsigned {
		num, e := strconv.ParseUint(numString, base, 64)
		if e != nil {
			return l.Throw("lex/num")
		}
		return l.NewToken(token.UINT, strconv.FormatUint(num, 10))
	}
	// One more than the largest int is let through, since it may follow a minus sign.
	num, e := strconv.ParseUint(numString, base, 64)
	if e != nil || num > 1<<63 {
		return l.Throw("lex/num")
	}
	return l.NewToken(token.INT, strconv.FormatUint(num, 10))
}

func (l *lexer) skipWhitespace() {
	for l.runes.CurrentRune() == ' ' || l.runes.CurrentRune() == '\t' || l.runes.CurrentRune() == '\r' {
		l.runes.Next()
	}
}

// Reads digits from the current rune onwards. If there aren't any, this returns the empty
// string, which then fails to parse as a number.
func (runes *RuneSupplier) ReadDigits(base int) string {
	result := ""
	if !isDigitIn(runes.CurrentRune(), base) {
		return result
	}
	result = string(runes.CurrentRune())
	for isDigitIn(runes.PeekRune(), base) {
		runes.Next()
		result = result + string(runes.CurrentRune())
	}
	return result
}

// Leaves us on the last character before the newline or the end of the input.
func (runes *RuneSupplier) ReadComment() string {
	result := ""
	for runes.PeekRune() != '\n' && runes.PeekRune() != 0 {
		runes.Next()
		result = result + string(runes.CurrentRune())
	}
	runes.Next()
	return result
}

func (runes *RuneSupplier) ReadRuneLiteral() (string, bool) {
	s, ok := runes.readQuoted('\'')
	if !ok || len([]rune(s)) != 1 {
		return s, false
	}
	return s, true
}

func (runes *RuneSupplier) ReadFormattedString() (string, bool) {
	return runes.readQuoted('"')
}

// Leaves us on the closing quote.
func (runes *RuneSupplier) readQuoted(quote rune) (string, bool) {
	escape := false
	result := ""
	for {
		runes.Next()
		if (runes.CurrentRune() == quote && !escape) || runes.CurrentRune() == 0 || runes.CurrentRune() == '\n' {
			break
		}
		if runes.CurrentRune() == '\\' && !escape {
			escape = true
			continue
		}
		charToAdd := runes.CurrentRune()
		if escape {
			escape = false
			switch runes.CurrentRune() {
			case 'n':
				charToAdd = '\n'
			case 'r':
				charToAdd = '\r'
			case 't':
				charToAdd = '\t'
			case '0':
				charToAdd = 0
			case 'e':
				charToAdd = '\033'
			}
		}
		result = result + string(charToAdd)
	}
	return result, runes.CurrentRune() == quote
}

func (runes *RuneSupplier) ReadIdentifier() string {
	result := string(runes.CurrentRune()) // i.e. the character that suggested this was an identifier.
	for IsLetter(runes.PeekRune()) || IsDigit(runes.PeekRune()) || IsUnderscore(runes.PeekRune()) {
		runes.Next()
		result = result + string(runes.CurrentRune())
	}
	return result
}

func IsLetter(ch rune) bool {
	return unicode.IsLetter(ch)
}

func IsUnderscore(ch rune) bool {
	return ch == '_'
}

func IsDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isDigitIn(ch rune, base int) bool {
	switch base {
	case 2:
		return ch == '0' || ch == '1'
	case 16:
		return IsDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
	}
	return IsDigit(ch)
}

func (l *lexer) NewToken(tokenType token.TokenType, st string) token.Token {
	l.runes.Next()
	return l.MakeToken(tokenType, st)
}

func (l *lexer) MakeToken(tokenType token.TokenType, st string) token.Token {
	if settings.SHOW_LEXER {
		fmt.Println(tokenType, st)
	}
	_, chNo := l.runes.Position()
	return token.Token{Type: tokenType, Literal: st, Source: l.source, Line: l.lineNo, ChStart: l.tstart, ChEnd: chNo}
}

// We move past the offending rune unless it's a newline, which the parser still needs.
func (l *lexer) Throw(errorID string, args ...any) token.Token {
	if l.runes.CurrentRune() != '\n' {
		l.runes.Next()
	}
	tok := l.MakeToken(token.ILLEGAL, errorID)
	l.Ers = err.Throw(errorID, l.Ers, &tok, args...)
	return tok
}
