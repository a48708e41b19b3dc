package lexer

import (
	"fmt"

	"github.com/reverie-lang/reverie/source/token"
)

// The parser gets its tokens from a TokenSupplier: either the lexer followed by a pipeline
// of relexers, or a `TokenizedCodeChunk`.
type TokenSupplier interface{ NextToken() token.Token }

// Dumps what's left in a `TokenSupplier` into a string.
func String(t TokenSupplier) string {
	result := ""
	for tok := t.NextToken(); tok.Type != token.EOF; tok = t.NextToken() {
		result = result + fmt.Sprintf("%+v\n", tok)
	}
	return result
}

// Each relexer tidies up the stream in one small way. It looks at as many tokens of its
// input as it likes, consumes some of them, and emits zero or more tokens.
type relexer interface {
	relex(in *lookahead) []token.Token
}

func relex(l *lexer) TokenSupplier {
	return pipeline(l, &removeComments{}, &removeRedundantNewlines{})
}

func pipeline(ts TokenSupplier, relexers ...relexer) TokenSupplier {
	for _, rl := range relexers {
		ts = &stage{rl: rl, in: &lookahead{in: ts}}
	}
	return ts
}

// A buffered view of a token stream.
type lookahead struct {
	in  TokenSupplier
	buf []token.Token
}

// The ith token from here, where 0 is the current one.
func (la *lookahead) peek(i int) token.Token {
	for len(la.buf) <= i {
		la.buf = append(la.buf, la.in.NextToken())
	}
	return la.buf[i]
}

func (la *lookahead) skip() {
	la.peek(0)
	la.buf = la.buf[1:]
}

// Takes the current token, unless it's the EOF, which stays put so that asking again at
// the end gets the EOF again.
func (la *lookahead) take() token.Token {
	tok := la.peek(0)
	if tok.Type != token.EOF {
		la.skip()
	}
	return tok
}

type stage struct {
	rl  relexer
	in  *lookahead
	out []token.Token
}

func (s *stage) NextToken() token.Token {
	for len(s.out) == 0 {
		s.out = s.rl.relex(s.in)
	}
	tok := s.out[0]
	s.out = s.out[1:]
	return tok
}

type removeComments struct{}

func (r *removeComments) relex(in *lookahead) []token.Token {
	for in.peek(0).Type == token.COMMENT {
		in.skip()
	}
	return []token.Token{in.take()}
}

// Blank lines mean nothing, so a run of newlines is collapsed into one, and newlines at
// the very start of the input are dropped.
type removeRedundantNewlines struct {
	started bool
}

func (r *removeRedundantNewlines) relex(in *lookahead) []token.Token {
	if !r.started {
		for in.peek(0).Type == token.NEWLINE {
			in.skip()
		}
		r.started = true
	}
	tok := in.take()
	if tok.Type == token.NEWLINE {
		for in.peek(0).Type == token.NEWLINE {
			in.skip()
		}
	}
	return []token.Token{tok}
}
