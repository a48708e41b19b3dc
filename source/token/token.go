package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT   = "IDENT"   // add, foobar, x, y, ...
	INT     = "int"     // 1343456
	UINT    = "uint"    // 42u
	CHAR    = "char"    // 'q'
	STRING  = "string"  // "foo"
	COMMENT = "COMMENT" // // foo bar zort troz

	// Update operators
	ASSIGN = ":="
	ADD    = "+="
	SUB    = "-="
	ROL    = "<<="
	ROR    = ">>="
	SWAP   = "<>"

	// Expression operators
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"
	AMP      = "&"
	PIPE     = "|"
	CARET    = "^"
	TILDE    = "~"
	EQ       = "="
	NOT_EQ   = "!="
	LT       = "<"
	LT_EQ    = "<="
	GT       = ">"
	GT_EQ    = ">="

	COLON   = ":"
	COMMA   = ","
	PERIOD  = "."
	BANG    = "!"
	NEWLINE = "\n"

	LPAREN = "("
	RPAREN = ")"
	LBRACK = "["
	RBRACK = "]"

	// Keywords
	VAR   = "var"
	DROP  = "drop"
	IF    = "if"
	ELSE  = "else"
	FI    = "fi"
	FROM  = "from"
	UNTIL = "until"
	LOOP  = "loop"
	DO    = "do"
	UNDO  = "undo"
	FN    = "fn"
	SKIP  = "skip"
	PROC  = "proc"
	END   = "end"
	LET   = "let"
	AND   = "and"
	OR    = "or"
	NOT   = "not"
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	ChStart int
	ChEnd   int
	Source  string
}

var keywords = map[string]TokenType{
	"var":   VAR,
	"drop":  DROP,
	"if":    IF,
	"else":  ELSE,
	"fi":    FI,
	"from":  FROM,
	"until": UNTIL,
	"loop":  LOOP,
	"do":    DO,
	"undo":  UNDO,
	"fn":    FN,
	"skip":  SKIP,
	"proc":  PROC,
	"end":   END,
	"let":   LET,

	"and": AND,
	"or":  OR,
	"not": NOT,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Keywords lists the reserved words, for tab completion and the like.
func Keywords() []string {
	result := make([]string, 0, len(keywords))
	for k := range keywords {
		result = append(result, k)
	}
	return result
}

// Tokens which close a block of statements. The parser never tries to read one of these
// as the start of a statement.
func TokenTypeIsTerminator(t TokenType) bool {
	return t == DROP || t == ELSE || t == FI || t == UNTIL || t == LOOP || t == END || t == EOF
}
