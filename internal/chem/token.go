package chem

// TokenType represents the type of a formula token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenNumber // leading stoichiometric coefficient
	TokenName   // compound name

	TokenPlus  // +
	TokenYield // ===
)

// yieldLiteral separates reactants from products.
const yieldLiteral = "==="

// String returns the string representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenNumber:
		return "NUMBER"
	case TokenName:
		return "NAME"
	case TokenPlus:
		return "+"
	case TokenYield:
		return "==="
	default:
		return "UNKNOWN"
	}
}

// Token is a lexical token of a formula.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // byte offset in the lexer input
}
