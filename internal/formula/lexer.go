package formula

import (
	"fmt"
	"strings"
)

// TokenType identifies the kind of a lexed token.
type TokenType int

// Token types.
const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenRef
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenLeftParen
	TokenRightParen
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of expression"
	case TokenNumber:
		return "number"
	case TokenRef:
		return "reference"
	case TokenPlus:
		return "'+'"
	case TokenMinus:
		return "'-'"
	case TokenStar:
		return "'*'"
	case TokenSlash:
		return "'/'"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Token is one lexeme with its byte offset in the normalized expression.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// maxRefLetters bounds the column part of a reference: A..ZZ.
const maxRefLetters = 2

// SyntaxError reports malformed expression text.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// Lex splits a normalized expression into tokens. The returned slice always
// ends with a TokenEOF.
func Lex(expr string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+':
			tokens = append(tokens, Token{Type: TokenPlus, Value: "+", Pos: i})
			i++
		case c == '-':
			tokens = append(tokens, Token{Type: TokenMinus, Value: "-", Pos: i})
			i++
		case c == '*':
			tokens = append(tokens, Token{Type: TokenStar, Value: "*", Pos: i})
			i++
		case c == '/':
			tokens = append(tokens, Token{Type: TokenSlash, Value: "/", Pos: i})
			i++
		case c == '(':
			tokens = append(tokens, Token{Type: TokenLeftParen, Value: "(", Pos: i})
			i++
		case c == ')':
			tokens = append(tokens, Token{Type: TokenRightParen, Value: ")", Pos: i})
			i++
		case isDigit(c) || c == '.':
			end, err := scanNumber(expr, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Type: TokenNumber, Value: expr[i:end], Pos: i})
			i = end
		case isLetter(c):
			end, err := scanRef(expr, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Type: TokenRef, Value: expr[i:end], Pos: i})
			i = end
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	tokens = append(tokens, Token{Type: TokenEOF, Pos: len(expr)})
	return tokens, nil
}

func scanNumber(s string, start int) (int, error) {
	i := start
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, &SyntaxError{Pos: start, Msg: "malformed number"}
	}
	if i < len(s) && (s[i] == '.' || isLetter(s[i])) {
		return 0, &SyntaxError{Pos: i, Msg: "malformed number"}
	}
	return i, nil
}

// scanRef reads either a plain reference ("AB12") or a sheet-qualified one
// ("Insumos!C4").
func scanRef(s string, start int) (int, error) {
	i := start
	for i < len(s) && (isLetter(s[i]) || s[i] == '_') {
		i++
	}
	if i < len(s) && s[i] == '!' {
		return scanPlainRef(s, i+1)
	}
	return scanPlainRef(s, start)
}

func scanPlainRef(s string, start int) (int, error) {
	i := start
	for i < len(s) && isUpper(s[i]) {
		i++
	}
	letters := i - start
	digitsStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if letters == 0 || letters > maxRefLetters || i == digitsStart {
		return 0, &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid cell reference near %q", tail(s, start))}
	}
	if i < len(s) && (isLetter(s[i]) || s[i] == '.' || s[i] == '_') {
		return 0, &SyntaxError{Pos: i, Msg: fmt.Sprintf("invalid cell reference near %q", tail(s, start))}
	}
	return i, nil
}

func tail(s string, from int) string {
	const maxTail = 8
	rest := s[from:]
	if len(rest) > maxTail {
		rest = rest[:maxTail]
	}
	return strings.TrimSpace(rest)
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isLetter(c byte) bool { return isUpper(c) || (c >= 'a' && c <= 'z') }
