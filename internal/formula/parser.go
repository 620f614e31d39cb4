package formula

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is a parsed expression.
type Node interface {
	eval(ev *evaluation) float64
	String() string
}

type numberNode struct {
	value float64
}

type refNode struct {
	ref Ref
}

type unaryNode struct {
	negate  bool
	operand Node
}

type binaryNode struct {
	op          TokenType
	left, right Node
}

func (n *numberNode) String() string { return strconv.FormatFloat(n.value, 'f', -1, 64) }
func (n *refNode) String() string    { return n.ref.String() }

func (n *unaryNode) String() string {
	if n.negate {
		return "(-" + n.operand.String() + ")"
	}
	return n.operand.String()
}

func (n *binaryNode) String() string {
	var op string
	switch n.op {
	case TokenPlus:
		op = "+"
	case TokenMinus:
		op = "-"
	case TokenStar:
		op = "*"
	case TokenSlash:
		op = "/"
	}
	return "(" + n.left.String() + " " + op + " " + n.right.String() + ")"
}

// Ref is a cell reference, optionally qualified by a sheet alias.
type Ref struct {
	// Sheet is the qualifier before '!', empty for same-sheet references.
	Sheet string
	Name  string
}

// ParseRef splits "Sheet!A1" or "A1" into a Ref.
func ParseRef(s string) Ref {
	if sheet, name, ok := strings.Cut(s, "!"); ok {
		return Ref{Sheet: sheet, Name: name}
	}
	return Ref{Name: s}
}

func (r Ref) String() string {
	if r.Sheet == "" {
		return r.Name
	}
	return r.Sheet + "!" + r.Name
}

// Parser is a recursive-descent parser over + - * / ( ), unary sign,
// numeric literals and cell references.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse normalizes and parses expr.
func Parse(expr string) (Node, error) {
	tokens, err := Lex(Normalize(expr))
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	node, err := p.parseAddition()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s", tok.Type)}
	}
	return node, nil
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

// parseAddition handles + and -.
func (p *Parser) parseAddition() (Node, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().Type
		if op != TokenPlus && op != TokenMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

// parseMultiplication handles * and /.
func (p *Parser) parseMultiplication() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().Type
		if op != TokenStar && op != TokenSlash {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *Parser) parseUnary() (Node, error) {
	switch p.peek().Type {
	case TokenMinus:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{negate: true, operand: operand}, nil
	case TokenPlus:
		p.next()
		return p.parseUnary()
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.Type {
	case TokenNumber:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("malformed number %q", tok.Value)}
		}
		return &numberNode{value: v}, nil
	case TokenRef:
		return &refNode{ref: ParseRef(tok.Value)}, nil
	case TokenLeftParen:
		inner, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Type != TokenRightParen {
			return nil, &SyntaxError{Pos: closing.Pos, Msg: "missing ')'"}
		}
		return inner, nil
	default:
		return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s", tok.Type)}
	}
}
