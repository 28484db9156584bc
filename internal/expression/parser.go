package expression

import "strings"

// Parser turns a token stream into an AST by precedence climbing.
// A Parser is single-use; create one per expression.
type Parser struct {
	tokens  []PositionedToken
	pos     int
	depth   int // nesting inside parentheses and call arguments
	lastEnd int // end offset of the last consumed token
}

// NewParser creates a new Parser over tokens produced by Tokenize.
func NewParser(tokens []PositionedToken) *Parser {
	return &Parser{tokens: tokens}
}

// cur returns the current token; past the end it keeps returning EOF.
func (p *Parser) cur() PositionedToken {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	if n := len(p.tokens); n > 0 {
		return PositionedToken{Token: Token{Type: TokenEOF}, Pos: SourcePosition{Offset: p.tokens[n-1].Pos.End()}}
	}
	return PositionedToken{Token: Token{Type: TokenEOF}}
}

// nextToken consumes the current token.
func (p *Parser) nextToken() PositionedToken {
	tok := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	p.lastEnd = tok.Pos.End()
	return tok
}

// Parse parses the whole stream and returns the root node.
func (p *Parser) Parse() (Node, error) {
	if p.cur().Type == TokenEOF {
		return nil, newEmptyExpressionError()
	}

	node, err := p.parseExpression(precedenceLowest)
	if err != nil {
		return nil, err
	}

	// Ensure we've consumed all tokens
	switch tok := p.cur(); tok.Type {
	case TokenEOF:
		return node, nil
	case TokenRParen:
		return nil, newUnmatchedParenError(tok.Pos.Offset)
	default:
		return nil, NewParseError(tok.Pos, "end of expression", tok.String())
	}
}

// parseExpression parses one prefix term followed by every infix
// continuation whose precedence is at least minPrecedence.
func (p *Parser) parseExpression(minPrecedence int) (Node, error) {
	start := p.cur().Pos.Offset
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.cur()

		var op BinaryOperator
		implicit := false
		switch {
		case tok.Type == TokenOperator:
			op = tok.Operator
		case tok.startsPrefix():
			// 2x, 2(x), (a)(b): multiply without consuming a token
			op = OpMultiply
			implicit = true
		default:
			return left, nil
		}

		prec := op.Precedence()
		if prec < minPrecedence {
			return left, nil
		}

		if op == OpEquals && (p.depth > 0 || IsEquation(left)) {
			return nil, NewParseError(tok.Pos, "arithmetic operator (an equation must be at the top level)", tok.String())
		}

		if !implicit {
			p.nextToken()
		}

		next := prec + 1
		if op.RightAssociative() {
			next = prec
		}
		right, err := p.parseExpression(next)
		if err != nil {
			return nil, err
		}

		left = &BinaryNode{
			Left:     left,
			Operator: op,
			Right:    right,
			Implicit: implicit,
			Pos:      SourcePosition{Offset: start, Length: p.lastEnd - start},
		}
	}
}

// parsePrefix parses literals, prefix operators, calls and parenthesized groups.
func (p *Parser) parsePrefix() (Node, error) {
	tok := p.cur()

	switch tok.Type {
	case TokenNumber:
		p.nextToken()
		return &NumberNode{Value: tok.Value, Pos: tok.Pos}, nil

	case TokenConstant:
		p.nextToken()
		return &ConstantNode{Constant: tok.Constant, Pos: tok.Pos}, nil

	case TokenVariable:
		p.nextToken()
		return &VariableNode{Name: tok.Literal, Pos: tok.Pos}, nil

	case TokenOperator:
		if tok.Operator != OpAdd && tok.Operator != OpSubtract {
			return nil, NewParseError(tok.Pos, "expression", tok.String())
		}
		p.nextToken()
		operand, err := p.parseExpression(precedencePrefix)
		if err != nil {
			return nil, err
		}
		op := OpPositive
		if tok.Operator == OpSubtract {
			op = OpNegate
		}
		return &UnaryNode{
			Operator: op,
			Operand:  operand,
			Pos:      SourcePosition{Offset: tok.Pos.Offset, Length: p.lastEnd - tok.Pos.Offset},
		}, nil

	case TokenLParen:
		p.nextToken() // consume '('
		p.depth++
		inner, err := p.parseExpression(precedenceLowest)
		p.depth--
		if err != nil {
			return nil, err
		}
		if err := p.expectClose(tok); err != nil {
			return nil, err
		}
		return inner, nil

	case TokenFunction:
		return p.parseFunctionCall()

	case TokenSymbolicFunction:
		return p.parseSymbolicCall()

	case TokenEOF:
		return nil, newUnexpectedEndError(tok.Pos.Offset, "expression")

	default:
		return nil, NewParseError(tok.Pos, "expression", tok.String())
	}
}

// parseFunctionCall parses name '(' argument ')'.
func (p *Parser) parseFunctionCall() (Node, error) {
	name := p.nextToken()
	open, err := p.expectOpen(name)
	if err != nil {
		return nil, err
	}

	p.depth++
	arg, err := p.parseExpression(precedenceLowest)
	p.depth--
	if err != nil {
		return nil, err
	}
	if err := p.expectClose(open); err != nil {
		return nil, err
	}

	return &FunctionNode{
		Function: name.Function,
		Argument: arg,
		Pos:      SourcePosition{Offset: name.Pos.Offset, Length: p.lastEnd - name.Pos.Offset},
	}, nil
}

// parseSymbolicCall parses name '(' argument {',' argument} ')'.
func (p *Parser) parseSymbolicCall() (Node, error) {
	name := p.nextToken()
	open, err := p.expectOpen(name)
	if err != nil {
		return nil, err
	}

	var args []Node
	p.depth++
	for {
		arg, err := p.parseExpression(precedenceLowest)
		if err != nil {
			p.depth--
			return nil, err
		}
		args = append(args, arg)
		if p.cur().Type != TokenComma {
			break
		}
		p.nextToken() // consume ','
	}
	p.depth--

	if err := p.expectClose(open); err != nil {
		return nil, err
	}

	return &SymbolicFunctionNode{
		Name:      strings.ToLower(name.Literal),
		Arguments: args,
		Pos:       SourcePosition{Offset: name.Pos.Offset, Length: p.lastEnd - name.Pos.Offset},
	}, nil
}

func (p *Parser) expectOpen(name PositionedToken) (PositionedToken, error) {
	tok := p.cur()
	switch tok.Type {
	case TokenLParen:
		return p.nextToken(), nil
	case TokenEOF:
		return tok, newUnexpectedEndError(tok.Pos.Offset, "'(' after "+name.Literal)
	default:
		return tok, NewParseError(tok.Pos, "'(' after "+name.Literal, tok.String())
	}
}

// expectClose consumes the ')' matching open.
func (p *Parser) expectClose(open PositionedToken) error {
	tok := p.cur()
	switch tok.Type {
	case TokenRParen:
		p.nextToken()
		return nil
	case TokenEOF:
		return newUnmatchedParenError(open.Pos.Offset)
	default:
		return NewParseError(tok.Pos, "')'", tok.String())
	}
}

// ParseTokens parses an already tokenized expression.
func ParseTokens(tokens []PositionedToken) (Node, error) {
	return NewParser(tokens).Parse()
}

// Parse is a convenience function to tokenize and parse an expression string.
func Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, newEmptyExpressionError()
	}
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}
