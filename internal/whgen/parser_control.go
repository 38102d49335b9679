package whgen

import "strings"

// parseControlFlow dispatches on @if, @for and @when.
func (p *Parser) parseControlFlow() (Markup, error) {
	pos := p.position()
	switch {
	case p.consume("@if"):
		return p.parseIf(pos)
	case p.consume("@for"):
		return p.parseFor(pos)
	case p.consume("@when"):
		return p.parseWhen(pos)
	}
	return nil, p.errorf("unknown control flow directive")
}

// parseCondition parses "(cond)" and returns cond.
func (p *Parser) parseCondition() (string, error) {
	p.skipWhitespace()
	if err := p.expect('('); err != nil {
		return "", err
	}
	cond, err := p.parseUntil(')')
	if err != nil {
		return "", err
	}
	p.advance()
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return "", p.errorf("empty condition")
	}
	return cond, nil
}

// parseIf parses @if (c) { } [else if (c) { }]* [else { }]. Both "else"
// and "@else" are accepted.
func (p *Parser) parseIf(pos Position) (Markup, error) {
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseMarkupBlock()
	if err != nil {
		return nil, err
	}
	node := &IfElse{Condition: cond, Then: then, Position: pos}

	for {
		save := p.pos
		p.skipWhitespace()
		p.consume("@")
		if !p.consumeKeyword("else") {
			p.pos = save
			return node, nil
		}
		p.skipWhitespace()
		elseIfStart := p.pos
		p.consume("@")
		if p.consumeKeyword("if") {
			cond, err := p.parseCondition()
			if err != nil {
				return nil, err
			}
			body, err := p.parseMarkupBlock()
			if err != nil {
				return nil, err
			}
			node.ElseIfs = append(node.ElseIfs, &ElseIf{Condition: cond, Body: body})
			continue
		}
		p.pos = elseIfStart
		body, err := p.parseMarkupBlock()
		if err != nil {
			return nil, err
		}
		if body == nil {
			body = []Markup{}
		}
		node.Else = body
		return node, nil
	}
}

// parseFor parses @for ([index,] item in coll[, key = { k }]) { } [empty { }].
func (p *Parser) parseFor(pos Position) (Markup, error) {
	p.skipWhitespace()
	if err := p.expect('('); err != nil {
		return nil, err
	}
	p.skipWhitespace()
	first, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	node := &ForLoop{Item: first, Position: pos}
	if p.peek() == ',' {
		p.advance()
		p.skipWhitespace()
		second, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		node.Index, node.Item = first, second
		p.skipWhitespace()
	}
	if !p.consumeKeyword("in") {
		return nil, p.errorAtf(p.pos, "loops are written @for (item in items) { ... }",
			"expected 'in' after loop variable, found %s", p.describeCurrent())
	}
	p.skipWhitespace()

	start := p.pos
	depth := 0
	for !p.eof() {
		c := p.peek()
		if depth == 0 && (c == ',' || c == ')') {
			break
		}
		switch c {
		case '"', '\'':
			if err := p.skipQuoted(); err != nil {
				return nil, err
			}
			continue
		case '(', '[', '{':
			depth++
		case ']', '}':
			depth--
		case ')':
			depth--
		}
		p.pos++
	}
	node.Collection = strings.TrimSpace(p.src[start:p.pos])
	if node.Collection == "" {
		return nil, p.errorf("expected collection after 'in'")
	}

	if p.peek() == ',' {
		p.advance()
		p.skipWhitespace()
		if !p.consumeKeyword("key") {
			return nil, p.errorAtf(p.pos, "write key = { it.id }", "expected 'key' after comma in @for")
		}
		p.skipWhitespace()
		if err := p.expect('='); err != nil {
			return nil, err
		}
		p.skipWhitespace()
		key, err := p.captureDelimited('{', '}')
		if err != nil {
			return nil, err
		}
		node.Key = strings.TrimSpace(key)
		p.skipWhitespace()
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}

	body, err := p.parseMarkupBlock()
	if err != nil {
		return nil, err
	}
	node.Body = body

	save := p.pos
	p.skipWhitespace()
	if p.consumeKeyword("empty") {
		empty, err := p.parseMarkupBlock()
		if err != nil {
			return nil, err
		}
		if empty == nil {
			empty = []Markup{}
		}
		node.Empty = empty
	} else {
		p.pos = save
	}
	return node, nil
}

// parseWhen parses @when { cond -> <X/> ... else -> <Y/> }.
func (p *Parser) parseWhen(pos Position) (Markup, error) {
	p.skipWhitespace()
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	node := &When{Position: pos}

	for {
		p.skipWhitespace()
		if p.eof() {
			return nil, p.errorf("unexpected end of input in @when")
		}
		if p.peek() == '}' {
			p.advance()
			break
		}

		arm := &WhenArm{}
		if p.consumeKeyword("else") {
			arm.IsElse = true
		} else {
			start := p.pos
			for !p.eof() && !p.hasPrefix("->") {
				if p.peek() == '"' || p.peek() == '\'' {
					if err := p.skipQuoted(); err != nil {
						return nil, err
					}
					continue
				}
				p.pos++
			}
			arm.Condition = strings.TrimSpace(p.src[start:p.pos])
			if arm.Condition == "" {
				return nil, p.errorf("expected condition in @when arm")
			}
		}

		p.skipWhitespace()
		if !p.consume("->") {
			return nil, p.errorf("expected '->' in @when arm, found %s", p.describeCurrent())
		}
		p.skipWhitespace()
		if p.peek() != '<' {
			return nil, p.errorf("expected component after '->' in @when arm")
		}
		body, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		arm.Body = body
		node.Arms = append(node.Arms, arm)
	}

	if len(node.Arms) == 0 {
		return nil, p.errorAtf(p.pos, "", "@when needs at least one arm")
	}
	return node, nil
}

// parseMarkupBlock parses { children } for control-flow bodies. Local
// val/var lines are skipped.
func (p *Parser) parseMarkupBlock() ([]Markup, error) {
	p.skipWhitespace()
	if err := p.expect('{'); err != nil {
		return nil, err
	}

	var items []Markup
	for {
		p.skipChildWhitespace()
		if p.eof() {
			return nil, p.errorf("unexpected end of input in markup block")
		}
		if p.peek() == '}' {
			p.advance()
			return items, nil
		}

		before := p.pos
		switch {
		case p.peekWord("val") || p.peekWord("var"):
			for !p.eof() && p.peek() != '\n' && p.peek() != ';' {
				p.pos++
			}
			p.consume(";")
		case p.atControlFlow():
			node, err := p.parseControlFlow()
			if err != nil {
				return nil, err
			}
			items = append(items, node)
		case p.peek() == '<':
			el, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			items = append(items, el)
		default:
			nodes, err := p.parseText()
			if err != nil {
				return nil, err
			}
			if len(nodes) == 0 && p.pos == before {
				return nil, p.errorf("unexpected %s in markup block", p.describeCurrent())
			}
			items = append(items, nodes...)
		}
	}
}

// consumeKeyword consumes word when it is not followed by an identifier
// character.
func (p *Parser) consumeKeyword(word string) bool {
	if !p.hasPrefix(word) {
		return false
	}
	next := p.peekAt(len(word))
	if isIdentByte(next) {
		return false
	}
	p.pos += len(word)
	return true
}
