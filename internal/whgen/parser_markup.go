package whgen

import "strings"

// parseRootMarkup parses the root element. Several sibling roots are
// wrapped in a synthesized Column.
func (p *Parser) parseRootMarkup() (Markup, error) {
	if p.peek() != '<' {
		return nil, p.errorAtf(p.pos, "markup starts with a tag such as <Column>",
			"expected component, found: %q", p.excerpt(50))
	}
	pos := p.position()
	first, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.peek() != '<' {
		return first, nil
	}

	roots := []Markup{first}
	for p.peek() == '<' {
		el, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		roots = append(roots, el)
		p.skipWhitespace()
	}
	return &Element{Name: "Column", Children: roots, Position: pos}, nil
}

// parseElement parses <Name props>children</Name> or <Name props />.
func (p *Parser) parseElement() (*Element, error) {
	start := p.pos
	pos := p.position()
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	el := &Element{Name: name, Position: pos}

	for {
		p.skipWhitespace()
		if p.eof() {
			return nil, p.errorAtf(start, "", "unclosed tag <%s>", name)
		}
		if p.peek() == '>' || p.peek() == '/' {
			break
		}
		prop, err := p.parseProp()
		if err != nil {
			return nil, err
		}
		el.Props = append(el.Props, prop)
	}

	if p.peek() == '/' {
		p.advance()
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		el.SelfClosing = true
		return el, nil
	}
	if err := p.expect('>'); err != nil {
		return nil, err
	}

	children, err := p.parseChildren(name)
	if err != nil {
		return nil, err
	}
	el.Children = children
	return el, nil
}

// parseProp parses one prop. Names may contain a colon (bind:value). A prop
// with no '=' is a boolean shorthand for {true}.
func (p *Parser) parseProp() (*Prop, error) {
	pos := p.position()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if p.peek() == ':' {
		p.advance()
		rest, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		name += ":" + rest
	}

	p.skipWhitespace()
	if p.peek() != '=' {
		return &Prop{Name: name, Value: Expr{Code: "true"}, Position: pos}, nil
	}
	p.advance()
	p.skipWhitespace()

	switch p.peek() {
	case '"':
		start := p.pos
		if err := p.skipQuoted(); err != nil {
			return nil, err
		}
		return &Prop{Name: name, Value: Expr{Code: p.src[start:p.pos]}, Position: pos}, nil

	case '{':
		open := p.pos
		p.advance()
		p.skipWhitespace()
		if p.peek() == '<' {
			el, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			p.skipWhitespace()
			if err := p.expect('}'); err != nil {
				return nil, err
			}
			return &Prop{Name: name, Value: MarkupValue{Markup: el}, Position: pos}, nil
		}
		p.pos = open
		code, err := p.captureDelimited('{', '}')
		if err != nil {
			return nil, err
		}
		return &Prop{Name: name, Value: Expr{Code: strings.TrimSpace(code)}, Position: pos}, nil
	}

	return nil, p.errorAtf(p.pos, `write name="text" or name={expression}`,
		"expected value for prop '%s', found %s", name, p.describeCurrent())
}

// parseChildren parses child nodes up to the closing tag of parent.
func (p *Parser) parseChildren(parent string) ([]Markup, error) {
	var children []Markup
	for {
		p.skipChildWhitespace()
		if p.eof() {
			return nil, p.errorf("unexpected end of input while parsing children of <%s>", parent)
		}

		if p.peek() == '<' && p.peekAt(1) == '/' {
			closePos := p.pos
			p.pos += 2
			closing, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			p.skipWhitespace()
			if err := p.expect('>'); err != nil {
				return nil, err
			}
			if closing != parent {
				return nil, p.errorAtf(closePos, "", "mismatched tags: opening <%s> vs closing </%s>", parent, closing)
			}
			return children, nil
		}

		before := p.pos
		switch {
		case p.atControlFlow():
			node, err := p.parseControlFlow()
			if err != nil {
				return nil, err
			}
			children = append(children, node)
		case p.peek() == '<':
			el, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			children = append(children, el)
		default:
			nodes, err := p.parseText()
			if err != nil {
				return nil, err
			}
			if len(nodes) == 0 && p.pos == before {
				return nil, p.errorf("unexpected %s while parsing children of <%s>", p.describeCurrent(), parent)
			}
			children = append(children, nodes...)
		}
	}
}

// skipChildWhitespace skips whitespace between children. Comments are not
// skipped because "//" is legitimate text content (URLs).
func (p *Parser) skipChildWhitespace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

// parseText reads text and {interpolations} until a tag, a control-flow
// directive or an unmatched '}'. {{ and }} are escapes for literal braces.
func (p *Parser) parseText() ([]Markup, error) {
	var nodes []Markup
	var text strings.Builder
	textPos := p.position()

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, &Text{Value: text.String(), Position: textPos})
			text.Reset()
		}
	}

	for !p.eof() {
		c := p.peek()
		switch {
		case c == '<':
			flush()
			return nodes, nil
		case c == '}' && p.peekAt(1) == '}':
			text.WriteByte('}')
			p.pos += 2
		case c == '}':
			flush()
			return nodes, nil
		case c == '@' && p.atControlFlow():
			flush()
			return nodes, nil
		case c == '{' && p.peekAt(1) == '{':
			text.WriteByte('{')
			p.pos += 2
		case c == '{':
			flush()
			pos := p.position()
			p.advance()
			expr, err := p.parseUntil('}')
			if err != nil {
				return nil, err
			}
			p.advance()
			nodes = append(nodes, &Interpolation{Expr: strings.TrimSpace(expr), Position: pos})
			textPos = p.position()
		default:
			if text.Len() == 0 {
				textPos = p.position()
			}
			start := p.pos
			p.advance()
			text.WriteString(p.src[start:p.pos])
		}
	}
	flush()
	return nodes, nil
}

// atControlFlow reports whether the cursor is at @if, @for or @when.
func (p *Parser) atControlFlow() bool {
	for _, kw := range []string{"@if", "@for", "@when"} {
		if !p.hasPrefix(kw) {
			continue
		}
		next := p.peekAt(len(kw))
		if next == ' ' || next == '(' || next == '{' || next == '\t' || next == '\n' {
			return true
		}
	}
	return false
}
