package whgen

import (
	"fmt"
	"strings"
)

// parseImport reads an import path up to the end of the line. The "import"
// keyword has already been consumed.
func (p *Parser) parseImport() *Import {
	p.skipInlineSpace()
	pos := p.position()
	start := p.pos
	for !p.eof() && p.peek() != '\n' {
		p.pos++
	}
	path := strings.TrimSpace(p.src[start:p.pos])
	path = strings.TrimSuffix(path, ";")
	return &Import{Path: path, Position: pos}
}

// parsePropDecl parses the part of `@prop val name: Type [= default]`
// after the annotation.
func (p *Parser) parsePropDecl() (*PropDecl, error) {
	p.skipWhitespace()
	pos := p.position()
	if !p.consumeWord("val") && !p.consumeWord("var") {
		return nil, p.errorAtf(p.pos, "props are declared as '@prop val name: Type'", "expected 'val' after @prop")
	}
	p.skipWhitespace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if err := p.expect(':'); err != nil {
		return nil, err
	}
	p.skipWhitespace()
	typ := p.parseType()
	if typ == "" {
		return nil, p.errorf("expected type for prop '%s'", name)
	}

	decl := &PropDecl{Name: name, Type: typ, Position: pos}
	p.skipInlineSpace()
	if p.peek() == '=' {
		p.advance()
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		decl.Default = value
	}
	return decl, nil
}

// parseType reads a type annotation. It stops at '=', '{' or a newline at
// depth zero and keeps function-type arrows.
func (p *Parser) parseType() string {
	start := p.pos
	parens, angles, brackets := 0, 0, 0
loop:
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '-' && p.peekAt(1) == '>':
			p.pos += 2
			continue
		case c == 'g' && parens == 0 && angles == 0 && p.pos > start && isSpace(p.src[p.pos-1]) && p.atGetter():
			break loop
		case c == '(':
			parens++
		case c == ')':
			if parens == 0 {
				break loop
			}
			parens--
		case c == '<':
			angles++
		case c == '>':
			if angles == 0 {
				break loop
			}
			angles--
		case c == '[':
			brackets++
		case c == ']':
			if brackets == 0 {
				break loop
			}
			brackets--
		case (c == '=' || c == '\n' || c == '{' || c == ',') && parens == 0 && angles == 0 && brackets == 0:
			break loop
		}
		p.pos++
	}
	return strings.TrimSpace(p.src[start:p.pos])
}

// parseStateDecl parses `var|val name[: Type] = value`.
func (p *Parser) parseStateDecl() (*StateDecl, error) {
	pos := p.position()
	mutable := p.consumeWord("var")
	if !mutable && !p.consumeWord("val") {
		return nil, p.errorf("expected 'var' or 'val'")
	}
	p.skipWhitespace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	var typ string
	if p.peek() == ':' {
		p.advance()
		p.skipWhitespace()
		typ = p.parseType()
	}

	p.skipWhitespace()
	if p.peek() != '=' {
		return nil, p.errorAtf(p.pos, "state declarations need an initial value",
			"expected '=' after variable '%s', found %s", name, p.describeCurrent())
	}
	p.advance()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	decl := &StateDecl{
		Name:     name,
		Mutable:  mutable,
		Type:     typ,
		Value:    value,
		Position: pos,
	}
	if strings.HasPrefix(value, "derivedStateOf") {
		decl.IsDerived = true
	}
	if inner, ok := strings.CutPrefix(value, "$derived("); ok && strings.HasSuffix(inner, ")") {
		inner = strings.TrimSuffix(inner, ")")
		decl.Value = "derivedStateOf { " + strings.TrimSpace(inner) + " }"
		decl.IsDerived = true
		decl.Mutable = false
	}
	return decl, nil
}

// parseValue reads an initializer expression. String, raw-string, list and
// numeric range literals are recognized; anything else runs to the end of
// the line at depth zero, continuing past lines that end in a binary
// operator or comma.
func (p *Parser) parseValue() (string, error) {
	p.skipWhitespace()
	start := p.pos

	switch {
	case p.hasPrefix(`"""`):
		if err := p.skipQuoted(); err != nil {
			return "", err
		}
		if p.atValueEnd() {
			return p.src[start:p.pos], nil
		}
		p.pos = start
	case p.peek() == '[':
		if _, err := p.captureDelimited('[', ']'); err != nil {
			return "", p.errorAtf(start, "", "unterminated list literal")
		}
		if p.atValueEnd() {
			return "[" + strings.TrimSpace(p.src[start+1:p.pos-1]) + "]", nil
		}
		p.pos = start
	default:
		if lit, ok := p.tryParseRange(); ok {
			return lit, nil
		}
	}

	return p.parseExpressionValue()
}

// atValueEnd reports whether only whitespace, a ';' or a closing delimiter
// remains on the current line.
func (p *Parser) atValueEnd() bool {
	i := p.pos
	for i < len(p.src) && (p.src[i] == ' ' || p.src[i] == '\t' || p.src[i] == '\r') {
		i++
	}
	if i >= len(p.src) {
		return true
	}
	switch p.src[i] {
	case '\n', ';', '}', ')':
		return true
	}
	return strings.HasPrefix(p.src[i:], "//")
}

// tryParseRange parses -?N..-?N[:-?N] and returns RANGE[a..b] or
// RANGE[a..b:s]. The cursor is restored when the text is not a bare range.
func (p *Parser) tryParseRange() (string, bool) {
	start := p.pos
	from, ok := p.scanInt()
	if !ok || !p.consume("..") {
		p.pos = start
		return "", false
	}
	to, ok := p.scanInt()
	if !ok {
		p.pos = start
		return "", false
	}
	lit := "RANGE[" + from + ".." + to
	if p.peek() == ':' {
		p.pos++
		step, ok := p.scanInt()
		if !ok {
			p.pos = start
			return "", false
		}
		lit += ":" + step
	}
	if !p.atValueEnd() {
		p.pos = start
		return "", false
	}
	return lit + "]", true
}

func (p *Parser) scanInt() (string, bool) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	digits := p.pos
	for !p.eof() && isDigit(p.peek()) {
		p.pos++
	}
	if p.pos == digits {
		p.pos = start
		return "", false
	}
	return p.src[start:p.pos], true
}

func (p *Parser) parseExpressionValue() (string, error) {
	start := p.pos
	end := -1
	var open delimStack
loop:
	for !p.eof() {
		c := p.peek()
		if c == '/' && p.peekAt(1) == '/' && open.empty() {
			end = p.pos
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
			if continuesOnNextLine(p.src[start:end]) {
				end = -1
				continue
			}
			break
		}
		// `= 1 get() = 2` on one line: the getter is not part of the value.
		if open.empty() && p.pos > start && isSpace(p.src[p.pos-1]) && p.atGetter() {
			break
		}
		switch c {
		case '"', '\'':
			if err := p.skipQuoted(); err != nil {
				return "", err
			}
			continue
		case '{', '(', '[':
			open.push(c, p.pos)
		case '}', ')', ']':
			if open.empty() {
				if c == ']' {
					break
				}
				break loop
			}
			open.pop()
		case '\n':
			if open.empty() && !continuesOnNextLine(p.src[start:p.pos]) {
				break loop
			}
		}
		p.pos++
	}
	if err := p.unclosed(open, "value"); err != nil {
		return "", err
	}
	if end < 0 {
		end = p.pos
	}
	value := strings.TrimSpace(p.src[start:end])
	value = strings.TrimSuffix(value, ";")
	return value, nil
}

// delimStack tracks the opening delimiters of an expression being scanned.
type delimStack []delimOpen

type delimOpen struct {
	char   byte
	offset int
}

func (s *delimStack) push(c byte, offset int) { *s = append(*s, delimOpen{c, offset}) }
func (s *delimStack) pop() { *s = (*s)[:len(*s)-1] }
func (s delimStack) empty() bool { return len(s) == 0 }

// unclosed reports the outermost delimiter still open at the end of the
// input. Without this check the rest of the file, markup included, would be
// swallowed into the expression.
func (p *Parser) unclosed(open delimStack, what string) error {
	if open.empty() {
		return nil
	}
	first := open[0]
	closer := map[byte]byte{'(': ')', '[': ']', '{': '}'}[first.char]
	return p.errorAtf(first.offset, fmt.Sprintf("add the matching '%c'", closer),
		"unclosed '%c' in %s", first.char, what)
}

// continuesOnNextLine reports whether a line ends with an operator that
// makes the expression continue on the next line.
func continuesOnNextLine(text string) bool {
	text = strings.TrimRight(text, " \t\r")
	for _, suffix := range []string{"&&", "||", "+", "-", "*", "/", ",", "?:", "."} {
		if strings.HasSuffix(text, suffix) {
			return true
		}
	}
	return false
}

// parseFuncDecl parses the part of a function declaration after "fun".
func (p *Parser) parseFuncDecl(isSuspend bool, pos Position) (*FuncDecl, error) {
	p.pendingAnnotations = nil
	p.skipWhitespace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.peek() != '(' {
		return nil, p.errorf("expected '(' after function name '%s', found %s", name, p.describeCurrent())
	}
	params, err := p.parseParens()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	var returnType string
	if p.peek() == ':' {
		p.advance()
		p.skipWhitespace()
		returnType = p.parseType()
		p.skipWhitespace()
	}

	if p.peek() != '{' {
		return nil, p.errorf("expected '{' to open body of function '%s', found %s", name, p.describeCurrent())
	}
	bodyStart := p.pos + 1
	body, err := p.captureDelimited('{', '}')
	if err != nil {
		return nil, err
	}
	if err := p.checkBodyTypos(body, bodyStart); err != nil {
		return nil, err
	}

	return &FuncDecl{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       trimBody(body),
		IsSuspend:  isSuspend,
		Position:   pos,
	}, nil
}

// parseLifecycleHook parses `$onMount { ... }` or `$onDispose { ... }`.
func (p *Parser) parseLifecycleHook(keyword string, kind HookKind) (*LifecycleHook, error) {
	pos := p.position()
	p.consume(keyword)
	p.skipWhitespace()
	if p.peek() != '{' {
		return nil, p.errorf("expected '{' after %s, found %s", keyword, p.describeCurrent())
	}
	bodyStart := p.pos + 1
	body, err := p.captureDelimited('{', '}')
	if err != nil {
		return nil, err
	}
	if err := p.checkBodyTypos(body, bodyStart); err != nil {
		return nil, err
	}
	return &LifecycleHook{Kind: kind, Body: trimBody(body), Position: pos}, nil
}

// parseClassDecl parses a class or object declaration whose body holds only
// properties and functions.
func (p *Parser) parseClassDecl(annotations []string) (*ClassDecl, error) {
	p.skipWhitespace()
	pos := p.position()

	isObject := p.consumeWord("object")
	if !isObject && !p.consumeWord("class") {
		return nil, p.errorf("expected 'class' or 'object' keyword")
	}
	p.skipWhitespace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	class := &ClassDecl{
		Annotations: annotations,
		IsObject:    isObject,
		Name:        name,
		Position:    pos,
	}

	if p.peek() == '(' || p.peek() == '@' || p.hasPrefix("constructor") {
		ctor, err := p.parseConstructor()
		if err != nil {
			return nil, err
		}
		class.Constructor = ctor
		p.skipWhitespace()
	}

	if p.peek() != '{' {
		if p.eof() || p.peek() == '\n' || p.peek() == '<' {
			return class, nil
		}
		return nil, p.errorf("expected '{' to open body of %s, found %s", name, p.describeCurrent())
	}
	p.advance()

	for {
		p.skipWhitespace()
		if p.eof() {
			return nil, p.errorAtf(p.pos, "", "unexpected EOF in body of %s", name)
		}
		if p.peek() == '}' {
			p.advance()
			return class, nil
		}

		switch {
		case p.peekWord("var") || p.peekWord("val") ||
			p.peekWord("private") || p.peekWord("protected") || p.peekWord("public"):
			var visibility string
			for _, v := range []string{"private", "protected", "public"} {
				if p.consumeWord(v) {
					visibility = v
					p.skipWhitespace()
					break
				}
			}
			if !p.peekWord("var") && !p.peekWord("val") {
				return nil, p.errorf("expected 'var' or 'val' after visibility modifier")
			}
			prop, err := p.parsePropertyDecl(visibility)
			if err != nil {
				return nil, err
			}
			class.Properties = append(class.Properties, prop)

		case p.peekWord("fun") || p.peekWord("suspend"):
			fpos := p.position()
			isSuspend := p.consumeWord("suspend")
			p.skipWhitespace()
			if !p.consumeWord("fun") {
				return nil, p.errorf("expected 'fun'")
			}
			fn, err := p.parseFuncDecl(isSuspend, fpos)
			if err != nil {
				return nil, err
			}
			class.Functions = append(class.Functions, fn)

		default:
			return nil, p.errorAtf(p.pos, "class bodies may contain only properties and functions",
				"unexpected content in class body: %q", p.excerpt(20))
		}
	}
}

// parseConstructor parses `@Ann constructor(params)`, `constructor(params)`
// or `(params)`.
func (p *Parser) parseConstructor() (*Constructor, error) {
	ctor := &Constructor{}
	if p.peek() == '@' {
		annotation, err := p.parseAnnotation()
		if err != nil {
			return nil, err
		}
		ctor.Annotations = append(ctor.Annotations, annotation)
		p.skipWhitespace()
		if !p.consume("constructor") {
			return nil, p.errorAtf(p.pos, "annotated constructors need the 'constructor' keyword",
				"expected 'constructor' keyword after @%s", annotation)
		}
		p.skipWhitespace()
	} else if p.consume("constructor") {
		p.skipWhitespace()
	}

	if p.peek() != '(' {
		return nil, p.errorf("expected '(' to open constructor parameters, found %s", p.describeCurrent())
	}
	params, err := p.parseParens()
	if err != nil {
		return nil, err
	}
	ctor.Params = params
	return ctor, nil
}

// parsePropertyDecl parses `var|val name[: T] (= value | get() = expr)`.
// A getter following an initializer is recorded too so that generation can
// reject the property.
func (p *Parser) parsePropertyDecl(visibility string) (*PropertyDecl, error) {
	pos := p.position()
	mutable := p.consumeWord("var")
	if !mutable && !p.consumeWord("val") {
		return nil, p.errorf("expected 'var' or 'val'")
	}
	p.skipWhitespace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	prop := &PropertyDecl{
		Name:       name,
		Mutable:    mutable,
		Visibility: visibility,
		Position:   pos,
	}
	if p.peek() == ':' {
		p.advance()
		p.skipWhitespace()
		prop.Type = p.parseType()
		p.skipWhitespace()
	}

	if p.peek() == '=' {
		p.advance()
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		prop.Value = value

		save := p.pos
		p.skipWhitespace()
		if !p.atGetter() {
			p.pos = save
			return prop, nil
		}
	}

	if p.atGetter() {
		getter, err := p.parseGetter()
		if err != nil {
			return nil, err
		}
		prop.Getter = getter
	}
	return prop, nil
}

func (p *Parser) atGetter() bool {
	if !p.hasPrefix("get") {
		return false
	}
	i := p.pos + 3
	for i < len(p.src) && (p.src[i] == ' ' || p.src[i] == '\t') {
		i++
	}
	return i < len(p.src) && p.src[i] == '('
}

// parseGetter parses `get() = expr`, reading expr up to a newline or '}'.
func (p *Parser) parseGetter() (string, error) {
	p.consume("get")
	p.skipInlineSpace()
	if err := p.expect('('); err != nil {
		return "", err
	}
	p.skipInlineSpace()
	if err := p.expect(')'); err != nil {
		return "", err
	}
	p.skipWhitespace()
	if err := p.expect('='); err != nil {
		return "", err
	}
	p.skipInlineSpace()
	start := p.pos
	var open delimStack
	for !p.eof() {
		c := p.peek()
		if c == '"' || c == '\'' {
			if err := p.skipQuoted(); err != nil {
				return "", err
			}
			continue
		}
		if c == '\n' && open.empty() {
			break
		}
		switch c {
		case '{', '(', '[':
			open.push(c, p.pos)
		case '}', ')', ']':
			if open.empty() {
				if c == '}' {
					return p.finishGetter(start)
				}
				break
			}
			open.pop()
		}
		p.pos++
	}
	if err := p.unclosed(open, "getter"); err != nil {
		return "", err
	}
	return p.finishGetter(start)
}

func (p *Parser) finishGetter(start int) (string, error) {
	getter := strings.TrimSpace(p.src[start:p.pos])
	if getter == "" {
		return "", p.errorf("empty getter expression")
	}
	return getter, nil
}

// trimBody removes surrounding blank lines and the common indentation of a
// captured block body.
func trimBody(body string) string {
	lines := strings.Split(strings.Trim(body, "\n\r"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if len(line) >= indent {
			line = line[indent:]
		} else {
			line = strings.TrimLeft(line, " \t")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
