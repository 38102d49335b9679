package whgen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

func (p *Parser) eof() bool {
	return p.pos >= len(p.src)
}

// peek returns the byte at the cursor, or 0 at EOF.
func (p *Parser) peek() byte {
	return p.peekAt(0)
}

// peekAt returns the byte n positions ahead of the cursor, or 0.
func (p *Parser) peekAt(n int) byte {
	if p.pos+n >= len(p.src) || p.pos+n < 0 {
		return 0
	}
	return p.src[p.pos+n]
}

// advance moves the cursor forward by one rune.
func (p *Parser) advance() {
	if p.eof() {
		return
	}
	_, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
}

func (p *Parser) rest() string {
	return p.src[p.pos:]
}

func (p *Parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

// consume advances past s if the input starts with it.
func (p *Parser) consume(s string) bool {
	if !p.hasPrefix(s) {
		return false
	}
	p.pos += len(s)
	return true
}

// peekWord reports whether the input starts with word followed by
// whitespace or EOF.
func (p *Parser) peekWord(word string) bool {
	if !p.hasPrefix(word) {
		return false
	}
	next := p.pos + len(word)
	return next >= len(p.src) || isSpace(p.src[next])
}

// consumeWord advances past word when peekWord matches.
func (p *Parser) consumeWord(word string) bool {
	if !p.peekWord(word) {
		return false
	}
	p.pos += len(word)
	return true
}

// skipWhitespace skips whitespace, line comments and block comments.
func (p *Parser) skipWhitespace() {
	for !p.eof() {
		c := p.peek()
		switch {
		case isSpace(c):
			p.pos++
		case c == '/' && p.peekAt(1) == '/':
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
		case c == '/' && p.peekAt(1) == '*':
			end := strings.Index(p.src[p.pos+2:], "*/")
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += end + 4
		default:
			return
		}
	}
}

// skipInlineSpace skips spaces and tabs but stops at newlines.
func (p *Parser) skipInlineSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t' || p.peek() == '\r') {
		p.pos++
	}
}

// parseIdentifier reads letters, digits and underscores.
func (p *Parser) parseIdentifier() (string, error) {
	start := p.pos
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !isIdentRune(r) {
			break
		}
		p.pos += size
	}
	if start == p.pos {
		return "", p.errorf("expected identifier, found %s", p.describeCurrent())
	}
	return p.src[start:p.pos], nil
}

// expect consumes c or returns an error describing what was found instead.
func (p *Parser) expect(c byte) error {
	if p.peek() == c && !p.eof() {
		p.pos++
		return nil
	}
	return p.errorf("expected '%c', found %s", c, p.describeCurrent())
}

func (p *Parser) describeCurrent() string {
	if p.eof() {
		return "EOF"
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return fmt.Sprintf("'%c'", r)
}

// excerpt returns up to n bytes from the cursor for error messages.
func (p *Parser) excerpt(n int) string {
	if p.eof() {
		return "EOF"
	}
	end := p.pos + n
	if end > len(p.src) {
		end = len(p.src)
	}
	return p.src[p.pos:end]
}

// parseAnnotation parses @Name or @Name(args) and returns the text after @.
func (p *Parser) parseAnnotation() (string, error) {
	if err := p.expect('@'); err != nil {
		return "", err
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return "", err
	}
	if p.peek() == '(' {
		args, err := p.parseParens()
		if err != nil {
			return "", err
		}
		return name + "(" + args + ")", nil
	}
	return name, nil
}

// parseParens consumes a balanced (...) group and returns its trimmed
// contents. String literals inside the group are skipped over.
func (p *Parser) parseParens() (string, error) {
	body, err := p.captureDelimited('(', ')')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body), nil
}

// captureDelimited consumes open, then everything up to the matching close,
// and returns the raw text in between. Strings, chars and comments do not
// count toward nesting.
func (p *Parser) captureDelimited(open, close byte) (string, error) {
	startPos := p.pos
	if err := p.expect(open); err != nil {
		return "", err
	}
	start := p.pos
	depth := 1
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '"' || c == '\'':
			if err := p.skipQuoted(); err != nil {
				return "", err
			}
			continue
		case c == '/' && p.peekAt(1) == '/':
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
			continue
		case c == '/' && p.peekAt(1) == '*':
			end := strings.Index(p.src[p.pos+2:], "*/")
			if end < 0 {
				return "", p.errorf("unclosed block comment")
			}
			p.pos += end + 4
			continue
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				body := p.src[start:p.pos]
				p.pos++
				return body, nil
			}
		}
		p.pos++
	}
	return "", p.errorAtf(startPos, "", "unclosed '%c': expected matching '%c'", open, close)
}

// skipQuoted skips a string ("..." or """...""") or char literal starting
// at the cursor.
func (p *Parser) skipQuoted() error {
	start := p.pos
	if p.hasPrefix(`"""`) {
		end := strings.Index(p.src[p.pos+3:], `"""`)
		if end < 0 {
			return p.errorAtf(start, "", "unclosed multi-line string literal")
		}
		p.pos += end + 6
		return nil
	}
	quote := p.peek()
	p.pos++
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '\\':
			p.pos += 2
			continue
		case c == quote:
			p.pos++
			return nil
		case c == '\n' && quote == '\'':
			return p.errorAtf(start, "", "unclosed character literal")
		}
		p.pos++
	}
	if p.pos > len(p.src) {
		p.pos = len(p.src)
	}
	if quote == '\'' {
		return p.errorAtf(start, "", "unclosed character literal")
	}
	return p.errorAtf(start, "", "unclosed string literal")
}

// parseUntil reads up to delim at nesting depth zero. Parens, braces,
// brackets and string literals are tracked.
func (p *Parser) parseUntil(delim byte) (string, error) {
	start := p.pos
	depth := 0
	for !p.eof() {
		c := p.peek()
		if c == delim && depth == 0 {
			return p.src[start:p.pos], nil
		}
		switch c {
		case '"', '\'':
			if err := p.skipQuoted(); err != nil {
				return "", err
			}
			continue
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			if depth > 0 {
				depth--
			}
		}
		p.pos++
	}
	return "", p.errorAtf(start, "", "expected '%c' before end of input", delim)
}

// errorf creates an Error at the cursor.
func (p *Parser) errorf(format string, args ...any) *Error {
	return p.errorAtf(p.pos, "", format, args...)
}

// errorAtf creates an Error at the given offset with an optional hint.
func (p *Parser) errorAtf(offset int, hint, format string, args ...any) *Error {
	pos := p.positionAt(offset)
	return &Error{
		Pos:        pos,
		Message:    fmt.Sprintf(format, args...),
		Hint:       hint,
		SourceLine: p.sourceLine(pos.Line),
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
