package whgen

import (
	"sort"
	"strings"
	"unicode"
)

// Parser parses .wh source files into a File. It works directly on the raw
// text with a single forward cursor: markup tags and host-language
// expressions are mixed too freely to tokenize up front.
type Parser struct {
	src        string
	pos        int
	filename   string
	lineStarts []int

	parsedStoreClass   bool     // first class/object seen; later ones pass through
	pendingAnnotations []string // annotations waiting for the declaration they decorate
}

// NewParser creates a Parser for the given source. The filename is only
// used in error positions.
func NewParser(filename, src string) *Parser {
	// Only trailing space is dropped so that line numbers match the file.
	src = strings.TrimRightFunc(src, unicode.IsSpace)
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	p := &Parser{src: src, filename: filename, lineStarts: starts}
	p.skipWhitespace()
	return p
}

// Parse parses a single source unit.
func Parse(src string) (*File, error) {
	return NewParser("", src).ParseFile()
}

// ParseFile parses the whole unit. Parsing stops at the first error; there
// is no recovery.
func (p *Parser) ParseFile() (*File, error) {
	file := &File{}

	if err := p.parseDeclarations(file); err != nil {
		return nil, err
	}

	p.skipWhitespace()
	if p.eof() {
		file.Markup = &Text{Position: p.position()}
		file.ImplicitMarkup = true
		return file, nil
	}

	root, err := p.parseRootMarkup()
	if err != nil {
		return nil, err
	}
	file.Markup = root

	if err := p.parseTrailingDeclarations(file); err != nil {
		return nil, err
	}
	return file, nil
}

// parseDeclarations consumes everything that may precede the markup root.
func (p *Parser) parseDeclarations(file *File) error {
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil
		}

		switch {
		case p.peek() == '@' && !p.atControlFlow():
			annotation, err := p.parseAnnotation()
			if err != nil {
				return err
			}
			p.skipWhitespace()
			if p.peekWord("class") || p.peekWord("object") {
				class, err := p.parseClassDecl(p.takeAnnotations(annotation))
				if err != nil {
					return err
				}
				file.Classes = append(file.Classes, class)
				p.parsedStoreClass = true
				continue
			}
			if annotation == "prop" {
				prop, err := p.parsePropDecl()
				if err != nil {
					return err
				}
				file.Props = append(file.Props, prop)
				continue
			}
			p.pendingAnnotations = append(p.pendingAnnotations, annotation)

		case !p.parsedStoreClass && (p.peekWord("class") || p.peekWord("object")):
			class, err := p.parseClassDecl(p.takeAnnotations(""))
			if err != nil {
				return err
			}
			file.Classes = append(file.Classes, class)
			p.parsedStoreClass = true

		case p.consumeWord("import"):
			file.Imports = append(file.Imports, p.parseImport())

		case p.isKotlinSyntax(p.parsedStoreClass):
			block, err := p.captureKotlinBlock()
			if err != nil {
				return err
			}
			file.KotlinBlocks = append(file.KotlinBlocks, block)

		case p.peekWord("var") || p.peekWord("val"):
			p.pendingAnnotations = nil
			decl, err := p.parseStateDecl()
			if err != nil {
				return err
			}
			file.State = append(file.State, decl)

		case !p.parsedStoreClass && p.peekWord("suspend"):
			pos := p.position()
			p.consumeWord("suspend")
			p.skipWhitespace()
			if !p.consumeWord("fun") {
				return p.errorf("expected 'fun' after 'suspend'")
			}
			fn, err := p.parseFuncDecl(true, pos)
			if err != nil {
				return err
			}
			file.Functions = append(file.Functions, fn)

		case !p.parsedStoreClass && p.peekWord("fun"):
			pos := p.position()
			p.consumeWord("fun")
			fn, err := p.parseFuncDecl(false, pos)
			if err != nil {
				return err
			}
			file.Functions = append(file.Functions, fn)

		case p.hasPrefix("$onMount"):
			hook, err := p.parseLifecycleHook("$onMount", HookMount)
			if err != nil {
				return err
			}
			file.Hooks = append(file.Hooks, hook)

		case p.hasPrefix("$onDispose"):
			hook, err := p.parseLifecycleHook("$onDispose", HookDispose)
			if err != nil {
				return err
			}
			file.Hooks = append(file.Hooks, hook)

		case p.peek() == '<':
			imports, ok, err := p.parseScriptTag()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			file.Imports = append(file.Imports, imports...)

		default:
			if err := p.checkTypos(); err != nil {
				return err
			}
			return nil
		}
	}
}

// parseTrailingDeclarations consumes helper composables and pass-through
// blocks that follow the markup root.
func (p *Parser) parseTrailingDeclarations(file *File) error {
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil
		}

		if p.peek() == '@' {
			annotation, err := p.parseAnnotation()
			if err != nil {
				return err
			}
			p.pendingAnnotations = append(p.pendingAnnotations, annotation)
			continue
		}

		if p.peekWord("fun") || p.hasPrefix("suspend fun ") {
			helper, ok, err := p.tryParseHelper()
			if err != nil {
				return err
			}
			if ok {
				p.pendingAnnotations = nil
				file.Helpers = append(file.Helpers, helper)
				continue
			}
		}

		if p.isKotlinSyntax(true) {
			block, err := p.captureKotlinBlock()
			if err != nil {
				return err
			}
			file.KotlinBlocks = append(file.KotlinBlocks, block)
			continue
		}

		return p.errorf("unexpected content after markup: %q", p.excerpt(30))
	}
}

// tryParseHelper parses `fun Name(params) { <markup> }`. When the body is
// not markup the cursor is restored and ok is false.
func (p *Parser) tryParseHelper() (*FuncDecl, bool, error) {
	start := p.pos
	pos := p.position()

	isSuspend := p.consumeWord("suspend")
	p.skipWhitespace()
	if !p.consumeWord("fun") {
		p.pos = start
		return nil, false, nil
	}
	p.skipWhitespace()
	name, err := p.parseIdentifier()
	if err != nil {
		p.pos = start
		return nil, false, nil
	}
	p.skipWhitespace()
	if p.peek() != '(' {
		p.pos = start
		return nil, false, nil
	}
	params, err := p.parseParens()
	if err != nil {
		return nil, false, err
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
		p.pos = start
		return nil, false, nil
	}
	p.advance()
	p.skipWhitespace()
	if p.peek() != '<' {
		p.pos = start
		return nil, false, nil
	}

	body, err := p.parseRootMarkup()
	if err != nil {
		return nil, false, err
	}
	p.skipWhitespace()
	if err := p.expect('}'); err != nil {
		return nil, false, err
	}

	return &FuncDecl{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		IsSuspend:  isSuspend,
		Markup:     body,
		Position:   pos,
	}, true, nil
}

// takeAnnotations returns the pending annotations plus last (if non-empty)
// and clears the pending list.
func (p *Parser) takeAnnotations(last string) []string {
	out := p.pendingAnnotations
	if last != "" {
		out = append(out, last)
	}
	p.pendingAnnotations = nil
	return out
}

// position returns the Position of the cursor.
func (p *Parser) position() Position {
	return p.positionAt(p.pos)
}

// positionAt converts a byte offset to a 1-based line and column.
func (p *Parser) positionAt(offset int) Position {
	line := sort.Search(len(p.lineStarts), func(i int) bool {
		return p.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	return Position{
		File:   p.filename,
		Line:   line + 1,
		Column: offset - p.lineStarts[line] + 1,
	}
}

// sourceLine returns the text of the given 1-based line.
func (p *Parser) sourceLine(line int) string {
	if line < 1 || line > len(p.lineStarts) {
		return ""
	}
	start := p.lineStarts[line-1]
	end := len(p.src)
	if line < len(p.lineStarts) {
		end = p.lineStarts[line] - 1
	}
	return strings.TrimRight(p.src[start:end], "\r")
}
