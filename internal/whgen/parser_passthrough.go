package whgen

import (
	"strings"
)

// maxCaptureSteps bounds pass-through capture so malformed input fails
// instead of spinning.
const maxCaptureSteps = 100000

var passthroughPrefixes = []string{
	"data class ",
	"sealed class ",
	"sealed interface ",
	"enum class ",
	"class ",
	"typealias ",
	"object ",
	"interface ",
	"inline fun ",
	"infix fun ",
	"operator fun ",
	"fun interface ",
	"abstract class ",
	"open class ",
	"private fun ",
	"internal fun ",
	"const val ",
}

var topLevelKeywords = []string{
	"import ",
	"class ",
	"data class ",
	"sealed class ",
	"sealed interface ",
	"enum class ",
	"object ",
	"interface ",
	"fun ",
	"val ",
	"var ",
	"typealias ",
	"suspend fun ",
	"inline fun ",
	"private fun ",
	"const val ",
	"@",
	"<",
	"$onMount",
	"$onDispose",
}

// isKotlinSyntax reports whether the cursor starts a host-language
// declaration that the parser copies through without interpreting. Once a
// store class has been parsed, plain functions pass through too.
func (p *Parser) isKotlinSyntax(afterStoreClass bool) bool {
	rest := p.rest()
	for _, prefix := range passthroughPrefixes {
		if strings.HasPrefix(rest, prefix) {
			return true
		}
	}
	if afterStoreClass && (strings.HasPrefix(rest, "fun ") || strings.HasPrefix(rest, "suspend fun ")) {
		return true
	}

	if isExtensionFunction(rest) {
		return true
	}

	// Extension property: val Type.name
	if after, ok := strings.CutPrefix(rest, "val "); ok {
		for i := 0; i < len(after); i++ {
			switch after[i] {
			case '.':
				return true
			case ':', '\n', '=':
				return false
			}
		}
	}
	return false
}

// isExtensionFunction reports whether rest starts a function with a
// receiver, such as `fun String.shout()` or `fun <T> List<T>.second()`.
func isExtensionFunction(rest string) bool {
	rest = strings.TrimPrefix(rest, "suspend ")
	after, ok := strings.CutPrefix(rest, "fun ")
	if !ok {
		return false
	}
	angle := 0
	for i := 0; i < len(after); i++ {
		switch after[i] {
		case '<':
			angle++
		case '>':
			angle--
		case '.':
			if angle == 0 {
				return true
			}
		case '(', '\n', '=', '{', ':':
			return false
		}
	}
	return false
}

func (p *Parser) atTopLevelKeyword() bool {
	rest := p.rest()
	for _, kw := range topLevelKeywords {
		if strings.HasPrefix(rest, kw) {
			return true
		}
	}
	return false
}

// captureKotlinBlock copies one host-language declaration verbatim. It
// tracks string, char and raw-string literals, comments, and brace and
// paren depth. The block ends when braces close back to zero, when a
// parenthesized header closes with nothing following on the line, or when a
// new top-level declaration starts at depth zero.
func (p *Parser) captureKotlinBlock() (*KotlinBlock, error) {
	start := p.pos
	pos := p.position()

	var (
		braceDepth, parenDepth int
		sawBrace, sawParen     bool
		exprBody               bool
		steps                  int
	)

	atDepthZero := func() bool { return braceDepth == 0 && parenDepth == 0 }

loop:
	for !p.eof() {
		steps++
		if steps > maxCaptureSteps {
			return nil, p.errorAtf(start, "", "parser stuck capturing Kotlin block")
		}

		c := p.peek()
		switch {
		case c == '/' && p.peekAt(1) == '/':
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}

		case c == '/' && p.peekAt(1) == '*':
			end := strings.Index(p.src[p.pos+2:], "*/")
			if end < 0 {
				return nil, p.errorAtf(p.pos, "", "unclosed block comment in Kotlin block")
			}
			p.pos += end + 4

		case c == '"' || c == '\'':
			if err := p.skipQuoted(); err != nil {
				return nil, err
			}

		case c == '(':
			sawParen = true
			parenDepth++
			p.pos++

		case c == ')':
			if parenDepth == 0 {
				return nil, p.errorf("unmatched closing parenthesis in Kotlin block")
			}
			parenDepth--
			p.pos++
			if atDepthZero() && sawParen && !sawBrace && !exprBody {
				if p.headerEnds() {
					break loop
				}
			}

		case c == '{':
			sawBrace = true
			braceDepth++
			p.pos++

		case c == '}':
			if braceDepth == 0 {
				return nil, p.errorf("unmatched closing brace in Kotlin block")
			}
			braceDepth--
			p.pos++
			if braceDepth == 0 && sawBrace && parenDepth == 0 {
				if !p.continuesAfterBrace() {
					break loop
				}
			}

		case c == '=':
			if atDepthZero() && sawParen {
				exprBody = true
			}
			p.pos++

		case c == '\n':
			p.pos++
			if atDepthZero() {
				save := p.pos
				p.skipWhitespace()
				if p.eof() || p.atTopLevelKeyword() {
					break loop
				}
				p.pos = save
			}

		default:
			p.pos++
		}
	}

	if braceDepth > 0 || parenDepth > 0 {
		return nil, p.errorAtf(start, "", "unclosed block in Kotlin block: missing '}' or ')'")
	}

	content := strings.TrimSpace(p.src[start:p.pos])
	if content == "" {
		return nil, p.errorAtf(start, "", "empty Kotlin block captured")
	}
	if len(p.pendingAnnotations) > 0 {
		var sb strings.Builder
		for _, a := range p.pendingAnnotations {
			sb.WriteString("@" + a + "\n")
		}
		content = sb.String() + content
		p.pendingAnnotations = nil
	}
	return &KotlinBlock{Content: content, Position: pos}, nil
}

// headerEnds decides, after a closing paren at depth zero with no brace
// seen, whether the declaration is complete. A following '=', ':', '{' or
// '->' on the same line means it continues.
func (p *Parser) headerEnds() bool {
	i := p.pos
	for i < len(p.src) && (p.src[i] == ' ' || p.src[i] == '\t' || p.src[i] == '\r') {
		i++
	}
	if i >= len(p.src) || p.src[i] == '\n' {
		return true
	}
	switch p.src[i] {
	case '=', ':', '{', '.', ',':
		return false
	case '-':
		return !strings.HasPrefix(p.src[i:], "->")
	}
	return !isIdentByte(p.src[i])
}

// continuesAfterBrace reports whether a closed brace block is followed on
// the same line by more of the same declaration, such as `} else {` or a
// chained call.
func (p *Parser) continuesAfterBrace() bool {
	i := p.pos
	for i < len(p.src) && (p.src[i] == ' ' || p.src[i] == '\t') {
		i++
	}
	if i >= len(p.src) {
		return false
	}
	rest := p.src[i:]
	return strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, "else") ||
		strings.HasPrefix(rest, "catch") || strings.HasPrefix(rest, "finally")
}

type typoRule struct {
	typo, correct, description string
}

var prefixTypos = []typoRule{
	{"onMount", "$onMount", "lifecycle hook"},
	{"onDispose", "$onDispose", "lifecycle hook"},
	{"fetch(", "$fetch(", "HTTP request function"},
	{"log(", "$log(", "logging function"},
	{"navigate(", "$navigate(", "navigation function"},
}

var bodyTypos = []typoRule{
	{"fetch(", "$fetch(", "HTTP request function"},
	{"log(", "$log(", "logging function"},
	{"navigate(", "$navigate(", "navigation function"},
}

var directiveTypos = []typoRule{
	{"if (", "@if", "conditional directive"},
	{"if(", "@if", "conditional directive"},
	{"for (", "@for", "loop directive"},
	{"for(", "@for", "loop directive"},
	{"when (", "@when", "when directive"},
	{"when(", "@when", "when directive"},
	{"when {", "@when", "when directive"},
}

// checkTypos reports common mistakes at the point where the parser could
// not recognize a declaration.
func (p *Parser) checkTypos() error {
	rest := p.rest()
	for _, r := range prefixTypos {
		if !strings.HasPrefix(rest, r.typo) {
			continue
		}
		after := rest[len(r.typo):]
		if strings.HasSuffix(r.typo, "(") || after == "" ||
			after[0] == ' ' || after[0] == '{' || after[0] == '\n' {
			name := strings.TrimSuffix(r.typo, "(")
			return p.errorAtf(p.pos,
				"did you mean '"+strings.TrimSuffix(r.correct, "(")+"'? ("+r.description+" requires $ prefix)",
				"unknown identifier '%s'", name)
		}
	}
	for _, r := range directiveTypos {
		if strings.HasPrefix(rest, r.typo) {
			return p.errorAtf(p.pos,
				"did you mean '"+r.correct+"'? ("+r.description+" requires @ prefix in markup)",
				"unexpected '%s'", strings.TrimSpace(r.typo))
		}
	}
	return nil
}

// checkBodyTypos scans a captured function or hook body for magic calls
// written without their '$' prefix. bodyStart is the offset of the body in
// the source.
func (p *Parser) checkBodyTypos(body string, bodyStart int) error {
	for _, r := range bodyTypos {
		from := 0
		for {
			idx := strings.Index(body[from:], r.typo)
			if idx < 0 {
				break
			}
			at := from + idx
			from = at + 1
			if at > 0 {
				prev := body[at-1]
				if prev == '$' || prev == '.' || isIdentByte(prev) {
					continue
				}
			}
			if inStringLiteral(body, at) {
				continue
			}
			return p.errorAtf(bodyStart+at,
				"did you mean '"+strings.TrimSuffix(r.correct, "(")+"'? ("+r.description+" requires $ prefix)",
				"unknown identifier '%s'", strings.TrimSuffix(r.typo, "("))
		}
	}
	return nil
}

// inStringLiteral reports whether offset falls inside a "..." literal on
// its line.
func inStringLiteral(s string, offset int) bool {
	lineStart := strings.LastIndexByte(s[:offset], '\n') + 1
	in := false
	for i := lineStart; i < offset; i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			in = !in
		}
	}
	return in
}

// parseScriptTag consumes a <script> block and returns the imports found
// in it. ok is false (and the cursor unchanged) when the tag is not
// <script>.
func (p *Parser) parseScriptTag() ([]*Import, bool, error) {
	if !p.hasPrefix("<script") {
		return nil, false, nil
	}
	next := p.peekAt(len("<script"))
	if next != '>' && !isSpace(next) {
		return nil, false, nil
	}
	start := p.pos
	end := strings.Index(p.src[p.pos:], ">")
	if end < 0 {
		return nil, false, p.errorf("unexpected EOF in <script> tag")
	}
	p.pos += end + 1
	bodyStart := p.pos
	closeIdx := strings.Index(p.src[p.pos:], "</script>")
	if closeIdx < 0 {
		return nil, false, p.errorAtf(start, "", "unclosed <script> tag")
	}
	body := p.src[bodyStart : bodyStart+closeIdx]
	p.pos = bodyStart + closeIdx + len("</script>")

	var imports []*Import
	offset := bodyStart
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if path, ok := strings.CutPrefix(trimmed, "import "); ok {
			imports = append(imports, &Import{
				Path:     strings.TrimSuffix(strings.TrimSpace(path), ";"),
				Position: p.positionAt(offset),
			})
		}
		offset += len(line) + 1
	}
	return imports, true, nil
}
