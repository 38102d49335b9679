package whgen

import (
	"strings"
)

// rewriteIdents walks s and calls fn for every free identifier: one not
// preceded by '.', '$' or '::' and not inside a string literal. Identifiers
// inside ${...} and $name string templates are visited. fn returns the
// replacement and true, or false to keep the identifier.
func rewriteIdents(s string, fn func(name string, rest string) (string, bool)) string {
	var sb strings.Builder
	sb.Grow(len(s))
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '"':
			end := rewriteString(&sb, s, i, fn)
			i = end
		case c == '\'':
			end := skipLiteral(s, i)
			sb.WriteString(s[i : end+1])
			i = end + 1
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				end = len(s) - i
			}
			sb.WriteString(s[i : i+end])
			i += end
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			name := s[i:j]
			if !boundIdent(s, i) {
				if repl, ok := fn(name, s[j:]); ok {
					sb.WriteString(repl)
					i = j
					continue
				}
			}
			sb.WriteString(name)
			i = j
		case isDigit(c):
			j := i + 1
			for j < len(s) && (isIdentByte(s[j]) || s[j] == '.') && !(s[j] == '.' && j+1 < len(s) && s[j+1] == '.') {
				j++
			}
			sb.WriteString(s[i:j])
			i = j
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

// rewriteString copies the string literal starting at i, rewriting
// identifiers in templates, and returns the offset just past it.
func rewriteString(sb *strings.Builder, s string, i int, fn func(string, string) (string, bool)) int {
	quote := `"`
	if strings.HasPrefix(s[i:], `"""`) {
		quote = `"""`
	}
	sb.WriteString(quote)
	j := i + len(quote)
	for j < len(s) {
		switch {
		case strings.HasPrefix(s[j:], quote):
			sb.WriteString(quote)
			return j + len(quote)
		case s[j] == '\\' && quote == `"` && j+1 < len(s):
			sb.WriteString(s[j : j+2])
			j += 2
		case strings.HasPrefix(s[j:], "${"):
			end := matchBrace(s, j+1)
			if end < 0 {
				sb.WriteString(s[j:])
				return len(s)
			}
			sb.WriteString("${")
			sb.WriteString(rewriteIdents(s[j+2:end], fn))
			sb.WriteString("}")
			j = end + 1
		case s[j] == '$' && j+1 < len(s) && isIdentStart(s[j+1]):
			k := j + 2
			for k < len(s) && isIdentByte(s[k]) {
				k++
			}
			name := s[j+1 : k]
			if repl, ok := fn(name, s[k:]); ok {
				sb.WriteString("${" + repl + "}")
			} else {
				sb.WriteString(s[j:k])
			}
			j = k
		default:
			sb.WriteByte(s[j])
			j++
		}
	}
	return len(s)
}

// matchBrace returns the offset of the '}' matching the '{' at open.
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = skipLiteral(s, i)
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// boundIdent reports whether the identifier at i is qualified: a member
// access, a magic $name or a callable reference.
func boundIdent(s string, i int) bool {
	if i == 0 {
		return false
	}
	switch s[i-1] {
	case '.', '$':
		return true
	case ':':
		return i >= 2 && s[i-2] == ':'
	}
	return false
}

// replaceIdent replaces every free occurrence of the identifier old.
func replaceIdent(s, old, repl string) string {
	return rewriteIdents(s, func(name, _ string) (string, bool) {
		if name == old {
			return repl, true
		}
		return "", false
	})
}

// vmRefs rewrites markup expressions of a promoted component so that state
// and behavior route through the generated ViewModel instance.
type vmRefs struct {
	state   map[string]bool // read as uiState.x, written through viewModel.updateX
	members map[string]bool // read as viewModel.x
	funcs   map[string]bool // called as viewModel.f(...)
}

func (v vmRefs) rewrite(expr string) string {
	return v.rewriteReads(v.rewriteWrites(expr))
}

func (v vmRefs) rewriteReads(expr string) string {
	return rewriteIdents(expr, func(name, rest string) (string, bool) {
		switch {
		case v.state[name]:
			if isNamedArgument(rest) {
				return "", false
			}
			return "uiState." + name, true
		case v.members[name]:
			if isNamedArgument(rest) {
				return "", false
			}
			return "viewModel." + name, true
		case v.funcs[name] && strings.HasPrefix(strings.TrimLeft(rest, " "), "("):
			return "viewModel." + name, true
		}
		return "", false
	})
}

// isNamedArgument reports whether rest starts with a single '=' (a named
// argument label or an assignment target).
func isNamedArgument(rest string) bool {
	r := strings.TrimLeft(rest, " \t")
	return strings.HasPrefix(r, "=") && !strings.HasPrefix(r, "==")
}

// rewriteWrites turns assignments to promoted state into update calls:
// x = v, x += v, x -= v, x++ and x--.
func (v vmRefs) rewriteWrites(expr string) string {
	var sb strings.Builder
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == '"' || c == '\'':
			end := skipLiteral(expr, i)
			if c == '"' && strings.HasPrefix(expr[i:], `"""`) {
				if k := strings.Index(expr[i+3:], `"""`); k >= 0 {
					end = i + 3 + k + 2
				}
			}
			sb.WriteString(expr[i : end+1])
			i = end + 1
		case isIdentStart(c) && (i == 0 || !isIdentByte(expr[i-1])):
			j := i + 1
			for j < len(expr) && isIdentByte(expr[j]) {
				j++
			}
			name := expr[i:j]
			if v.state[name] && !boundIdent(expr, i) && !afterArgumentStart(expr, i) {
				if repl, next, ok := v.assignment(expr, name, j); ok {
					sb.WriteString(repl)
					i = next
					continue
				}
			}
			sb.WriteString(name)
			i = j
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

// afterArgumentStart reports whether the identifier at i directly follows
// '(' or ',' which makes "name =" a named argument.
func afterArgumentStart(s string, i int) bool {
	j := i - 1
	for j >= 0 && (s[j] == ' ' || s[j] == '\t') {
		j--
	}
	return j >= 0 && (s[j] == '(' || s[j] == ',')
}

func (v vmRefs) assignment(expr, name string, j int) (string, int, bool) {
	k := j
	for k < len(expr) && (expr[k] == ' ' || expr[k] == '\t') {
		k++
	}
	rest := expr[k:]
	setter := "viewModel.update" + capitalize(name)
	switch {
	case strings.HasPrefix(rest, "++"):
		return setter + "(uiState." + name + " + 1)", k + 2, true
	case strings.HasPrefix(rest, "--"):
		return setter + "(uiState." + name + " - 1)", k + 2, true
	case strings.HasPrefix(rest, "+=") || strings.HasPrefix(rest, "-=") ||
		strings.HasPrefix(rest, "*=") || strings.HasPrefix(rest, "/="):
		op := rest[:1]
		value, end := statementValue(expr, k+2)
		if !numberRe.MatchString(value) && !simpleRefRe.MatchString(value) {
			value = "(" + value + ")"
		}
		return setter + "(uiState." + name + " " + op + " " + v.rewriteReads(value) + ")", end, true
	case strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "=="):
		value, end := statementValue(expr, k+1)
		return setter + "(" + v.rewriteReads(v.rewriteWrites(value)) + ")", end, true
	}
	return "", 0, false
}

// statementValue returns the right-hand side starting at i, ending at a
// newline, ';' or ',' at depth zero, or an unmatched closing delimiter.
func statementValue(s string, i int) (string, int) {
	depth := 0
	j := i
loop:
	for j < len(s) {
		switch c := s[j]; c {
		case '"', '\'':
			j = skipLiteral(s, j)
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				break loop
			}
			depth--
		case '\n', ';', ',':
			if depth == 0 {
				break loop
			}
		}
		j++
	}
	value := strings.TrimSpace(s[i:j])
	end := j
	for end > i && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return value, end
}
