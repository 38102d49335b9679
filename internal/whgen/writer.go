package whgen

import (
	"bytes"
	"fmt"
	"strings"
)

const indentUnit = "    "

// writer accumulates generated Kotlin with four-space indentation.
type writer struct {
	buf    bytes.Buffer
	indent int
}

func newWriter(indent int) *writer {
	return &writer{indent: indent}
}

// line writes s at the current indentation followed by a newline. Embedded
// newlines are indented too.
func (w *writer) line(s string) {
	for _, part := range strings.Split(s, "\n") {
		if part != "" {
			w.writeIndent()
			w.buf.WriteString(part)
		}
		w.buf.WriteByte('\n')
	}
}

func (w *writer) linef(format string, args ...any) {
	w.line(fmt.Sprintf(format, args...))
}

// blank writes an empty line unless the buffer is empty, already ends in
// one, or has just opened a block.
func (w *writer) blank() {
	b := w.buf.Bytes()
	if len(b) == 0 || bytes.HasSuffix(b, []byte("\n\n")) || bytes.HasSuffix(b, []byte("{\n")) || bytes.HasSuffix(b, []byte("->\n")) {
		return
	}
	w.buf.WriteByte('\n')
}

// block writes each line of a multi-line body at the current indentation,
// keeping the body's own relative indentation.
func (w *writer) block(body string) {
	if body == "" {
		return
	}
	for _, part := range strings.Split(body, "\n") {
		if strings.TrimSpace(part) == "" {
			w.buf.WriteByte('\n')
			continue
		}
		w.writeIndent()
		w.buf.WriteString(part)
		w.buf.WriteByte('\n')
	}
}

// open writes s followed by " {" and indents.
func (w *writer) open(s string) {
	w.line(s + " {")
	w.indent++
}

// openLambda writes a header that already ends in its opening brace and
// parameter list, such as "xs.forEach { x ->", and indents.
func (w *writer) openLambda(header string) {
	w.line(header)
	w.indent++
}

// close dedents and writes the closing brace.
func (w *writer) close() {
	w.indent--
	w.line("}")
}

// raw appends s without indentation.
func (w *writer) raw(s string) {
	w.buf.WriteString(s)
}

func (w *writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.buf.WriteString(indentUnit)
	}
}

func (w *writer) String() string {
	return w.buf.String()
}

// indentLines prefixes every non-empty line after the first with n levels
// of indentation.
func indentLines(s string, n int) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	prefix := strings.Repeat(indentUnit, n)
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
