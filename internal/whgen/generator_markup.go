package whgen

import (
	"regexp"
	"strings"
)

// scope carries the position of a node in the tree.
type scope struct {
	// lazy is set for direct content of a LazyColumn or LazyRow, where
	// every emitted composable must sit inside item or items.
	lazy bool
	// scaffoldPadding asks the element to consume the Scaffold content
	// padding.
	scaffoldPadding bool
}

// genMarkup writes one markup node.
func (g *Generator) genMarkup(ctx *genContext, w *writer, m Markup, sc scope) error {
	switch n := m.(type) {
	case *Element:
		if sc.lazy {
			w.open("item")
			defer w.close()
		}
		return g.genElement(ctx, w, n, scope{scaffoldPadding: sc.scaffoldPadding})
	case *Text, *Interpolation:
		return g.genChildren(ctx, w, []Markup{m}, sc)
	case *Sequence:
		return g.genChildren(ctx, w, n.Items, sc)
	case *IfElse:
		return g.genIf(ctx, w, n, sc)
	case *ForLoop:
		return g.genFor(ctx, w, n, sc)
	case *When:
		return g.genWhen(ctx, w, n, sc)
	case nil:
		return nil
	}
	return NewErrorf(m.Pos(), "unsupported markup node %T", m)
}

// genChildren writes a list of children. Runs of text and interpolation are
// merged into a single Text call; whitespace-only text is dropped.
func (g *Generator) genChildren(ctx *genContext, w *writer, children []Markup, sc scope) error {
	var run []Markup
	flush := func() {
		if len(run) == 0 {
			return
		}
		text := g.textExpression(ctx, run)
		run = nil
		if text == "" {
			return
		}
		ctx.imports.add(elementImports["Text"]...)
		if sc.lazy {
			w.open("item")
			defer w.close()
		}
		w.line("Text(text = " + text + ")")
	}
	for _, child := range children {
		switch child.(type) {
		case *Text, *Interpolation:
			run = append(run, child)
			continue
		}
		flush()
		if err := g.genMarkup(ctx, w, child, sc); err != nil {
			return err
		}
	}
	flush()
	return nil
}

var spaceRunRe = regexp.MustCompile(`\s+`)

// textExpression builds a Kotlin string expression from text and
// interpolation nodes. A lone interpolation becomes "${expr}" unless it is a
// string resource call, which is used directly. It returns "" when the
// nodes hold only whitespace.
func (g *Generator) textExpression(ctx *genContext, nodes []Markup) string {
	if len(nodes) == 1 {
		if in, ok := nodes[0].(*Interpolation); ok {
			expr := g.markupExpr(ctx, in.Expr)
			if strings.HasPrefix(expr, "stringResource(") && matchParen(expr, len("stringResource")) == len(expr)-1 {
				return expr
			}
			return `"${` + expr + `}"`
		}
	}

	var sb strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			sb.WriteString(escapeKotlinString(spaceRunRe.ReplaceAllString(n.Value, " ")))
		case *Interpolation:
			sb.WriteString("${" + g.markupExpr(ctx, n.Expr) + "}")
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return ""
	}
	return `"` + text + `"`
}

func escapeKotlinString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`).Replace(s)
}

// markupExpr rewrites an expression that appears in markup.
func (g *Generator) markupExpr(ctx *genContext, expr string) string {
	expr = g.transformExpr(ctx, expr)
	expr = transformStringResources(expr)
	expr = transformTernary(expr)
	if ctx.vm != nil {
		expr = ctx.vm.rewrite(expr)
	}
	return expr
}

// genBranch writes a control-flow body. Inside a lazy list each element
// gets its own item block.
func (g *Generator) genBranch(ctx *genContext, w *writer, body []Markup, sc scope) error {
	return g.genChildren(ctx, w, body, scope{lazy: sc.lazy})
}

func (g *Generator) genIf(ctx *genContext, w *writer, n *IfElse, sc scope) error {
	w.open("if (" + g.markupExpr(ctx, n.Condition) + ")")
	if err := g.genBranch(ctx, w, n.Then, sc); err != nil {
		return err
	}
	for _, ei := range n.ElseIfs {
		w.indent--
		w.open("} else if (" + g.markupExpr(ctx, ei.Condition) + ")")
		if err := g.genBranch(ctx, w, ei.Body, sc); err != nil {
			return err
		}
	}
	if n.Else != nil {
		w.indent--
		w.open("} else")
		if err := g.genBranch(ctx, w, n.Else, sc); err != nil {
			return err
		}
	}
	w.close()
	return nil
}

func (g *Generator) genFor(ctx *genContext, w *writer, n *ForLoop, sc scope) error {
	coll := g.markupExpr(ctx, n.Collection)
	if n.Empty != nil {
		w.open("if (" + coll + ".isEmpty())")
		if err := g.genBranch(ctx, w, n.Empty, sc); err != nil {
			return err
		}
		w.indent--
		w.open("} else")
		defer w.close()
	}

	if sc.lazy {
		return g.genLazyItems(ctx, w, n, coll)
	}
	if ctx.recycler[n] {
		if row, ok := recyclerRow(n); ok {
			g.genRecyclerLoop(ctx, w, n, coll, row)
			return nil
		}
	}

	if n.Index != "" {
		w.openLambda(coll + ".forEachIndexed { " + n.Index + ", " + n.Item + " ->")
	} else {
		w.openLambda(coll + ".forEach { " + n.Item + " ->")
	}
	if n.Key != "" {
		w.open("key(" + g.markupExpr(ctx, replaceIdent(n.Key, "it", n.Item)) + ")")
	}
	if err := g.genChildren(ctx, w, n.Body, scope{}); err != nil {
		return err
	}
	if n.Key != "" {
		w.close()
	}
	w.close()
	return nil
}

// genLazyItems writes items or itemsIndexed for a loop directly inside a
// lazy list.
func (g *Generator) genLazyItems(ctx *genContext, w *writer, n *ForLoop, coll string) error {
	var header string
	switch {
	case n.Index != "" && n.Key != "":
		key := g.markupExpr(ctx, replaceIdent(n.Key, "it", n.Item))
		header = "itemsIndexed(" + coll + ", key = { " + n.Index + ", " + n.Item + " -> " + key + " }) { " + n.Index + ", " + n.Item + " ->"
	case n.Index != "":
		header = "itemsIndexed(" + coll + ") { " + n.Index + ", " + n.Item + " ->"
	case n.Key != "":
		header = "items(" + coll + ", key = { " + g.markupExpr(ctx, n.Key) + " }) { " + n.Item + " ->"
	default:
		header = "items(" + coll + ") { " + n.Item + " ->"
	}
	w.openLambda(header)
	if err := g.genChildren(ctx, w, n.Body, scope{}); err != nil {
		return err
	}
	w.close()
	return nil
}

func (g *Generator) genWhen(ctx *genContext, w *writer, n *When, sc scope) error {
	w.open("when")
	for _, arm := range n.Arms {
		label := "else"
		if !arm.IsElse {
			label = g.markupExpr(ctx, arm.Condition)
		}
		sub := newWriter(0)
		if err := g.genMarkup(ctx, sub, arm.Body, scope{lazy: sc.lazy}); err != nil {
			return err
		}
		body := strings.TrimRight(sub.String(), "\n")
		if !strings.Contains(body, "\n") {
			w.line(label + " -> " + body)
			continue
		}
		w.open(label + " ->")
		w.block(body)
		w.close()
	}
	w.close()
	return nil
}
