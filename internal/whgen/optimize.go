package whgen

import (
	"strings"
)

// OptimizeLevel selects which list optimizations generation applies.
type OptimizeLevel int

const (
	// OptimizeDefault reports static collections but generates every loop
	// as a Compose forEach.
	OptimizeDefault OptimizeLevel = iota
	// OptimizeAggressive renders planned loops through a RecyclerView.
	OptimizeAggressive
)

func (l OptimizeLevel) String() string {
	if l == OptimizeAggressive {
		return "aggressive"
	}
	return "default"
}

// Confidence thresholds for static collection analysis.
const (
	HintThreshold = 50
	PlanThreshold = 80
)

// CollectionHint reports a @for loop over a collection that never changes
// after composition starts.
type CollectionHint struct {
	Collection string
	Confidence int
	Position   Position

	loop *ForLoop
}

// Planned reports whether the loop is confident enough to be rendered with
// a RecyclerView when optimizations are on.
func (h CollectionHint) Planned() bool { return h.Confidence >= PlanThreshold }

// StaticCollections scores every @for loop in the unit's markup whose
// collection is a declared state value or prop. Only loops scoring at least
// HintThreshold are returned, in source order.
//
// The score adds 40 for an immutable, non-derived state value, 30 when
// nothing in the unit writes the name, 20 for any non-derived state
// declaration and 10 when the loop body has no event handlers.
func StaticCollections(file *File) []CollectionHint {
	if file == nil || file.Markup == nil {
		return nil
	}
	var hints []CollectionHint
	walkLoops(file.Markup, func(loop *ForLoop) {
		if h, ok := scoreLoop(file, loop); ok {
			hints = append(hints, h)
		}
	})
	return hints
}

func scoreLoop(file *File, loop *ForLoop) (CollectionHint, bool) {
	name := strings.TrimSpace(loop.Collection)
	if !identRe.MatchString(name) {
		return CollectionHint{}, false
	}

	var state *StateDecl
	for _, s := range file.State {
		if s.Name == name {
			state = s
		}
	}
	isProp := false
	for _, p := range file.Props {
		if p.Name == name {
			isProp = true
		}
	}
	if state == nil && !isProp {
		return CollectionHint{}, false
	}

	score := 0
	if state != nil && !state.Mutable && !state.IsDerived {
		score += 40
	}
	if !isMutated(file, name) {
		score += 30
	}
	if state != nil && !state.IsDerived {
		score += 20
	}
	if !hasEventHandlers(loop.Body) {
		score += 10
	}
	if score < HintThreshold {
		return CollectionHint{}, false
	}
	return CollectionHint{Collection: name, Confidence: score, Position: loop.Position, loop: loop}, true
}

// walkLoops calls fn for every ForLoop under m, outermost first.
func walkLoops(m Markup, fn func(*ForLoop)) {
	walkAll := func(nodes []Markup) {
		for _, n := range nodes {
			walkLoops(n, fn)
		}
	}
	switch n := m.(type) {
	case *Element:
		for _, p := range n.Props {
			if mv, ok := p.Value.(MarkupValue); ok {
				walkLoops(mv.Markup, fn)
			}
		}
		walkAll(n.Children)
	case *Sequence:
		walkAll(n.Items)
	case *IfElse:
		walkAll(n.Then)
		for _, ei := range n.ElseIfs {
			walkAll(ei.Body)
		}
		walkAll(n.Else)
	case *ForLoop:
		fn(n)
		walkAll(n.Body)
		walkAll(n.Empty)
	case *When:
		for _, arm := range n.Arms {
			walkLoops(arm.Body, fn)
		}
	}
}

func hasEventHandlers(nodes []Markup) bool {
	for _, n := range nodes {
		if markupHasHandlers(n) {
			return true
		}
	}
	return false
}

func markupHasHandlers(m Markup) bool {
	switch n := m.(type) {
	case *Element:
		for _, p := range n.Props {
			if strings.HasPrefix(p.Name, "on") || strings.HasPrefix(p.Name, "bind:") {
				return true
			}
			if mv, ok := p.Value.(MarkupValue); ok && markupHasHandlers(mv.Markup) {
				return true
			}
		}
		return hasEventHandlers(n.Children)
	case *Sequence:
		return hasEventHandlers(n.Items)
	case *IfElse:
		if hasEventHandlers(n.Then) || hasEventHandlers(n.Else) {
			return true
		}
		for _, ei := range n.ElseIfs {
			if hasEventHandlers(ei.Body) {
				return true
			}
		}
	case *ForLoop:
		return hasEventHandlers(n.Body) || hasEventHandlers(n.Empty)
	case *When:
		for _, arm := range n.Arms {
			if markupHasHandlers(arm.Body) {
				return true
			}
		}
	}
	return false
}

// isMutated reports whether any function, hook or markup expression in the
// unit assigns name or calls a mutating collection method on it.
func isMutated(file *File, name string) bool {
	var codes []string
	for _, fn := range file.Functions {
		codes = append(codes, fn.Body)
	}
	for _, fn := range file.Helpers {
		codes = append(codes, fn.Body)
	}
	for _, h := range file.Hooks {
		codes = append(codes, h.Body)
	}
	collectExprs(file.Markup, &codes)

	for _, code := range codes {
		if writesName(code, name) {
			return true
		}
	}
	return false
}

var mutatingCalls = []string{".add", ".remove", ".clear(", ".set(", ".sort", ".shuffle(", ".retainAll("}

func writesName(code, name string) bool {
	found := false
	rewriteIdents(code, func(ident, rest string) (string, bool) {
		if found || ident != name {
			return "", false
		}
		trimmed := strings.TrimLeft(rest, " \t")
		switch {
		case strings.HasPrefix(trimmed, "++"), strings.HasPrefix(trimmed, "--"),
			strings.HasPrefix(trimmed, "+="), strings.HasPrefix(trimmed, "-="),
			strings.HasPrefix(trimmed, "*="), strings.HasPrefix(trimmed, "/="):
			found = true
		case strings.HasPrefix(trimmed, "=") && !strings.HasPrefix(trimmed, "=="):
			found = true
		default:
			for _, call := range mutatingCalls {
				if strings.HasPrefix(trimmed, call) {
					found = true
					break
				}
			}
		}
		return "", false
	})
	return found
}

// collectExprs appends every expression held by markup under m.
func collectExprs(m Markup, out *[]string) {
	all := func(nodes []Markup) {
		for _, n := range nodes {
			collectExprs(n, out)
		}
	}
	switch n := m.(type) {
	case *Element:
		for _, p := range n.Props {
			if mv, ok := p.Value.(MarkupValue); ok {
				collectExprs(mv.Markup, out)
				continue
			}
			*out = append(*out, p.ExprCode())
		}
		all(n.Children)
	case *Interpolation:
		*out = append(*out, n.Expr)
	case *Sequence:
		all(n.Items)
	case *IfElse:
		*out = append(*out, n.Condition)
		all(n.Then)
		for _, ei := range n.ElseIfs {
			*out = append(*out, ei.Condition)
			all(ei.Body)
		}
		all(n.Else)
	case *ForLoop:
		all(n.Body)
		all(n.Empty)
	case *When:
		for _, arm := range n.Arms {
			*out = append(*out, arm.Condition)
			collectExprs(arm.Body, out)
		}
	}
}

// recyclerRow returns the text nodes of a loop body that renders a single
// Text per item, or false when the body does anything else.
func recyclerRow(loop *ForLoop) ([]Markup, bool) {
	if loop.Key != "" {
		return nil, false
	}
	var row *Element
	for _, n := range loop.Body {
		switch n := n.(type) {
		case *Text:
			if strings.TrimSpace(n.Value) != "" {
				return nil, false
			}
		case *Element:
			if row != nil {
				return nil, false
			}
			row = n
		default:
			return nil, false
		}
	}
	if row == nil || row.Name != "Text" || len(row.Props) > 0 {
		return nil, false
	}
	for _, c := range row.Children {
		switch c.(type) {
		case *Text, *Interpolation:
		default:
			return nil, false
		}
	}
	return row.Children, true
}

// genRecyclerLoop renders a planned loop as an AndroidView hosting a
// RecyclerView whose rows are plain TextViews.
func (g *Generator) genRecyclerLoop(ctx *genContext, w *writer, n *ForLoop, coll string, row []Markup) {
	ctx.imports.add(
		"androidx.compose.ui.viewinterop.AndroidView",
		"androidx.recyclerview.widget.LinearLayoutManager",
		"androidx.recyclerview.widget.RecyclerView",
		"android.view.ViewGroup",
		"android.widget.TextView",
	)
	text := g.textExpression(ctx, row)
	if text == "" {
		text = `""`
	}

	w.line("AndroidView(")
	w.indent++
	w.openLambda("factory = { context ->")
	w.open("RecyclerView(context).apply")
	w.line("layoutManager = LinearLayoutManager(context)")
	w.close()
	w.indent--
	w.line("},")
	w.openLambda("update = { view ->")
	w.open("view.adapter = object : RecyclerView.Adapter<RecyclerView.ViewHolder>()")
	w.line("override fun getItemCount() = " + coll + ".size")
	w.blank()
	w.open("override fun onCreateViewHolder(parent: ViewGroup, viewType: Int): RecyclerView.ViewHolder")
	w.line("val padding = (16 * parent.resources.displayMetrics.density).toInt()")
	w.open("val textView = TextView(parent.context).apply")
	w.line("layoutParams = ViewGroup.LayoutParams(ViewGroup.LayoutParams.MATCH_PARENT, ViewGroup.LayoutParams.WRAP_CONTENT)")
	w.line("setPadding(padding, padding, padding, padding)")
	w.close()
	w.line("return object : RecyclerView.ViewHolder(textView) {}")
	w.close()
	w.blank()
	w.open("override fun onBindViewHolder(holder: RecyclerView.ViewHolder, position: Int)")
	if n.Index != "" {
		w.line("val " + n.Index + " = position")
	}
	w.line("val " + n.Item + " = " + coll + "[position]")
	w.line("(holder.itemView as TextView).text = " + text)
	w.close()
	w.close()
	w.close()
	w.indent--
	w.line(")")
}
