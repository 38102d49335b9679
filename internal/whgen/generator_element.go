package whgen

import (
	"regexp"
	"strings"
)

// clickElements take onClick as a parameter. Other framework elements get
// a clickable modifier instead.
var clickElements = map[string]bool{
	"Button": true, "TextButton": true, "OutlinedButton": true, "ElevatedButton": true,
	"IconButton": true, "FloatingActionButton": true, "Card": true, "Tab": true,
	"FilterChip": true, "DropdownMenuItem": true, "RadioButton": true,
}

// buttonElements render a text prop as a Text child.
var buttonElements = map[string]bool{
	"Button": true, "TextButton": true, "OutlinedButton": true, "ElevatedButton": true,
	"FloatingActionButton": true,
}

var lazyElements = map[string]bool{"LazyColumn": true, "LazyRow": true}

// slotProps lists the props of an element that take composable content. A
// true value marks a text slot, where a plain expression is wrapped in Text.
var slotProps = map[string]map[string]bool{
	"Scaffold":          {"topBar": false, "bottomBar": false, "floatingActionButton": false, "snackbarHost": false},
	"TopAppBar":         {"title": true, "navigationIcon": false, "actions": false},
	"AlertDialog":       {"title": true, "text": true, "confirmButton": false, "dismissButton": false, "icon": false},
	"Tab":               {"text": true, "icon": false},
	"FilterChip":        {"label": true, "leadingIcon": false, "trailingIcon": false},
	"TextField":         {"label": true, "placeholder": true, "leadingIcon": false, "trailingIcon": false, "supportingText": true},
	"OutlinedTextField": {"label": true, "placeholder": true, "leadingIcon": false, "trailingIcon": false, "supportingText": true},
}

// scaffoldContent are the elements that receive Scaffold content padding
// when they are the first child of a Scaffold.
var scaffoldContent = map[string]bool{"Column": true, "Row": true, "Box": true, "LazyColumn": true}

var keyboardTypes = map[string]string{
	"email": "Email", "number": "Number", "phone": "Phone", "url": "Uri",
	"decimal": "Decimal", "text": "Text",
}

var colorProps = map[string]bool{
	"color": true, "tint": true, "containerColor": true, "contentColor": true,
}

// call is the Kotlin call an element turns into.
type call struct {
	name string
	args []string
	mod  modifierChain
	// extra holds children prepended to the element's own, such as the
	// Text of a button's text prop.
	extra []Markup
	// lambdaParams is written after the opening brace of the content
	// lambda, e.g. "paddingValues ->".
	lambdaParams string
}

// modifierChain collects Modifier calls in a fixed order.
type modifierChain struct {
	scaffold   bool
	sizing     []string
	click      string
	background []string
	padding    paddingSides
	user       string
}

// render returns the modifier expression, or "" when nothing was set.
func (m *modifierChain) render() string {
	var parts []string
	if m.scaffold {
		parts = append(parts, ".padding(paddingValues)")
	}
	parts = append(parts, m.sizing...)
	if m.click != "" {
		parts = append(parts, m.click)
	}
	parts = append(parts, m.background...)
	if p := m.padding.modifier(); p != "" {
		parts = append(parts, p)
	}

	base := "Modifier"
	if m.user != "" {
		if rest, ok := strings.CutPrefix(m.user, "Modifier"); ok {
			if rest != "" {
				parts = append(parts, strings.TrimSpace(rest))
			}
		} else {
			base = m.user
		}
	}
	switch len(parts) {
	case 0:
		if base == "Modifier" {
			return ""
		}
		return base
	case 1:
		return base + parts[0]
	}
	return base + "\n" + indentUnit + strings.Join(parts, "\n"+indentUnit)
}

var backgroundLiteralRe = regexp.MustCompile(`\.background\(\s*"([^"]*)"\s*\)`)

// userModifier converts color literals inside .background("...") calls.
func userModifier(code string) (string, error) {
	var firstErr error
	out := backgroundLiteralRe.ReplaceAllStringFunc(code, func(m string) string {
		lit := backgroundLiteralRe.FindStringSubmatch(m)[1]
		c, err := colorLiteral(lit)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return m
		}
		return ".background(" + c + ")"
	})
	return out, firstErr
}

// genElement writes one element.
func (g *Generator) genElement(ctx *genContext, w *writer, el *Element, sc scope) error {
	switch el.Name {
	case "DropdownMenu":
		if el.Prop("items") != nil {
			return g.genDropdown(ctx, w, el)
		}
	case "Image", "AsyncImage":
		return g.genImage(ctx, w, el, sc)
	case "Spacer":
		return g.genSpacer(ctx, w, el)
	}

	ctx.imports.add(elementImports[el.Name]...)
	if optInElements[el.Name] {
		ctx.optIn = true
	}

	c, err := g.buildCall(ctx, el)
	if err != nil {
		return err
	}
	c.mod.scaffold = sc.scaffoldPadding

	children := append(c.extra, el.Children...)
	if el.Name == "Text" {
		if el.Prop("text") == nil {
			if text := g.textExpression(ctx, children); text != "" {
				c.args = append([]string{"text = " + text}, c.args...)
			}
		}
		children = nil
	}
	if mod := c.mod.render(); mod != "" {
		c.args = append(c.args, "modifier = "+mod)
	}

	hasBody := len(children) > 0 || (!el.SelfClosing && el.Name != "Text")
	if !hasBody {
		writeCallHeader(w, c.name, c.args, "")
		return nil
	}

	childScope := scope{lazy: lazyElements[el.Name]}
	body := newWriter(w.indent + 1)
	for i, child := range children {
		cs := childScope
		if el.Name == "Scaffold" && i == firstElementIndex(children) {
			if e, ok := child.(*Element); ok && scaffoldContent[e.Name] {
				cs.scaffoldPadding = true
				c.lambdaParams = "paddingValues ->"
			}
		}
		if err := g.genChildren(ctx, body, []Markup{child}, cs); err != nil {
			return err
		}
	}

	content := body.String()
	if content == "" {
		writeCallHeader(w, c.name, c.args, " {}")
		return nil
	}
	open := " {"
	if c.lambdaParams != "" {
		open += " " + c.lambdaParams
	}
	writeCallHeader(w, c.name, c.args, open)
	w.raw(content)
	w.line("}")
	return nil
}

func firstElementIndex(children []Markup) int {
	for i, c := range children {
		if _, ok := c.(*Element); ok {
			return i
		}
	}
	return -1
}

// writeCallHeader writes Name(args) followed by suffix. Arguments go on
// separate lines when there is more than one, or when the single argument
// is long or spans lines.
func writeCallHeader(w *writer, name string, args []string, suffix string) {
	switch {
	case len(args) == 0 && suffix == "":
		w.line(name + "()")
	case len(args) == 0:
		w.line(name + suffix)
	case len(args) == 1 && len(args[0]) <= 40 && !strings.Contains(args[0], "\n"):
		w.line(name + "(" + args[0] + ")" + suffix)
	default:
		w.line(name + "(")
		w.indent++
		for i, a := range args {
			if i < len(args)-1 {
				a += ","
			}
			w.line(a)
		}
		w.indent--
		w.line(")" + suffix)
	}
}

// buildCall maps the props of el to call arguments and modifiers.
func (g *Generator) buildCall(ctx *genContext, el *Element) (*call, error) {
	c := &call{name: el.Name}
	if el.Name == "Divider" {
		c.name = "HorizontalDivider"
	}
	known := elementImports[el.Name] != nil
	lazy := lazyElements[el.Name]
	var contentPadding paddingSides
	hasContentPadding := false

	for _, p := range el.Props {
		if mv, ok := p.Value.(MarkupValue); ok {
			arg, err := g.slotLambda(ctx, p.Name, mv.Markup)
			if err != nil {
				return nil, err
			}
			c.args = append(c.args, arg)
			continue
		}
		code := p.ExprCode()

		if !known {
			arg, err := g.genericArg(ctx, el, p.Name, code)
			if err != nil {
				return nil, err
			}
			c.args = append(c.args, arg...)
			continue
		}

		handled, err := g.elementProp(ctx, el, c, p.Name, code)
		if err != nil {
			return nil, NewErrorWithHint(p.Position, err.Error(), "colors are written \"#RGB\", \"#RRGGBB\", \"#RRGGBBAA\", rgb(r, g, b) or a theme color name")
		}
		if handled {
			continue
		}

		switch {
		case isPaddingProp(p.Name) && lazy:
			contentPadding.set(p.Name, code)
			hasContentPadding = true
		case isPaddingProp(p.Name):
			c.mod.padding.set(p.Name, code)
		default:
			arg, err := g.genericArg(ctx, el, p.Name, code)
			if err != nil {
				return nil, NewErrorWithHint(p.Position, err.Error(), "")
			}
			c.args = append(c.args, arg...)
		}
	}

	if hasContentPadding {
		pad := strings.TrimPrefix(contentPadding.modifier(), ".padding")
		c.args = append(c.args, "contentPadding = PaddingValues"+pad)
	}
	if el.Name == "Icon" && el.Prop("contentDescription") == nil {
		c.args = append(c.args, "contentDescription = null")
	}
	return c, nil
}

// elementProp applies the rule table to one prop of a framework element.
// It reports false when no rule matched.
func (g *Generator) elementProp(ctx *genContext, el *Element, c *call, name, code string) (bool, error) {
	lit, isLit := unquote(code)

	switch name {
	case "modifier":
		mod, err := userModifier(g.markupExpr(ctx, code))
		c.mod.user = mod
		return true, err

	case "fillMaxWidth", "fillMaxSize", "fillMaxHeight":
		switch code {
		case "true":
			c.mod.sizing = append(c.mod.sizing, "."+name+"()")
		case "false":
		default:
			c.mod.sizing = append(c.mod.sizing, "."+name+"("+g.markupExpr(ctx, code)+")")
		}
		return true, nil

	case "width", "height":
		v, fraction := sizeValue(g.markupExpr(ctx, code))
		switch {
		case fraction && name == "width":
			c.mod.sizing = append(c.mod.sizing, ".fillMaxWidth("+v+")")
		case fraction:
			c.mod.sizing = append(c.mod.sizing, ".fillMaxHeight("+v+")")
		default:
			c.mod.sizing = append(c.mod.sizing, "."+name+"("+v+")")
		}
		return true, nil

	case "size":
		c.mod.sizing = append(c.mod.sizing, ".size("+dp(g.markupExpr(ctx, code))+")")
		return true, nil

	case "background", "backgroundColor":
		color, err := colorValue(g.markupExpr(ctx, code))
		if err != nil {
			return true, err
		}
		if el.Name == "Card" {
			c.args = append(c.args, "colors = CardDefaults.cardColors(containerColor = "+color+")")
			return true, nil
		}
		c.mod.background = append(c.mod.background, ".background("+color+")")
		return true, nil

	case "onClick":
		handler := g.handlerValue(ctx, "onClick", code)
		if clickElements[el.Name] {
			c.args = append(c.args, "onClick = "+handler)
		} else {
			c.mod.click = ".clickable " + handler
		}
		return true, nil

	case "bind:value":
		target := strings.TrimSpace(code)
		read := g.markupExpr(ctx, target)
		parse := ""
		if el.Name == "TextField" || el.Name == "OutlinedTextField" {
			parse = numericParser(ctx.stateTypes[target])
		}
		if parse != "" {
			c.args = append(c.args,
				"value = "+read+".toString()",
				"onValueChange = { it."+parse+"()?.let { v -> "+g.assign(ctx, target, "v")+" } }")
		} else {
			c.args = append(c.args,
				"value = "+read,
				"onValueChange = { "+g.assign(ctx, target, "it")+" }")
		}
		return true, nil

	case "bind:checked":
		target := strings.TrimSpace(code)
		c.args = append(c.args,
			"checked = "+g.markupExpr(ctx, target),
			"onCheckedChange = { "+g.assign(ctx, target, "it")+" }")
		return true, nil
	}

	if colorProps[name] {
		color, err := colorValue(g.markupExpr(ctx, code))
		if err != nil {
			return true, err
		}
		c.args = append(c.args, name+" = "+color)
		return true, nil
	}

	if slots, ok := slotProps[el.Name]; ok {
		if textSlot, ok := slots[name]; ok {
			c.args = append(c.args, name+" = "+g.slotExpr(ctx, code, textSlot))
			return true, nil
		}
	}

	switch el.Name {
	case "Text":
		switch name {
		case "fontSize":
			c.args = append(c.args, "fontSize = "+sp(g.markupExpr(ctx, code)))
			return true, nil
		case "fontWeight":
			c.args = append(c.args, "fontWeight = "+enumValue(code, "FontWeight", fontWeights))
			return true, nil
		case "fontFamily":
			c.args = append(c.args, "fontFamily = "+enumValue(code, "FontFamily", fontFamilies))
			return true, nil
		case "textAlign":
			c.args = append(c.args, "textAlign = "+enumValue(code, "TextAlign", textAligns))
			return true, nil
		case "style":
			if isLit && identRe.MatchString(lit) {
				c.args = append(c.args, "style = MaterialTheme.typography."+lit)
				return true, nil
			}
		case "text":
			c.args = append([]string{"text = " + g.textValue(ctx, code)}, c.args...)
			return true, nil
		}

	case "Column", "LazyColumn":
		switch name {
		case "spacing":
			c.args = append(c.args, "verticalArrangement = Arrangement.spacedBy("+dp(g.markupExpr(ctx, code))+")")
			return true, nil
		case "horizontalAlignment", "align":
			if isLit {
				c.args = append(c.args, "horizontalAlignment = "+enumValue(code, "Alignment", horizontalAlignments))
				return true, nil
			}
		}

	case "Row", "LazyRow":
		switch name {
		case "spacing":
			c.args = append(c.args, "horizontalArrangement = Arrangement.spacedBy("+dp(g.markupExpr(ctx, code))+")")
			return true, nil
		case "verticalAlignment", "align":
			if isLit {
				c.args = append(c.args, "verticalAlignment = "+enumValue(code, "Alignment", verticalAlignments))
				return true, nil
			}
		}

	case "Box":
		if (name == "alignment" || name == "contentAlignment") && isLit {
			c.args = append(c.args, "contentAlignment = "+enumValue(code, "Alignment", boxAlignments))
			return true, nil
		}

	case "Card":
		if name == "elevation" {
			c.args = append(c.args, "elevation = CardDefaults.cardElevation(defaultElevation = "+dp(g.markupExpr(ctx, code))+")")
			return true, nil
		}

	case "TextField", "OutlinedTextField":
		if name == "type" && isLit {
			if lit == "password" {
				c.args = append(c.args, "visualTransformation = PasswordVisualTransformation()")
				return true, nil
			}
			if kt, ok := keyboardTypes[lit]; ok {
				c.args = append(c.args, "keyboardOptions = KeyboardOptions(keyboardType = KeyboardType."+kt+")")
				return true, nil
			}
		}

	case "Icon":
		if (name == "icon" || name == "name") && isLit {
			c.args = append([]string{"imageVector = Icons.Default." + capitalize(lit)}, c.args...)
			return true, nil
		}
	}

	if buttonElements[el.Name] && name == "text" {
		c.extra = append(c.extra, &Interpolation{Expr: code})
		if isLit {
			c.extra[len(c.extra)-1] = &Text{Value: lit}
		}
		return true, nil
	}
	return false, nil
}

// genericArg renders name = value for props without a specific rule.
// Handler props are normalized to lambdas.
func (g *Generator) genericArg(ctx *genContext, el *Element, name, code string) ([]string, error) {
	switch {
	case name == "bind:value" || name == "bind:checked":
		c := &call{}
		if _, err := g.elementProp(ctx, el, c, name, code); err != nil {
			return nil, err
		}
		return c.args, nil
	case isHandlerProp(name):
		return []string{name + " = " + g.handlerValue(ctx, name, code)}, nil
	}
	if strings.Contains(code, "=>") {
		code = transformLambda(code)
	}
	return []string{name + " = " + g.markupExpr(ctx, code)}, nil
}

// isHandlerProp matches onX prop names.
func isHandlerProp(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "on") && name[2] >= 'A' && name[2] <= 'Z'
}

// handlerValue normalizes an event handler to a lambda. A bare function
// name becomes a call for zero-argument handlers and a function reference
// otherwise.
func (g *Generator) handlerValue(ctx *genContext, prop, code string) string {
	code = transformLambda(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(code, "{"), strings.HasPrefix(code, "::"), code == "null":
	case identRe.MatchString(code) && g.isLocalFunction(ctx, code):
		if zeroArgHandler(prop) {
			code = "{ " + code + "() }"
		} else if ctx.vm != nil {
			return "viewModel::" + code
		} else {
			code = "::" + code
		}
	case identRe.MatchString(code):
		if zeroArgHandler(prop) {
			code = "{ " + code + "() }"
		}
	default:
		code = "{ " + code + " }"
	}
	code = transformDispatchers(code, ctx.dispatchScope)
	code = g.markupExpr(ctx, code)
	if ctx.vm == nil {
		code, _ = prefixLaunch(code)
	}
	return code
}

func zeroArgHandler(prop string) bool {
	switch prop {
	case "onClick", "onDismissRequest", "onDismiss", "onLongClick", "onRefresh":
		return true
	}
	return false
}

func (g *Generator) isLocalFunction(ctx *genContext, name string) bool {
	for _, fn := range ctx.file.Functions {
		if fn.Name == name {
			return true
		}
	}
	return false
}

// assign renders target = value, routed through the ViewModel inside a
// promoted wrapper.
func (g *Generator) assign(ctx *genContext, target, value string) string {
	stmt := target + " = " + value
	if ctx.vm != nil {
		return ctx.vm.rewrite(stmt)
	}
	return stmt
}

// textValue renders a text prop: literals stay literals, expressions go
// through the markup rewrites.
func (g *Generator) textValue(ctx *genContext, code string) string {
	if _, ok := unquote(code); ok {
		return code
	}
	return g.markupExpr(ctx, code)
}

// slotExpr renders an expression given to a slot prop. Text slots wrap the
// value in a Text call.
func (g *Generator) slotExpr(ctx *genContext, code string, textSlot bool) string {
	code = strings.TrimSpace(code)
	if strings.HasPrefix(code, "{") || !textSlot {
		return g.markupExpr(ctx, code)
	}
	ctx.imports.add(elementImports["Text"]...)
	return "{ Text(" + g.textValue(ctx, code) + ") }"
}

// slotLambda renders nested markup passed as a prop as a composable lambda.
func (g *Generator) slotLambda(ctx *genContext, name string, m Markup) (string, error) {
	sub := newWriter(1)
	if err := g.genMarkup(ctx, sub, m, scope{}); err != nil {
		return "", err
	}
	return name + " = {\n" + sub.String() + "}", nil
}
