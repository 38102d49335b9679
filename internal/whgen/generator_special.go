package whgen

import (
	"fmt"
	"strings"
)

// genSpacer writes a Spacer. h and w (or height and width) set its size;
// with neither it is 8dp tall.
func (g *Generator) genSpacer(ctx *genContext, w *writer, el *Element) error {
	ctx.imports.add(elementImports["Spacer"]...)
	var parts []string
	for _, p := range el.Props {
		code := p.ExprCode()
		switch p.Name {
		case "h", "height":
			parts = append(parts, ".height("+dp(g.markupExpr(ctx, code))+")")
		case "w", "width":
			parts = append(parts, ".width("+dp(g.markupExpr(ctx, code))+")")
		case "size":
			parts = append(parts, ".size("+dp(g.markupExpr(ctx, code))+")")
		case "weight":
			parts = append(parts, ".weight("+g.markupExpr(ctx, code)+")")
		}
	}
	if len(parts) == 0 {
		parts = []string{".height(8.dp)"}
	}
	w.line("Spacer(modifier = Modifier" + strings.Join(parts, "") + ")")
	return nil
}

// genImage writes an Image element as a Coil AsyncImage. src is the model
// and alt the content description; fit picks the content scale, which
// defaults to Crop when both dimensions are fixed and Fit otherwise.
func (g *Generator) genImage(ctx *genContext, w *writer, el *Element, sc scope) error {
	ctx.imports.add(elementImports["AsyncImage"]...)

	var (
		model, description, scale string
		mod                       modifierChain
		extra                     []string
		hasWidth, hasHeight       bool
	)
	mod.scaffold = sc.scaffoldPadding
	for _, p := range el.Props {
		code := p.ExprCode()
		switch p.Name {
		case "src", "url", "model":
			model = g.textValue(ctx, code)
		case "alt", "contentDescription":
			description = g.textValue(ctx, code)
		case "fit", "contentScale":
			scale = enumValue(code, "ContentScale", contentScales)
		case "width", "height":
			v, fraction := sizeValue(g.markupExpr(ctx, code))
			if p.Name == "width" {
				hasWidth = true
			} else {
				hasHeight = true
			}
			switch {
			case fraction && p.Name == "width":
				mod.sizing = append(mod.sizing, ".fillMaxWidth("+v+")")
			case fraction:
				mod.sizing = append(mod.sizing, ".fillMaxHeight("+v+")")
			default:
				mod.sizing = append(mod.sizing, "."+p.Name+"("+v+")")
			}
		case "size":
			hasWidth, hasHeight = true, true
			mod.sizing = append(mod.sizing, ".size("+dp(g.markupExpr(ctx, code))+")")
		case "fillMaxWidth", "fillMaxSize":
			if code == "true" {
				mod.sizing = append(mod.sizing, "."+p.Name+"()")
			}
		case "modifier":
			user, err := userModifier(g.markupExpr(ctx, code))
			if err != nil {
				return NewErrorWithHint(p.Position, err.Error(), "")
			}
			mod.user = user
		case "onClick":
			mod.click = ".clickable " + g.handlerValue(ctx, "onClick", code)
		default:
			if isPaddingProp(p.Name) {
				mod.padding.set(p.Name, code)
				continue
			}
			args, err := g.genericArg(ctx, el, p.Name, code)
			if err != nil {
				return err
			}
			extra = append(extra, args...)
		}
	}
	if model == "" {
		return NewErrorWithHint(el.Position, "<"+el.Name+"> requires a src", `write <Image src="https://..." />`)
	}
	if description == "" {
		description = "null"
	}
	if scale == "" {
		scale = "ContentScale.Fit"
		if hasWidth && hasHeight {
			scale = "ContentScale.Crop"
		}
	}

	args := []string{
		"model = " + model,
		"contentDescription = " + description,
		"contentScale = " + scale,
	}
	args = append(args, extra...)
	if m := mod.render(); m != "" {
		args = append(args, "modifier = "+m)
	}
	writeCallHeader(w, "AsyncImage", args, "")
	return nil
}

// genDropdown expands a DropdownMenu with value, onValueChange (or
// bind:value) and items into an exposed dropdown: a read-only text field
// anchoring a menu with one entry per item.
func (g *Generator) genDropdown(ctx *genContext, w *writer, el *Element) error {
	ctx.imports.add(elementImports["DropdownMenu"]...)
	ctx.optIn = true

	var value, items, label, onSelect string
	for _, p := range el.Props {
		code := strings.TrimSpace(p.ExprCode())
		switch p.Name {
		case "bind:value":
			value = g.markupExpr(ctx, code)
			onSelect = g.assign(ctx, code, "option")
		case "value":
			value = g.markupExpr(ctx, code)
		case "items", "options":
			items = g.markupExpr(ctx, transformList(code, false))
		case "label":
			label = g.textValue(ctx, code)
		case "onValueChange":
			handler := transformLambda(code)
			if identRe.MatchString(handler) {
				onSelect = g.markupExpr(ctx, handler+"(option)")
			} else {
				onSelect = "onSelect(option)"
				w.line("val onSelect: (String) -> Unit = " + g.markupExpr(ctx, handler))
			}
		}
	}
	var missing []string
	if value == "" {
		missing = append(missing, "value")
	}
	if onSelect == "" {
		missing = append(missing, "onValueChange")
	}
	if items == "" {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return NewErrorWithHint(el.Position,
			fmt.Sprintf("<DropdownMenu> is missing %s", strings.Join(missing, ", ")),
			"write <DropdownMenu bind:value={choice} items={options} />")
	}

	ctx.dropdowns++
	expanded := "dropdownExpanded"
	if ctx.dropdowns > 1 {
		expanded = fmt.Sprintf("dropdownExpanded%d", ctx.dropdowns)
	}

	w.linef("var %s by remember { mutableStateOf(false) }", expanded)
	w.line("ExposedDropdownMenuBox(")
	w.indent++
	w.linef("expanded = %s,", expanded)
	w.linef("onExpandedChange = { %s = !%s }", expanded, expanded)
	w.indent--
	w.open(")")

	field := []string{
		"value = " + value,
		"onValueChange = {}",
		"readOnly = true",
	}
	if label != "" {
		field = append(field, "label = { Text("+label+") }")
	}
	field = append(field,
		"trailingIcon = { ExposedDropdownMenuDefaults.TrailingIcon(expanded = "+expanded+") }",
		"modifier = Modifier.menuAnchor().fillMaxWidth()",
	)
	writeCallHeader(w, "OutlinedTextField", field, "")

	w.line("ExposedDropdownMenu(")
	w.indent++
	w.linef("expanded = %s,", expanded)
	w.linef("onDismissRequest = { %s = false }", expanded)
	w.indent--
	w.open(")")
	w.openLambda(items + ".forEach { option ->")
	w.line("DropdownMenuItem(")
	w.indent++
	w.line("text = { Text(option) },")
	w.open("onClick =")
	w.line(onSelect)
	w.linef("%s = false", expanded)
	w.close()
	w.indent--
	w.line(")")
	w.close()
	w.close()
	w.close()
	return nil
}
