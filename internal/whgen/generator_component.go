package whgen

import (
	"regexp"
	"strings"
)

var (
	storeCallRe   = regexp.MustCompile(`^([A-Z][A-Za-z0-9_]*)\((.*)\)$`)
	launchStartRe = regexp.MustCompile(`(^|\n|[{;])(\s*)launch(\s*[({])`)
)

// generateComponent emits a plain @Composable function with local state.
func (g *Generator) generateComponent(ctx *genContext) (Result, error) {
	file := ctx.file
	ctx.imports.add(pkgRuntime + ".Composable")

	markup := newWriter(1)
	if !file.ImplicitMarkup {
		if err := g.genMarkup(ctx, markup, file.Markup, scope{}); err != nil {
			return nil, err
		}
	}

	var needScope bool
	funcs := newWriter(1)
	for _, fn := range file.Functions {
		body := g.transformBody(ctx, fn.Body, g.cfg.Name)
		if !fn.IsSuspend {
			var changed bool
			body, changed = prefixLaunch(body)
			needScope = needScope || changed
		}
		funcs.blank()
		g.writeFunction(funcs, fn, fn.IsSuspend, body)
	}

	effects := newWriter(1)
	if g.writeEffects(ctx, effects) {
		needScope = true
	}
	needScope = needScope || strings.Contains(markup.String(), "coroutineScope.launch")

	state := newWriter(1)
	if err := g.writeLocalState(ctx, state); err != nil {
		return nil, err
	}

	body := newWriter(0)
	if usesFetch(file) {
		body.line(httpClientDecl)
		body.blank()
	}
	if ctx.optIn {
		body.line("@OptIn(ExperimentalMaterial3Api::class)")
	}
	body.line("@Composable")
	writeSignature(body, g.cfg.Name, g.componentParams(ctx, true))
	body.indent++

	sections := []string{state.String()}
	if g.needsDispatcherScope(file) {
		sections = append(sections, indentUnit+"val dispatcherScope = rememberCoroutineScope()\n")
	}
	if needScope {
		sections = append(sections, indentUnit+"val coroutineScope = rememberCoroutineScope()\n")
	}
	sections = append(sections, funcs.String(), effects.String(), markup.String())
	writeSections(body, sections)
	body.close()

	if err := g.writeTrailing(ctx, body, nil); err != nil {
		return nil, err
	}
	return Single{Content: g.assemble(ctx, body.String())}, nil
}

// writeSections appends pre-indented sections separated by blank lines.
func writeSections(w *writer, sections []string) {
	first := true
	for _, s := range sections {
		s = strings.Trim(s, "\n")
		if s == "" {
			continue
		}
		if !first {
			w.buf.WriteByte('\n')
		}
		first = false
		w.buf.WriteString(s)
		w.buf.WriteByte('\n')
	}
}

// writeSignature writes fun Name(params) {, putting the parameters on their
// own lines when there is more than one.
func writeSignature(w *writer, name string, params []string) {
	switch len(params) {
	case 0:
		w.line("fun " + name + "() {")
	case 1:
		w.line("fun " + name + "(" + params[0] + ") {")
	default:
		w.line("fun " + name + "(")
		w.indent++
		for i, p := range params {
			if i < len(params)-1 {
				p += ","
			}
			w.line(p)
		}
		w.indent--
		w.line(") {")
	}
}

// componentParams returns the parameter list of the composable: the
// NavController and route params of a screen, then the declared props.
func (g *Generator) componentParams(ctx *genContext, routeParams bool) []string {
	var params []string
	if ctx.screen {
		params = append(params, "navController: NavController")
		if routeParams {
			for _, name := range RouteParams(ctx.file) {
				params = append(params, name+": String")
			}
		}
	}
	for _, prop := range ctx.file.Props {
		p := prop.Name + ": " + prop.Type
		switch {
		case prop.Default != "":
			p += " = " + g.transformValue(ctx, prop.Default)
		case strings.HasSuffix(prop.Type, "?"):
			p += " = null"
		}
		params = append(params, p)
	}
	return params
}

// writeLocalState writes remembered state, plain vals, store bindings and
// derived values of a non-promoted component.
func (g *Generator) writeLocalState(ctx *genContext, w *writer) error {
	var vals []*StateDecl
	for _, s := range ctx.file.State {
		if !s.Mutable {
			vals = append(vals, s)
			continue
		}
		value := g.transformValue(ctx, s.Value)
		if s.Type != "" {
			w.linef("var %s by remember { mutableStateOf<%s>(%s) }", s.Name, s.Type, value)
		} else {
			w.linef("var %s by remember { mutableStateOf(%s) }", s.Name, value)
		}
	}
	if len(vals) > 0 && len(vals) < len(ctx.file.State) {
		w.blank()
	}
	for _, s := range vals {
		g.writeVal(ctx, w, s)
	}
	return nil
}

// writeVal writes one immutable declaration of a composable body.
func (g *Generator) writeVal(ctx *genContext, w *writer, s *StateDecl) {
	value := strings.TrimSpace(s.Value)
	switch {
	case s.IsDerived:
		inner := g.transformExpr(ctx, value)
		if ctx.vm != nil {
			inner = ctx.vm.rewrite(inner)
		}
		w.linef("val %s by remember { %s }", s.Name, inner)
		return
	case value == "$scope()":
		w.linef("val %s = rememberCoroutineScope()", s.Name)
		return
	}

	if m := storeCallRe.FindStringSubmatch(value); m != nil {
		if info, ok := g.registry.Lookup(m[1]); ok && info.Source == ExplicitStore {
			fn := "viewModel"
			if info.NeedsInjection {
				fn = "hiltViewModel"
			}
			w.linef("val %s = %s<%s>(key = %q)", s.Name, fn, m[1], s.Name)
			w.linef("val %sUiState by %s.uiState.collectAsState()", s.Name, s.Name)
			return
		}
	}

	value = g.transformValue(ctx, value)
	if ctx.vm != nil {
		value = ctx.vm.rewrite(value)
	}
	if s.Type != "" {
		w.linef("val %s: %s = %s", s.Name, s.Type, value)
	} else {
		w.linef("val %s = %s", s.Name, value)
	}
}

// transformValue rewrites an initializer: range and list literals plus the
// expression rewrites.
func (g *Generator) transformValue(ctx *genContext, value string) string {
	value = transformRange(value)
	value = transformList(value, false)
	return g.transformExpr(ctx, value)
}

// transformExpr applies the expression rewrites used in composable code.
func (g *Generator) transformExpr(ctx *genContext, expr string) string {
	expr = transformRoutes(expr)
	expr = transformFetch(expr)
	expr = transformLog(expr, g.cfg.Name)
	expr = transformFFICalls(expr, ctx.ffi)
	if ctx.screen {
		expr = strings.ReplaceAll(expr, "$navigate(", "navController.navigate(")
		if ctx.vm != nil {
			expr = routeParamRe.ReplaceAllString(expr, "viewModel.$1")
		} else {
			expr = routeParamRe.ReplaceAllString(expr, "$1")
		}
	}
	return expr
}

// writeEffects writes the lifecycle hooks as effects. It reports whether a
// coroutine scope is needed for launches outside a LaunchedEffect.
func (g *Generator) writeEffects(ctx *genContext, w *writer) bool {
	var mounts, disposes []*LifecycleHook
	for _, h := range ctx.file.Hooks {
		if h.Kind == HookMount {
			mounts = append(mounts, h)
		} else {
			disposes = append(disposes, h)
		}
	}

	if len(disposes) == 0 {
		for _, h := range mounts {
			w.blank()
			w.open("LaunchedEffect(Unit)")
			w.block(g.transformBody(ctx, h.Body, g.cfg.Name))
			w.close()
		}
		return false
	}

	needScope := false
	w.blank()
	w.open("DisposableEffect(Unit)")
	for _, h := range mounts {
		body, changed := prefixLaunch(g.transformBody(ctx, h.Body, g.cfg.Name))
		needScope = needScope || changed
		w.block(body)
	}
	w.open("onDispose")
	for _, h := range disposes {
		w.block(g.transformBody(ctx, h.Body, g.cfg.Name))
	}
	w.close()
	w.close()
	return needScope
}

// prefixLaunch qualifies statement-initial launch calls with the remembered
// coroutine scope.
func prefixLaunch(body string) (string, bool) {
	out := launchStartRe.ReplaceAllString(body, "${1}${2}coroutineScope.launch${3}")
	return out, out != body
}

// needsDispatcherScope reports whether any io/cpu/main block appears in
// code that runs inside the composable.
func (g *Generator) needsDispatcherScope(file *File) bool {
	for _, code := range fileExpressions(file) {
		if usesDispatchers(code) {
			return true
		}
	}
	return false
}

// writeHelper writes a helper composable declared after the markup.
func (g *Generator) writeHelper(ctx *genContext, w *writer, fn *FuncDecl) error {
	saved := ctx.vm
	ctx.vm = nil
	defer func() { ctx.vm = saved }()

	w.line("@Composable")
	sig := "fun " + fn.Name + "(" + fn.Params + ")"
	if fn.ReturnType != "" {
		sig += ": " + fn.ReturnType
	}
	w.open(sig)
	if err := g.genMarkup(ctx, w, fn.Markup, scope{}); err != nil {
		return err
	}
	w.close()
	return nil
}
