package whgen

import (
	"strings"
)

// generatePromoted splits a promoted component into a thin composable
// wrapper (the primary artifact) and a ViewModel holding its state,
// functions and lifecycle hooks.
func (g *Generator) generatePromoted(ctx *genContext, info StoreInfo) (Result, error) {
	vmName := g.cfg.Name + "ViewModel"

	ctx.imports = importSet{}
	ctx.dispatchScope = "viewModelScope"
	vm, err := g.promotedViewModel(ctx, vmName, info.RouteParams)
	if err != nil {
		return nil, err
	}

	ctx.imports = importSet{}
	ctx.dispatchScope = "dispatcherScope"
	wrapper, err := g.promotedWrapper(ctx, vmName)
	if err != nil {
		return nil, err
	}

	return Multiple{Artifacts: []Artifact{
		{Suffix: "", Content: wrapper},
		{Suffix: "ViewModel", Content: vm},
	}}, nil
}

// promotedMembers are the plain vals that move into the ViewModel as
// getters. Derived values, coroutine scopes and store bindings stay in the
// wrapper, which can call composable functions.
func (g *Generator) promotedMembers(file *File) []*StateDecl {
	var out []*StateDecl
	for _, s := range file.State {
		if s.Mutable || g.wrapperLocal(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (g *Generator) wrapperLocal(s *StateDecl) bool {
	if s.Mutable {
		return false
	}
	value := strings.TrimSpace(s.Value)
	if s.IsDerived || value == "$scope()" {
		return true
	}
	if m := storeCallRe.FindStringSubmatch(value); m != nil {
		info, ok := g.registry.Lookup(m[1])
		return ok && info.Source == ExplicitStore
	}
	return false
}

func (g *Generator) promotedViewModel(ctx *genContext, vmName string, routeParams []string) (string, error) {
	file := ctx.file
	ctx.imports.add("androidx.lifecycle.ViewModel")

	record := stateRecord{typeName: "UiState", flow: "uiState"}
	for _, s := range file.State {
		if !s.Mutable {
			continue
		}
		f, err := newStateField(s.Name, s.Type, s.Value, g.cfg.Name, s.Position)
		if err != nil {
			return "", err
		}
		record.fields = append(record.fields, f)
	}

	w := newWriter(0)
	for _, block := range file.KotlinBlocks {
		w.blank()
		w.block(transformFFICalls(block.Content, ctx.ffi))
	}
	for _, class := range file.Classes {
		w.blank()
		g.writePlainClass(ctx, w, class)
	}
	if usesFetch(file) {
		w.blank()
		w.line(httpClientDecl)
	}

	w.blank()
	if len(routeParams) > 0 {
		w.line("class " + vmName + "(")
		w.line(indentUnit + "private val savedStateHandle: SavedStateHandle")
		w.open(") : ViewModel()")
	} else {
		w.open("class " + vmName + " : ViewModel()")
	}
	record.write(w)

	for _, name := range routeParams {
		w.blank()
		w.linef("val %s: String", name)
		w.indent++
		w.linef("get() = savedStateHandle.get<String>(%q) ?: \"\"", name)
		w.indent--
	}

	for _, s := range g.promotedMembers(file) {
		w.blank()
		decl := "val " + s.Name
		if s.Type != "" {
			decl += ": " + s.Type
		}
		w.line(decl)
		w.indent++
		w.line("get() = " + g.transformBody(ctx, transformList(transformRange(s.Value), false), g.cfg.Name))
		w.indent--
	}

	defined := map[string]bool{}
	for _, fn := range file.Functions {
		defined[fn.Name] = true
	}
	for _, f := range record.fields {
		setter := "update" + capitalize(f.name)
		if defined[setter] {
			continue
		}
		w.blank()
		w.open("fun " + setter + "(value: " + f.typ + ")")
		w.linef("_uiState.update { it.copy(%s = value) }", f.name)
		w.close()
	}

	for _, fn := range file.Functions {
		w.blank()
		body := g.transformBody(ctx, fn.Body, g.cfg.Name)
		if fn.IsSuspend {
			writeLaunchedFunction(w, fn, "viewModelScope", body)
			continue
		}
		g.writeFunction(w, fn, false, body)
	}

	var mounts, disposes []string
	for _, h := range file.Hooks {
		body := g.transformBody(ctx, h.Body, g.cfg.Name)
		if h.Kind == HookMount {
			mounts = append(mounts, stripOuterLaunch(body))
		} else {
			disposes = append(disposes, body)
		}
	}
	if len(mounts) > 0 {
		w.blank()
		w.open("init")
		for _, body := range mounts {
			w.open("viewModelScope.launch")
			w.block(body)
			w.close()
		}
		w.close()
	}
	if len(disposes) > 0 {
		w.blank()
		w.open("override fun onCleared()")
		w.line("super.onCleared()")
		for _, body := range disposes {
			w.block(body)
		}
		w.close()
	}
	w.close()

	return g.assemble(ctx, w.String()), nil
}

// stripOuterLaunch returns the inner body when body is a single launch
// block, so that it is not launched twice.
func stripOuterLaunch(body string) string {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "launch {") {
		return body
	}
	open := strings.IndexByte(trimmed, '{')
	end := matchBrace(trimmed, open)
	if end != len(trimmed)-1 {
		return body
	}
	return trimBody(trimmed[open+1 : end])
}

func (g *Generator) promotedWrapper(ctx *genContext, vmName string) (string, error) {
	file := ctx.file
	ctx.imports.add(pkgRuntime + ".Composable")

	refs := &vmRefs{state: map[string]bool{}, members: map[string]bool{}, funcs: map[string]bool{}}
	for _, s := range file.State {
		if s.Mutable {
			refs.state[s.Name] = true
		}
	}
	for _, s := range g.promotedMembers(file) {
		refs.members[s.Name] = true
	}
	for _, fn := range file.Functions {
		refs.funcs[fn.Name] = true
	}
	ctx.vm = refs
	defer func() { ctx.vm = nil }()

	markup := newWriter(1)
	if !file.ImplicitMarkup {
		if err := g.genMarkup(ctx, markup, file.Markup, scope{}); err != nil {
			return "", err
		}
	}

	state := newWriter(1)
	state.linef("val viewModel = viewModel<%s>()", vmName)
	state.line("val uiState by viewModel.uiState.collectAsState()")
	first := true
	for _, s := range file.State {
		if !g.wrapperLocal(s) {
			continue
		}
		if first {
			state.blank()
			first = false
		}
		g.writeVal(ctx, state, s)
	}

	body := newWriter(0)
	if ctx.optIn {
		body.line("@OptIn(ExperimentalMaterial3Api::class)")
	}
	body.line("@Composable")
	writeSignature(body, g.cfg.Name, g.componentParams(ctx, false))
	body.indent++
	sections := []string{state.String()}
	if markupUsesDispatchers(file) {
		sections = append(sections, indentUnit+"val dispatcherScope = rememberCoroutineScope()\n")
	}
	sections = append(sections, markup.String())
	writeSections(body, sections)
	body.close()

	for _, helper := range file.Helpers {
		body.blank()
		if err := g.writeHelper(ctx, body, helper); err != nil {
			return "", err
		}
	}
	return g.assemble(ctx, body.String()), nil
}

func markupUsesDispatchers(file *File) bool {
	for _, code := range markupExpressions(file.Markup) {
		if usesDispatchers(code) {
			return true
		}
	}
	return false
}
