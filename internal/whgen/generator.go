package whgen

import (
	"strings"
)

// Config names the unit being generated.
type Config struct {
	Package string
	Name    string
	Kind    UnitKind

	// Optimize enables RecyclerView rendering of planned static loops.
	Optimize OptimizeLevel
}

// Generator turns a parsed File into Kotlin source. A Generator holds only
// its configuration and a read-only registry; all per-call state lives in a
// genContext, so one Generator may be used from several goroutines.
type Generator struct {
	cfg      Config
	registry *Registry
}

// NewGenerator creates a Generator for one unit. registry may be nil.
func NewGenerator(cfg Config, registry *Registry) *Generator {
	return &Generator{cfg: cfg, registry: registry}
}

// genContext is the mutable state of a single Generate call.
type genContext struct {
	file    *File
	imports importSet

	// screen is set for screen units, which get a NavController.
	screen bool
	// vm is non-nil while generating the markup of a promoted wrapper.
	vm *vmRefs
	// scope is the coroutine scope dispatcher blocks launch on.
	dispatchScope string
	// stateTypes records declared or inferred types of state variables.
	stateTypes map[string]string
	// ffi holds native binding objects imported through $ffi.
	ffi map[string]bool

	// recycler holds the loops rendered through a RecyclerView.
	recycler map[*ForLoop]bool

	optIn     bool
	dropdowns int
}

func (g *Generator) newContext(file *File) *genContext {
	ctx := &genContext{
		file:          file,
		imports:       importSet{},
		screen:        g.cfg.Kind == KindScreen,
		dispatchScope: "dispatcherScope",
		stateTypes:    map[string]string{},
		ffi:           map[string]bool{},
		recycler:      map[*ForLoop]bool{},
	}
	if g.cfg.Optimize == OptimizeAggressive {
		for _, h := range StaticCollections(file) {
			if h.Planned() {
				ctx.recycler[h.loop] = true
			}
		}
	}
	for _, s := range file.State {
		if s.Type != "" {
			ctx.stateTypes[s.Name] = s.Type
		} else if t, ok := inferType(s.Value); ok {
			ctx.stateTypes[s.Name] = t
		}
	}
	for _, imp := range file.Imports {
		if rest, ok := strings.CutPrefix(imp.Path, "$ffi."); ok {
			parts := strings.Split(rest, ".")
			ctx.ffi[parts[len(parts)-1]] = true
		}
	}
	return ctx
}

// Generate produces the Kotlin output for file. It fails on semantic errors
// such as a property with both an initializer and a getter, a prop given
// twice on one element, or an invalid color literal.
func (g *Generator) Generate(file *File) (Result, error) {
	if err := validate(file); err != nil {
		return nil, err
	}
	ctx := g.newContext(file)

	if class := g.storeClass(file); class != nil {
		info, _ := g.registry.Lookup(class.Name)
		if info.Source == Singleton {
			return g.generateSingleton(ctx, class)
		}
		return g.generateViewModelStore(ctx, class, info)
	}

	if g.cfg.Kind == KindComponent || g.cfg.Kind == KindScreen {
		if info, ok := g.registry.Lookup(g.cfg.Name); ok && info.Source == PromotedComponent {
			return g.generatePromoted(ctx, info)
		}
	}

	if isDeclarationOnly(file) {
		return g.generateDeclarations(ctx)
	}
	return g.generateComponent(ctx)
}

// storeClass returns the first class of file that the registry knows as an
// explicit store or singleton.
func (g *Generator) storeClass(file *File) *ClassDecl {
	for _, class := range file.Classes {
		info, ok := g.registry.Lookup(class.Name)
		if !ok {
			continue
		}
		if info.Source == ExplicitStore || info.Source == Singleton {
			return class
		}
	}
	return nil
}

func isDeclarationOnly(file *File) bool {
	return file.ImplicitMarkup && len(file.Props) == 0 && len(file.State) == 0 &&
		len(file.Functions) == 0 && len(file.Hooks) == 0
}

// validate rejects semantically inconsistent declarations before any
// output is produced.
func validate(file *File) error {
	for _, class := range file.Classes {
		for _, prop := range class.Properties {
			if prop.Value != "" && prop.Getter != "" {
				return NewErrorWithHint(prop.Position,
					"property '"+prop.Name+"' in "+class.Name+" has both an initial value and a getter",
					"use '= value' for stored state or 'get() = ...' for a derived property, not both")
			}
		}
	}

	var err error
	check := func(m Markup) {
		if err != nil {
			return
		}
		el, ok := m.(*Element)
		if !ok {
			return
		}
		seen := map[string]bool{}
		for _, p := range el.Props {
			if seen[p.Name] {
				err = NewErrorf(p.Position, "duplicate prop '%s' on <%s>", p.Name, el.Name)
				return
			}
			seen[p.Name] = true
		}
	}
	walkMarkup(file.Markup, check)
	for _, h := range file.Helpers {
		walkMarkup(h.Markup, check)
	}
	return err
}

// generateDeclarations emits a file holding only classes and pass-through
// blocks.
func (g *Generator) generateDeclarations(ctx *genContext) (Result, error) {
	body := newWriter(0)
	if err := g.writeTrailing(ctx, body, nil); err != nil {
		return nil, err
	}
	return Single{Content: g.assemble(ctx, body.String())}, nil
}

// writeTrailing writes helper composables, plain classes and pass-through
// blocks. skip names a class already emitted.
func (g *Generator) writeTrailing(ctx *genContext, w *writer, skip *ClassDecl) error {
	for _, helper := range ctx.file.Helpers {
		w.blank()
		if err := g.writeHelper(ctx, w, helper); err != nil {
			return err
		}
	}
	for _, class := range ctx.file.Classes {
		if class == skip {
			continue
		}
		w.blank()
		g.writePlainClass(ctx, w, class)
	}
	for _, block := range ctx.file.KotlinBlocks {
		w.blank()
		w.block(transformFFICalls(block.Content, ctx.ffi))
	}
	return nil
}

// assemble prefixes body with the package clause and imports. Imports come
// from the unit's own import lines, from elements used, and from a scan of
// the generated body.
func (g *Generator) assemble(ctx *genContext, body string) string {
	for _, imp := range ctx.file.Imports {
		ctx.imports.add(resolveImport(imp.Path, g.cfg.Package))
	}
	scanImports(ctx.imports, body)
	if strings.Contains(body, "Routes.") {
		ctx.imports.add(rootPackage(g.cfg.Package) + ".routes.Routes")
	}

	w := newWriter(0)
	writeHeader(w, g.cfg.Package, ctx.imports)
	return w.String() + strings.TrimLeft(body, "\n")
}

// writePlainClass re-emits a class that is not a store.
func (g *Generator) writePlainClass(ctx *genContext, w *writer, class *ClassDecl) {
	for _, a := range class.Annotations {
		w.line("@" + a)
	}
	header := "class " + class.Name
	if class.IsObject {
		header = "object " + class.Name
	}
	if class.Constructor != nil {
		for _, a := range class.Constructor.Annotations {
			header += " @" + a + " constructor"
		}
		header += "(" + class.Constructor.Params + ")"
	}
	if len(class.Properties) == 0 && len(class.Functions) == 0 {
		w.line(header)
		return
	}
	w.open(header)
	for _, prop := range class.Properties {
		w.line(propertyLine(prop))
		if prop.Getter != "" {
			w.indent++
			w.line("get() = " + prop.Getter)
			w.indent--
		}
	}
	for _, fn := range class.Functions {
		w.blank()
		g.writeFunction(w, fn, fn.IsSuspend, g.transformBody(ctx, fn.Body, class.Name))
	}
	w.close()
}

// propertyLine renders the declaration line of a plain class property.
func propertyLine(prop *PropertyDecl) string {
	var sb strings.Builder
	if prop.Visibility != "" && prop.Visibility != "public" {
		sb.WriteString(prop.Visibility + " ")
	}
	if prop.Mutable {
		sb.WriteString("var ")
	} else {
		sb.WriteString("val ")
	}
	sb.WriteString(prop.Name)
	if prop.Type != "" {
		sb.WriteString(": " + prop.Type)
	}
	if prop.Value != "" {
		sb.WriteString(" = " + transformList(transformRange(prop.Value), false))
	}
	return sb.String()
}

// writeFunction writes a function with an already transformed body.
func (g *Generator) writeFunction(w *writer, fn *FuncDecl, suspend bool, body string) {
	sig := "fun " + fn.Name + "(" + fn.Params + ")"
	if suspend {
		sig = "suspend " + sig
	}
	if fn.ReturnType != "" {
		sig += ": " + fn.ReturnType
	}
	w.open(sig)
	w.block(body)
	w.close()
}

// transformBody applies the statement-level rewrites shared by every kind of
// function body. tag labels $log calls.
func (g *Generator) transformBody(ctx *genContext, body, tag string) string {
	body = transformRoutes(body)
	body = transformFetch(body)
	body = transformLog(body, tag)
	body = transformDispatchers(body, ctx.dispatchScope)
	body = transformFFICalls(body, ctx.ffi)
	if ctx.screen {
		body = strings.ReplaceAll(body, "$navigate(", "navController.navigate(")
		body = routeParamRe.ReplaceAllString(body, "$1")
	}
	return body
}

// usesFetch reports whether any code in the file calls $fetch.
func usesFetch(file *File) bool {
	for _, code := range fileExpressions(file) {
		if strings.Contains(code, "$fetch(") {
			return true
		}
	}
	for _, class := range file.Classes {
		for _, fn := range class.Functions {
			if strings.Contains(fn.Body, "$fetch(") {
				return true
			}
		}
	}
	return false
}

const httpClientDecl = `private val httpClient = HttpClient(OkHttp) {
    install(ContentNegotiation) {
        json(Json { ignoreUnknownKeys = true })
    }
}`
