package whgen

import (
	"strings"
)

// stateField is one entry of a store's state record.
type stateField struct {
	name  string
	typ   string
	value string
}

// newStateField resolves the type and initial value of a stored property.
// A missing type is inferred from a literal initializer and a missing
// initializer is the zero value of the type.
func newStateField(name, typ, value, owner string, pos Position) (stateField, error) {
	value = strings.TrimSpace(value)
	if typ == "" {
		t, ok := inferType(value)
		if !ok {
			return stateField{}, NewErrorWithHint(pos,
				"cannot infer the type of '"+name+"' in "+owner,
				"declare the type explicitly: var "+name+": Type = "+value)
		}
		typ = t
	}
	if value == "" {
		v, ok := defaultValue(typ)
		if !ok {
			return stateField{}, NewErrorWithHint(pos,
				"'"+name+"' in "+owner+" has no initial value",
				"give it one: var "+name+": "+typ+" = ...")
		}
		value = v
	}
	return stateField{name: name, typ: typ, value: transformList(transformRange(value), false)}, nil
}

// stateRecord is the single data class a store keeps its state in, exposed
// as a StateFlow with a read/write accessor per field.
type stateRecord struct {
	typeName string
	flow     string
	fields   []stateField
}

func (r stateRecord) write(w *writer) {
	if len(r.fields) == 0 {
		return
	}
	w.line("data class " + r.typeName + "(")
	w.indent++
	for i, f := range r.fields {
		line := "val " + f.name + ": " + f.typ + " = " + f.value
		if i < len(r.fields)-1 {
			line += ","
		}
		w.line(line)
	}
	w.indent--
	w.line(")")
	w.blank()
	w.linef("private val _%s = MutableStateFlow(%s())", r.flow, r.typeName)
	w.linef("val %s: StateFlow<%s> = _%s.asStateFlow()", r.flow, r.typeName, r.flow)
	for _, f := range r.fields {
		w.blank()
		w.linef("var %s: %s", f.name, f.typ)
		w.indent++
		w.linef("get() = _%s.value.%s", r.flow, f.name)
		w.linef("set(value) { _%s.update { it.copy(%s = value) } }", r.flow, f.name)
		w.indent--
	}
}

func isPublic(prop *PropertyDecl) bool {
	return prop.Visibility == "" || prop.Visibility == "public"
}

// classRecord collects the public stored vars of a store class. Getter
// properties never enter the record.
func classRecord(class *ClassDecl, typeName, flow string) (stateRecord, error) {
	r := stateRecord{typeName: typeName, flow: flow}
	for _, prop := range class.Properties {
		if !prop.Mutable || !isPublic(prop) || prop.IsDerived() {
			continue
		}
		f, err := newStateField(prop.Name, prop.Type, prop.Value, class.Name, prop.Position)
		if err != nil {
			return stateRecord{}, err
		}
		r.fields = append(r.fields, f)
	}
	return r, nil
}

// writeStoreMembers writes everything of a store class except its state
// record: plain fields, derived getters and functions. Suspend functions are
// wrapped in a launch on launchScope when it is set.
func (g *Generator) writeStoreMembers(ctx *genContext, w *writer, class *ClassDecl, launchScope string) {
	for _, prop := range class.Properties {
		if prop.Mutable && isPublic(prop) && !prop.IsDerived() {
			continue
		}
		w.blank()
		if prop.IsDerived() {
			decl := "val " + prop.Name
			if prop.Visibility != "" && prop.Visibility != "public" {
				decl = prop.Visibility + " " + decl
			}
			if prop.Type != "" {
				decl += ": " + prop.Type
			}
			w.line(decl)
			w.indent++
			w.line("get() = " + g.transformBody(ctx, prop.Getter, class.Name))
			w.indent--
			continue
		}
		if prop.Value == "" && prop.Type != "" {
			if v, ok := defaultValue(prop.Type); ok {
				copied := *prop
				copied.Value = v
				prop = &copied
			}
		}
		w.line(propertyLine(prop))
	}

	for _, fn := range class.Functions {
		w.blank()
		body := g.transformBody(ctx, fn.Body, class.Name)
		if fn.IsSuspend && launchScope != "" {
			writeLaunchedFunction(w, fn, launchScope, body)
			continue
		}
		g.writeFunction(w, fn, fn.IsSuspend, body)
	}
}

// writeLaunchedFunction writes a suspend function as a plain function whose
// body runs in a coroutine launched on scope. The return type is dropped
// since the caller no longer waits for the result.
func writeLaunchedFunction(w *writer, fn *FuncDecl, scope, body string) {
	w.open("fun " + fn.Name + "(" + fn.Params + ")")
	w.open(scope + ".launch")
	w.block(body)
	w.close()
	w.close()
}

// markerAnnotation reports whether a is consumed by the transpiler rather
// than passed to the output.
func markerAnnotation(a string) bool {
	return a == "store" || a == "HiltViewModel" || strings.EqualFold(a, "hilt")
}

// constructorHeader renders an optional primary constructor.
func constructorHeader(c *Constructor, inject bool) string {
	var sb strings.Builder
	if inject {
		sb.WriteString(" @Inject constructor")
	}
	if c == nil {
		if inject {
			sb.WriteString("()")
		}
		return sb.String()
	}
	var params []string
	for _, p := range splitTopLevel(strings.TrimSpace(c.Params), ',') {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}
	switch len(params) {
	case 0:
		sb.WriteString("()")
	case 1:
		sb.WriteString("(" + params[0] + ")")
	default:
		sb.WriteString("(\n")
		for i, p := range params {
			sb.WriteString(indentUnit + p)
			if i < len(params)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// generateViewModelStore emits a store class as a ViewModel backed by a
// UiState StateFlow.
func (g *Generator) generateViewModelStore(ctx *genContext, class *ClassDecl, info StoreInfo) (Result, error) {
	ctx.dispatchScope = "viewModelScope"
	ctx.imports.add("androidx.lifecycle.ViewModel")

	record, err := classRecord(class, "UiState", "uiState")
	if err != nil {
		return nil, err
	}

	w := newWriter(0)
	if usesFetch(ctx.file) {
		w.line(httpClientDecl)
		w.blank()
	}
	if info.NeedsInjection {
		ctx.imports.add("dagger.hilt.android.lifecycle.HiltViewModel", "javax.inject.Inject")
		w.line("@HiltViewModel")
	}
	for _, a := range class.Annotations {
		if !markerAnnotation(a) {
			w.line("@" + a)
		}
	}
	w.open("class " + class.Name + constructorHeader(class.Constructor, info.NeedsInjection) + " : ViewModel()")
	record.write(w)
	g.writeStoreMembers(ctx, w, class, "viewModelScope")
	w.close()

	if err := g.writeTrailing(ctx, w, class); err != nil {
		return nil, err
	}
	return Single{Content: g.assemble(ctx, w.String())}, nil
}

// generateSingleton emits an @store object as a process-wide object holding
// its state in a StateFlow. Suspend functions stay suspend; io, cpu and main
// blocks launch on a private scope owned by the object.
func (g *Generator) generateSingleton(ctx *genContext, class *ClassDecl) (Result, error) {
	ctx.dispatchScope = "scope"

	record, err := classRecord(class, "State", "state")
	if err != nil {
		return nil, err
	}

	w := newWriter(0)
	if usesFetch(ctx.file) {
		w.line(httpClientDecl)
		w.blank()
	}
	for _, a := range class.Annotations {
		if !markerAnnotation(a) {
			w.line("@" + a)
		}
	}
	w.open("object " + class.Name)
	record.write(w)
	if classUsesDispatchers(class) {
		w.blank()
		w.line("private val scope = CoroutineScope(SupervisorJob() + Dispatchers.Default)")
	}
	g.writeStoreMembers(ctx, w, class, "")
	w.close()

	if err := g.writeTrailing(ctx, w, class); err != nil {
		return nil, err
	}
	return Single{Content: g.assemble(ctx, w.String())}, nil
}

func classUsesDispatchers(class *ClassDecl) bool {
	for _, fn := range class.Functions {
		if usesDispatchers(fn.Body) {
			return true
		}
	}
	return false
}
