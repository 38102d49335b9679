package whgen

import (
	"regexp"
	"sort"
	"strings"
)

// UnitKind is the role of a source unit, derived from where it lives in the
// project.
type UnitKind int

const (
	KindComponent UnitKind = iota
	KindScreen
	KindLayout
	KindMain
)

func (k UnitKind) String() string {
	switch k {
	case KindScreen:
		return "screen"
	case KindLayout:
		return "layout"
	case KindMain:
		return "main"
	default:
		return "component"
	}
}

// Unit is one parsed source file together with the name and package it is
// generated under.
type Unit struct {
	Name    string
	Package string
	Kind    UnitKind
	File    *File
}

// Policy holds the thresholds of the component promotion heuristic. A
// component with mutable state is promoted when any threshold is met. A
// threshold of zero or less disables that criterion.
type Policy struct {
	MinSuspendFunctions int
	MinFunctions        int
	MinLifecycleHooks   int
}

// DefaultPolicy returns the standard thresholds: one suspend function,
// three functions, or one lifecycle hook.
func DefaultPolicy() Policy {
	return Policy{MinSuspendFunctions: 1, MinFunctions: 3, MinLifecycleHooks: 1}
}

// ShouldPromote reports whether a component's local state should move into a
// generated ViewModel.
func (p Policy) ShouldPromote(file *File) bool {
	if file == nil || !hasMutableState(file) {
		return false
	}
	suspends := 0
	for _, fn := range file.Functions {
		if fn.IsSuspend {
			suspends++
		}
	}
	return meets(suspends, p.MinSuspendFunctions) ||
		meets(len(file.Functions), p.MinFunctions) ||
		meets(len(file.Hooks), p.MinLifecycleHooks)
}

func meets(n, threshold int) bool {
	return threshold > 0 && n >= threshold
}

func hasMutableState(file *File) bool {
	for _, s := range file.State {
		if s.Mutable {
			return true
		}
	}
	return false
}

// Analyzer builds the store registry for a set of units.
type Analyzer struct {
	policy Policy
}

// NewAnalyzer creates an Analyzer using the given promotion policy.
func NewAnalyzer(policy Policy) *Analyzer {
	return &Analyzer{policy: policy}
}

// BuildRegistry is shorthand for NewAnalyzer(policy).Build(units).
func BuildRegistry(units []Unit, policy Policy) *Registry {
	return NewAnalyzer(policy).Build(units)
}

// Build scans every class and every component or screen in units and
// returns the resulting registry. Units are visited in order, so a later
// declaration of the same name replaces an earlier one.
func (a *Analyzer) Build(units []Unit) *Registry {
	var entries []StoreInfo
	for _, u := range units {
		if u.File == nil {
			continue
		}
		for _, class := range u.File.Classes {
			if info, ok := ClassStoreInfo(class, u.Package); ok {
				entries = append(entries, info)
			}
		}

		if u.Kind != KindComponent && u.Kind != KindScreen {
			continue
		}
		if !a.policy.ShouldPromote(u.File) {
			continue
		}
		info := StoreInfo{
			ClassName:       u.Name,
			HasMutableState: true,
			Source:          PromotedComponent,
			Package:         u.Package,
		}
		if u.Kind == KindScreen {
			info.RouteParams = RouteParams(u.File)
		}
		entries = append(entries, info)
	}
	return NewRegistry(entries...)
}

// ClassStoreInfo classifies a class declaration. ok is false when the class
// is not a store.
func ClassStoreInfo(class *ClassDecl, pkg string) (info StoreInfo, ok bool) {
	mutable := false
	for _, prop := range class.Properties {
		if prop.Mutable {
			mutable = true
			break
		}
	}

	switch {
	case class.IsObject && class.HasAnnotation("store"):
		info.Source = Singleton
	case mutable:
		info.Source = ExplicitStore
	default:
		return StoreInfo{}, false
	}

	info.ClassName = class.Name
	info.HasMutableState = mutable
	info.Package = pkg
	info.NeedsInjection = needsInjection(class)
	return info, true
}

func needsInjection(class *ClassDecl) bool {
	for _, a := range class.Annotations {
		if a == "HiltViewModel" || strings.Contains(strings.ToLower(a), "hilt") {
			return true
		}
	}
	if class.Constructor != nil {
		for _, a := range class.Constructor.Annotations {
			if strings.Contains(strings.ToLower(a), "inject") {
				return true
			}
		}
	}
	return false
}

var routeParamRe = regexp.MustCompile(`\$screen\.params\.([A-Za-z_][A-Za-z0-9_]*)`)

// RouteParams returns the sorted, deduplicated names used as
// $screen.params.<name> anywhere in file.
func RouteParams(file *File) []string {
	seen := map[string]bool{}
	for _, code := range fileExpressions(file) {
		for _, m := range routeParamRe.FindAllStringSubmatch(code, -1) {
			seen[m[1]] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fileExpressions returns every opaque code fragment of a file: state
// values, function and hook bodies, and all expressions in the markup.
func fileExpressions(file *File) []string {
	var out []string
	for _, s := range file.State {
		out = append(out, s.Value)
	}
	for _, fn := range file.Functions {
		out = append(out, fn.Body)
	}
	for _, h := range file.Hooks {
		out = append(out, h.Body)
	}
	out = append(out, markupExpressions(file.Markup)...)
	for _, h := range file.Helpers {
		out = append(out, markupExpressions(h.Markup)...)
	}
	return out
}

// markupExpressions collects conditions, collections, keys, interpolations
// and expression prop values below m.
func markupExpressions(m Markup) []string {
	var out []string
	walkMarkup(m, func(node Markup) {
		switch n := node.(type) {
		case *Element:
			for _, p := range n.Props {
				if code := p.ExprCode(); code != "" {
					out = append(out, code)
				}
			}
		case *Interpolation:
			out = append(out, n.Expr)
		case *IfElse:
			out = append(out, n.Condition)
			for _, ei := range n.ElseIfs {
				out = append(out, ei.Condition)
			}
		case *ForLoop:
			out = append(out, n.Collection, n.Key)
		case *When:
			for _, arm := range n.Arms {
				out = append(out, arm.Condition)
			}
		}
	})
	return out
}

// walkMarkup calls fn for m and every node below it, including markup held
// in prop values.
func walkMarkup(m Markup, fn func(Markup)) {
	if m == nil {
		return
	}
	fn(m)
	walkAll := func(items []Markup) {
		for _, item := range items {
			walkMarkup(item, fn)
		}
	}
	switch n := m.(type) {
	case *Element:
		for _, p := range n.Props {
			if mv, ok := p.Value.(MarkupValue); ok {
				walkMarkup(mv.Markup, fn)
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
		walkAll(n.Body)
		walkAll(n.Empty)
	case *When:
		for _, arm := range n.Arms {
			walkMarkup(arm.Body, fn)
		}
	}
}
