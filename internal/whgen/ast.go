package whgen

// Markup is the interface implemented by every renderable node.
type Markup interface {
	markup()       // marker method to ensure type safety
	Pos() Position // returns the source position of the node
}

// File represents one parsed .wh source unit.
type File struct {
	Imports      []*Import
	Props        []*PropDecl
	State        []*StateDecl
	Functions    []*FuncDecl
	Hooks        []*LifecycleHook
	Classes      []*ClassDecl
	Markup       Markup
	Helpers      []*FuncDecl    // composable helpers declared after the markup
	KotlinBlocks []*KotlinBlock // pass-through host-language source
	// ImplicitMarkup is true when the source had no markup and an empty
	// Text root was synthesized.
	ImplicitMarkup bool
}

// Import represents an import line. Paths starting with '$' are project aliases.
type Import struct {
	Path     string
	Position Position
}

// PropDecl represents a component prop declared with @prop.
type PropDecl struct {
	Name     string
	Type     string
	Default  string // empty if none
	Position Position
}

// StateDecl represents a top-level var/val declaration.
type StateDecl struct {
	Name      string
	Mutable   bool
	Type      string // empty if inferred
	Value     string
	IsDerived bool // value is derivedStateOf or $derived
	Position  Position
}

// FuncDecl represents a function declaration. Params and Body are raw text.
type FuncDecl struct {
	Name       string
	Params     string
	ReturnType string
	Body       string
	IsSuspend  bool
	Markup     Markup // set for helper composables
	Position   Position
}

// HookKind identifies a lifecycle hook.
type HookKind int

const (
	HookMount HookKind = iota
	HookDispose
)

func (k HookKind) String() string {
	if k == HookDispose {
		return "onDispose"
	}
	return "onMount"
}

// LifecycleHook is a $onMount or $onDispose block.
type LifecycleHook struct {
	Kind     HookKind
	Body     string
	Position Position
}

// ClassDecl represents a class or object declaration the parser understands.
type ClassDecl struct {
	Annotations []string
	IsObject    bool
	Name        string
	Constructor *Constructor
	Properties  []*PropertyDecl
	Functions   []*FuncDecl
	Position    Position
}

// HasAnnotation reports whether the class carries the named annotation.
func (c *ClassDecl) HasAnnotation(name string) bool {
	for _, a := range c.Annotations {
		if a == name {
			return true
		}
	}
	return false
}

// Constructor is a primary constructor with optional annotations.
type Constructor struct {
	Annotations []string
	Params      string
}

// PropertyDecl represents a class property. A property holds either a Value
// or a Getter; the parser records both when the source declares both so that
// generation can reject it.
type PropertyDecl struct {
	Name       string
	Mutable    bool
	Type       string
	Value      string
	Getter     string
	Visibility string // private, protected, public or empty
	Position   Position
}

// IsDerived reports whether the property is computed by a getter.
func (p *PropertyDecl) IsDerived() bool { return p.Getter != "" }

// KotlinBlock is host-language source copied verbatim to the output.
type KotlinBlock struct {
	Content  string
	Position Position
}

// Element represents a tag: <Name props>children</Name> or <Name />.
type Element struct {
	Name        string
	Props       []*Prop
	Children    []Markup
	SelfClosing bool
	Position    Position
}

func (e *Element) markup()        {}
func (e *Element) Pos() Position { return e.Position }

// Prop returns the prop with the given name, or nil.
func (e *Element) Prop(name string) *Prop {
	for _, p := range e.Props {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Text is literal text content.
type Text struct {
	Value    string
	Position Position
}

func (t *Text) markup()        {}
func (t *Text) Pos() Position { return t.Position }

// Interpolation is a braced expression inside markup: {expr}.
type Interpolation struct {
	Expr     string
	Position Position
}

func (i *Interpolation) markup()        {}
func (i *Interpolation) Pos() Position { return i.Position }

// Sequence groups sibling nodes without a wrapping element.
type Sequence struct {
	Items    []Markup
	Position Position
}

func (s *Sequence) markup()        {}
func (s *Sequence) Pos() Position { return s.Position }

// IfElse is an @if / else if / else chain.
type IfElse struct {
	Condition string
	Then      []Markup
	ElseIfs   []*ElseIf
	Else      []Markup // nil when there is no else branch
	Position  Position
}

func (i *IfElse) markup()        {}
func (i *IfElse) Pos() Position { return i.Position }

// ElseIf is one else-if branch.
type ElseIf struct {
	Condition string
	Body      []Markup
}

// ForLoop is an @for directive.
type ForLoop struct {
	Index      string // empty unless "index, item in ..." was used
	Item       string
	Collection string
	Key        string // empty if no key
	Body       []Markup
	Empty      []Markup // nil when there is no empty block
	Position   Position
}

func (f *ForLoop) markup()        {}
func (f *ForLoop) Pos() Position { return f.Position }

// When is an @when directive.
type When struct {
	Arms     []*WhenArm
	Position Position
}

func (w *When) markup()        {}
func (w *When) Pos() Position { return w.Position }

// WhenArm is one arm of a @when. An else arm has IsElse set and no condition.
type WhenArm struct {
	Condition string
	IsElse    bool
	Body      Markup
}

// PropValue is either an Expr or a MarkupValue.
type PropValue interface {
	propValue()
}

// Expr is an opaque expression. String literals keep their quotes.
type Expr struct {
	Code string
}

func (Expr) propValue() {}

// MarkupValue is renderable content passed as a prop.
type MarkupValue struct {
	Markup Markup
}

func (MarkupValue) propValue() {}

// Prop is a name=value pair on an element.
type Prop struct {
	Name     string
	Value    PropValue
	Position Position
}

// ExprCode returns the expression text, or "" when the value is markup.
func (p *Prop) ExprCode() string {
	if e, ok := p.Value.(Expr); ok {
		return e.Code
	}
	return ""
}

// IsMarkup reports whether the prop holds nested markup.
func (p *Prop) IsMarkup() bool {
	_, ok := p.Value.(MarkupValue)
	return ok
}
