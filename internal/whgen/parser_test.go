package whgen

import (
	"errors"
	"strings"
	"testing"
)

func TestParser_Props(t *testing.T) {
	src := `@prop val title: String
@prop val count: Int = 0
@prop val onTap: (() -> Unit)? = null

<Text>{title}</Text>`

	file, err := NewParser("card.wh", src).ParseFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type want struct {
		name, typ, def string
	}
	wants := []want{
		{"title", "String", ""},
		{"count", "Int", "0"},
		{"onTap", "(() -> Unit)?", "null"},
	}
	if len(file.Props) != len(wants) {
		t.Fatalf("len(Props) = %d, want %d", len(file.Props), len(wants))
	}
	for i, w := range wants {
		p := file.Props[i]
		if p.Name != w.name || p.Type != w.typ || p.Default != w.def {
			t.Errorf("Props[%d] = {%q %q %q}, want {%q %q %q}", i, p.Name, p.Type, p.Default, w.name, w.typ, w.def)
		}
	}
}

func TestParser_State(t *testing.T) {
	type tc struct {
		input       string
		wantName    string
		wantMutable bool
		wantType    string
		wantValue   string
		wantDerived bool
	}

	tests := map[string]tc{
		"inferred var": {
			input:       "var count = 0",
			wantName:    "count",
			wantMutable: true,
			wantValue:   "0",
		},
		"typed val": {
			input:     `val items: List<String> = ["a", "b"]`,
			wantName:  "items",
			wantType:  "List<String>",
			wantValue: `["a", "b"]`,
		},
		"derived shorthand": {
			input:       "val doubled = $derived(count * 2)",
			wantName:    "doubled",
			wantValue:   "derivedStateOf { count * 2 }",
			wantDerived: true,
		},
		"derivedStateOf": {
			input:       "val empty = derivedStateOf { items.isEmpty() }",
			wantName:    "empty",
			wantValue:   "derivedStateOf { items.isEmpty() }",
			wantDerived: true,
		},
		"range": {
			input:       "var nums = 1..5",
			wantName:    "nums",
			wantMutable: true,
			wantValue:   "RANGE[1..5]",
		},
		"range with step": {
			input:     "val evens = 0..10:2",
			wantName:  "evens",
			wantValue: "RANGE[0..10:2]",
		},
		"continued line": {
			input:     "val total = price +\n    tax",
			wantName:  "total",
			wantValue: "price +\n    tax",
		},
		"trailing comment": {
			input:       "var name = \"\" // empty",
			wantName:    "name",
			wantMutable: true,
			wantValue:   `""`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			file, err := Parse(tt.input + "\n\n<Text>x</Text>")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(file.State) != 1 {
				t.Fatalf("len(State) = %d, want 1", len(file.State))
			}
			s := file.State[0]
			if s.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", s.Name, tt.wantName)
			}
			if s.Mutable != tt.wantMutable {
				t.Errorf("Mutable = %v, want %v", s.Mutable, tt.wantMutable)
			}
			if s.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", s.Type, tt.wantType)
			}
			if s.Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", s.Value, tt.wantValue)
			}
			if s.IsDerived != tt.wantDerived {
				t.Errorf("IsDerived = %v, want %v", s.IsDerived, tt.wantDerived)
			}
		})
	}
}

func TestParser_FunctionsAndHooks(t *testing.T) {
	src := `var user: User? = null

fun clear() {
    user = null
}

suspend fun load(id: String): User {
    return api.get(id)
}

$onMount {
    launch { user = load("1") }
}

$onDispose {
    cancelAll()
}

<Text>{user?.name ?: ""}</Text>`

	file, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(file.Functions) != 2 {
		t.Fatalf("len(Functions) = %d, want 2", len(file.Functions))
	}
	load := file.Functions[1]
	if !load.IsSuspend {
		t.Error("load should be suspend")
	}
	if load.Params != "id: String" {
		t.Errorf("Params = %q, want %q", load.Params, "id: String")
	}
	if load.ReturnType != "User" {
		t.Errorf("ReturnType = %q, want %q", load.ReturnType, "User")
	}
	if load.Body != "return api.get(id)" {
		t.Errorf("Body = %q, want %q", load.Body, "return api.get(id)")
	}
	if file.Functions[0].IsSuspend {
		t.Error("clear should not be suspend")
	}

	if len(file.Hooks) != 2 {
		t.Fatalf("len(Hooks) = %d, want 2", len(file.Hooks))
	}
	if file.Hooks[0].Kind != HookMount || file.Hooks[1].Kind != HookDispose {
		t.Errorf("hook kinds = %v, %v", file.Hooks[0].Kind, file.Hooks[1].Kind)
	}
	if file.Hooks[1].Body != "cancelAll()" {
		t.Errorf("dispose body = %q, want %q", file.Hooks[1].Body, "cancelAll()")
	}
}

func TestParser_Classes(t *testing.T) {
	src := `class Counter @Inject constructor(private val repo: Repo) {
    var count = 0
    private var secret = ""
    val doubled: Int
        get() = count * 2

    suspend fun load() {
        count = repo.count()
    }
}`

	file, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !file.ImplicitMarkup {
		t.Error("a file without markup should have ImplicitMarkup set")
	}
	if len(file.Classes) != 1 {
		t.Fatalf("len(Classes) = %d, want 1", len(file.Classes))
	}
	c := file.Classes[0]
	if c.Name != "Counter" || c.IsObject {
		t.Errorf("class = %q object=%v", c.Name, c.IsObject)
	}
	if c.Constructor == nil {
		t.Fatal("Constructor = nil")
	}
	if len(c.Constructor.Annotations) != 1 || c.Constructor.Annotations[0] != "Inject" {
		t.Errorf("Constructor.Annotations = %v, want [Inject]", c.Constructor.Annotations)
	}
	if c.Constructor.Params != "private val repo: Repo" {
		t.Errorf("Constructor.Params = %q", c.Constructor.Params)
	}
	if len(c.Properties) != 3 {
		t.Fatalf("len(Properties) = %d, want 3", len(c.Properties))
	}
	if c.Properties[1].Visibility != "private" {
		t.Errorf("secret visibility = %q, want private", c.Properties[1].Visibility)
	}
	doubled := c.Properties[2]
	if doubled.Getter != "count * 2" || !doubled.IsDerived() || doubled.Value != "" {
		t.Errorf("doubled = {value %q getter %q}", doubled.Value, doubled.Getter)
	}
	if len(c.Functions) != 1 || !c.Functions[0].IsSuspend {
		t.Errorf("Functions = %d, want 1 suspend", len(c.Functions))
	}
}

func TestParser_GetterAfterValueOnOneLine(t *testing.T) {
	file, err := Parse("class S {\n    var a: Int = 1 get() = 2\n}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prop := file.Classes[0].Properties[0]
	if prop.Value != "1" || prop.Getter != "2" {
		t.Errorf("a = {value %q getter %q}, want {value \"1\" getter \"2\"}", prop.Value, prop.Getter)
	}
}

func TestParser_ExtensionFunctions(t *testing.T) {
	type tc struct {
		input string
		want  string
	}

	tests := map[string]tc{
		"expression body": {
			input: "fun String.shout() = uppercase()\n\n<Text>a</Text>",
			want:  "fun String.shout() = uppercase()",
		},
		"generic receiver": {
			input: "fun <T> List<T>.second(): T = this[1]\n\n<Text>a</Text>",
			want:  "fun <T> List<T>.second(): T = this[1]",
		},
		"block body": {
			input: "fun Int.twice(): Int {\n    return this * 2\n}\n\n<Text>a</Text>",
			want:  "fun Int.twice(): Int {\n    return this * 2\n}",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			file, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(file.Functions) != 0 {
				t.Errorf("len(Functions) = %d, want 0", len(file.Functions))
			}
			if len(file.KotlinBlocks) != 1 || file.KotlinBlocks[0].Content != tt.want {
				t.Errorf("KotlinBlocks = %#v, want one block %q", file.KotlinBlocks, tt.want)
			}
		})
	}
}

func TestParser_StoreObject(t *testing.T) {
	src := `@store
object AppSettings {
    var theme = "light"
}`

	file, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(file.Classes) != 1 {
		t.Fatalf("len(Classes) = %d, want 1", len(file.Classes))
	}
	c := file.Classes[0]
	if !c.IsObject || !c.HasAnnotation("store") {
		t.Errorf("object = %v annotations = %v", c.IsObject, c.Annotations)
	}
}

func TestParser_Elements(t *testing.T) {
	src := `<Column>
    <Button onClick={() => save()} enabled text="Save" />
    <TextField bind:value={name} />
    <Scaffold topBar={<TopAppBar title="Home" />}>
    </Scaffold>
    <Text>Hello, {name}! {{braces}}</Text>
</Column>`

	file, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root, ok := file.Markup.(*Element)
	if !ok || root.Name != "Column" {
		t.Fatalf("root = %#v, want Column", file.Markup)
	}
	if len(root.Children) != 4 {
		t.Fatalf("len(Children) = %d, want 4", len(root.Children))
	}

	button := root.Children[0].(*Element)
	if !button.SelfClosing {
		t.Error("Button should be self-closing")
	}
	type propWant struct{ name, code string }
	for i, w := range []propWant{{"onClick", "() => save()"}, {"enabled", "true"}, {"text", `"Save"`}} {
		p := button.Props[i]
		if p.Name != w.name || p.ExprCode() != w.code {
			t.Errorf("Props[%d] = %s=%q, want %s=%q", i, p.Name, p.ExprCode(), w.name, w.code)
		}
	}

	field := root.Children[1].(*Element)
	if p := field.Prop("bind:value"); p == nil || p.ExprCode() != "name" {
		t.Errorf("bind:value prop = %#v", p)
	}

	scaffold := root.Children[2].(*Element)
	if p := scaffold.Prop("topBar"); p == nil || !p.IsMarkup() {
		t.Errorf("topBar should hold markup, got %#v", p)
	}

	text := root.Children[3].(*Element)
	if len(text.Children) != 3 {
		t.Fatalf("len(Text.Children) = %d, want 3", len(text.Children))
	}
	if v := text.Children[0].(*Text).Value; v != "Hello, " {
		t.Errorf("first text = %q, want %q", v, "Hello, ")
	}
	if e := text.Children[1].(*Interpolation).Expr; e != "name" {
		t.Errorf("interpolation = %q, want %q", e, "name")
	}
	if v := text.Children[2].(*Text).Value; v != "! {braces}" {
		t.Errorf("last text = %q, want %q", v, "! {braces}")
	}
}

func TestParser_SiblingRootsWrapInColumn(t *testing.T) {
	file, err := Parse("<Text>a</Text>\n<Text>b</Text>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root, ok := file.Markup.(*Element)
	if !ok || root.Name != "Column" || len(root.Children) != 2 {
		t.Fatalf("root = %#v, want Column with 2 children", file.Markup)
	}
}

func TestParser_ControlFlow(t *testing.T) {
	src := `<Column>
    @if (loading) {
        <Text>Loading</Text>
    } else if (error != null) {
        <Text>{error}</Text>
    } else {
        <Text>Done</Text>
    }
    @for (i, item in items, key = { it.id }) {
        <Text>{item}</Text>
    } empty {
        <Text>None</Text>
    }
    @when {
        count == 0 -> <Text>Zero</Text>
        else -> <Text>Many</Text>
    }
</Column>`

	file, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := file.Markup.(*Element)
	if len(root.Children) != 3 {
		t.Fatalf("len(Children) = %d, want 3", len(root.Children))
	}

	ifNode, ok := root.Children[0].(*IfElse)
	if !ok {
		t.Fatalf("Children[0] = %T, want *IfElse", root.Children[0])
	}
	if ifNode.Condition != "loading" {
		t.Errorf("Condition = %q, want %q", ifNode.Condition, "loading")
	}
	if len(ifNode.ElseIfs) != 1 || ifNode.ElseIfs[0].Condition != "error != null" {
		t.Errorf("ElseIfs = %#v", ifNode.ElseIfs)
	}
	if len(ifNode.Else) != 1 {
		t.Errorf("len(Else) = %d, want 1", len(ifNode.Else))
	}

	loop, ok := root.Children[1].(*ForLoop)
	if !ok {
		t.Fatalf("Children[1] = %T, want *ForLoop", root.Children[1])
	}
	if loop.Index != "i" || loop.Item != "item" || loop.Collection != "items" || loop.Key != "it.id" {
		t.Errorf("loop = {%q %q %q %q}", loop.Index, loop.Item, loop.Collection, loop.Key)
	}
	if len(loop.Body) != 1 || len(loop.Empty) != 1 {
		t.Errorf("len(Body) = %d, len(Empty) = %d", len(loop.Body), len(loop.Empty))
	}

	when, ok := root.Children[2].(*When)
	if !ok {
		t.Fatalf("Children[2] = %T, want *When", root.Children[2])
	}
	if len(when.Arms) != 2 || when.Arms[0].Condition != "count == 0" || !when.Arms[1].IsElse {
		t.Errorf("arms = %#v", when.Arms)
	}
}

func TestParser_TrailingDeclarations(t *testing.T) {
	src := `data class User(val name: String)

<Badge label="new" />

fun Badge(label: String) {
    <Text>{label}</Text>
}`

	file, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(file.KotlinBlocks) != 1 || !strings.HasPrefix(file.KotlinBlocks[0].Content, "data class User") {
		t.Errorf("KotlinBlocks = %#v", file.KotlinBlocks)
	}
	if len(file.Helpers) != 1 {
		t.Fatalf("len(Helpers) = %d, want 1", len(file.Helpers))
	}
	if h := file.Helpers[0]; h.Name != "Badge" || h.Params != "label: String" || h.Markup == nil {
		t.Errorf("helper = %q(%q)", h.Name, h.Params)
	}
}

func TestParser_Errors(t *testing.T) {
	type tc struct {
		input       string
		wantMessage string
		wantLine    int
	}

	tests := map[string]tc{
		"unclosed element": {
			input:       "<Column>",
			wantMessage: "unexpected end of input while parsing children of <Column>",
			wantLine:    1,
		},
		"mismatched tags": {
			input:       "<Column>\n</Row>",
			wantMessage: "mismatched tags: opening <Column> vs closing </Row>",
			wantLine:    2,
		},
		"missing dollar on hook": {
			input:       "onMount {\n}\n<Text>x</Text>",
			wantMessage: "unknown identifier 'onMount'",
			wantLine:    1,
		},
		"missing dollar in body": {
			input:       "fun go() {\n  navigate(\"/home\")\n}\n<Text>x</Text>",
			wantMessage: "unknown identifier 'navigate'",
			wantLine:    2,
		},
		"state without value": {
			input:       "var count\n<Text>x</Text>",
			wantMessage: "expected '=' after variable 'count'",
			wantLine:    2,
		},
		"bare if": {
			input:       "<Column>\n</Column>\nif (x) {}",
			wantMessage: "unexpected content after markup",
			wantLine:    3,
		},
		"leading blank lines": {
			input:       "\n\nvar count\n<Text>x</Text>",
			wantMessage: "expected '=' after variable 'count'",
			wantLine:    4,
		},
		"unclosed paren in state": {
			input:       "val x = (1\n<Text>{x}</Text>",
			wantMessage: "unclosed '(' in value",
			wantLine:    1,
		},
		"unclosed bracket in state": {
			input:       "var count = 0\nval first = items[0\n<Text>{first}</Text>",
			wantMessage: "unclosed '[' in value",
			wantLine:    2,
		},
		"unclosed paren in getter": {
			input:       "class S {\n    val a: Int\n        get() = listOf((1\n}",
			wantMessage: "unclosed '(' in getter",
			wantLine:    3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewParser("test.wh", tt.input).ParseFile()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if !strings.Contains(perr.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want it to contain %q", perr.Message, tt.wantMessage)
			}
			if perr.Pos.Line != tt.wantLine {
				t.Errorf("Pos.Line = %d, want %d", perr.Pos.Line, tt.wantLine)
			}
			if perr.Pos.File != "test.wh" {
				t.Errorf("Pos.File = %q, want test.wh", perr.Pos.File)
			}
		})
	}
}

func TestParser_Positions(t *testing.T) {
	file, err := Parse("var count = 0\nvar name = \"\"\n\n<Text>x</Text>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := file.State[1].Position
	if pos.Line != 2 || pos.Column != 1 {
		t.Errorf("Position = %s, want 2:1", pos)
	}
	if mp := file.Markup.Pos(); mp.Line != 4 {
		t.Errorf("markup line = %d, want 4", mp.Line)
	}
}

func TestParser_PositionsAfterLeadingComment(t *testing.T) {
	file, err := Parse("\n// Counter screen\n\nvar count = 0\n<Text>x</Text>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos := file.State[0].Position; pos.Line != 4 || pos.Column != 1 {
		t.Errorf("Position = %s, want 4:1", pos)
	}
	if mp := file.Markup.Pos(); mp.Line != 5 {
		t.Errorf("markup line = %d, want 5", mp.Line)
	}
}

func TestError_Render(t *testing.T) {
	err := &Error{
		Pos:        Position{File: "a.wh", Line: 3, Column: 5},
		Message:    "unknown identifier 'onMount'",
		Hint:       "did you mean '$onMount'?",
		SourceLine: "    onMount {",
	}

	wantErr := "a.wh:3:5: error: unknown identifier 'onMount' (did you mean '$onMount'?)"
	if got := err.Error(); got != wantErr {
		t.Errorf("Error() = %q, want %q", got, wantErr)
	}

	want := "unknown identifier 'onMount'\n" +
		" --> line 3:5\n" +
		"  |\n" +
		"3 |     onMount {\n" +
		"  |     ^\n" +
		"  = help: did you mean '$onMount'?"
	if got := err.Render(); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}
