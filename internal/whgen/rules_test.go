package whgen

import (
	"testing"
)

func TestHexColor(t *testing.T) {
	type tc struct {
		input     string
		want      string
		wantError bool
	}

	tests := map[string]tc{
		"short form":       {input: "#FFF", want: "Color(0xFFFFFFFF)"},
		"six digits":       {input: "#ff0000", want: "Color(0xFFFF0000)"},
		"alpha moves left": {input: "#11223344", want: "Color(0x44112233)"},
		"bad length":       {input: "#12345", wantError: true},
		"bad digit":        {input: "#GG0000", wantError: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := hexColor(tt.input)
			if tt.wantError {
				if err == nil {
					t.Errorf("hexColor(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("hexColor(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestColorValue(t *testing.T) {
	type tc struct {
		input     string
		want      string
		wantError bool
	}

	tests := map[string]tc{
		"hex literal":   {input: `"#FFF"`, want: "Color(0xFFFFFFFF)"},
		"theme color":   {input: `"primary"`, want: "MaterialTheme.colorScheme.primary"},
		"named color":   {input: `"red"`, want: "Color.Red"},
		"rgb":           {input: `"rgb(255, 0, 0)"`, want: "Color(0xFFFF0000)"},
		"rgba":          {input: `"rgba(255, 0, 0, 0.5)"`, want: "Color(0x80FF0000)"},
		"plain ref":     {input: "accent", want: "accent"},
		"ternary":       {input: `isActive ? "#FF0000" : "primary"`, want: "if (isActive) Color(0xFFFF0000) else MaterialTheme.colorScheme.primary"},
		"invalid hex":   {input: `"#12345"`, wantError: true},
		"invalid rgb":   {input: `"rgb(300, 0, 0)"`, wantError: true},
		"ternary error": {input: `on ? "#12" : "primary"`, wantError: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := colorValue(tt.input)
			if tt.wantError {
				if err == nil {
					t.Errorf("colorValue(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("colorValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnits(t *testing.T) {
	type tc struct {
		input string
		unit  string
		want  string
	}

	tests := map[string]tc{
		"bare number":      {input: "16", unit: "dp", want: "16.dp"},
		"quoted number":    {input: `"16"`, unit: "dp", want: "16.dp"},
		"px becomes dp":    {input: `"16px"`, unit: "dp", want: "16.dp"},
		"explicit sp":      {input: `"14sp"`, unit: "dp", want: "14.sp"},
		"reference":        {input: "spacing", unit: "dp", want: "spacing.dp"},
		"expression":       {input: "base * 2", unit: "dp", want: "(base * 2).dp"},
		"already has unit": {input: "12.sp", unit: "sp", want: "12.sp"},
		"decimal":          {input: "1.5", unit: "sp", want: "1.5.sp"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := withUnit(tt.input, tt.unit)
			if got != tt.want {
				t.Errorf("withUnit(%q, %q) = %q, want %q", tt.input, tt.unit, got, tt.want)
			}
		})
	}
}

func TestSizeValue(t *testing.T) {
	type tc struct {
		input        string
		want         string
		wantFraction bool
	}

	tests := map[string]tc{
		"number":        {input: "200", want: "200.dp"},
		"quoted number": {input: `"120"`, want: "120.dp"},
		"half":          {input: `"50%"`, want: "0.5f", wantFraction: true},
		"full":          {input: `"100%"`, want: "1f", wantFraction: true},
		"expression":    {input: "size.dp", want: "size.dp"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, fraction := sizeValue(tt.input)
			if got != tt.want {
				t.Errorf("sizeValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if fraction != tt.wantFraction {
				t.Errorf("sizeValue(%q) fraction = %v, want %v", tt.input, fraction, tt.wantFraction)
			}
		})
	}
}

func TestPaddingSides(t *testing.T) {
	type prop struct{ name, code string }
	type tc struct {
		props []prop
		want  string
	}

	tests := map[string]tc{
		"none": {
			want: "",
		},
		"all sides": {
			props: []prop{{"p", "16"}},
			want:  ".padding(16.dp)",
		},
		"padding alias": {
			props: []prop{{"padding", "8"}},
			want:  ".padding(8.dp)",
		},
		"axis overrides all": {
			props: []prop{{"p", "16"}, {"px", "8"}},
			want:  ".padding(horizontal = 8.dp, vertical = 16.dp)",
		},
		"side wins regardless of order": {
			props: []prop{{"pt", "4"}, {"p", "8"}},
			want:  ".padding(top = 4.dp, bottom = 8.dp, start = 8.dp, end = 8.dp)",
		},
		"vertical only": {
			props: []prop{{"py", "10"}},
			want:  ".padding(vertical = 10.dp)",
		},
		"single side": {
			props: []prop{{"pb", "12"}},
			want:  ".padding(bottom = 12.dp)",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var s paddingSides
			for _, p := range tt.props {
				s.set(p.name, p.code)
			}
			if got := s.modifier(); got != tt.want {
				t.Errorf("modifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransformTernary(t *testing.T) {
	type tc struct {
		input string
		want  string
	}

	tests := map[string]tc{
		"simple":         {input: "a ? b : c", want: "if (a) b else c"},
		"parenthesized":  {input: `(x > 0) ? "pos" : "neg"`, want: `if (x > 0) "pos" else "neg"`},
		"nested":         {input: "a ? b : c ? d : e", want: "if (a) b else if (c) d else e"},
		"safe call":      {input: "user?.name", want: "user?.name"},
		"elvis":          {input: `user?.name ?: "anon"`, want: `user?.name ?: "anon"`},
		"colon in text":  {input: `ok ? "a:b" : "c"`, want: `if (ok) "a:b" else "c"`},
		"no conditional": {input: "count + 1", want: "count + 1"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := transformTernary(tt.input); got != tt.want {
				t.Errorf("transformTernary(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTransformLambda(t *testing.T) {
	type tc struct {
		input string
		want  string
	}

	tests := map[string]tc{
		"one param":    {input: "(x) => x * 2", want: "{ x -> x * 2 }"},
		"no params":    {input: "() => f()", want: "{ f() }"},
		"two params":   {input: "(a, b) => a + b", want: "{ a, b -> a + b }"},
		"block body":   {input: "(e) => { save(e) }", want: "{ e -> save(e) }"},
		"not a lambda": {input: "save", want: "save"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := transformLambda(tt.input); got != tt.want {
				t.Errorf("transformLambda(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMagicRewrites(t *testing.T) {
	type tc struct {
		fn    func(string) string
		input string
		want  string
	}

	logAs := func(tag string) func(string) string {
		return func(s string) string { return transformLog(s, tag) }
	}
	onScope := func(scope string) func(string) string {
		return func(s string) string { return transformDispatchers(s, scope) }
	}

	tests := map[string]tc{
		"route path": {
			fn: transformRoutes, input: "$routes.profile.edit", want: "Routes.Profile.Edit",
		},
		"route in navigate": {
			fn: transformRoutes, input: "$navigate($routes.home)", want: "$navigate(Routes.Home)",
		},
		"fetch": {
			fn: transformFetch, input: `$fetch("https://api.example.com/users")`,
			want: `httpClient.get("https://api.example.com/users").body()`,
		},
		"fetch nested parens": {
			fn: transformFetch, input: `val u: User = $fetch(url(id))`,
			want: `val u: User = httpClient.get(url(id)).body()`,
		},
		"log debug": {
			fn: logAs("Home"), input: `$log("loaded")`, want: `Log.d("Home", "loaded")`,
		},
		"log error": {
			fn: logAs("Home"), input: `$log.e("failed")`, want: `Log.e("Home", "failed")`,
		},
		"io dispatcher": {
			fn: onScope("scope"), input: "io { load() }", want: "scope.launch(Dispatchers.IO) { load() }",
		},
		"cpu dispatcher": {
			fn: onScope("viewModelScope"), input: "cpu { crunch() }", want: "viewModelScope.launch(Dispatchers.Default) { crunch() }",
		},
		"identifier ending in io": {
			fn: onScope("scope"), input: "radio { x }", want: "radio { x }",
		},
		"string resource": {
			fn: transformStringResources, input: "R.string.title", want: "stringResource(R.string.title)",
		},
		"string resource with args": {
			fn: transformStringResources, input: "R.string.greeting(name)", want: "stringResource(R.string.greeting, name)",
		},
		"string resource already wrapped": {
			fn: transformStringResources, input: "stringResource(R.string.title)", want: "stringResource(R.string.title)",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.fn(tt.input); got != tt.want {
				t.Errorf("rewrite(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTransformListAndRange(t *testing.T) {
	type tc struct {
		input   string
		mutable bool
		want    string
	}

	tests := map[string]tc{
		"list":              {input: "[1, 2, 3]", want: "listOf(1, 2, 3)"},
		"empty mutable":     {input: "[]", mutable: true, want: "mutableListOf()"},
		"nested":            {input: "[[1], [2]]", mutable: true, want: "mutableListOf(listOf(1), listOf(2))"},
		"strings":           {input: `["a", "b, c"]`, want: `listOf("a", "b, c")`},
		"not a list":        {input: "items", want: "items"},
		"range":             {input: "RANGE[1..5]", want: "(1..5).toList()"},
		"range with step":   {input: "RANGE[0..10:2]", want: "(0..10 step 2).toList()"},
		"descending":        {input: "RANGE[10..0:-1]", want: "(10 downTo 0).toList()"},
		"descending step":   {input: "RANGE[10..0:-2]", want: "(10 downTo 0 step 2).toList()"},
		"unit step":         {input: "RANGE[1..5:1]", want: "(1..5).toList()"},
		"kotlin range kept": {input: "1..5", want: "1..5"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := transformList(transformRange(tt.input), tt.mutable)
			if got != tt.want {
				t.Errorf("transform(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInferType(t *testing.T) {
	type tc struct {
		input  string
		want   string
		wantOK bool
	}

	tests := map[string]tc{
		"boolean":      {input: "true", want: "Boolean", wantOK: true},
		"string":       {input: `"hi"`, want: "String", wantOK: true},
		"int":          {input: "42", want: "Int", wantOK: true},
		"negative int": {input: "-1", want: "Int", wantOK: true},
		"double":       {input: "3.14", want: "Double", wantOK: true},
		"float":        {input: "1.5f", want: "Float", wantOK: true},
		"long":         {input: "10L", want: "Long", wantOK: true},
		"int list":     {input: "[1, 2]", want: "List<Int>", wantOK: true},
		"string list":  {input: `["a"]`, want: "List<String>", wantOK: true},
		"range":        {input: "RANGE[1..3]", want: "List<Int>", wantOK: true},
		"call":         {input: "foo()", wantOK: false},
		"empty list":   {input: "[]", wantOK: false},
		"null":         {input: "null", wantOK: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := inferType(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("inferType(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("inferType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultValue(t *testing.T) {
	type tc struct {
		typ    string
		want   string
		wantOK bool
	}

	tests := map[string]tc{
		"string":   {typ: "String", want: `""`, wantOK: true},
		"int":      {typ: "Int", want: "0", wantOK: true},
		"float":    {typ: "Float", want: "0f", wantOK: true},
		"nullable": {typ: "User?", want: "null", wantOK: true},
		"list":     {typ: "List<String>", want: "emptyList()", wantOK: true},
		"map":      {typ: "Map<String, Int>", want: "emptyMap()", wantOK: true},
		"unknown":  {typ: "User", wantOK: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := defaultValue(tt.typ)
			if ok != tt.wantOK {
				t.Fatalf("defaultValue(%q) ok = %v, want %v", tt.typ, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("defaultValue(%q) = %q, want %q", tt.typ, got, tt.want)
			}
		})
	}
}

func TestNaming(t *testing.T) {
	type tc struct {
		fn    func(string) string
		input string
		want  string
	}

	tests := map[string]tc{
		"kebab to pascal": {fn: toPascalCase, input: "user-profile", want: "UserProfile"},
		"snake to pascal": {fn: toPascalCase, input: "my_screen", want: "MyScreen"},
		"single word":     {fn: ToPascalCase, input: "home", want: "Home"},
		"snake to camel":  {fn: snakeToCamel, input: "get_user_name", want: "getUserName"},
		"capitalize":      {fn: capitalize, input: "count", want: "Count"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.fn(tt.input); got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", name, tt.input, got, tt.want)
			}
		})
	}
}

func TestTransformFFICalls(t *testing.T) {
	objects := map[string]bool{"Math": true}

	type tc struct {
		input string
		want  string
	}

	tests := map[string]tc{
		"bound object":   {input: "Math.add_numbers(1, 2)", want: "Math.addNumbers(1, 2)"},
		"unbound object": {input: "Other.add_numbers(1, 2)", want: "Other.add_numbers(1, 2)"},
		"camel already":  {input: "Math.add(1, 2)", want: "Math.add(1, 2)"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := transformFFICalls(tt.input, objects); got != tt.want {
				t.Errorf("transformFFICalls(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnumValue(t *testing.T) {
	type tc struct {
		input string
		want  string
	}

	tests := map[string]tc{
		"table hit":    {input: `"bold"`, want: "FontWeight.Bold"},
		"dashed":       {input: `"semi-bold"`, want: "FontWeight.SemiBold"},
		"fallback":     {input: `"heavy"`, want: "FontWeight.Heavy"},
		"expression":   {input: "weight", want: "weight"},
		"regular name": {input: `"regular"`, want: "FontWeight.Normal"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := enumValue(tt.input, "FontWeight", fontWeights); got != tt.want {
				t.Errorf("enumValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnquote(t *testing.T) {
	type tc struct {
		input  string
		want   string
		wantOK bool
	}

	tests := map[string]tc{
		"literal":       {input: `"abc"`, want: "abc", wantOK: true},
		"escaped quote": {input: `"a\"b"`, want: `a\"b`, wantOK: true},
		"concatenation": {input: `"a" + "b"`, wantOK: false},
		"raw string":    {input: `"""x"""`, wantOK: false},
		"expression":    {input: "name", wantOK: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := unquote(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("unquote(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("unquote(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
