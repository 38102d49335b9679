package whitehall

import (
	"errors"
	"strings"
	"testing"
)

func TestTranspile(t *testing.T) {
	type tc struct {
		source    string
		opts      []Option
		wantFiles []string
		wantIn    []string
	}

	tests := map[string]tc{
		"simple component": {
			source:    "<Text>Hi</Text>",
			wantFiles: []string{""},
			wantIn:    []string{"fun Greeting() {", `Text(text = "Hi")`},
		},
		"store": {
			source:    "class Greeting {\n    var count = 0\n}",
			wantFiles: []string{""},
			wantIn:    []string{"class Greeting : ViewModel() {"},
		},
		"promoted": {
			source:    "var text = \"\"\n\n$onMount {\n    text = \"ready\"\n}\n\n<Text>{text}</Text>",
			wantFiles: []string{"", "ViewModel"},
			wantIn:    []string{"val viewModel = viewModel<GreetingViewModel>()"},
		},
		"promotion disabled": {
			source:    "var text = \"\"\n\n$onMount {\n    text = \"ready\"\n}\n\n<Text>{text}</Text>",
			opts:      []Option{WithPolicy(Policy{MinFunctions: 10})},
			wantFiles: []string{""},
			wantIn:    []string{"LaunchedEffect(Unit) {"},
		},
		"screen": {
			source:    "<Text>{$screen.params.id}</Text>",
			opts:      []Option{WithKind(KindScreen)},
			wantFiles: []string{""},
			wantIn:    []string{"fun Greeting(\n    navController: NavController,\n    id: String\n) {"},
		},
		"aggressive optimize": {
			source:    "val names = listOf(\"a\", \"b\")\n\n<Column>\n    @for (n in names) {\n        <Text>{n}</Text>\n    }\n</Column>",
			opts:      []Option{WithOptimize(OptimizeAggressive)},
			wantFiles: []string{""},
			wantIn:    []string{"override fun getItemCount() = names.size", "val n = names[position]"},
		},
		"registry store": {
			source:    "val cart = Cart()\n\n<Text>{cart.uiState.value.total}</Text>",
			opts:      []Option{WithRegistry(NewRegistry(StoreInfo{ClassName: "Cart", Source: ExplicitStore, HasMutableState: true}))},
			wantFiles: []string{""},
			wantIn:    []string{`val cart = viewModel<Cart>(key = "cart")`},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := Transpile(tt.source, "com.example.app.components", "Greeting", tt.opts...)
			if err != nil {
				t.Fatalf("Transpile: %v", err)
			}
			files := res.Files()
			if len(files) != len(tt.wantFiles) {
				t.Fatalf("len(Files()) = %d, want %d", len(files), len(tt.wantFiles))
			}
			for i, suffix := range tt.wantFiles {
				if files[i].Suffix != suffix {
					t.Errorf("Files()[%d].Suffix = %q, want %q", i, files[i].Suffix, suffix)
				}
			}
			for _, want := range tt.wantIn {
				if !strings.Contains(res.PrimaryContent(), want) {
					t.Errorf("primary output missing %q\n%s", want, res.PrimaryContent())
				}
			}
		})
	}
}

func TestTranspile_Error(t *testing.T) {
	src := "<Column>\n    <Text>\n</Column>"
	_, err := Transpile(src, "com.example.app", "Broken", WithFilename("Broken.wh"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var werr *Error
	if !errors.As(err, &werr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if werr.Pos.File != "Broken.wh" {
		t.Errorf("Pos.File = %q, want %q", werr.Pos.File, "Broken.wh")
	}
	if werr.SourceLine == "" {
		t.Error("SourceLine should be set")
	}
	if !strings.Contains(werr.Render(), werr.Message) {
		t.Errorf("Render() = %q, should contain the message", werr.Render())
	}
}

func TestBuildRegistry(t *testing.T) {
	counter, err := Parse("Counter.wh", "class Counter {\n    var count = 0\n}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	label, err := Parse("Label.wh", "<Text>x</Text>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	reg := BuildRegistry([]Unit{
		{Name: "Counter", Package: "com.example.app.stores", File: counter},
		{Name: "Label", Package: "com.example.app.components", File: label},
	}, DefaultPolicy())

	info, ok := reg.Lookup("Counter")
	if !ok {
		t.Fatal("Counter missing from registry")
	}
	if info.Source != ExplicitStore {
		t.Errorf("Source = %v, want %v", info.Source, ExplicitStore)
	}
	if reg.Contains("Label") {
		t.Error("Label should not be registered")
	}
}
