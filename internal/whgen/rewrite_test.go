package whgen

import (
	"testing"
)

func TestReplaceIdent(t *testing.T) {
	type tc struct {
		input string
		want  string
	}

	tests := map[string]tc{
		"free identifier":    {input: "count + 1", want: "n + 1"},
		"member access":      {input: "state.count", want: "state.count"},
		"magic name":         {input: "$count", want: "$count"},
		"callable ref":       {input: "::count", want: "::count"},
		"longer name":        {input: "counter + count", want: "counter + n"},
		"string contents":    {input: `"count"`, want: `"count"`},
		"template braces":    {input: `"Total: ${count}"`, want: `"Total: ${n}"`},
		"template shorthand": {input: `"Total: $count"`, want: `"Total: ${n}"`},
		"line comment":       {input: "x // count", want: "x // count"},
		"number suffix":      {input: "1L + count", want: "1L + n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := replaceIdent(tt.input, "count", "n"); got != tt.want {
				t.Errorf("replaceIdent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatchBrace(t *testing.T) {
	type tc struct {
		input string
		open  int
		want  int
	}

	tests := map[string]tc{
		"flat":          {input: "{ a }", open: 0, want: 4},
		"nested":        {input: "{ { a } }", open: 0, want: 8},
		"brace in text": {input: `{ "}" }`, open: 0, want: 6},
		"unterminated":  {input: "{ a", open: 0, want: -1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := matchBrace(tt.input, tt.open); got != tt.want {
				t.Errorf("matchBrace(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestVMRefs(t *testing.T) {
	refs := vmRefs{
		state:   map[string]bool{"count": true, "name": true},
		members: map[string]bool{"total": true},
		funcs:   map[string]bool{"save": true},
	}

	type tc struct {
		input string
		want  string
	}

	tests := map[string]tc{
		"read":              {input: "count", want: "uiState.count"},
		"increment":         {input: "count++", want: "viewModel.updateCount(uiState.count + 1)"},
		"decrement":         {input: "count--", want: "viewModel.updateCount(uiState.count - 1)"},
		"compound":          {input: "count += 2", want: "viewModel.updateCount(uiState.count + 2)"},
		"compound expr":     {input: "count -= step * 2", want: "viewModel.updateCount(uiState.count - (step * 2))"},
		"assign":            {input: "name = it", want: "viewModel.updateName(it)"},
		"assign in lambda":  {input: "{ name = it }", want: "{ viewModel.updateName(it) }"},
		"assign from state": {input: "name = name.trim()", want: "viewModel.updateName(uiState.name.trim())"},
		"comparison":        {input: "count == 3", want: "uiState.count == 3"},
		"function call":     {input: "save()", want: "viewModel.save()"},
		"function ref":      {input: "save", want: "save"},
		"member":            {input: "total * 2", want: "viewModel.total * 2"},
		"template":          {input: `"Hello $name"`, want: `"Hello ${uiState.name}"`},
		"qualified":         {input: "user.count", want: "user.count"},
		"named argument":    {input: "Text(count = 1)", want: "Text(count = 1)"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := refs.rewrite(tt.input); got != tt.want {
				t.Errorf("rewrite(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
