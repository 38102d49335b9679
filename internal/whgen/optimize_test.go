package whgen

import (
	"testing"
)

func TestStaticCollections(t *testing.T) {
	type hint struct {
		collection string
		confidence int
		planned    bool
	}
	type tc struct {
		src  string
		want []hint
	}

	loop := "<Column>\n    @for (u in xs) {\n        <Text>{u}</Text>\n    }\n</Column>"

	tests := map[string]tc{
		"immutable value": {
			src:  "val xs = listOf(\"a\", \"b\")\n\n" + loop,
			want: []hint{{"xs", 100, true}},
		},
		"var never written": {
			src:  "var xs = listOf(\"a\")\n\n" + loop,
			want: []hint{{"xs", 60, false}},
		},
		"var assigned in function": {
			src: "var xs = listOf(\"a\")\n\nfun reset() {\n    xs = listOf()\n}\n\n" + loop,
		},
		"mutating call in hook": {
			src:  "val xs = mutableListOf(\"a\")\n\n$onMount {\n    xs.add(\"b\")\n}\n\n" + loop,
			want: []hint{{"xs", 70, false}},
		},
		"assigned in handler": {
			src: "var xs = listOf(\"a\")\n\n<Column>\n    <Button onClick={xs = listOf()}>Clear</Button>\n    @for (u in xs) {\n        <Text>{u}</Text>\n    }\n</Column>",
		},
		"handler in body": {
			src:  "val xs = listOf(\"a\")\n\n<Column>\n    @for (u in xs) {\n        <Button onClick={println(u)}>{u}</Button>\n    }\n</Column>",
			want: []hint{{"xs", 90, true}},
		},
		"prop": {
			src: "@prop val xs: List<String>\n\n" + loop,
		},
		"derived": {
			src: "var all = listOf(1)\nval xs = $derived(all.filter { it > 0 })\n\n" + loop,
		},
		"undeclared collection": {
			src: "<Column>\n    @for (u in listOf(1, 2)) {\n        <Text>{u}</Text>\n    }\n</Column>",
		},
		"nested in if": {
			src:  "val xs = listOf(\"a\")\nvar show = true\n\n<Column>\n    @if (show) {\n        @for (u in xs) {\n            <Text>{u}</Text>\n        }\n    }\n</Column>",
			want: []hint{{"xs", 100, true}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			file, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got := StaticCollections(file)
			if len(got) != len(tt.want) {
				t.Fatalf("len(hints) = %d, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, w := range tt.want {
				if got[i].Collection != w.collection || got[i].Confidence != w.confidence || got[i].Planned() != w.planned {
					t.Errorf("hint[%d] = {%s %d planned=%v}, want {%s %d planned=%v}",
						i, got[i].Collection, got[i].Confidence, got[i].Planned(), w.collection, w.confidence, w.planned)
				}
				if !got[i].Position.IsValid() {
					t.Errorf("hint[%d] has no position", i)
				}
			}
		})
	}
}

func TestGenerate_RecyclerLoops(t *testing.T) {
	type tc struct {
		src      string
		optimize OptimizeLevel
		want     []string
		unwanted []string
	}

	loop := "<Column>\n    @for (u in xs) {\n        <Text>{u}</Text>\n    }\n</Column>"

	tests := map[string]tc{
		"aggressive planned loop": {
			src:      "val xs = listOf(\"a\", \"b\")\n\n" + loop,
			optimize: OptimizeAggressive,
			want: []string{
				"import androidx.compose.ui.viewinterop.AndroidView\n",
				"import androidx.recyclerview.widget.RecyclerView\n",
				"import android.widget.TextView\n",
				`        AndroidView(
            factory = { context ->
                RecyclerView(context).apply {
                    layoutManager = LinearLayoutManager(context)
                }
            },
            update = { view ->
                view.adapter = object : RecyclerView.Adapter<RecyclerView.ViewHolder>() {
                    override fun getItemCount() = xs.size

                    override fun onCreateViewHolder(parent: ViewGroup, viewType: Int): RecyclerView.ViewHolder {
`,
				`                    override fun onBindViewHolder(holder: RecyclerView.ViewHolder, position: Int) {
                        val u = xs[position]
                        (holder.itemView as TextView).text = "${u}"
                    }
                }
            }
        )
`,
			},
			unwanted: []string{"xs.forEach"},
		},
		"indexed row binds position": {
			src:      "val xs = listOf(\"a\")\n\n<Column>\n    @for (i, u in xs) {\n        <Text>{i}: {u}</Text>\n    }\n</Column>",
			optimize: OptimizeAggressive,
			want: []string{
				"val i = position\n",
				"val u = xs[position]\n",
				`.text = "${i}: ${u}"`,
			},
		},
		"default level keeps forEach": {
			src:      "val xs = listOf(\"a\", \"b\")\n\n" + loop,
			optimize: OptimizeDefault,
			want:     []string{"xs.forEach { u ->"},
			unwanted: []string{"RecyclerView"},
		},
		"unplanned loop keeps forEach": {
			src:      "var xs = listOf(\"a\")\n\n" + loop,
			optimize: OptimizeAggressive,
			want:     []string{"xs.forEach { u ->"},
			unwanted: []string{"RecyclerView"},
		},
		"rich row keeps forEach": {
			src:      "val xs = listOf(\"a\")\n\n<Column>\n    @for (u in xs) {\n        <Button onClick={println(u)}>{u}</Button>\n    }\n</Column>",
			optimize: OptimizeAggressive,
			want:     []string{"xs.forEach { u ->"},
			unwanted: []string{"RecyclerView"},
		},
		"keyed loop keeps forEach": {
			src:      "val xs = listOf(\"a\")\n\n<Column>\n    @for (u in xs, key = { it }) {\n        <Text>{u}</Text>\n    }\n</Column>",
			optimize: OptimizeAggressive,
			want:     []string{"key(u) {"},
			unwanted: []string{"RecyclerView"},
		},
		"lazy list keeps items": {
			src:      "val xs = listOf(\"a\")\n\n<LazyColumn>\n    @for (u in xs) {\n        <Text>{u}</Text>\n    }\n</LazyColumn>",
			optimize: OptimizeAggressive,
			want:     []string{"items(xs) { u ->"},
			unwanted: []string{"RecyclerView"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out := transpileSource(t, tt.src, Options{Name: "List", Optimize: tt.optimize}).PrimaryContent()
			assertBalanced(t, out)
			assertContains(t, out, tt.want...)
			assertNotContains(t, out, tt.unwanted...)
		})
	}
}
