package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindlemire/whitehall/pkg/whitehall"
)

func TestParseKind(t *testing.T) {
	type tc struct {
		input   string
		want    whitehall.UnitKind
		wantErr bool
	}

	tests := map[string]tc{
		"component": {input: "component", want: whitehall.KindComponent},
		"screen":    {input: "Screen", want: whitehall.KindScreen},
		"layout":    {input: "layout", want: whitehall.KindLayout},
		"unknown":   {input: "activity", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseKind(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunCompile_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "user-card.wh")
	require.NoError(t, os.WriteFile(src, []byte("<Text>hi</Text>"), 0o644))

	out := filepath.Join(dir, "out")
	err := runCompile(src, compileOptions{pkg: "com.example.app.components", kind: "component", outDir: out})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "UserCard.kt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package com.example.app.components")
	assert.Contains(t, string(data), "fun UserCard() {")
}

func TestRunCompile_ReportsSourceErrors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Bad.wh")
	require.NoError(t, os.WriteFile(src, []byte("<Text color=\"#12\">x</Text>"), 0o644))

	err := runCompile(src, compileOptions{pkg: "com.example.app", kind: "component", outDir: dir})
	require.Error(t, err)

	var werr *whitehall.Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, 1, werr.Pos.Line)
	assert.NoFileExists(t, filepath.Join(dir, "Bad.kt"))
}
