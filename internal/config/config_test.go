package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindlemire/whitehall/internal/whgen"
)

const minimal = `
[project]
name = "demo"
version = "1.0.0"

[android]
package = "com.example.demo"
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, 24, cfg.Android.MinSDK)
	assert.Equal(t, 34, cfg.Android.TargetSDK)
	assert.Equal(t, "build", cfg.Build.OutputDir)
	assert.Equal(t, "default", cfg.Build.OptimizeLevel)
	assert.Equal(t, whgen.OptimizeDefault, cfg.OptimizeLevel())
	assert.Equal(t, DefaultJava, cfg.Toolchain.Java)
	assert.Equal(t, DefaultAGP, cfg.Toolchain.AGP)
	assert.Nil(t, cfg.FFI.Enabled)

	policy := cfg.Policy()
	assert.Equal(t, 1, policy.MinSuspendFunctions)
	assert.Equal(t, 3, policy.MinFunctions)
	assert.Equal(t, 1, policy.MinLifecycleHooks)
}

func TestParse_Overrides(t *testing.T) {
	data := minimal + `
[build]
output_dir = "out"
optimize_level = "aggressive"

[build.promotion]
min_functions = 5

[toolchain]
java = "17"
gradle = "8.6"
agp = "8.4.1"

[ffi]
enabled = true
`
	cfg, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.Build.OutputDir)
	assert.Equal(t, "aggressive", cfg.Build.OptimizeLevel)
	assert.Equal(t, whgen.OptimizeAggressive, cfg.OptimizeLevel())
	assert.Equal(t, 5, cfg.Build.Promotion.MinFunctions)
	assert.Equal(t, 1, cfg.Build.Promotion.MinSuspendFunctions)
	assert.Equal(t, "8.4.1", cfg.Toolchain.AGP)
	assert.Equal(t, DefaultKotlin, cfg.Toolchain.Kotlin)
	require.NotNil(t, cfg.FFI.Enabled)
	assert.True(t, *cfg.FFI.Enabled)
	assert.True(t, cfg.FFIEnabled(t.TempDir()))
}

func TestParse_Errors(t *testing.T) {
	type tc struct {
		data    string
		wantErr string
	}

	tests := map[string]tc{
		"malformed toml": {
			data:    "[project\nname = 1",
			wantErr: "parse project file",
		},
		"missing name": {
			data:    "[android]\npackage = \"com.example.app\"",
			wantErr: "project.name is required",
		},
		"bad version": {
			data:    "[project]\nname = \"x\"\nversion = \"one\"\n[android]\npackage = \"com.example.app\"",
			wantErr: "invalid project.version",
		},
		"missing package": {
			data:    "[project]\nname = \"x\"",
			wantErr: "android.package is required",
		},
		"sdk order": {
			data:    minimal + "min_sdk = 35\n",
			wantErr: "greater than android.target_sdk",
		},
		"optimize level": {
			data:    minimal + "[build]\noptimize_level = \"max\"\n",
			wantErr: "unknown build.optimize_level",
		},
		"zero threshold": {
			data:    minimal + "[build.promotion]\nmin_lifecycle_hooks = 0\n",
			wantErr: "thresholds must be positive",
		},
		"java too old": {
			data:    minimal + "[toolchain]\njava = \"11\"\n",
			wantErr: "requires Java 17 or higher",
		},
		"gradle too old": {
			data:    minimal + "[toolchain]\ngradle = \"8.0\"\n",
			wantErr: "requires Gradle 8.2 or higher",
		},
		"unparsable agp": {
			data:    minimal + "[toolchain]\nagp = \"latest\"\n",
			wantErr: "invalid toolchain.agp version",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePackage(t *testing.T) {
	valid := []string{"com.example.app", "com.example.my_app", "com.example.app123"}
	for _, pkg := range valid {
		assert.NoError(t, ValidatePackage(pkg), pkg)
	}

	invalid := []string{"com", "Com.example.app", "com.Example.app", "com.example.my-app", "com.example.my app", "com..app"}
	for _, pkg := range invalid {
		err := ValidatePackage(pkg)
		if assert.Error(t, err, pkg) {
			assert.NotEmpty(t, errors.GetAllHints(err), pkg)
		}
	}
}

func TestValidateToolchain(t *testing.T) {
	type tc struct {
		tc      Toolchain
		wantErr bool
	}

	base := Toolchain{Java: "21", Gradle: "8.4", AGP: "8.2.0", Kotlin: "2.0.0"}
	with := func(f func(*Toolchain)) Toolchain {
		t := base
		f(&t)
		return t
	}

	tests := map[string]tc{
		"defaults":             {tc: base},
		"agp 7.4 with java 11": {tc: with(func(t *Toolchain) { t.AGP, t.Java, t.Gradle = "7.4.2", "11", "7.5" })},
		"agp 7.4 old gradle":   {tc: with(func(t *Toolchain) { t.AGP, t.Java, t.Gradle = "7.4.2", "11", "7.4" }), wantErr: true},
		"agp 8.3 gradle 8.2":   {tc: with(func(t *Toolchain) { t.AGP = "8.3.0"; t.Gradle = "8.2" }), wantErr: true},
		"agp 8.5 gradle 8.6":   {tc: with(func(t *Toolchain) { t.AGP = "8.5.0"; t.Gradle = "8.6" })},
		"agp 9 java 17":        {tc: with(func(t *Toolchain) { t.AGP, t.Java, t.Gradle = "9.0.0", "17", "8.6" }), wantErr: true},
		"agp 9 java 21":        {tc: with(func(t *Toolchain) { t.AGP, t.Gradle = "9.0.0", "8.6" })},
		"bad kotlin":           {tc: with(func(t *Toolchain) { t.Kotlin = "two" }), wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateToolchain(tt.tc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find whitehall.toml")
	assert.NotEmpty(t, errors.GetAllHints(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(minimal), 0o644))
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "com.example.demo", cfg.Android.Package)
	assert.False(t, cfg.FFIEnabled(dir))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "ffi"), 0o755))
	assert.True(t, cfg.FFIEnabled(dir))
}
