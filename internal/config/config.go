// Package config loads whitehall.toml, the project file at the root of a
// Whitehall project.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/grindlemire/whitehall/internal/whgen"
)

// FileName is the name of the project file.
const FileName = "whitehall.toml"

// Toolchain defaults, used when [toolchain] leaves a version out.
const (
	DefaultJava   = "21"
	DefaultGradle = "8.4"
	DefaultAGP    = "8.2.0"
	DefaultKotlin = "2.0.0"
)

// Config is the decoded project file.
type Config struct {
	Project   Project   `toml:"project"`
	Android   Android   `toml:"android"`
	Build     Build     `toml:"build"`
	Toolchain Toolchain `toml:"toolchain"`
	FFI       FFI       `toml:"ffi"`
}

type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type Android struct {
	MinSDK    int    `toml:"min_sdk"`
	TargetSDK int    `toml:"target_sdk"`
	Package   string `toml:"package"`
}

type Build struct {
	OutputDir     string    `toml:"output_dir"`
	OptimizeLevel string    `toml:"optimize_level"`
	Promotion     Promotion `toml:"promotion"`
}

// Promotion holds the thresholds that decide when a component's state
// moves into a generated ViewModel.
type Promotion struct {
	MinSuspendFunctions int `toml:"min_suspend_functions"`
	MinFunctions        int `toml:"min_functions"`
	MinLifecycleHooks   int `toml:"min_lifecycle_hooks"`
}

type Toolchain struct {
	Java   string `toml:"java"`
	Gradle string `toml:"gradle"`
	AGP    string `toml:"agp"`
	Kotlin string `toml:"kotlin"`
}

// FFI configures native bindings. A nil Enabled means auto-detect from
// the presence of src/ffi.
type FFI struct {
	Enabled *bool `toml:"enabled"`
}

// Default returns a Config holding every default value. Package is left
// empty since it has no sensible default.
func Default() *Config {
	policy := whgen.DefaultPolicy()
	return &Config{
		Project: Project{Version: "0.1.0"},
		Android: Android{MinSDK: 24, TargetSDK: 34},
		Build: Build{
			OutputDir:     "build",
			OptimizeLevel: "default",
			Promotion: Promotion{
				MinSuspendFunctions: policy.MinSuspendFunctions,
				MinFunctions:        policy.MinFunctions,
				MinLifecycleHooks:   policy.MinLifecycleHooks,
			},
		},
		Toolchain: Toolchain{
			Java:   DefaultJava,
			Gradle: DefaultGradle,
			AGP:    DefaultAGP,
			Kotlin: DefaultKotlin,
		},
	}
}

// Load reads and validates dir/whitehall.toml.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.WithHint(
				errors.Newf("could not find %s in %s", FileName, dir),
				"run the command from the project root or pass --dir")
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return cfg, nil
}

// Parse decodes a project file over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(err, "parse project file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Policy returns the promotion thresholds as a generator policy.
func (c *Config) Policy() whgen.Policy {
	return whgen.Policy{
		MinSuspendFunctions: c.Build.Promotion.MinSuspendFunctions,
		MinFunctions:        c.Build.Promotion.MinFunctions,
		MinLifecycleHooks:   c.Build.Promotion.MinLifecycleHooks,
	}
}

// OptimizeLevel returns build.optimize_level as a generator setting.
func (c *Config) OptimizeLevel() whgen.OptimizeLevel {
	if c.Build.OptimizeLevel == "aggressive" {
		return whgen.OptimizeAggressive
	}
	return whgen.OptimizeDefault
}

// FFIEnabled reports whether native bindings are on for a project rooted
// at dir.
func (c *Config) FFIEnabled(dir string) bool {
	if c.FFI.Enabled != nil {
		return *c.FFI.Enabled
	}
	info, err := os.Stat(filepath.Join(dir, "src", "ffi"))
	return err == nil && info.IsDir()
}
