package config

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
)

// Validate checks the decoded values and the compatibility of the
// configured toolchain.
func (c *Config) Validate() error {
	if c.Project.Name == "" {
		return errors.WithHint(errors.New("project.name is required"),
			"add name = \"my-app\" under [project]")
	}
	if _, err := semver.NewVersion(c.Project.Version); err != nil {
		return errors.WithHint(errors.Newf("invalid project.version %q", c.Project.Version),
			"versions are written like \"1.0.0\"")
	}
	if err := ValidatePackage(c.Android.Package); err != nil {
		return err
	}
	if c.Android.MinSDK <= 0 || c.Android.TargetSDK <= 0 {
		return errors.Newf("android.min_sdk and android.target_sdk must be positive, got %d and %d",
			c.Android.MinSDK, c.Android.TargetSDK)
	}
	if c.Android.MinSDK > c.Android.TargetSDK {
		return errors.WithHint(
			errors.Newf("android.min_sdk (%d) is greater than android.target_sdk (%d)", c.Android.MinSDK, c.Android.TargetSDK),
			"lower min_sdk or raise target_sdk")
	}
	switch c.Build.OptimizeLevel {
	case "default", "aggressive":
	default:
		return errors.WithHint(errors.Newf("unknown build.optimize_level %q", c.Build.OptimizeLevel),
			"use \"default\" or \"aggressive\"")
	}
	if c.Build.OutputDir == "" {
		return errors.New("build.output_dir must not be empty")
	}
	p := c.Build.Promotion
	if p.MinSuspendFunctions <= 0 || p.MinFunctions <= 0 || p.MinLifecycleHooks <= 0 {
		return errors.WithHint(errors.New("build.promotion thresholds must be positive"),
			"remove a threshold to use its default")
	}
	return ValidateToolchain(c.Toolchain)
}

// ValidatePackage checks an Android application id: at least two
// dot-separated parts, each starting with a lowercase letter and holding
// only lowercase letters, digits and underscores.
func ValidatePackage(pkg string) error {
	hint := "package names look like \"com.example.app\""
	if pkg == "" {
		return errors.WithHint(errors.New("android.package is required"), hint)
	}
	parts := strings.Split(pkg, ".")
	if len(parts) < 2 {
		return errors.WithHint(errors.Newf("invalid Android package %q: needs at least two parts", pkg), hint)
	}
	for i, part := range parts {
		if part == "" {
			return errors.WithHint(errors.Newf("invalid Android package %q: part %d is empty", pkg, i+1), hint)
		}
		if part[0] < 'a' || part[0] > 'z' {
			return errors.WithHint(
				errors.Newf("invalid Android package %q: part %q must start with a lowercase letter", pkg, part), hint)
		}
		for _, r := range part {
			if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_' {
				return errors.WithHint(
					errors.Newf("invalid Android package %q: part %q contains %q", pkg, part, r), hint)
			}
		}
	}
	return nil
}

// toolchainRule gives the minimum Java and Gradle for a range of Android
// Gradle Plugin versions.
type toolchainRule struct {
	agp    string
	java   uint64
	gradle string
}

var toolchainRules = []toolchainRule{
	{agp: "~7.4", java: 11, gradle: "7.5"},
	{agp: ">= 8.0, < 8.2", java: 17, gradle: "8.0"},
	{agp: "~8.2", java: 17, gradle: "8.2"},
	{agp: "~8.3", java: 17, gradle: "8.4"},
	{agp: ">= 8.4, < 9.0", java: 17, gradle: "8.6"},
	{agp: "^9", java: 21, gradle: "8.6"},
}

// fallbackRule applies to AGP versions outside every known range.
var fallbackRule = toolchainRule{java: 17, gradle: "8.0"}

// ValidateToolchain checks that every version parses and that the Java
// and Gradle versions satisfy what the configured AGP needs.
func ValidateToolchain(tc Toolchain) error {
	versions := map[string]string{"java": tc.Java, "gradle": tc.Gradle, "agp": tc.AGP, "kotlin": tc.Kotlin}
	parsed := map[string]*semver.Version{}
	for _, key := range []string{"java", "gradle", "agp", "kotlin"} {
		v, err := semver.NewVersion(versions[key])
		if err != nil {
			return errors.WithHintf(errors.Newf("invalid toolchain.%s version %q", key, versions[key]),
				"toolchain versions are written like %q", defaultFor(key))
		}
		parsed[key] = v
	}

	rule := fallbackRule
	for _, r := range toolchainRules {
		c, err := semver.NewConstraint(r.agp)
		if err != nil {
			return errors.Wrapf(err, "toolchain rule %q", r.agp)
		}
		if c.Check(parsed["agp"]) {
			rule = r
			break
		}
	}

	if parsed["java"].Major() < rule.java {
		return errors.WithHintf(
			errors.Newf("AGP %s requires Java %d or higher, but java = %q", tc.AGP, rule.java, tc.Java),
			"set java = \"%d\" or java = \"21\"", rule.java)
	}
	minGradle := semver.MustParse(rule.gradle)
	if parsed["gradle"].LessThan(minGradle) {
		return errors.WithHintf(
			errors.Newf("AGP %s requires Gradle %s or higher, but gradle = %q", tc.AGP, rule.gradle, tc.Gradle),
			"set gradle = %q or gradle = \"8.6\"", rule.gradle)
	}
	return nil
}

func defaultFor(key string) string {
	switch key {
	case "java":
		return DefaultJava
	case "gradle":
		return DefaultGradle
	case "agp":
		return DefaultAGP
	case "kotlin":
		return DefaultKotlin
	}
	return ""
}
