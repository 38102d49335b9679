// Package whgen compiles Whitehall (.wh) source units into Jetpack Compose
// Kotlin.
//
// The pipeline consists of:
//   - [Parser]: builds a [File] directly from the source text, capturing
//     expressions and unrecognized Kotlin as opaque text
//   - [Analyzer]: scans every unit of a build and produces the read-only
//     [Registry] of stores and promoted components
//   - [Generator]: emits Kotlin for one unit, returning a [Single] file or
//     [Multiple] sibling files
//
// [Transpile] runs all three for a single unit.
package whgen
