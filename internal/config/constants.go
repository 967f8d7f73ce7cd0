// Package config holds module-wide constants, adapted from the teacher's
// internal/config/constants.go: a handful of shared names and the version
// string kept in one place instead of scattered across the compiler.
package config

// Version is the current module version.
var Version = "0.1.0"

// Reserved and built-in names referenced by the registry and the compiler.
const (
	AnyTypeName    = "any"
	ObjectTypeName = "Object"
)

// VariadicPrefix is the textual marker that makes a parameter spec
// variadic in signature text, e.g. "...number".
const VariadicPrefix = "..."

// TypeSeparator separates alternative type names within a single
// parameter spec, e.g. "number|string".
const TypeSeparator = "|"

// ParamSeparator separates parameter specs within a signature, e.g.
// "number, string".
const ParamSeparator = ","
