// Package uid generates opaque string identifiers.
package uid

// StringID produces a new unique identifier on every call.
type StringID interface {
	Generate() string
}
