// Package config exposes typed access to runtime configuration.
//
// Token settings are read once during bootstrap so the issuer and the verifier
// cannot drift apart after startup. Operational switches such as maintenance
// endpoints may be read per request and follow hot reloads.
package config

import (
	"io"
	"time"
)

// DurationConfig retrieves integer values interpreted in a fixed unit.
type DurationConfig interface {
	// GetSecond returns the value for key multiplied by time.Second.
	GetSecond(key string) time.Duration
	// GetMinute returns the value for key multiplied by time.Minute.
	GetMinute(key string) time.Duration
}

// NumberConfig retrieves numeric values.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetFloat64(key string) float64
}

// Config defines a set of methods for retrieving configuration values of various types.
// Missing keys yield the zero value of the requested type.
type Config interface {
	io.Closer
	DurationConfig
	NumberConfig

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetArray retrieves a comma separated value (<e1>,<e2>,...) as a slice.
	// Elements are trimmed and empty elements are dropped.
	GetArray(key string) []string

	// GetStrings retrieves a native list value (e.g. a YAML sequence) as a slice.
	// Use it when elements themselves contain commas.
	GetStrings(key string) []string

	// OnChange registers fn to run after the configuration is reloaded.
	// Sources that never reload accept the hook and never call it.
	OnChange(fn func())
}
