// Package wellknown provides value types that have a built-in graft codec but no
// direct counterpart in the Go standard library.
package wellknown
