// Package textutil provides the text helpers used by keyword inference and
// artifact handling.
//
// The primary use cases are:
//   - Ordered keyword matching over lowercased free text
//   - Rune-safe truncation of descriptions
//   - Sanitizing identifiers for safe filesystem use
package textutil
