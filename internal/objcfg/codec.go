// Package objcfg writes objects in the monitoring engine's native
// "define <type> { ... }" syntax and decodes the separator escaping used
// by the relational store.
package objcfg

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Sentinels stored in place of path separators
const (
	SlashSentinel     = "#S#"
	BackslashSentinel = "#BS#"
)

var (
	encoder = strings.NewReplacer(`\`, BackslashSentinel, "/", SlashSentinel)
	decoder = strings.NewReplacer(BackslashSentinel, `\`, SlashSentinel, "/")
)

// Encode replaces literal separators with their stored sentinels. A literal
// sentinel in s is kept as is, so Decode(Encode(s)) == s only holds when s
// contains no sentinel.
func Encode(s string) string {
	return encoder.Replace(s)
}

// Decode restores literal separators from stored sentinels. Every other
// byte is kept, since generated objects refer to each other by stored name.
func Decode(s string) string {
	return decoder.Replace(s)
}

// SameName reports whether two names are equal once both are in NFC form.
// Only for lookups; emitted names are never normalized.
func SameName(a, b string) bool {
	return a == b || norm.NFC.String(a) == norm.NFC.String(b)
}
