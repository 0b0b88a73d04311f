// Package nanoid generates short, URL-safe random identifiers used to
// correlate log records.
package nanoid

import "crypto/rand"

// Alphabet has exactly 64 symbols, so masking a random byte to 6 bits picks
// each symbol with equal probability.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_"

// DefaultSize is the length of IDs returned by New (126 bits of entropy).
const DefaultSize = 21

// New returns a DefaultSize-character ID.
func New() string {
	return Sized(DefaultSize)
}

// Sized returns an ID of n characters.
func Sized(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	rand.Read(b)
	for i := range b {
		b[i] = Alphabet[b[i]&63]
	}
	return string(b)
}
