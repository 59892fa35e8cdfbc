// Package common holds sentinel errors and small helpers shared by the
// client packages.
package common

// WipeByteArray overwrites the slice with zeros. Used to scrub passwords
// from memory once they have been sent to the backend. A nil slice is a
// no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
