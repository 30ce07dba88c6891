package common

// WipeByteArray zeroes b in place. Used for passwords and plaintext once they
// are no longer needed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	clear(b)
}
