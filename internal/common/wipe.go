package common

// WipeByteArray overwrites the contents of b with zeros. Passwords read from
// the terminal are wiped once they have been sent.
//
// A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
