package pkg

import "math/rand"

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandString generates a session code of n characters. The alphabet skips
// lookalikes (0/O, 1/I) since codes get typed in by hand.
func RandString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
