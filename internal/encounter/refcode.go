package encounter

import (
	"crypto/rand"
	"fmt"
)

// ReferenceLength is the length of a payment reference code.
const ReferenceLength = 10

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReference returns a random reference code of uppercase letters and
// digits. Codes are not checked for uniqueness.
func NewReference() (string, error) {
	// 252 is the largest multiple of 36 below 256; higher bytes are
	// rejected so every symbol is equally likely.
	const limit = 252
	out := make([]byte, 0, ReferenceLength)
	buf := make([]byte, ReferenceLength*2)
	for len(out) < ReferenceLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate reference: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, referenceAlphabet[int(b)%len(referenceAlphabet)])
			if len(out) == ReferenceLength {
				break
			}
		}
	}
	return string(out), nil
}
