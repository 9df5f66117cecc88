package random

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
)

// Rand is the source of randomness used by the data generator. It is an
// interface so tests can substitute a seeded source.
type Rand interface {
	Intn(n int) int
}

// CryptoSeeded wraps math/rand with a crypto-random seed, so generated
// fixtures differ across runs without paying crypto/rand per call.
type CryptoSeeded struct {
	r *mathrand.Rand
}

// NewCryptoSeeded builds a CryptoSeeded source. If the crypto seed read
// fails it falls back to a fixed seed rather than erroring.
func NewCryptoSeeded() *CryptoSeeded {
	seedBytes := make([]byte, 8)
	if _, err := cryptorand.Read(seedBytes); err != nil {
		return &CryptoSeeded{r: mathrand.New(mathrand.NewSource(1))}
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes))
	return &CryptoSeeded{r: mathrand.New(mathrand.NewSource(seed))}
}

// Intn returns a random number in [0, n).
func (c *CryptoSeeded) Intn(n int) int {
	return c.r.Intn(n)
}
