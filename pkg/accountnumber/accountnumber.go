// Package accountnumber produces candidate account numbers.
//
// Account numbers are externally visible identifiers, so candidates are drawn
// from a cryptographically secure source; a predictable sequence would let a
// caller guess other customers' numbers.
package accountnumber

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	min = 1_000_000_000
	max = 9_999_999_999
)

// Generator yields candidate 10-digit account numbers. Implementations must
// be safe for concurrent use.
type Generator interface {
	Generate() (string, error)
}

type cryptoGenerator struct{}

// New returns a Generator backed by crypto/rand, uniform over
// [1000000000, 9999999999].
func New() Generator {
	return cryptoGenerator{}
}

func (cryptoGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max-min+1))
	if err != nil {
		return "", fmt.Errorf("account number entropy: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+min), nil
}
