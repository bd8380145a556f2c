package accountnumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_TenDigits(t *testing.T) {
	g := New()
	for range 1000 {
		n, err := g.Generate()
		require.NoError(t, err)
		assert.Len(t, n, 10)
		assert.NotEqual(t, byte('0'), n[0], "account numbers must not have a leading zero")
		for _, c := range n {
			assert.True(t, c >= '0' && c <= '9', "non-digit in account number %q", n)
		}
	}
}

func TestGenerate_Distinct(t *testing.T) {
	// With a 9-billion-value space, 100 draws colliding would indicate a
	// broken source rather than bad luck.
	g := New()
	seen := make(map[string]bool, 100)
	for range 100 {
		n, err := g.Generate()
		require.NoError(t, err)
		assert.False(t, seen[n], "duplicate account number %q", n)
		seen[n] = true
	}
}
