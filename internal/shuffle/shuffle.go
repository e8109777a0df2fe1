// Package shuffle provides an unbiased Fisher-Yates permutation backed by
// crypto/rand. Quiz fairness depends on the draw being unpredictable: a
// seeded PRNG would let a client infer the unseen question order.
package shuffle

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Secure returns a new slice holding a uniformly random permutation of items.
// The input is not mutated. It returns an error only if the system random
// source fails.
func Secure[T any](items []T) ([]T, error) {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("draw shuffle index: %w", err)
		}
		j := int(n.Int64())
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
