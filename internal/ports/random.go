package ports

import "context"

// RandomPort supplies the entropy consumed when deriving a die value.
// Implementations can be swapped for a verifiable randomness provider without
// changing any rule logic.
type RandomPort interface {
	// Entropy returns a fresh random word.
	Entropy(ctx context.Context) (uint64, error)
}
