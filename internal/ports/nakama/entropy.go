package nakama

import (
	"context"
	"time"

	"ludo/internal/ports"
)

// TickEntropy derives dice entropy by folding the current match tick with the
// wall clock. The match loop updates Tick each pass; the handler is
// single-threaded so no synchronization is needed.
type TickEntropy struct {
	Tick int64
}

// Entropy returns an entropy word for the pending roll.
func (e *TickEntropy) Entropy(context.Context) (uint64, error) {
	return uint64(e.Tick+1) * uint64(time.Now().UnixNano()), nil
}

var _ ports.RandomPort = (*TickEntropy)(nil)
