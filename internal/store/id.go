package store

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	refMu      sync.Mutex
	refEntropy = ulid.Monotonic(rand.Reader, 0)
)

// roundRef stamps an archive row id with the settlement time, so ids of
// rounds from every room sort in settlement order.
func roundRef(settledAt time.Time) string {
	if settledAt.IsZero() {
		settledAt = time.Now()
	}
	refMu.Lock()
	defer refMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(settledAt), refEntropy).String()
}
