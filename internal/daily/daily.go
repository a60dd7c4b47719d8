// apps/go-server/internal/daily/daily.go
//
// Daily board seeding.
//   - DateKey is the UTC calendar day, so every player shares the same day.
//   - Seed turns (day, salt) into a stable non-zero seed for game.NewSource.

package daily

import (
	"encoding/binary"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic, non-zero random seed for the day using a
// keyed BLAKE2b-256 MAC of the date key.
func Seed(date time.Time, salt string) int64 {
	key := []byte(salt)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	// New256 only fails for keys over blake2b.Size bytes, reduced above.
	h, _ := blake2b.New256(key)
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes; clear the sign bit and avoid zero (zero means "time-seeded")
	n := int64(binary.BigEndian.Uint64(sum[:8]) >> 1)
	if n == 0 {
		n = 1
	}
	return n
}
