// Package ids generates prefixed, time-sortable entity identifiers.
package ids

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns e.g. "acc_01J8Z..." for prefix "acc".
func New(prefix string) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return prefix + "_" + ulid.MustNew(ulid.Now(), entropy).String()
}
