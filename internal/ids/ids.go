// Package ids generates the identifiers used for accounts, registry records
// and request correlation.
package ids

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// generator serializes access to a monotonic entropy source so ids created
// within the same millisecond still sort in creation order.
type generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var gen = generator{entropy: ulid.Monotonic(rand.Reader, 0)}

// New returns a lexicographically sortable identifier suitable for storage keys.
func New() string {
	gen.mu.Lock()
	defer gen.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), gen.entropy).String()
}
