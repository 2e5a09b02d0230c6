// Package id provides ULID-based identifiers for bridge components.
//
// IDs are prefixed by kind (srf_*, con_*) so audit logs stay readable, and
// lexicographically sortable so a surface's lifetime can be followed in order.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SurfaceID identifies one content-surface instance and its bridge state.
type SurfaceID string

// ConnID identifies one transport connection carrying bridge traffic.
type ConnID string

const (
	surfacePrefix = "srf"
	connPrefix    = "con"
)

// Generator produces ULIDs from a guarded entropy source.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator with cryptographically secure entropy.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source,
// useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewSurfaceID generates an identifier for a content-surface instance.
func NewSurfaceID() SurfaceID {
	return SurfaceID(Default().GenerateWithPrefix(surfacePrefix))
}

// NewConnID generates an identifier for a transport connection.
func NewConnID() ConnID {
	return ConnID(Default().GenerateWithPrefix(connPrefix))
}

func (id SurfaceID) String() string { return string(id) }
func (id ConnID) String() string    { return string(id) }

// IsValid reports whether s is a valid prefixed or bare ULID.
func IsValid(s string) bool {
	if i := strings.IndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	_, err := ulid.Parse(s)
	return err == nil
}
