// Package id generates namespaced identifiers for journal records.
package id

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces identifiers unique within one process for a given
// kind namespace ("cmd", "evt", "cmp").
//
// Implemented by RandomGenerator (production) and SequenceGenerator
// (tests and golden traces).
type Generator interface {
	Next(kind string, tsMs int64) string
}

// RandomGenerator embeds the timestamp for debuggability, a monotonic
// per-generator counter that guarantees in-process uniqueness even when
// many identifiers land in the same millisecond, and a short random
// suffix so identifiers from separate invocations rarely collide.
//
// Format: "<kind>_<tsMs>_<counter>_<8 hex chars>".
//
// Thread-safety: safe for concurrent use (atomic counter).
type RandomGenerator struct {
	counter atomic.Uint64
}

// NewRandomGenerator returns a generator whose counter starts at 1.
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

// Next implements Generator.
func (g *RandomGenerator) Next(kind string, tsMs int64) string {
	n := g.counter.Add(1)
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%d_%d_%s", kind, tsMs, n, suffix)
}

// SequenceGenerator returns predictable identifiers for tests:
// "<kind>_<n>" with a shared counter across kinds.
//
// Predictable identifiers make golden traces and replay-determinism
// assertions exact.
type SequenceGenerator struct {
	counter atomic.Uint64
}

// NewSequenceGenerator returns a generator whose first id is "<kind>_1".
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

// Next implements Generator.
func (g *SequenceGenerator) Next(kind string, _ int64) string {
	return fmt.Sprintf("%s_%d", kind, g.counter.Add(1))
}
