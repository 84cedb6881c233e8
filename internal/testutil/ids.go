package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequenceIDGenerator generates run IDs "<prefix>-000001", "<prefix>-000002", ...
//
// Thread-safety: safe for concurrent use; every call returns a distinct ID.
type SequenceIDGenerator struct {
	prefix string
	n      atomic.Int64
}

// NewSequenceIDGenerator creates a generator. If prefix is empty, "run" is
// used.
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
//
// Implements store.IDGenerator.
func (g *SequenceIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%06d", g.prefix, g.n.Add(1))
}
