// Package checkpoint persists conversation history keyed by thread id.
// The terminal node is the only writer; a cancelled turn never persists a
// half-formed history.
package checkpoint

import (
	"context"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/coda/internal/graph"
)

// Thread summarizes one stored conversation.
type Thread struct {
	ID           string
	MessageCount int
	UpdatedAt    time.Time
}

// Store is the persistence interface for conversation checkpoints.
type Store interface {
	// Load returns the state reconstructed from the thread's checkpoint,
	// or nil when the thread has never been saved.
	Load(ctx context.Context, threadID string) (*graph.State, error)

	// Save snapshots the state's history messages under the thread id.
	Save(ctx context.Context, threadID string, s *graph.State) error

	// List returns all stored threads, most recently updated first.
	List(ctx context.Context) ([]Thread, error)

	// Delete removes a thread's checkpoint.
	Delete(ctx context.Context, threadID string) error

	Migrate(ctx context.Context) error
	Close() error
}

// NewThreadID generates a new ULID thread id.
func NewThreadID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}
