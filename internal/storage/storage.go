// Package storage implements the content store consumed by the pipeline:
// posts, persona replies, the persona pool, and the production queue, backed
// by SQLite.
//
// The fingerprint column on posts carries a UNIQUE constraint enforced by the
// database. The harvester's existence check is a cost optimization to avoid
// wasted generation calls; the constraint is the real invariant, so callers
// creating posts must handle ErrDuplicateFingerprint.
package storage

import (
	"context"
	"errors"

	"buzzmill/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateFingerprint is returned by CreatePost when a post with the same
// fingerprint is already committed. Races between an existence check and an
// insert surface here.
var ErrDuplicateFingerprint = errors.New("duplicate fingerprint")

// Storage is the content store interface. All write paths go through here;
// no component issues SQL directly.
type Storage interface {
	// Posts
	CreatePost(ctx context.Context, post *types.Post) error
	GetPost(ctx context.Context, id int64) (*types.Post, error)
	RecentPosts(ctx context.Context, limit int) ([]*types.Post, error)
	ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error)

	// Replies
	CreateReply(ctx context.Context, reply *types.Reply) error
	RepliesByPost(ctx context.Context, postID int64) ([]*types.Reply, error)

	// Personas
	ListPersonas(ctx context.Context) ([]*types.Persona, error)
	GetPersona(ctx context.Context, id string) (*types.Persona, error)
	SeedPersonas(ctx context.Context, personas []*types.Persona) error

	// Production queue
	EnqueueProduction(ctx context.Context, postID int64, videoType string) error
	CompleteProduction(ctx context.Context, postID int64, videoPath, thumbnailPath string) error
	FailProduction(ctx context.Context, postID int64, errorMsg string) error

	// WithTx runs fn inside a scoped transaction. The Storage passed to fn
	// operates on the transaction; a non-nil error from fn rolls everything
	// back. One transaction per content item, never held across more than
	// the single generation step it wraps.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Storage) error) error

	Close() error
}

// Config holds database configuration.
type Config struct {
	// Path is the SQLite database file path.
	// Special value ":memory:" creates an in-memory database (useful for tests).
	Path string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{Path: "data/buzzmill.db"}
}

// New creates the SQLite-backed content store.
func New(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	return newSQLite(cfg.Path)
}
