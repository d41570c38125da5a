package shortener

import "context"

// Gateway opens scoped sessions on the mapping table.
type Gateway interface {
	// Open acquires a session and makes sure the schema exists.
	// The caller must Close the session on every path.
	Open(ctx context.Context) (Session, error)

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// Session is a single acquired handle on the mapping table.
type Session interface {
	// FindTargetByCode returns ErrNotFound when no record has code.
	FindTargetByCode(ctx context.Context, code Code) (string, error)

	// FindCodeByTarget matches target exactly and returns ErrNotFound when absent.
	FindCodeByTarget(ctx context.Context, target string) (Code, error)

	// MaxCode returns the numerically greatest code, or ErrNotFound on an empty table.
	MaxCode(ctx context.Context) (Code, error)

	// Insert fails with ErrDuplicateCode when the code is taken.
	Insert(ctx context.Context, mapping ShortMapping) error

	Close() error
}
