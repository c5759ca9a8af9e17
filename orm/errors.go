package orm

import "github.com/iov-one/timevault/errors"

// orm reserves 100~109 error codes
var (
	// ErrInvalidIndex is returned when an index specified is invalid
	ErrInvalidIndex = errors.Register(100, "invalid index")

	// ErrUniqueConstraint is returned when a unique index already
	// points to another entity.
	ErrUniqueConstraint = errors.Register(101, "unique constraint violation")
)
