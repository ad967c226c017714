package model

import (
	"errors"
	"fmt"
)

// ErrCatalogNotFound marks a remote lookup with no match for the given
// identifier. It is terminal: the caller must not retry it.
var ErrCatalogNotFound = errors.New("catalog: identifier not in catalog")

// ErrNoIdentity is the only hard resolution failure: no source could
// supply any identifying title for the item.
var ErrNoIdentity = errors.New("resolve: no title derivable from any source")

// SourceUnreadableError reports that a local source could not open the
// path or file at all, as opposed to parsing failures which yield
// partial field sets.
type SourceUnreadableError struct {
	Source string
	Path   string
	Err    error
}

func (e *SourceUnreadableError) Error() string {
	return fmt.Sprintf("%s: unreadable %s: %v", e.Source, e.Path, e.Err)
}

func (e *SourceUnreadableError) Unwrap() error {
	return e.Err
}

// IsSourceUnreadable reports whether err wraps a SourceUnreadableError.
func IsSourceUnreadable(err error) bool {
	var target *SourceUnreadableError
	return errors.As(err, &target)
}
