package browser

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Failures a page visit can end with
var (
	ErrNavigationTimeout = errors.New("navigation timeout")
	ErrNavigation        = errors.New("navigation failed")
	ErrSelectorTimeout   = errors.New("selector timeout")
	ErrEvaluation        = errors.New("page evaluation failed")
)

// classify maps err from an operation run under opCtx to one of the
// sentinel errors. opCtx is derived from parent with a timeout; a cancelled
// parent is reported as is.
func classify(parent, opCtx context.Context, err error, timeoutErr, otherErr error, what string) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Errorf("%w: %s: %v", timeoutErr, what, err)
	}
	return fmt.Errorf("%w: %s: %v", otherErr, what, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
