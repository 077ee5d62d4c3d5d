package invoice

import (
	"github.com/cockroachdb/errors"
)

// ErrNothingToBill is returned by generation when a lease has no billable
// lines for the period. It is an outcome, not a failure, and callers must
// test for it with errors.Is before treating an error as a failure.
var ErrNothingToBill = errors.New("nothing to bill")

// IsNothingToBill reports whether err is ErrNothingToBill
func IsNothingToBill(err error) bool {
	return errors.Is(err, ErrNothingToBill)
}
