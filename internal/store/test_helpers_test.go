package store

import "errors"

// isErr is shorthand for errors.Is in table-heavy tests.
func isErr(err, target error) bool {
	return errors.Is(err, target)
}
