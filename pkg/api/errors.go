package api

import (
	"fmt"
)

// NotFound is returned by a Store, or a cache in front of one, when a key does
// not exist.
type NotFound struct {
	Key string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.Key)
}

func (e *NotFound) Is(err error) bool {
	_, ok := err.(*NotFound)
	return ok
}
