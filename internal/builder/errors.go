package builder

import (
	"errors"
	"strings"
)

var (
	// ErrNodeNotFound is returned when referencing a non-existent node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrConnectionNotFound is returned when referencing a non-existent connection.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrDuplicateNode is returned when restoring a node whose ID already exists.
	ErrDuplicateNode = errors.New("node with this ID already exists")

	// ErrConfigKindMismatch is returned when a config payload does not match
	// the node's kind.
	ErrConfigKindMismatch = errors.New("config does not match node kind")
)

// ValidationError carries the ordered list of messages produced by Validate.
// It is recoverable: the caller surfaces the messages and blocks submission
// until the user resolves them.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "workflow validation failed: " + strings.Join(e.Messages, "; ")
}
