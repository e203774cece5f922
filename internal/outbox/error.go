package outbox

import "errors"

var (
	ErrFailedEnqueue = errors.New("failed to enqueue outbox event")
	ErrPublish       = errors.New("failed to publish outbox event")
)
