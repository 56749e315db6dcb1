package sync

import "errors"

var (
	ErrMalformedBatch = errors.New("malformed batch")
	ErrBatchTooLarge  = errors.New("batch too large")
)
