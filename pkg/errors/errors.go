package errors

import "fmt"

// PersistenceError marks a failed durable write. It is fatal to the
// reading being processed; retry is left to the surrounding queue.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error [%s]: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CacheError marks a failed cache operation. Never fatal.
type CacheError struct {
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error [%s]: %v", e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// PublishError marks a failed event broadcast. Never fatal.
type PublishError struct {
	Event string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish error [%s]: %v", e.Event, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// RuleCheckError marks a failure inside a single alert-rule check.
// One check failing never aborts the sibling checks.
type RuleCheckError struct {
	Check string
	Err   error
}

func (e *RuleCheckError) Error() string {
	return fmt.Sprintf("rule check error [%s]: %v", e.Check, e.Err)
}

func (e *RuleCheckError) Unwrap() error { return e.Err }
