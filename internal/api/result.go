package api

import "context"

// Result carries the outcome of an async fetch back to the UI loop:
// exactly one of Value and Err is meaningful.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Fetch runs fn and packs its return values into a Result.
func Fetch[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	v, err := fn(ctx)
	if err != nil {
		var zero T
		return Result[T]{Value: zero, Err: err}
	}
	return Result[T]{Value: v}
}
