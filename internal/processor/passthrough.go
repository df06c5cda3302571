// Package processor provides item processors for the import jobs.
package processor

import "context"

// Passthrough forwards items unchanged.
type Passthrough[T any] struct{}

// NewPassthrough returns a processor that forwards every item.
func NewPassthrough[T any]() *Passthrough[T] {
	return &Passthrough[T]{}
}

// Process returns the item as-is.
func (p *Passthrough[T]) Process(ctx context.Context, item T) (T, bool, error) {
	return item, true, nil
}
