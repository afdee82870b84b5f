package interfaces

import (
	"context"
	"io"
)

// GenerationStream is a lazily produced, finite sequence of text
// fragments. It is consumed exactly once and is not restartable. Next
// returns io.EOF after the last fragment.
type GenerationStream interface {
	Next(ctx context.Context) (string, error)
}

// StreamFunc adapts a function to GenerationStream.
type StreamFunc func(ctx context.Context) (string, error)

// Next implements GenerationStream
func (f StreamFunc) Next(ctx context.Context) (string, error) {
	return f(ctx)
}

// EmptyStream returns a stream that is immediately exhausted.
func EmptyStream() GenerationStream {
	return StreamFunc(func(ctx context.Context) (string, error) {
		return "", io.EOF
	})
}
