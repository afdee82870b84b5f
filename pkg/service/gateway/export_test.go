package gateway

import "github.com/kataribe-dev/kataribe/pkg/domain/interfaces"

// NewSafeStream wraps a stream with the in-band failure conversion for
// testing.
func NewSafeStream(inner interfaces.GenerationStream) interfaces.GenerationStream {
	return &safeStream{inner: inner}
}
