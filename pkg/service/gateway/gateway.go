package gateway

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
)

// Service wraps an LLM client behind a fragment-stream interface. A
// nil client is a valid configuration: every request then yields the
// missing-credential message instead of failing.
type Service struct {
	client gollem.LLMClient
}

// New creates a generation gateway. client may be nil when no
// credential is configured.
func New(client gollem.LLMClient) *Service {
	return &Service{client: client}
}

// Configured reports whether a generation client is available
func (s *Service) Configured() bool {
	return s.client != nil
}

// Generate runs a single non-streaming completion and returns the
// joined text. Used for internal generation such as summarization;
// errors carry the classification sentinels.
func (s *Service) Generate(ctx context.Context, prompt string, opts ...gollem.SessionOption) (string, error) {
	if s.client == nil {
		return "", goerr.Wrap(ErrNoCredential, "generation requested without client")
	}

	session, err := s.client.NewSession(ctx, opts...)
	if err != nil {
		return "", wrapClassified(err, "failed to create generation session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", wrapClassified(err, "failed to generate content")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.New("generation returned empty response")
	}

	return strings.Join(resp.Texts, ""), nil
}

// Stream starts a streaming completion and returns the fragment
// sequence. The returned stream never yields an error other than
// io.EOF: any provider failure, including one that occurs after
// fragments have already been delivered, is converted into a single
// final user-facing fragment followed by io.EOF.
func (s *Service) Stream(ctx context.Context, prompt string) interfaces.GenerationStream {
	if s.client == nil {
		return &safeStream{inner: failedStream(ErrNoCredential)}
	}
	return &safeStream{inner: &sessionStream{client: s.client, prompt: prompt}}
}

func wrapClassified(err error, msg string) error {
	switch Classify(err) {
	case ClassInvalidCredential:
		return goerr.Wrap(ErrInvalidCredential, msg, goerr.V("cause", err.Error()))
	default:
		return goerr.Wrap(err, msg)
	}
}

// failedStream yields nothing and fails immediately with err
func failedStream(err error) interfaces.GenerationStream {
	return interfaces.StreamFunc(func(ctx context.Context) (string, error) {
		return "", err
	})
}

// sessionStream lazily opens the provider session on the first Next
// call and drains the gollem response channel fragment by fragment.
// Providers report mid-stream failures in-band as Response.Error;
// buffered fragments are delivered before the failure surfaces.
type sessionStream struct {
	client  gollem.LLMClient
	prompt  string
	started bool
	ch      <-chan *gollem.Response
	pending []string
	failure error
}

func (s *sessionStream) Next(ctx context.Context) (string, error) {
	if !s.started {
		s.started = true
		session, err := s.client.NewSession(ctx)
		if err != nil {
			return "", goerr.Wrap(err, "failed to create generation session")
		}
		ch, err := session.GenerateStream(ctx, gollem.Text(s.prompt))
		if err != nil {
			return "", goerr.Wrap(err, "failed to start generation stream")
		}
		s.ch = ch
	}

	for {
		if len(s.pending) > 0 {
			text := s.pending[0]
			s.pending = s.pending[1:]
			return text, nil
		}
		if s.failure != nil {
			err := s.failure
			s.failure = nil
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case resp, ok := <-s.ch:
			if !ok {
				return "", io.EOF
			}
			s.pending = append(s.pending, resp.Texts...)
			if resp.Error != nil {
				s.failure = resp.Error
			}
		}
	}
}

// safeStream converts any failure of the wrapped stream into one
// terminal user-facing fragment. After the terminal fragment the
// stream reports io.EOF.
type safeStream struct {
	inner interfaces.GenerationStream
	done  bool
}

func (s *safeStream) Next(ctx context.Context) (string, error) {
	if s.done {
		return "", io.EOF
	}

	text, err := s.inner.Next(ctx)
	if err == nil {
		return text, nil
	}
	if err == io.EOF {
		s.done = true
		return "", io.EOF
	}
	// Caller-side cancellation is not a provider failure; the consumer
	// is gone and must see the cancellation itself.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.done = true
		return "", err
	}

	class := Classify(err)
	logging.From(ctx).Warn("generation stream failed, emitting fallback fragment",
		"class", string(class),
		"error", err.Error(),
	)

	s.done = true
	return UserMessage(class), nil
}
