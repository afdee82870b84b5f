package enrich_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/service/enrich"
)

type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return s.generateContentFn(ctx, input...)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, goerr.New("stream not configured")
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockLLMClient struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

var (
	_ gollem.Session   = &mockLLMSession{}
	_ gollem.LLMClient = &mockLLMClient{}
)

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &mockLLMSession{generateContentFn: c.generateContentFn}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func respondWith(texts ...string) *mockLLMClient {
	return &mockLLMClient{
		generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
			return &gollem.Response{Texts: texts}, nil
		},
	}
}

var testEntry = &model.KnowledgeEntry{
	Kind:  types.EntryKindProject,
	Slug:  "raytracer",
	Title: "Raytracer",
	Body:  "A toy path tracer built in C++ with BVH acceleration.",
}

func TestResponseSchema(t *testing.T) {
	schema := enrich.ResponseSchema()
	gt.Value(t, schema.Type).Equal(gollem.TypeObject)

	summary := schema.Properties["summary"]
	gt.Value(t, summary).NotNil().Required()
	gt.Bool(t, summary.Required).True()

	keywords := schema.Properties["keywords"]
	gt.Value(t, keywords).NotNil().Required()
	gt.Bool(t, keywords.Required).True()
	gt.Value(t, keywords.Items.Type).Equal(gollem.TypeString)
}

func TestService_RequiresClient(t *testing.T) {
	_, err := enrich.New(nil)
	gt.Value(t, err).NotNil()
}

func TestService_Enrich(t *testing.T) {
	svc, err := enrich.New(respondWith(
		`{"summary":"  A toy path tracer in C++.  ","keywords":["Raytracer","C++","GRAPHICS","raytracer","  "]}`,
	))
	gt.NoError(t, err).Required()

	result, err := svc.Enrich(context.Background(), testEntry)
	gt.NoError(t, err).Required()

	gt.String(t, result.Summary).Equal("A toy path tracer in C++.")
	gt.Array(t, result.Keywords).Equal([]string{"raytracer", "c++", "graphics"})
}

func TestService_EnrichCapsKeywords(t *testing.T) {
	tokens := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		tokens = append(tokens, `"kw`+strings.Repeat("x", i+1)+`"`)
	}
	svc, err := enrich.New(respondWith(
		`{"summary":"s","keywords":[` + strings.Join(tokens, ",") + `]}`,
	))
	gt.NoError(t, err).Required()

	result, err := svc.Enrich(context.Background(), testEntry)
	gt.NoError(t, err).Required()
	gt.Array(t, result.Keywords).Length(24)
}

func TestService_EnrichBadResponse(t *testing.T) {
	t.Run("empty response", func(t *testing.T) {
		svc, err := enrich.New(respondWith())
		gt.NoError(t, err).Required()

		_, err = svc.Enrich(context.Background(), testEntry)
		gt.Value(t, err).NotNil()
	})

	t.Run("non JSON response", func(t *testing.T) {
		svc, err := enrich.New(respondWith("here is your summary"))
		gt.NoError(t, err).Required()

		_, err = svc.Enrich(context.Background(), testEntry)
		gt.Value(t, err).NotNil()
	})

	t.Run("provider failure", func(t *testing.T) {
		svc, err := enrich.New(&mockLLMClient{
			generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
				return nil, goerr.New("model overloaded")
			},
		})
		gt.NoError(t, err).Required()

		_, err = svc.Enrich(context.Background(), testEntry)
		gt.Value(t, err).NotNil()
	})
}
