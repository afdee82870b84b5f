package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/repository/memory"
	"github.com/kataribe-dev/kataribe/pkg/service/enrich"
	"github.com/kataribe-dev/kataribe/pkg/usecase"
)

func newEnrichmentClient(response string) *mockLLMClient {
	return &mockLLMClient{
		generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{response}}, nil
		},
	}
}

func TestKnowledge_EnrichUnavailable(t *testing.T) {
	uc := usecase.New(memory.New())
	ctx := context.Background()

	created, err := uc.Knowledge.Create(ctx, tenantID, &model.KnowledgeEntry{
		Kind: types.EntryKindProject, Slug: "raytracer", Title: "Raytracer",
		Body: "Built in C++.", Active: true,
	})
	gt.NoError(t, err).Required()

	_, err = uc.Knowledge.Enrich(ctx, tenantID, created.ID)
	gt.Bool(t, errors.Is(err, usecase.ErrEnrichmentUnavailable)).True()
}

func TestKnowledge_EnrichGeneratesMetadata(t *testing.T) {
	enricher, err := enrich.New(newEnrichmentClient(
		`{"summary":"A toy raytracer written in C++.","keywords":["Raytracer","graphics","RAYTRACER","  "]}`,
	))
	gt.NoError(t, err).Required()

	uc := usecase.New(memory.New(), usecase.WithEnricher(enricher))
	ctx := context.Background()

	created, err := uc.Knowledge.Create(ctx, tenantID, &model.KnowledgeEntry{
		Kind: types.EntryKindProject, Slug: "raytracer", Title: "Raytracer",
		Body: "Built in C++.", Active: true,
	})
	gt.NoError(t, err).Required()

	entry, err := uc.Knowledge.Enrich(ctx, tenantID, created.ID)
	gt.NoError(t, err).Required()
	gt.String(t, entry.Summary).Equal("A toy raytracer written in C++.")

	// Keywords are normalized and deduplicated before replacing the tags.
	tags, err := uc.Knowledge.Tags(ctx, tenantID, created.ID)
	gt.NoError(t, err).Required()
	tokens := make([]string, 0, len(tags))
	for _, tag := range tags {
		tokens = append(tokens, tag.Token)
	}
	gt.Array(t, tokens).Equal([]string{"raytracer", "graphics"})
}

func TestKnowledge_CreateEnrichesInBackground(t *testing.T) {
	enricher, err := enrich.New(newEnrichmentClient(
		`{"summary":"Background summary.","keywords":["compiler"]}`,
	))
	gt.NoError(t, err).Required()

	uc := usecase.New(memory.New(), usecase.WithEnricher(enricher))
	ctx := context.Background()

	created, err := uc.Knowledge.Create(ctx, tenantID, &model.KnowledgeEntry{
		Kind: types.EntryKindProject, Slug: "compiler", Title: "Compiler",
		Body: "A small compiler.", Active: true,
	})
	gt.NoError(t, err).Required()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entry, err := uc.Knowledge.Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		if entry.Summary == "Background summary." {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("background enrichment never landed")
}

func TestKnowledge_SetActive(t *testing.T) {
	uc := usecase.New(memory.New())
	ctx := context.Background()

	created, err := uc.Knowledge.Create(ctx, tenantID, &model.KnowledgeEntry{
		Kind: types.EntryKindMeta, Slug: "about", Title: "About",
		Body: "body", Active: true,
	})
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Knowledge.SetActive(ctx, tenantID, created.ID, false)).Required()

	entry, err := uc.Knowledge.Get(ctx, tenantID, created.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, entry.Active).False()
}

func TestKnowledge_CreateRejectsInvalid(t *testing.T) {
	uc := usecase.New(memory.New())
	ctx := context.Background()

	_, err := uc.Knowledge.Create(ctx, tenantID, &model.KnowledgeEntry{
		Kind: types.EntryKind("journal"), Slug: "x", Title: "X", Body: "body",
	})
	gt.Value(t, err).NotNil()

	_, err = uc.Knowledge.Create(ctx, tenantID, &model.KnowledgeEntry{
		Kind: types.EntryKindProject, Slug: "", Title: "X", Body: "body",
	})
	gt.Value(t, err).NotNil()
}
