package relevance_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/repository/memory"
	"github.com/kataribe-dev/kataribe/pkg/service/relevance"
	"github.com/kataribe-dev/kataribe/pkg/service/settings"
)

const tenantID = types.TenantID("demo-site")

type fixture struct {
	repo    *memory.Memory
	matcher *relevance.Matcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.New()
	cache := settings.New(repo.Setting())
	return &fixture{
		repo:    repo,
		matcher: relevance.New(repo.Knowledge(), cache),
	}
}

func (f *fixture) addEntry(t *testing.T, entry *model.KnowledgeEntry, tags ...string) *model.KnowledgeEntry {
	t.Helper()
	ctx := context.Background()

	created, err := f.repo.Knowledge().Create(ctx, tenantID, entry)
	gt.NoError(t, err).Required()
	if len(tags) > 0 {
		gt.NoError(t, f.repo.Knowledge().ReplaceTags(ctx, tenantID, created.ID, tags)).Required()
	}
	return created
}

func TestMatcher_TagMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raytracer := f.addEntry(t, &model.KnowledgeEntry{
		Kind: types.EntryKindProject, Slug: "raytracer", Title: "Raytracer",
		Body: "body", Priority: 5, Active: true,
	}, "raytracer", "graphics")
	f.addEntry(t, &model.KnowledgeEntry{
		Kind: types.EntryKindProject, Slug: "compiler", Title: "Compiler",
		Body: "body", Priority: 9, Active: true,
	}, "compiler")
	f.addEntry(t, &model.KnowledgeEntry{
		Kind: types.EntryKindMeta, Slug: "about", Title: "About",
		Body: "body", Active: true,
	})

	t.Run("matches token as substring of the question", func(t *testing.T) {
		entries, err := f.matcher.FindRelevant(ctx, tenantID, "Tell me about the RAYTRACER project")
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1)
		gt.Value(t, entries[0].ID).Equal(raytracer.ID)
	})

	t.Run("multiple matched entries sort by priority then slug", func(t *testing.T) {
		entries, err := f.matcher.FindRelevant(ctx, tenantID, "compare the compiler and the raytracer")
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(2)
		gt.String(t, entries[0].Slug).Equal("compiler")
		gt.String(t, entries[1].Slug).Equal("raytracer")
	})

	t.Run("question tokens never match partially the other way", func(t *testing.T) {
		// "graph" is a prefix of the tag "graphics"; the tag must occur
		// inside the question, not the reverse.
		entries, err := f.matcher.FindRelevant(ctx, tenantID, "do you like graph theory")
		gt.NoError(t, err).Required()
		for _, e := range entries {
			gt.String(t, e.Slug).NotEqual("raytracer")
		}
	})
}

func TestMatcher_Fallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	meta := f.addEntry(t, &model.KnowledgeEntry{
		Kind: types.EntryKindMeta, Slug: "about", Title: "About",
		Body: "body", Priority: 1, Active: true,
	})
	index := f.addEntry(t, &model.KnowledgeEntry{
		Kind: types.EntryKindIndex, Slug: "sitemap", Title: "Sitemap",
		Body: "body", Priority: 2, Active: true,
	})
	f.addEntry(t, &model.KnowledgeEntry{
		Kind: types.EntryKindProject, Slug: "raytracer", Title: "Raytracer",
		Body: "body", Active: true,
	}, "raytracer")
	f.addEntry(t, &model.KnowledgeEntry{
		Kind: types.EntryKindMeta, Slug: "hidden", Title: "Hidden",
		Body: "body", Active: false,
	})

	t.Run("no tag match falls back to meta and index entries", func(t *testing.T) {
		entries, err := f.matcher.FindRelevant(ctx, tenantID, "what is the meaning of life")
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(2)
		gt.Value(t, entries[0].ID).Equal(index.ID)
		gt.Value(t, entries[1].ID).Equal(meta.ID)
	})

	t.Run("empty question uses the fallback set", func(t *testing.T) {
		entries, err := f.matcher.FindRelevant(ctx, tenantID, "   ")
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(2)
	})
}

func TestMatcher_InactiveEntriesSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addEntry(t, &model.KnowledgeEntry{
		Kind: types.EntryKindProject, Slug: "legacy", Title: "Legacy project",
		Body: "body", Active: false,
	}, "legacy")
	f.addEntry(t, &model.KnowledgeEntry{
		Kind: types.EntryKindMeta, Slug: "about", Title: "About",
		Body: "body", Active: true,
	})

	// Tag matches an inactive entry only, so the result is the fallback
	// set rather than the inactive entry.
	entries, err := f.matcher.FindRelevant(ctx, tenantID, "what about the legacy system")
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(1)
	gt.String(t, entries[0].Slug).Equal("about")
}

func TestMatcher_HydratesEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gt.NoError(t, f.repo.Setting().Put(ctx, tenantID, &model.TenantSetting{
		Key: "owner.name", Value: "Riko", Kind: types.SettingKindString,
	})).Required()

	f.addEntry(t, &model.KnowledgeEntry{
		Kind: types.EntryKindMeta, Slug: "about", Title: "About {{owner.name}}",
		Body: "{{owner.name}} builds backend systems.", Active: true,
	})

	entries, err := f.matcher.FindRelevant(ctx, tenantID, "")
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(1)
	gt.String(t, entries[0].Title).Equal("About Riko")
	gt.String(t, entries[0].Body).Equal("Riko builds backend systems.")

	// Stored entry keeps its raw placeholders.
	stored, err := f.repo.Knowledge().GetBySlug(ctx, tenantID, "about")
	gt.NoError(t, err).Required()
	gt.String(t, stored.Title).Equal("About {{owner.name}}")
}
