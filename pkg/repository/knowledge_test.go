package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
)

func runKnowledgeRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := testTenantID()

		created, err := repo.Knowledge().Create(ctx, tenantID, &model.KnowledgeEntry{
			Kind:     types.EntryKindProject,
			Slug:     "terminal-chat",
			Title:    "Terminal chat UI",
			Body:     "A terminal style chat interface for the portfolio site.",
			Priority: 10,
			Active:   true,
		})
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}

		if created.ID == "" {
			t.Error("expected non-empty ID")
		}
		if created.TenantID != tenantID {
			t.Errorf("expected TenantID=%s, got %s", tenantID, created.TenantID)
		}
		if created.CreatedAt.IsZero() {
			t.Error("expected non-zero CreatedAt")
		}
		if created.UpdatedAt.IsZero() {
			t.Error("expected non-zero UpdatedAt")
		}
	})

	t.Run("Create rejects duplicate slug within tenant", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := testTenantID()

		entry := &model.KnowledgeEntry{
			Kind:   types.EntryKindProject,
			Slug:   "same-slug",
			Title:  "First",
			Body:   "body",
			Active: true,
		}
		if _, err := repo.Knowledge().Create(ctx, tenantID, entry); err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}

		dup := &model.KnowledgeEntry{
			Kind:   types.EntryKindDocs,
			Slug:   "same-slug",
			Title:  "Second",
			Body:   "body",
			Active: true,
		}
		if _, err := repo.Knowledge().Create(ctx, tenantID, dup); err == nil {
			t.Error("expected error for duplicate slug")
		}

		// Same slug under another tenant is fine.
		otherTenant := testTenantID()
		if _, err := repo.Knowledge().Create(ctx, otherTenant, dup); err != nil {
			t.Errorf("unexpected error for duplicate slug in other tenant: %v", err)
		}
	})

	t.Run("Get returns stored entry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := testTenantID()

		created, err := repo.Knowledge().Create(ctx, tenantID, &model.KnowledgeEntry{
			Kind:   types.EntryKindMeta,
			Slug:   "about-me",
			Title:  "About {{owner.name}}",
			Body:   "I build things.",
			Active: true,
		})
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}

		got, err := repo.Knowledge().Get(ctx, tenantID, created.ID)
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if got.Title != "About {{owner.name}}" {
			t.Errorf("expected raw placeholder in stored title, got %q", got.Title)
		}
	})

	t.Run("Get returns ErrNotFound for missing entry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Knowledge().Get(ctx, testTenantID(), types.EntryID("missing"))
		if !errors.Is(err, interfaces.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetBySlug resolves tenant-scoped slug", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := testTenantID()

		created, err := repo.Knowledge().Create(ctx, tenantID, &model.KnowledgeEntry{
			Kind:   types.EntryKindIndex,
			Slug:   "sitemap",
			Title:  "What this site covers",
			Body:   "Projects, articles, and contact info.",
			Active: true,
		})
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}

		got, err := repo.Knowledge().GetBySlug(ctx, tenantID, "sitemap")
		if err != nil {
			t.Fatalf("failed to get entry by slug: %v", err)
		}
		if got.ID != created.ID {
			t.Errorf("expected ID=%s, got %s", created.ID, got.ID)
		}

		if _, err := repo.Knowledge().GetBySlug(ctx, testTenantID(), "sitemap"); !errors.Is(err, interfaces.ErrNotFound) {
			t.Errorf("expected ErrNotFound for other tenant, got %v", err)
		}
	})

	t.Run("ListActiveByKinds filters kind and active flag", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := testTenantID()

		seed := []*model.KnowledgeEntry{
			{Kind: types.EntryKindMeta, Slug: "meta-a", Title: "Meta A", Body: "b", Active: true},
			{Kind: types.EntryKindIndex, Slug: "index-a", Title: "Index A", Body: "b", Active: true},
			{Kind: types.EntryKindMeta, Slug: "meta-inactive", Title: "Meta off", Body: "b", Active: false},
			{Kind: types.EntryKindProject, Slug: "project-a", Title: "Project A", Body: "b", Active: true},
		}
		for _, e := range seed {
			if _, err := repo.Knowledge().Create(ctx, tenantID, e); err != nil {
				t.Fatalf("failed to create entry %s: %v", e.Slug, err)
			}
		}

		entries, err := repo.Knowledge().ListActiveByKinds(ctx, tenantID, types.FallbackKinds)
		if err != nil {
			t.Fatalf("failed to list by kinds: %v", err)
		}

		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		for _, e := range entries {
			if e.Kind != types.EntryKindMeta && e.Kind != types.EntryKindIndex {
				t.Errorf("unexpected kind %s", e.Kind)
			}
			if !e.Active {
				t.Errorf("inactive entry %s returned", e.Slug)
			}
		}
	})

	t.Run("Update preserves CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := testTenantID()

		created, err := repo.Knowledge().Create(ctx, tenantID, &model.KnowledgeEntry{
			Kind:   types.EntryKindDocs,
			Slug:   "setup-guide",
			Title:  "Setup guide",
			Body:   "old body",
			Active: true,
		})
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}

		created.Body = "new body"
		if err := repo.Knowledge().Update(ctx, tenantID, created); err != nil {
			t.Fatalf("failed to update entry: %v", err)
		}

		got, err := repo.Knowledge().Get(ctx, tenantID, created.ID)
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if got.Body != "new body" {
			t.Errorf("expected updated body, got %q", got.Body)
		}
		if !got.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("expected CreatedAt preserved, got %v want %v", got.CreatedAt, created.CreatedAt)
		}
	})

	t.Run("Update returns ErrNotFound for missing entry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Knowledge().Update(ctx, testTenantID(), &model.KnowledgeEntry{
			ID:    types.EntryID("missing"),
			Kind:  types.EntryKindDocs,
			Slug:  "x",
			Title: "x",
		})
		if !errors.Is(err, interfaces.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ReplaceTags replaces wholesale and normalizes", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := testTenantID()

		created, err := repo.Knowledge().Create(ctx, tenantID, &model.KnowledgeEntry{
			Kind:   types.EntryKindProject,
			Slug:   "raytracer",
			Title:  "Raytracer",
			Body:   "A toy raytracer in C++.",
			Active: true,
		})
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}

		if err := repo.Knowledge().ReplaceTags(ctx, tenantID, created.ID, []string{"Raytracer", " graphics ", "GRAPHICS", ""}); err != nil {
			t.Fatalf("failed to replace tags: %v", err)
		}

		tags, err := repo.Knowledge().ListTagsByEntry(ctx, tenantID, created.ID)
		if err != nil {
			t.Fatalf("failed to list tags: %v", err)
		}
		if len(tags) != 2 {
			t.Fatalf("expected 2 tags, got %d", len(tags))
		}
		tokens := map[string]bool{}
		for _, tag := range tags {
			tokens[tag.Token] = true
		}
		if !tokens["raytracer"] || !tokens["graphics"] {
			t.Errorf("expected normalized tokens, got %v", tokens)
		}

		// Second replacement drops the old set entirely.
		if err := repo.Knowledge().ReplaceTags(ctx, tenantID, created.ID, []string{"rendering"}); err != nil {
			t.Fatalf("failed to replace tags: %v", err)
		}
		tags, err = repo.Knowledge().ListTagsByEntry(ctx, tenantID, created.ID)
		if err != nil {
			t.Fatalf("failed to list tags: %v", err)
		}
		if len(tags) != 1 || tags[0].Token != "rendering" {
			t.Errorf("expected only the new tag, got %v", tags)
		}
	})

	t.Run("Delete cascades to tags", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := testTenantID()

		created, err := repo.Knowledge().Create(ctx, tenantID, &model.KnowledgeEntry{
			Kind:   types.EntryKindProject,
			Slug:   "compiler",
			Title:  "Compiler",
			Body:   "A small compiler.",
			Active: true,
		})
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}
		if err := repo.Knowledge().ReplaceTags(ctx, tenantID, created.ID, []string{"compiler", "parsing"}); err != nil {
			t.Fatalf("failed to replace tags: %v", err)
		}

		if err := repo.Knowledge().Delete(ctx, tenantID, created.ID); err != nil {
			t.Fatalf("failed to delete entry: %v", err)
		}

		if _, err := repo.Knowledge().Get(ctx, tenantID, created.ID); !errors.Is(err, interfaces.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}

		tags, err := repo.Knowledge().ListTags(ctx, tenantID)
		if err != nil {
			t.Fatalf("failed to list tags: %v", err)
		}
		for _, tag := range tags {
			if tag.EntryID == created.ID {
				t.Errorf("tag %q survived entry deletion", tag.Token)
			}
		}
	})
}

func TestKnowledgeRepository_Memory(t *testing.T) {
	runKnowledgeRepositoryTest(t, newMemoryRepository)
}

func TestKnowledgeRepository_Firestore(t *testing.T) {
	runKnowledgeRepositoryTest(t, newFirestoreRepository)
}
