package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
)

type entryKey struct {
	tenantID types.TenantID
	entryID  types.EntryID
}

type knowledgeRepository struct {
	mu      sync.RWMutex
	entries map[entryKey]*model.KnowledgeEntry
	tags    map[entryKey][]string
}

func newKnowledgeRepository() *knowledgeRepository {
	return &knowledgeRepository{
		entries: make(map[entryKey]*model.KnowledgeEntry),
		tags:    make(map[entryKey][]string),
	}
}

func copyEntry(e *model.KnowledgeEntry) *model.KnowledgeEntry {
	copied := *e
	return &copied
}

func (r *knowledgeRepository) Create(ctx context.Context, tenantID types.TenantID, entry *model.KnowledgeEntry) (*model.KnowledgeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.TenantID == tenantID && e.Slug == entry.Slug {
			return nil, goerr.New("slug already exists", goerr.V("slug", entry.Slug))
		}
	}

	now := time.Now().UTC()
	created := copyEntry(entry)
	if created.ID == "" {
		created.ID = types.NewEntryID()
	}
	created.TenantID = tenantID
	created.CreatedAt = now
	created.UpdatedAt = now

	r.entries[entryKey{tenantID, created.ID}] = created
	return copyEntry(created), nil
}

func (r *knowledgeRepository) Get(ctx context.Context, tenantID types.TenantID, id types.EntryID) (*model.KnowledgeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[entryKey{tenantID, id}]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "knowledge entry not found", goerr.V("id", id))
	}

	return copyEntry(entry), nil
}

func (r *knowledgeRepository) GetBySlug(ctx context.Context, tenantID types.TenantID, slug string) (*model.KnowledgeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.TenantID == tenantID && e.Slug == slug {
			return copyEntry(e), nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "knowledge entry not found", goerr.V("slug", slug))
}

func (r *knowledgeRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.KnowledgeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.KnowledgeEntry, 0)
	for _, e := range r.entries {
		if e.TenantID == tenantID {
			result = append(result, copyEntry(e))
		}
	}

	return result, nil
}

func (r *knowledgeRepository) ListActiveByKinds(ctx context.Context, tenantID types.TenantID, kinds []types.EntryKind) ([]*model.KnowledgeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kindSet := make(map[types.EntryKind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}

	result := make([]*model.KnowledgeEntry, 0)
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.Active && kindSet[e.Kind] {
			result = append(result, copyEntry(e))
		}
	}

	return result, nil
}

func (r *knowledgeRepository) Update(ctx context.Context, tenantID types.TenantID, entry *model.KnowledgeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := entryKey{tenantID, entry.ID}
	existing, exists := r.entries[key]
	if !exists {
		return goerr.Wrap(ErrNotFound, "knowledge entry not found", goerr.V("id", entry.ID))
	}

	updated := copyEntry(entry)
	updated.TenantID = tenantID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.entries[key] = updated
	return nil
}

func (r *knowledgeRepository) Delete(ctx context.Context, tenantID types.TenantID, id types.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := entryKey{tenantID, id}
	if _, exists := r.entries[key]; !exists {
		return goerr.Wrap(ErrNotFound, "knowledge entry not found", goerr.V("id", id))
	}

	delete(r.entries, key)
	delete(r.tags, key) // cascade
	return nil
}

func (r *knowledgeRepository) ReplaceTags(ctx context.Context, tenantID types.TenantID, entryID types.EntryID, tokens []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := entryKey{tenantID, entryID}
	if _, exists := r.entries[key]; !exists {
		return goerr.Wrap(ErrNotFound, "knowledge entry not found", goerr.V("id", entryID))
	}

	seen := make(map[string]bool, len(tokens))
	normalized := make([]string, 0, len(tokens))
	for _, token := range tokens {
		t := model.NormalizeToken(token)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		normalized = append(normalized, t)
	}

	r.tags[key] = normalized
	return nil
}

func (r *knowledgeRepository) ListTags(ctx context.Context, tenantID types.TenantID) ([]*model.KeywordTag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.KeywordTag, 0)
	for key, tokens := range r.tags {
		if key.tenantID != tenantID {
			continue
		}
		for _, token := range tokens {
			result = append(result, &model.KeywordTag{EntryID: key.entryID, Token: token})
		}
	}

	return result, nil
}

func (r *knowledgeRepository) ListTagsByEntry(ctx context.Context, tenantID types.TenantID, entryID types.EntryID) ([]*model.KeywordTag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := r.tags[entryKey{tenantID, entryID}]
	result := make([]*model.KeywordTag, 0, len(tokens))
	for _, token := range tokens {
		result = append(result, &model.KeywordTag{EntryID: entryID, Token: token})
	}

	return result, nil
}
