package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/service/enrich"
	"github.com/kataribe-dev/kataribe/pkg/utils/async"
)

// KnowledgeUseCase manages knowledge entries and their derived
// metadata. Summary and keyword tags are regenerated whenever the body
// changes; tags are replaced wholesale, never merged.
type KnowledgeUseCase struct {
	repo     interfaces.KnowledgeRepository
	enricher *enrich.Service
}

func newKnowledgeUseCase(repo interfaces.KnowledgeRepository, enricher *enrich.Service) *KnowledgeUseCase {
	return &KnowledgeUseCase{
		repo:     repo,
		enricher: enricher,
	}
}

// Create stores a new entry and kicks off metadata generation in the
// background when an enrichment service is configured.
func (uc *KnowledgeUseCase) Create(ctx context.Context, tenantID types.TenantID, entry *model.KnowledgeEntry) (*model.KnowledgeEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid knowledge entry")
	}

	created, err := uc.repo.Create(ctx, tenantID, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create knowledge entry", goerr.V("slug", entry.Slug))
	}

	uc.dispatchEnrich(ctx, tenantID, created.ID)

	return created, nil
}

// Get retrieves one entry by ID
func (uc *KnowledgeUseCase) Get(ctx context.Context, tenantID types.TenantID, id types.EntryID) (*model.KnowledgeEntry, error) {
	return uc.repo.Get(ctx, tenantID, id)
}

// GetBySlug retrieves one entry by its tenant-unique slug
func (uc *KnowledgeUseCase) GetBySlug(ctx context.Context, tenantID types.TenantID, slug string) (*model.KnowledgeEntry, error) {
	return uc.repo.GetBySlug(ctx, tenantID, slug)
}

// List retrieves all entries of a tenant
func (uc *KnowledgeUseCase) List(ctx context.Context, tenantID types.TenantID) ([]*model.KnowledgeEntry, error) {
	return uc.repo.List(ctx, tenantID)
}

// Tags retrieves the keyword tags of one entry
func (uc *KnowledgeUseCase) Tags(ctx context.Context, tenantID types.TenantID, id types.EntryID) ([]*model.KeywordTag, error) {
	return uc.repo.ListTagsByEntry(ctx, tenantID, id)
}

// Update replaces an entry and regenerates its metadata in the
// background when the body changed.
func (uc *KnowledgeUseCase) Update(ctx context.Context, tenantID types.TenantID, entry *model.KnowledgeEntry) error {
	if err := entry.Validate(); err != nil {
		return goerr.Wrap(err, "invalid knowledge entry")
	}

	current, err := uc.repo.Get(ctx, tenantID, entry.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to load knowledge entry", goerr.V("entryID", entry.ID))
	}

	if err := uc.repo.Update(ctx, tenantID, entry); err != nil {
		return goerr.Wrap(err, "failed to update knowledge entry", goerr.V("entryID", entry.ID))
	}

	if current.Body != entry.Body {
		uc.dispatchEnrich(ctx, tenantID, entry.ID)
	}

	return nil
}

// SetActive toggles an entry's visibility to relevance matching
func (uc *KnowledgeUseCase) SetActive(ctx context.Context, tenantID types.TenantID, id types.EntryID, active bool) error {
	entry, err := uc.repo.Get(ctx, tenantID, id)
	if err != nil {
		return goerr.Wrap(err, "failed to load knowledge entry", goerr.V("entryID", id))
	}

	entry.Active = active
	if err := uc.repo.Update(ctx, tenantID, entry); err != nil {
		return goerr.Wrap(err, "failed to update knowledge entry", goerr.V("entryID", id))
	}

	return nil
}

// Delete removes an entry together with its keyword tags
func (uc *KnowledgeUseCase) Delete(ctx context.Context, tenantID types.TenantID, id types.EntryID) error {
	return uc.repo.Delete(ctx, tenantID, id)
}

// Enrich synchronously regenerates the summary and keyword tags of one
// entry. Used by operators after bulk imports and by the summary API.
func (uc *KnowledgeUseCase) Enrich(ctx context.Context, tenantID types.TenantID, id types.EntryID) (*model.KnowledgeEntry, error) {
	if uc.enricher == nil {
		return nil, goerr.Wrap(ErrEnrichmentUnavailable, "cannot enrich entry", goerr.V("entryID", id))
	}

	entry, err := uc.repo.Get(ctx, tenantID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load knowledge entry", goerr.V("entryID", id))
	}

	result, err := uc.enricher.Enrich(ctx, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate entry metadata", goerr.V("entryID", id))
	}

	entry.Summary = result.Summary
	if err := uc.repo.Update(ctx, tenantID, entry); err != nil {
		return nil, goerr.Wrap(err, "failed to store generated summary", goerr.V("entryID", id))
	}
	if err := uc.repo.ReplaceTags(ctx, tenantID, id, result.Keywords); err != nil {
		return nil, goerr.Wrap(err, "failed to replace keyword tags", goerr.V("entryID", id))
	}

	return entry, nil
}

func (uc *KnowledgeUseCase) dispatchEnrich(ctx context.Context, tenantID types.TenantID, id types.EntryID) {
	if uc.enricher == nil {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		_, err := uc.Enrich(ctx, tenantID, id)
		return err
	})
}
