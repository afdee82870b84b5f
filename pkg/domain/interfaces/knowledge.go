package interfaces

import (
	"context"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
)

// KnowledgeRepository defines the interface for KnowledgeEntry and
// KeywordTag persistence. All operations are tenant-scoped.
type KnowledgeRepository interface {
	// Create creates a new knowledge entry
	Create(ctx context.Context, tenantID types.TenantID, entry *model.KnowledgeEntry) (*model.KnowledgeEntry, error)

	// Get retrieves a knowledge entry by ID
	Get(ctx context.Context, tenantID types.TenantID, id types.EntryID) (*model.KnowledgeEntry, error)

	// GetBySlug retrieves a knowledge entry by its tenant-unique slug
	GetBySlug(ctx context.Context, tenantID types.TenantID, slug string) (*model.KnowledgeEntry, error)

	// List retrieves all knowledge entries for a tenant
	List(ctx context.Context, tenantID types.TenantID) ([]*model.KnowledgeEntry, error)

	// ListActiveByKinds retrieves active entries of the given kinds
	ListActiveByKinds(ctx context.Context, tenantID types.TenantID, kinds []types.EntryKind) ([]*model.KnowledgeEntry, error)

	// Update replaces a knowledge entry
	Update(ctx context.Context, tenantID types.TenantID, entry *model.KnowledgeEntry) error

	// Delete deletes a knowledge entry and cascades to its keyword tags
	Delete(ctx context.Context, tenantID types.TenantID, id types.EntryID) error

	// ReplaceTags replaces all keyword tags of an entry with the given
	// tokens. Old tags are removed, never merged.
	ReplaceTags(ctx context.Context, tenantID types.TenantID, entryID types.EntryID, tokens []string) error

	// ListTags retrieves all keyword tags for a tenant
	ListTags(ctx context.Context, tenantID types.TenantID) ([]*model.KeywordTag, error)

	// ListTagsByEntry retrieves the keyword tags of one entry
	ListTagsByEntry(ctx context.Context, tenantID types.TenantID, entryID types.EntryID) ([]*model.KeywordTag, error)
}
