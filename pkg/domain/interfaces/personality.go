package interfaces

import (
	"context"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
)

// PersonalityRepository defines the interface for PersonalityTemplate
// persistence. types.GlobalTenant addresses the shared tenant-less
// fallback templates.
type PersonalityRepository interface {
	// Create creates a new personality template
	Create(ctx context.Context, template *model.PersonalityTemplate) (*model.PersonalityTemplate, error)

	// Get retrieves a template by ID
	Get(ctx context.Context, tenantID types.TenantID, id types.TemplateID) (*model.PersonalityTemplate, error)

	// GetByMode retrieves the active template for a mode key
	GetByMode(ctx context.Context, tenantID types.TenantID, mode string) (*model.PersonalityTemplate, error)

	// GetDefault retrieves the template with IsDefault=true
	GetDefault(ctx context.Context, tenantID types.TenantID) (*model.PersonalityTemplate, error)

	// List retrieves all templates of a tenant
	List(ctx context.Context, tenantID types.TenantID) ([]*model.PersonalityTemplate, error)

	// Update replaces a template
	Update(ctx context.Context, template *model.PersonalityTemplate) error

	// Delete removes a template
	Delete(ctx context.Context, tenantID types.TenantID, id types.TemplateID) error
}
