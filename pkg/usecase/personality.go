package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
)

// PersonalityUseCase manages personality templates. Global templates
// are shared read-only fallbacks: editing one on behalf of a tenant
// first materializes a tenant-owned copy, the shared row is never
// mutated.
type PersonalityUseCase struct {
	repo interfaces.PersonalityRepository
}

func newPersonalityUseCase(repo interfaces.PersonalityRepository) *PersonalityUseCase {
	return &PersonalityUseCase{repo: repo}
}

// Create stores a new template
func (uc *PersonalityUseCase) Create(ctx context.Context, template *model.PersonalityTemplate) (*model.PersonalityTemplate, error) {
	if err := template.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid personality template")
	}

	created, err := uc.repo.Create(ctx, template)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create personality template", goerr.V("mode", template.Mode))
	}

	return created, nil
}

// Get retrieves one template by ID
func (uc *PersonalityUseCase) Get(ctx context.Context, tenantID types.TenantID, id types.TemplateID) (*model.PersonalityTemplate, error) {
	return uc.repo.Get(ctx, tenantID, id)
}

// List retrieves all templates of a tenant
func (uc *PersonalityUseCase) List(ctx context.Context, tenantID types.TenantID) ([]*model.PersonalityTemplate, error) {
	return uc.repo.List(ctx, tenantID)
}

// Update applies changes to a template on behalf of a tenant. When the
// target is a global template, a tenant-owned copy is created with the
// changes applied and returned; the shared template stays untouched.
func (uc *PersonalityUseCase) Update(ctx context.Context, tenantID types.TenantID, template *model.PersonalityTemplate) (*model.PersonalityTemplate, error) {
	if err := template.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid personality template")
	}

	if template.IsGlobal() && !tenantID.IsGlobal() {
		clone := template.Materialize(tenantID)
		created, err := uc.repo.Create(ctx, clone)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to materialize global template",
				goerr.V("templateID", template.ID),
				goerr.V("tenantID", tenantID),
			)
		}
		logging.From(ctx).Info("materialized global personality template",
			"sourceID", template.ID,
			"templateID", created.ID,
			"tenantID", tenantID,
		)
		return created, nil
	}

	if err := uc.repo.Update(ctx, template); err != nil {
		return nil, goerr.Wrap(err, "failed to update personality template", goerr.V("templateID", template.ID))
	}

	return template, nil
}

// SetDefault marks one template as the tenant's default. The previous
// default is cleared by the repository.
func (uc *PersonalityUseCase) SetDefault(ctx context.Context, tenantID types.TenantID, id types.TemplateID) error {
	template, err := uc.repo.Get(ctx, tenantID, id)
	if err != nil {
		return goerr.Wrap(err, "failed to load personality template", goerr.V("templateID", id))
	}

	template.IsDefault = true
	if err := uc.repo.Update(ctx, template); err != nil {
		return goerr.Wrap(err, "failed to set default template", goerr.V("templateID", id))
	}

	return nil
}

// Delete removes a template
func (uc *PersonalityUseCase) Delete(ctx context.Context, tenantID types.TenantID, id types.TemplateID) error {
	return uc.repo.Delete(ctx, tenantID, id)
}
