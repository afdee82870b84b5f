package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
)

type templateKey struct {
	tenantID   types.TenantID
	templateID types.TemplateID
}

type personalityRepository struct {
	mu        sync.RWMutex
	templates map[templateKey]*model.PersonalityTemplate
}

func newPersonalityRepository() *personalityRepository {
	return &personalityRepository{
		templates: make(map[templateKey]*model.PersonalityTemplate),
	}
}

func copyTemplate(t *model.PersonalityTemplate) *model.PersonalityTemplate {
	copied := *t
	return &copied
}

func (r *personalityRepository) Create(ctx context.Context, template *model.PersonalityTemplate) (*model.PersonalityTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyTemplate(template)
	if created.ID == "" {
		created.ID = types.NewTemplateID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if created.IsDefault {
		r.clearDefaultLocked(created.TenantID)
	}

	r.templates[templateKey{created.TenantID, created.ID}] = created
	return copyTemplate(created), nil
}

// clearDefaultLocked drops IsDefault from all templates of a tenant so
// that at most one default exists. Caller must hold the write lock.
func (r *personalityRepository) clearDefaultLocked(tenantID types.TenantID) {
	for k, t := range r.templates {
		if k.tenantID == tenantID && t.IsDefault {
			cleared := copyTemplate(t)
			cleared.IsDefault = false
			r.templates[k] = cleared
		}
	}
}

func (r *personalityRepository) Get(ctx context.Context, tenantID types.TenantID, id types.TemplateID) (*model.PersonalityTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	template, exists := r.templates[templateKey{tenantID, id}]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "personality template not found", goerr.V("id", id))
	}

	return copyTemplate(template), nil
}

func (r *personalityRepository) GetByMode(ctx context.Context, tenantID types.TenantID, mode string) (*model.PersonalityTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	match := r.pickLocked(tenantID, func(t *model.PersonalityTemplate) bool {
		return t.Mode == mode && t.Active
	})
	if match == nil {
		return nil, goerr.Wrap(ErrNotFound, "personality template not found", goerr.V("mode", mode))
	}

	return copyTemplate(match), nil
}

func (r *personalityRepository) GetDefault(ctx context.Context, tenantID types.TenantID) (*model.PersonalityTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	match := r.pickLocked(tenantID, func(t *model.PersonalityTemplate) bool {
		return t.IsDefault && t.Active
	})
	if match == nil {
		return nil, goerr.Wrap(ErrNotFound, "default personality template not found", goerr.V("tenantID", tenantID))
	}

	return copyTemplate(match), nil
}

// pickLocked returns the matching template with the lowest ID, so that
// lookups stay deterministic when several templates qualify. Caller
// must hold the lock.
func (r *personalityRepository) pickLocked(tenantID types.TenantID, match func(*model.PersonalityTemplate) bool) *model.PersonalityTemplate {
	var picked *model.PersonalityTemplate
	for k, t := range r.templates {
		if k.tenantID != tenantID || !match(t) {
			continue
		}
		if picked == nil || t.ID < picked.ID {
			picked = t
		}
	}
	return picked
}

func (r *personalityRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.PersonalityTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.PersonalityTemplate, 0)
	for k, t := range r.templates {
		if k.tenantID == tenantID {
			result = append(result, copyTemplate(t))
		}
	}

	return result, nil
}

func (r *personalityRepository) Update(ctx context.Context, template *model.PersonalityTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := templateKey{template.TenantID, template.ID}
	existing, exists := r.templates[key]
	if !exists {
		return goerr.Wrap(ErrNotFound, "personality template not found", goerr.V("id", template.ID))
	}

	if template.IsDefault && !existing.IsDefault {
		r.clearDefaultLocked(template.TenantID)
	}

	updated := copyTemplate(template)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.templates[key] = updated
	return nil
}

func (r *personalityRepository) Delete(ctx context.Context, tenantID types.TenantID, id types.TemplateID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := templateKey{tenantID, id}
	if _, exists := r.templates[key]; !exists {
		return goerr.Wrap(ErrNotFound, "personality template not found", goerr.V("id", id))
	}

	delete(r.templates, key)
	return nil
}
