package model

import (
	"time"

	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// PersonalityTemplate defines the assistant's voice for a tenant. The
// system prompt template contains {{placeholder}} tokens hydrated with
// tenant settings at assembly time.
//
// At most one template per tenant may have IsDefault=true. Templates
// with an empty TenantID are global read-only fallbacks shared by
// tenants that have none of their own; they are never mutated in place
// (see Materialize).
type PersonalityTemplate struct {
	ID           types.TemplateID
	TenantID     types.TenantID
	Mode         string
	SystemPrompt string
	Active       bool
	IsDefault    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the invariants of a personality template
func (p *PersonalityTemplate) Validate() error {
	if p.Mode == "" {
		return goerr.New("template mode is required")
	}
	if p.SystemPrompt == "" {
		return goerr.New("system prompt template is required", goerr.V("mode", p.Mode))
	}
	return nil
}

// IsGlobal reports whether the template is a shared tenant-less fallback.
func (p *PersonalityTemplate) IsGlobal() bool {
	return p.TenantID.IsGlobal()
}

// Materialize returns a tenant-owned clone of a global template with a
// fresh identity. Mutating a global template on behalf of a tenant goes
// through this copy-on-write step; the shared row is left untouched.
func (p *PersonalityTemplate) Materialize(tenantID types.TenantID) *PersonalityTemplate {
	clone := *p
	clone.ID = types.NewTemplateID()
	clone.TenantID = tenantID
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}
	return &clone
}
