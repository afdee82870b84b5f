package model

import (
	"time"

	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// TenantSetting is a (tenant, key) → value pair with a declared value
// kind and a free-form category for grouping. Settings are seeded with
// defaults at tenant onboarding and updated individually.
type TenantSetting struct {
	TenantID  types.TenantID
	Key       string
	Value     string
	Kind      types.SettingKind
	Category  string
	UpdatedAt time.Time
}

// Validate checks the invariants of a tenant setting
func (s *TenantSetting) Validate() error {
	if s.Key == "" {
		return goerr.New("setting key is required")
	}
	if err := s.Kind.Validate(); err != nil {
		return goerr.Wrap(err, "invalid setting kind", goerr.V("key", s.Key))
	}
	return nil
}
