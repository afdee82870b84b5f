package interfaces

import (
	"context"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
)

// SettingRepository defines the interface for TenantSetting persistence
type SettingRepository interface {
	// Put creates or replaces a setting
	Put(ctx context.Context, tenantID types.TenantID, setting *model.TenantSetting) error

	// Get retrieves one setting by key
	Get(ctx context.Context, tenantID types.TenantID, key string) (*model.TenantSetting, error)

	// List retrieves all settings of a tenant
	List(ctx context.Context, tenantID types.TenantID) ([]*model.TenantSetting, error)

	// Delete removes a setting by key
	Delete(ctx context.Context, tenantID types.TenantID, key string) error
}
