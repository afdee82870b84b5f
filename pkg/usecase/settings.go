package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/service/settings"
	"github.com/kataribe-dev/kataribe/pkg/utils/async"
)

// SettingsUseCase manages tenant settings. Every write invalidates the
// tenant's cache entry so hydration picks up the change on the next
// read instead of waiting out the TTL.
type SettingsUseCase struct {
	repo  interfaces.SettingRepository
	cache *settings.Cache
}

func newSettingsUseCase(repo interfaces.SettingRepository, cache *settings.Cache) *SettingsUseCase {
	return &SettingsUseCase{
		repo:  repo,
		cache: cache,
	}
}

// Get retrieves one setting by key
func (uc *SettingsUseCase) Get(ctx context.Context, tenantID types.TenantID, key string) (*model.TenantSetting, error) {
	return uc.repo.Get(ctx, tenantID, key)
}

// List retrieves all settings of a tenant
func (uc *SettingsUseCase) List(ctx context.Context, tenantID types.TenantID) ([]*model.TenantSetting, error) {
	return uc.repo.List(ctx, tenantID)
}

// Put creates or replaces a setting. Changing the owner identity also
// recomputes the derived terminal banner in the background.
func (uc *SettingsUseCase) Put(ctx context.Context, tenantID types.TenantID, setting *model.TenantSetting) error {
	if err := setting.Validate(); err != nil {
		return goerr.Wrap(err, "invalid setting")
	}

	if err := uc.repo.Put(ctx, tenantID, setting); err != nil {
		return goerr.Wrap(err, "failed to store setting", goerr.V("key", setting.Key))
	}

	uc.cache.Invalidate(tenantID)

	if setting.Key == types.SettingKeyOwnerName || setting.Key == types.SettingKeyOwnerRole {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.recomputeBanner(ctx, tenantID)
		})
	}

	return nil
}

// Delete removes a setting by key
func (uc *SettingsUseCase) Delete(ctx context.Context, tenantID types.TenantID, key string) error {
	if err := uc.repo.Delete(ctx, tenantID, key); err != nil {
		return goerr.Wrap(err, "failed to delete setting", goerr.V("key", key))
	}

	uc.cache.Invalidate(tenantID)
	return nil
}

// recomputeBanner rebuilds the terminal banner from the owner identity
// settings. Missing parts degrade to a shorter banner rather than
// failing the write that triggered the recompute.
func (uc *SettingsUseCase) recomputeBanner(ctx context.Context, tenantID types.TenantID) error {
	name := uc.settingValue(ctx, tenantID, types.SettingKeyOwnerName)
	role := uc.settingValue(ctx, tenantID, types.SettingKeyOwnerRole)

	var banner string
	switch {
	case name != "" && role != "":
		banner = fmt.Sprintf("%s :: %s", name, role)
	case name != "":
		banner = name
	default:
		return nil
	}

	if err := uc.repo.Put(ctx, tenantID, &model.TenantSetting{
		TenantID: tenantID,
		Key:      types.SettingKeyBanner,
		Value:    banner,
		Kind:     types.SettingKindString,
		Category: "terminal",
	}); err != nil {
		return goerr.Wrap(err, "failed to store terminal banner", goerr.V("tenantID", tenantID))
	}

	uc.cache.Invalidate(tenantID)
	return nil
}

func (uc *SettingsUseCase) settingValue(ctx context.Context, tenantID types.TenantID, key string) string {
	setting, err := uc.repo.Get(ctx, tenantID, key)
	if err != nil {
		return ""
	}
	return setting.Value
}
