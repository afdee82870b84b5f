package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
)

type settingKey struct {
	tenantID types.TenantID
	key      string
}

type settingRepository struct {
	mu       sync.RWMutex
	settings map[settingKey]*model.TenantSetting
}

func newSettingRepository() *settingRepository {
	return &settingRepository{
		settings: make(map[settingKey]*model.TenantSetting),
	}
}

func copySetting(s *model.TenantSetting) *model.TenantSetting {
	copied := *s
	return &copied
}

func (r *settingRepository) Put(ctx context.Context, tenantID types.TenantID, setting *model.TenantSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copySetting(setting)
	stored.TenantID = tenantID
	stored.UpdatedAt = time.Now().UTC()

	r.settings[settingKey{tenantID, stored.Key}] = stored
	return nil
}

func (r *settingRepository) Get(ctx context.Context, tenantID types.TenantID, key string) (*model.TenantSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	setting, exists := r.settings[settingKey{tenantID, key}]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "setting not found", goerr.V("key", key))
	}

	return copySetting(setting), nil
}

func (r *settingRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.TenantSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.TenantSetting, 0)
	for k, s := range r.settings {
		if k.tenantID == tenantID {
			result = append(result, copySetting(s))
		}
	}

	return result, nil
}

func (r *settingRepository) Delete(ctx context.Context, tenantID types.TenantID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := settingKey{tenantID, key}
	if _, exists := r.settings[k]; !exists {
		return goerr.Wrap(ErrNotFound, "setting not found", goerr.V("key", key))
	}

	delete(r.settings, k)
	return nil
}
