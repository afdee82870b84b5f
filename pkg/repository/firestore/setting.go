package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
)

// settingDoc is the Firestore document representation of model.TenantSetting
type settingDoc struct {
	TenantID  types.TenantID    `firestore:"TenantID"`
	Key       string            `firestore:"Key"`
	Value     string            `firestore:"Value"`
	Kind      types.SettingKind `firestore:"Kind"`
	Category  string            `firestore:"Category"`
	UpdatedAt time.Time         `firestore:"UpdatedAt"`
}

func fromSettingDoc(d *settingDoc) *model.TenantSetting {
	return &model.TenantSetting{
		TenantID:  d.TenantID,
		Key:       d.Key,
		Value:     d.Value,
		Kind:      d.Kind,
		Category:  d.Category,
		UpdatedAt: d.UpdatedAt,
	}
}

type settingRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSettingRepository(client *firestore.Client) *settingRepository {
	return &settingRepository{client: client}
}

func (r *settingRepository) settingsCollection(tenantID types.TenantID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix+"tenants").Doc(tenantID.String()).Collection("settings")
}

func (r *settingRepository) Put(ctx context.Context, tenantID types.TenantID, setting *model.TenantSetting) error {
	doc := &settingDoc{
		TenantID:  tenantID,
		Key:       setting.Key,
		Value:     setting.Value,
		Kind:      setting.Kind,
		Category:  setting.Category,
		UpdatedAt: time.Now().UTC(),
	}

	if _, err := r.settingsCollection(tenantID).Doc(setting.Key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put setting", goerr.V("key", setting.Key))
	}

	return nil
}

func (r *settingRepository) Get(ctx context.Context, tenantID types.TenantID, key string) (*model.TenantSetting, error) {
	doc, err := r.settingsCollection(tenantID).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "setting not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get setting", goerr.V("key", key))
	}

	var d settingDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal setting", goerr.V("key", key))
	}

	return fromSettingDoc(&d), nil
}

func (r *settingRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.TenantSetting, error) {
	iter := r.settingsCollection(tenantID).Documents(ctx)
	defer iter.Stop()

	settings := make([]*model.TenantSetting, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate settings", goerr.V("tenantID", tenantID))
		}

		var d settingDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal setting")
		}

		settings = append(settings, fromSettingDoc(&d))
	}

	return settings, nil
}

func (r *settingRepository) Delete(ctx context.Context, tenantID types.TenantID, key string) error {
	docRef := r.settingsCollection(tenantID).Doc(key)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "setting not found", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to get setting", goerr.V("key", key))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete setting", goerr.V("key", key))
	}

	return nil
}
