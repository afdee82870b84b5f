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

// templateDoc is the Firestore document representation of
// model.PersonalityTemplate
type templateDoc struct {
	ID           types.TemplateID `firestore:"ID"`
	TenantID     types.TenantID   `firestore:"TenantID"`
	Mode         string           `firestore:"Mode"`
	SystemPrompt string           `firestore:"SystemPrompt"`
	Active       bool             `firestore:"Active"`
	IsDefault    bool             `firestore:"IsDefault"`
	CreatedAt    time.Time        `firestore:"CreatedAt"`
	UpdatedAt    time.Time        `firestore:"UpdatedAt"`
}

func toTemplateDoc(t *model.PersonalityTemplate) *templateDoc {
	return &templateDoc{
		ID:           t.ID,
		TenantID:     t.TenantID,
		Mode:         t.Mode,
		SystemPrompt: t.SystemPrompt,
		Active:       t.Active,
		IsDefault:    t.IsDefault,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func fromTemplateDoc(d *templateDoc) *model.PersonalityTemplate {
	return &model.PersonalityTemplate{
		ID:           d.ID,
		TenantID:     d.TenantID,
		Mode:         d.Mode,
		SystemPrompt: d.SystemPrompt,
		Active:       d.Active,
		IsDefault:    d.IsDefault,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func docToTemplate(doc *firestore.DocumentSnapshot) (*model.PersonalityTemplate, error) {
	var d templateDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromTemplateDoc(&d), nil
}

type personalityRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newPersonalityRepository(client *firestore.Client) *personalityRepository {
	return &personalityRepository{client: client}
}

// templatesCollection resolves the collection for a tenant. Global
// templates live in a top-level collection so tenant deletion can never
// cascade into shared data.
func (r *personalityRepository) templatesCollection(tenantID types.TenantID) *firestore.CollectionRef {
	if tenantID.IsGlobal() {
		return r.client.Collection(r.collectionPrefix + "personalities")
	}
	return r.client.Collection(r.collectionPrefix+"tenants").Doc(tenantID.String()).Collection("personalities")
}

func (r *personalityRepository) Create(ctx context.Context, template *model.PersonalityTemplate) (*model.PersonalityTemplate, error) {
	now := time.Now().UTC()
	created := *template
	if created.ID == "" {
		created.ID = types.NewTemplateID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if created.IsDefault {
		if err := r.clearDefault(ctx, created.TenantID); err != nil {
			return nil, err
		}
	}

	docRef := r.templatesCollection(created.TenantID).Doc(created.ID.String())
	if _, err := docRef.Set(ctx, toTemplateDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create personality template", goerr.V("mode", created.Mode))
	}

	return &created, nil
}

// clearDefault drops IsDefault from every template of a tenant so that
// at most one default exists at a time.
func (r *personalityRepository) clearDefault(ctx context.Context, tenantID types.TenantID) error {
	iter := r.templatesCollection(tenantID).Where("IsDefault", "==", true).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate default templates", goerr.V("tenantID", tenantID))
		}

		if _, err := doc.Ref.Update(ctx, []firestore.Update{
			{Path: "IsDefault", Value: false},
			{Path: "UpdatedAt", Value: time.Now().UTC()},
		}); err != nil {
			return goerr.Wrap(err, "failed to clear default template flag")
		}
	}

	return nil
}

func (r *personalityRepository) Get(ctx context.Context, tenantID types.TenantID, id types.TemplateID) (*model.PersonalityTemplate, error) {
	doc, err := r.templatesCollection(tenantID).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "personality template not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get personality template", goerr.V("id", id))
	}

	return docToTemplate(doc)
}

func (r *personalityRepository) GetByMode(ctx context.Context, tenantID types.TenantID, mode string) (*model.PersonalityTemplate, error) {
	iter := r.templatesCollection(tenantID).
		Where("Mode", "==", mode).
		Where("Active", "==", true).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "personality template not found", goerr.V("mode", mode))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get personality template by mode", goerr.V("mode", mode))
	}

	return docToTemplate(doc)
}

func (r *personalityRepository) GetDefault(ctx context.Context, tenantID types.TenantID) (*model.PersonalityTemplate, error) {
	iter := r.templatesCollection(tenantID).
		Where("IsDefault", "==", true).
		Where("Active", "==", true).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "default personality template not found", goerr.V("tenantID", tenantID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get default personality template", goerr.V("tenantID", tenantID))
	}

	return docToTemplate(doc)
}

func (r *personalityRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.PersonalityTemplate, error) {
	iter := r.templatesCollection(tenantID).Documents(ctx)
	defer iter.Stop()

	templates := make([]*model.PersonalityTemplate, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate personality templates", goerr.V("tenantID", tenantID))
		}

		t, err := docToTemplate(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal personality template")
		}

		templates = append(templates, t)
	}

	return templates, nil
}

func (r *personalityRepository) Update(ctx context.Context, template *model.PersonalityTemplate) error {
	docRef := r.templatesCollection(template.TenantID).Doc(template.ID.String())

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "personality template not found", goerr.V("id", template.ID))
		}
		return goerr.Wrap(err, "failed to get personality template", goerr.V("id", template.ID))
	}

	existing, err := docToTemplate(doc)
	if err != nil {
		return goerr.Wrap(err, "failed to unmarshal personality template", goerr.V("id", template.ID))
	}

	if template.IsDefault && !existing.IsDefault {
		if err := r.clearDefault(ctx, template.TenantID); err != nil {
			return err
		}
	}

	updated := *template
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, toTemplateDoc(&updated)); err != nil {
		return goerr.Wrap(err, "failed to update personality template", goerr.V("id", template.ID))
	}

	return nil
}

func (r *personalityRepository) Delete(ctx context.Context, tenantID types.TenantID, id types.TemplateID) error {
	docRef := r.templatesCollection(tenantID).Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "personality template not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get personality template", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete personality template", goerr.V("id", id))
	}

	return nil
}
