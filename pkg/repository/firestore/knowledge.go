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

// entryDoc is the Firestore document representation of model.KnowledgeEntry
type entryDoc struct {
	ID        types.EntryID   `firestore:"ID"`
	TenantID  types.TenantID  `firestore:"TenantID"`
	Kind      types.EntryKind `firestore:"Kind"`
	Slug      string          `firestore:"Slug"`
	Title     string          `firestore:"Title"`
	Body      string          `firestore:"Body"`
	Summary   string          `firestore:"Summary"`
	Priority  int             `firestore:"Priority"`
	Active    bool            `firestore:"Active"`
	CreatedAt time.Time       `firestore:"CreatedAt"`
	UpdatedAt time.Time       `firestore:"UpdatedAt"`
}

// tagDoc is the Firestore document representation of model.KeywordTag
type tagDoc struct {
	EntryID types.EntryID `firestore:"EntryID"`
	Token   string        `firestore:"Token"`
}

func toEntryDoc(e *model.KnowledgeEntry) *entryDoc {
	return &entryDoc{
		ID:        e.ID,
		TenantID:  e.TenantID,
		Kind:      e.Kind,
		Slug:      e.Slug,
		Title:     e.Title,
		Body:      e.Body,
		Summary:   e.Summary,
		Priority:  e.Priority,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fromEntryDoc(d *entryDoc) *model.KnowledgeEntry {
	return &model.KnowledgeEntry{
		ID:        d.ID,
		TenantID:  d.TenantID,
		Kind:      d.Kind,
		Slug:      d.Slug,
		Title:     d.Title,
		Body:      d.Body,
		Summary:   d.Summary,
		Priority:  d.Priority,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func docToEntry(doc *firestore.DocumentSnapshot) (*model.KnowledgeEntry, error) {
	var d entryDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromEntryDoc(&d), nil
}

type knowledgeRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newKnowledgeRepository(client *firestore.Client) *knowledgeRepository {
	return &knowledgeRepository{client: client}
}

func (r *knowledgeRepository) entriesCollection(tenantID types.TenantID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix+"tenants").Doc(tenantID.String()).Collection("knowledges")
}

func (r *knowledgeRepository) tagsCollection(tenantID types.TenantID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix+"tenants").Doc(tenantID.String()).Collection("keywords")
}

func (r *knowledgeRepository) Create(ctx context.Context, tenantID types.TenantID, entry *model.KnowledgeEntry) (*model.KnowledgeEntry, error) {
	existing := r.entriesCollection(tenantID).Where("Slug", "==", entry.Slug).Limit(1).Documents(ctx)
	defer existing.Stop()
	if _, err := existing.Next(); err != iterator.Done {
		if err != nil {
			return nil, goerr.Wrap(err, "failed to check slug uniqueness", goerr.V("slug", entry.Slug))
		}
		return nil, goerr.New("slug already exists", goerr.V("slug", entry.Slug))
	}

	now := time.Now().UTC()
	created := *entry
	if created.ID == "" {
		created.ID = types.NewEntryID()
	}
	created.TenantID = tenantID
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.entriesCollection(tenantID).Doc(created.ID.String())
	if _, err := docRef.Set(ctx, toEntryDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create knowledge entry", goerr.V("slug", created.Slug))
	}

	return &created, nil
}

func (r *knowledgeRepository) Get(ctx context.Context, tenantID types.TenantID, id types.EntryID) (*model.KnowledgeEntry, error) {
	doc, err := r.entriesCollection(tenantID).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "knowledge entry not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get knowledge entry", goerr.V("id", id))
	}

	return docToEntry(doc)
}

func (r *knowledgeRepository) GetBySlug(ctx context.Context, tenantID types.TenantID, slug string) (*model.KnowledgeEntry, error) {
	iter := r.entriesCollection(tenantID).Where("Slug", "==", slug).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "knowledge entry not found", goerr.V("slug", slug))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get knowledge entry by slug", goerr.V("slug", slug))
	}

	return docToEntry(doc)
}

func (r *knowledgeRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.KnowledgeEntry, error) {
	iter := r.entriesCollection(tenantID).Documents(ctx)
	defer iter.Stop()

	entries := make([]*model.KnowledgeEntry, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate knowledge entries", goerr.V("tenantID", tenantID))
		}

		e, err := docToEntry(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal knowledge entry")
		}

		entries = append(entries, e)
	}

	return entries, nil
}

func (r *knowledgeRepository) ListActiveByKinds(ctx context.Context, tenantID types.TenantID, kinds []types.EntryKind) ([]*model.KnowledgeEntry, error) {
	kindValues := make([]any, 0, len(kinds))
	for _, k := range kinds {
		kindValues = append(kindValues, k.String())
	}

	iter := r.entriesCollection(tenantID).
		Where("Active", "==", true).
		Where("Kind", "in", kindValues).
		Documents(ctx)
	defer iter.Stop()

	entries := make([]*model.KnowledgeEntry, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate knowledge entries", goerr.V("tenantID", tenantID))
		}

		e, err := docToEntry(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal knowledge entry")
		}

		entries = append(entries, e)
	}

	return entries, nil
}

func (r *knowledgeRepository) Update(ctx context.Context, tenantID types.TenantID, entry *model.KnowledgeEntry) error {
	docRef := r.entriesCollection(tenantID).Doc(entry.ID.String())

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "knowledge entry not found", goerr.V("id", entry.ID))
		}
		return goerr.Wrap(err, "failed to get knowledge entry", goerr.V("id", entry.ID))
	}

	existing, err := docToEntry(doc)
	if err != nil {
		return goerr.Wrap(err, "failed to unmarshal knowledge entry", goerr.V("id", entry.ID))
	}

	updated := *entry
	updated.TenantID = tenantID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, toEntryDoc(&updated)); err != nil {
		return goerr.Wrap(err, "failed to update knowledge entry", goerr.V("id", entry.ID))
	}

	return nil
}

func (r *knowledgeRepository) Delete(ctx context.Context, tenantID types.TenantID, id types.EntryID) error {
	docRef := r.entriesCollection(tenantID).Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "knowledge entry not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get knowledge entry", goerr.V("id", id))
	}

	// Cascade to keyword tags first so a partial failure never leaves
	// tags pointing at a deleted entry.
	if err := r.deleteTags(ctx, tenantID, id); err != nil {
		return err
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete knowledge entry", goerr.V("id", id))
	}

	return nil
}

func (r *knowledgeRepository) deleteTags(ctx context.Context, tenantID types.TenantID, entryID types.EntryID) error {
	iter := r.tagsCollection(tenantID).Where("EntryID", "==", entryID.String()).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate keyword tags", goerr.V("entryID", entryID))
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete keyword tag", goerr.V("entryID", entryID))
		}
	}

	return nil
}

func (r *knowledgeRepository) ReplaceTags(ctx context.Context, tenantID types.TenantID, entryID types.EntryID, tokens []string) error {
	if _, err := r.Get(ctx, tenantID, entryID); err != nil {
		return err
	}

	if err := r.deleteTags(ctx, tenantID, entryID); err != nil {
		return err
	}

	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		t := model.NormalizeToken(token)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true

		doc := &tagDoc{EntryID: entryID, Token: t}
		if _, _, err := r.tagsCollection(tenantID).Add(ctx, doc); err != nil {
			return goerr.Wrap(err, "failed to create keyword tag",
				goerr.V("entryID", entryID),
				goerr.V("token", t),
			)
		}
	}

	return nil
}

func (r *knowledgeRepository) ListTags(ctx context.Context, tenantID types.TenantID) ([]*model.KeywordTag, error) {
	iter := r.tagsCollection(tenantID).Documents(ctx)
	defer iter.Stop()

	tags := make([]*model.KeywordTag, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate keyword tags", goerr.V("tenantID", tenantID))
		}

		var d tagDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal keyword tag")
		}

		tags = append(tags, &model.KeywordTag{EntryID: d.EntryID, Token: d.Token})
	}

	return tags, nil
}

func (r *knowledgeRepository) ListTagsByEntry(ctx context.Context, tenantID types.TenantID, entryID types.EntryID) ([]*model.KeywordTag, error) {
	iter := r.tagsCollection(tenantID).Where("EntryID", "==", entryID.String()).Documents(ctx)
	defer iter.Stop()

	tags := make([]*model.KeywordTag, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate keyword tags", goerr.V("entryID", entryID))
		}

		var d tagDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal keyword tag")
		}

		tags = append(tags, &model.KeywordTag{EntryID: d.EntryID, Token: d.Token})
	}

	return tags, nil
}
