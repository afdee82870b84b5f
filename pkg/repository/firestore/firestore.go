package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = interfaces.ErrNotFound

// Firestore is the durable repository backed by Cloud Firestore.
// Tenant-scoped entities live under tenants/{tenantID}/...; global
// personality templates live in a top-level collection.
type Firestore struct {
	client      *firestore.Client
	knowledge   *knowledgeRepository
	setting     *settingRepository
	personality *personalityRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes all collection names. Used by tests to
// isolate runs against a shared project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.knowledge.collectionPrefix = prefix
		f.setting.collectionPrefix = prefix
		f.personality.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client:      client,
		knowledge:   newKnowledgeRepository(client),
		setting:     newSettingRepository(client),
		personality: newPersonalityRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Knowledge() interfaces.KnowledgeRepository {
	return f.knowledge
}

func (f *Firestore) Setting() interfaces.SettingRepository {
	return f.setting
}

func (f *Firestore) Personality() interfaces.PersonalityRepository {
	return f.personality
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
