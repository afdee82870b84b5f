package relevance

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/service/settings"
)

// Matcher selects the knowledge entries relevant to a free-text
// question by substring keyword matching. This is intentionally not a
// search index: a tag matches when its token occurs inside the
// lowercased question.
type Matcher struct {
	repo     interfaces.KnowledgeRepository
	settings *settings.Cache
}

// New creates a relevance matcher
func New(repo interfaces.KnowledgeRepository, settingsCache *settings.Cache) *Matcher {
	return &Matcher{
		repo:     repo,
		settings: settingsCache,
	}
}

// FindRelevant returns the active entries whose keyword tags match the
// query, ordered by descending priority (slug ascending on ties). When
// no tag matches, including for an empty query, it falls back to the
// tenant's active meta and index entries. All returned entries are
// hydrated with tenant settings; callers never see raw placeholders.
func (m *Matcher) FindRelevant(ctx context.Context, tenantID types.TenantID, query string) ([]*model.KnowledgeEntry, error) {
	matched, err := m.matchByTags(ctx, tenantID, query)
	if err != nil {
		return nil, err
	}

	entries := matched
	if len(entries) == 0 {
		entries, err = m.repo.ListActiveByKinds(ctx, tenantID, types.FallbackKinds)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load fallback entries", goerr.V("tenantID", tenantID))
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Slug < entries[j].Slug
	})

	for _, entry := range entries {
		if err := m.hydrate(ctx, tenantID, entry); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (m *Matcher) matchByTags(ctx context.Context, tenantID types.TenantID, query string) ([]*model.KnowledgeEntry, error) {
	lowered := strings.ToLower(query)
	if strings.TrimSpace(lowered) == "" {
		return nil, nil
	}

	tags, err := m.repo.ListTags(ctx, tenantID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list keyword tags", goerr.V("tenantID", tenantID))
	}

	matchedIDs := make(map[types.EntryID]bool)
	for _, tag := range tags {
		if tag.Token == "" {
			continue
		}
		if strings.Contains(lowered, tag.Token) {
			matchedIDs[tag.EntryID] = true
		}
	}

	if len(matchedIDs) == 0 {
		return nil, nil
	}

	ids := make([]types.EntryID, 0, len(matchedIDs))
	for id := range matchedIDs {
		ids = append(ids, id)
	}

	loaded := make([]*model.KnowledgeEntry, len(ids))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, id := range ids {
		eg.Go(func() error {
			entry, err := m.repo.Get(egCtx, tenantID, id)
			if err != nil {
				return goerr.Wrap(err, "failed to load matched entry", goerr.V("entryID", id))
			}
			loaded[i] = entry
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	entries := make([]*model.KnowledgeEntry, 0, len(loaded))
	for _, entry := range loaded {
		if !entry.Active {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (m *Matcher) hydrate(ctx context.Context, tenantID types.TenantID, entry *model.KnowledgeEntry) error {
	var err error
	if entry.Title, err = m.settings.Hydrate(ctx, tenantID, entry.Title); err != nil {
		return goerr.Wrap(err, "failed to hydrate entry title", goerr.V("entryID", entry.ID))
	}
	if entry.Body, err = m.settings.Hydrate(ctx, tenantID, entry.Body); err != nil {
		return goerr.Wrap(err, "failed to hydrate entry body", goerr.V("entryID", entry.ID))
	}
	if entry.Summary, err = m.settings.Hydrate(ctx, tenantID, entry.Summary); err != nil {
		return goerr.Wrap(err, "failed to hydrate entry summary", goerr.V("entryID", entry.ID))
	}
	return nil
}
