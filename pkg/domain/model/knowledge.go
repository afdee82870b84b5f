package model

import (
	"strings"
	"time"

	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// KnowledgeEntry is a titled, taggable block of reference text used to
// ground generated answers. Title, Body and Summary may contain
// {{placeholder}} tokens that are hydrated with tenant settings at read
// time; stored data is never mutated by hydration.
type KnowledgeEntry struct {
	ID        types.EntryID
	TenantID  types.TenantID
	Kind      types.EntryKind
	Slug      string // unique per tenant
	Title     string
	Body      string
	Summary   string
	Priority  int // higher sorts first
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the invariants of a knowledge entry
func (k *KnowledgeEntry) Validate() error {
	if err := k.Kind.Validate(); err != nil {
		return goerr.Wrap(err, "invalid entry kind")
	}
	if k.Slug == "" {
		return goerr.New("slug is required")
	}
	if k.Title == "" {
		return goerr.New("title is required", goerr.V("slug", k.Slug))
	}
	return nil
}

// KeywordTag associates a lowercase token with a knowledge entry. Tags
// for an entry are regenerated wholesale on update, never merged.
type KeywordTag struct {
	EntryID types.EntryID
	Token   string
}

// NormalizeToken lowercases and trims a keyword token. An empty result
// means the token is unusable and must be skipped.
func NormalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
