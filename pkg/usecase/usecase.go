package usecase

import (
	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/service/enrich"
	"github.com/kataribe-dev/kataribe/pkg/service/gateway"
	"github.com/kataribe-dev/kataribe/pkg/service/prompt"
	"github.com/kataribe-dev/kataribe/pkg/service/quota"
	"github.com/kataribe-dev/kataribe/pkg/service/relevance"
	"github.com/kataribe-dev/kataribe/pkg/service/settings"
)

type UseCases struct {
	repo     interfaces.Repository
	limiter  *quota.Limiter
	gateway  *gateway.Service
	enricher *enrich.Service
	cache    *settings.Cache

	Chat        *ChatUseCase
	Knowledge   *KnowledgeUseCase
	Settings    *SettingsUseCase
	Personality *PersonalityUseCase
}

type Option func(*UseCases)

// WithLimiter sets the quota limiter. Without it a limiter with no
// durable backend is used.
func WithLimiter(limiter *quota.Limiter) Option {
	return func(uc *UseCases) {
		uc.limiter = limiter
	}
}

// WithGateway sets the generation gateway. Without it an unconfigured
// gateway is used and chat answers carry the missing-credential message.
func WithGateway(gw *gateway.Service) Option {
	return func(uc *UseCases) {
		uc.gateway = gw
	}
}

// WithEnricher sets the metadata enrichment service. nil disables
// summary and keyword generation.
func WithEnricher(enricher *enrich.Service) Option {
	return func(uc *UseCases) {
		uc.enricher = enricher
	}
}

// WithSettingsCache overrides the settings cache, mainly for tests that
// need a short TTL.
func WithSettingsCache(cache *settings.Cache) Option {
	return func(uc *UseCases) {
		uc.cache = cache
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.limiter == nil {
		uc.limiter = quota.New(nil)
	}
	if uc.gateway == nil {
		uc.gateway = gateway.New(nil)
	}
	if uc.cache == nil {
		uc.cache = settings.New(repo.Setting())
	}

	matcher := relevance.New(repo.Knowledge(), uc.cache)
	assembler := prompt.New(repo.Personality(), uc.cache)

	uc.Chat = newChatUseCase(uc.limiter, matcher, assembler, uc.gateway)
	uc.Knowledge = newKnowledgeUseCase(repo.Knowledge(), uc.enricher)
	uc.Settings = newSettingsUseCase(repo.Setting(), uc.cache)
	uc.Personality = newPersonalityUseCase(repo.Personality())

	return uc
}

// SettingsCache exposes the shared per-tenant settings cache
func (uc *UseCases) SettingsCache() *settings.Cache {
	return uc.cache
}

// Limiter exposes the quota limiter for lifecycle management
func (uc *UseCases) Limiter() *quota.Limiter {
	return uc.limiter
}
