package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/service/gateway"
	"github.com/kataribe-dev/kataribe/pkg/service/prompt"
	"github.com/kataribe-dev/kataribe/pkg/service/quota"
	"github.com/kataribe-dev/kataribe/pkg/service/relevance"
	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
)

// ChatUseCase answers visitor questions: it enforces the per-identity
// quota, selects the relevant knowledge context, assembles the prompt
// and streams the generated answer.
type ChatUseCase struct {
	limiter   *quota.Limiter
	matcher   *relevance.Matcher
	assembler *prompt.Assembler
	gateway   *gateway.Service
}

func newChatUseCase(limiter *quota.Limiter, matcher *relevance.Matcher, assembler *prompt.Assembler, gw *gateway.Service) *ChatUseCase {
	return &ChatUseCase{
		limiter:   limiter,
		matcher:   matcher,
		assembler: assembler,
		gateway:   gw,
	}
}

// Ask runs one question for an identity and returns the answer stream.
// Usage is counted when the stream is handed out, not when it finishes:
// an answer that fails mid-stream still consumed one use. When the
// quota is exhausted ErrQuotaExceeded is returned with the remaining
// status attached.
func (uc *ChatUseCase) Ask(ctx context.Context, tenantID types.TenantID, identity, question, mode string) (interfaces.GenerationStream, error) {
	status := uc.limiter.CheckLimit(ctx, identity)
	if !status.Allowed {
		return nil, goerr.Wrap(ErrQuotaExceeded, "identity is over quota",
			goerr.V("remaining", status.Remaining),
			goerr.V("resetIn", status.ResetIn),
		)
	}

	entries, err := uc.matcher.FindRelevant(ctx, tenantID, question)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to match knowledge entries", goerr.V("tenantID", tenantID))
	}

	assembled, err := uc.assembler.Assemble(ctx, tenantID, question, entries, mode)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to assemble prompt", goerr.V("tenantID", tenantID))
	}

	logging.From(ctx).Debug("answering question",
		"tenantID", tenantID,
		"mode", mode,
		"contextEntries", len(entries),
	)

	stream := uc.gateway.Stream(ctx, assembled)
	uc.limiter.IncrementUsage(ctx, identity)

	return stream, nil
}

// Quota reports the current quota status for an identity without
// consuming a use.
func (uc *ChatUseCase) Quota(ctx context.Context, identity string) model.QuotaStatus {
	return uc.limiter.CheckLimit(ctx, identity)
}
