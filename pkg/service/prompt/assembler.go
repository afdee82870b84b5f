package prompt

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/service/settings"
	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
)

//go:embed prompt/chat_frame.md
var chatFrameTmpl string

var chatFrame = template.Must(template.New("chat_frame").Parse(chatFrameTmpl))

// Assembler composes the final generation prompt from a hydrated
// personality block, fixed formatting constraints, the matched
// knowledge context and the verbatim visitor question. It performs no
// truncation; callers bound input size.
type Assembler struct {
	repo     interfaces.PersonalityRepository
	settings *settings.Cache
}

// New creates a prompt assembler
func New(repo interfaces.PersonalityRepository, settingsCache *settings.Cache) *Assembler {
	return &Assembler{
		repo:     repo,
		settings: settingsCache,
	}
}

type frameData struct {
	Persona  string
	Context  []string
	Question string
}

// Assemble builds the prompt for a tenant. The personality is resolved
// by mode when given, then the tenant default, then the global
// default; a mode with no active template falls through rather than
// failing the request.
func (a *Assembler) Assemble(ctx context.Context, tenantID types.TenantID, question string, entries []*model.KnowledgeEntry, mode string) (string, error) {
	tmpl, err := a.resolveTemplate(ctx, tenantID, mode)
	if err != nil {
		return "", err
	}

	persona, err := a.settings.Hydrate(ctx, tenantID, tmpl.SystemPrompt)
	if err != nil {
		return "", goerr.Wrap(err, "failed to hydrate personality template", goerr.V("templateID", tmpl.ID))
	}

	contexts := make([]string, 0, len(entries))
	for _, entry := range entries {
		contexts = append(contexts, renderEntry(entry))
	}

	var buf bytes.Buffer
	if err := chatFrame.Execute(&buf, frameData{
		Persona:  persona,
		Context:  contexts,
		Question: question,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render chat frame")
	}

	return buf.String(), nil
}

func (a *Assembler) resolveTemplate(ctx context.Context, tenantID types.TenantID, mode string) (*model.PersonalityTemplate, error) {
	if mode != "" {
		tmpl, err := a.repo.GetByMode(ctx, tenantID, mode)
		if err == nil {
			return tmpl, nil
		}
		if !isNotFound(err) {
			return nil, goerr.Wrap(err, "failed to resolve personality by mode", goerr.V("mode", mode))
		}
		logging.From(ctx).Debug("no personality for mode, using default", "mode", mode, "tenantID", tenantID)
	}

	tmpl, err := a.repo.GetDefault(ctx, tenantID)
	if err == nil {
		return tmpl, nil
	}
	if !isNotFound(err) {
		return nil, goerr.Wrap(err, "failed to resolve default personality", goerr.V("tenantID", tenantID))
	}

	tmpl, err = a.repo.GetDefault(ctx, types.GlobalTenant)
	if err != nil {
		return nil, goerr.Wrap(err, "no personality template available", goerr.V("tenantID", tenantID))
	}

	return tmpl, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrNotFound)
}

func renderEntry(entry *model.KnowledgeEntry) string {
	var sb strings.Builder
	sb.WriteString("### ")
	sb.WriteString(entry.Title)
	sb.WriteString("\n\n")
	if entry.Summary != "" {
		sb.WriteString(entry.Summary)
		sb.WriteString("\n\n")
	}
	sb.WriteString(entry.Body)
	return sb.String()
}
