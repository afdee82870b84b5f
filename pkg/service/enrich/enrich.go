package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/kataribe-dev/kataribe/pkg/domain/model"
)

// Service derives the searchable metadata of a knowledge entry from
// its body: a short summary for prompt context and the keyword tokens
// used by relevance matching.
type Service struct {
	llmClient gollem.LLMClient
}

// New creates an enrichment service. The LLM client is required; when
// no credential is configured, callers keep entries unenriched instead
// of constructing this service.
func New(llmClient gollem.LLMClient) (*Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &Service{llmClient: llmClient}, nil
}

// Result holds the generated metadata for one entry
type Result struct {
	Summary  string
	Keywords []string
}

type llmResponse struct {
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

const maxKeywords = 24

// Enrich generates a summary and keyword tokens for the entry. Tokens
// are normalized and deduplicated before being returned.
func (s *Service) Enrich(ctx context.Context, entry *model.KnowledgeEntry) (*Result, error) {
	session, err := s.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(entry)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate enrichment", goerr.V("entryID", entry.ID))
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("enrichment returned empty response", goerr.V("entryID", entry.ID))
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse enrichment response", goerr.V("response", resp.Texts[0]))
	}

	keywords := normalizeKeywords(parsed.Keywords)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	return &Result{
		Summary:  strings.TrimSpace(parsed.Summary),
		Keywords: keywords,
	}, nil
}

const systemPrompt = `You are a content indexing assistant for a personal portfolio website.
Given one content entry, produce:

1. summary: 1-2 plain sentences describing what the entry covers, written in the same language as the entry.
2. keywords: lowercase search tokens a visitor might type when asking about this entry. Include the entry's subject, technologies, and close synonyms. Single words or short phrases only.`

func buildUserPrompt(entry *model.KnowledgeEntry) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Entry: %s\n\n", entry.Title)
	fmt.Fprintf(&sb, "**Kind:** %s\n\n", entry.Kind)
	sb.WriteString(entry.Body)
	sb.WriteString("\n")

	return sb.String()
}

func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "EntryEnrichment",
		Description: "Summary and search keywords for a content entry",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"summary": {
				Type:        gollem.TypeString,
				Description: "A 1-2 sentence summary of the entry",
				Required:    true,
			},
			"keywords": {
				Type:        gollem.TypeArray,
				Description: "Lowercase search tokens for the entry",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeString,
				},
			},
		},
	}
}

func normalizeKeywords(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, kw := range raw {
		token := model.NormalizeToken(kw)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
