package proposal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/borderops/ingestor/internal/rowmap"
)

// openRouterBaseURL points the OpenAI-compatible client at OpenRouter
// instead of OpenAI directly; the wire protocol is identical.
const openRouterBaseURL = "https://openrouter.ai/api/v1"

// llmClient treats the LLM as an opaque suggestion provider per spec §9:
// headers + metadata in, {mappings, confidence_scores, reasoning?} out.
// Any failure (network, malformed JSON) is the caller's cue to fall
// through to the heuristic; llmClient never panics and never partially
// applies a response.
type llmClient struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func newLLMClient(apiKey, model string, timeout time.Duration) *llmClient {
	if model == "" {
		model = "openai/gpt-3.5-turbo"
	}
	if timeout <= 0 || timeout > 30*time.Second {
		timeout = 30 * time.Second
	}
	return &llmClient{
		client:  openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(openRouterBaseURL)),
		model:   model,
		timeout: timeout,
	}
}

type llmResponse struct {
	ColumnMappings   map[string]string  `json:"column_mappings"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	Reasoning        string             `json:"reasoning"`
}

// suggest asks the model for a mapping, bounded by a 30s hard ceiling per
// spec §5. Any header or field name outside the request's own vocabulary is
// dropped rather than trusted blindly.
func (c *llmClient) suggest(ctx context.Context, headers []string, meta Metadata, minConfidence float64) (Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildPrompt(headers, meta)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You map insurance bordereaux file column headers to a fixed set of canonical fields. Respond with JSON only, no prose."),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return Proposal{}, fmt.Errorf("proposal: llm request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Proposal{}, fmt.Errorf("proposal: llm returned no choices")
	}

	content := extractJSON(resp.Choices[0].Message.Content)

	var parsed llmResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return Proposal{}, fmt.Errorf("proposal: llm response not valid JSON: %w", err)
	}

	headerSet := make(map[string]bool, len(headers))
	for _, h := range headers {
		headerSet[h] = true
	}
	fieldSet := make(map[string]bool, len(rowmap.CanonicalFields()))
	for _, f := range rowmap.CanonicalFields() {
		fieldSet[f] = true
	}

	mappings := make(map[string]string)
	scores := make(map[string]float64)
	claimedFields := make(map[string]bool)

	for h, field := range parsed.ColumnMappings {
		if !headerSet[h] || !fieldSet[field] || claimedFields[field] {
			continue
		}
		score := parsed.ConfidenceScores[h]
		if score < minConfidence {
			continue
		}
		mappings[h] = field
		scores[h] = score
		claimedFields[field] = true
	}

	return Proposal{
		FileHeaders:      headers,
		ColumnMappings:   mappings,
		ConfidenceScores: scores,
		Metadata:         meta,
		Reasoning:        parsed.Reasoning,
	}, nil
}

func buildPrompt(headers []string, meta Metadata) string {
	var b strings.Builder
	b.WriteString("Canonical fields: ")
	b.WriteString(strings.Join(rowmap.CanonicalFields(), ", "))
	b.WriteString("\nFile headers: ")
	b.WriteString(strings.Join(headers, ", "))
	if meta.Filename != "" {
		b.WriteString("\nFilename: " + meta.Filename)
	}
	if meta.Subject != "" {
		b.WriteString("\nEmail subject: " + meta.Subject)
	}
	b.WriteString("\nRespond with JSON: {\"column_mappings\": {header: field}, \"confidence_scores\": {header: 0..1}, \"reasoning\": \"...\"}")
	return b.String()
}

// extractJSON strips a leading/trailing markdown code fence, in case the
// model wraps its JSON despite the system prompt's instruction not to.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
