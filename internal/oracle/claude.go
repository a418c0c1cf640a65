package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/mendworks/mend/pkg/models"
)

// ClaudeOracle implements Oracle over the Anthropic Messages API. Each call
// is a single request; the pipeline's own loop provides the iteration.
type ClaudeOracle struct {
	client    *Client
	maxTokens int64
}

// NewClaudeOracle creates an oracle backed by the given client.
func NewClaudeOracle(client *Client) *ClaudeOracle {
	return &ClaudeOracle{client: client, maxTokens: 8192}
}

// ProposeIssues asks the model to triage linter findings into defects.
func (o *ClaudeOracle) ProposeIssues(ctx context.Context, req AnalysisRequest) ([]models.Issue, error) {
	text, err := o.complete(ctx, analysisSystemPrompt, buildAnalysisPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("oracle: analysis request: %w", err)
	}
	var issues []models.Issue
	if err := decodeJSONArray(text, &issues); err != nil {
		return nil, fmt.Errorf("oracle: decoding analysis response: %w", err)
	}
	for i := range issues {
		if !issues[i].Severity.Valid() {
			issues[i].Severity = models.SeverityWarning
		}
	}
	return issues, nil
}

// ProposeFixes asks the model for corrected file contents.
func (o *ClaudeOracle) ProposeFixes(ctx context.Context, req CorrectionRequest) ([]FileChange, error) {
	system := correctionSystemPrompt
	if len(req.FailureLogs) > 0 {
		system = healingSystemPrompt
	}
	text, err := o.complete(ctx, system, buildCorrectionPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("oracle: correction request: %w", err)
	}
	var changes []FileChange
	if err := decodeJSONArray(text, &changes); err != nil {
		return nil, fmt.Errorf("oracle: decoding correction response: %w", err)
	}
	return changes, nil
}

// complete sends one message and returns the concatenated text blocks.
func (o *ClaudeOracle) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     o.client.model,
		MaxTokens: o.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", err
	}
	o.client.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}
	return text.String(), nil
}

// decodeJSONArray parses a JSON array out of a model response, tolerating
// surrounding prose and markdown fences.
func decodeJSONArray(text string, v any) error {
	trimmed := strings.TrimSpace(text)
	if i := strings.Index(trimmed, "```"); i >= 0 {
		trimmed = trimmed[i+3:]
		trimmed = strings.TrimPrefix(trimmed, "json")
		if j := strings.Index(trimmed, "```"); j >= 0 {
			trimmed = trimmed[:j]
		}
	}
	start := strings.IndexByte(trimmed, '[')
	end := strings.LastIndexByte(trimmed, ']')
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON array in response")
	}
	return json.Unmarshal([]byte(trimmed[start:end+1]), v)
}

var _ Oracle = (*ClaudeOracle)(nil)
