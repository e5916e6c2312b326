package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"dailybrief/internal/config"
	"dailybrief/internal/domain"
	"dailybrief/internal/ports"
)

const systemPrompt = `You are a newsletter editor for a high-quality personalized news digest,
similar to Morning Brew or Axios. Your job is to summarize articles in a concise,
engaging way for a general but informed audience.

For each article you must produce:
1. A one-sentence "hook" explaining why this matters to the reader.
2. A 2-3 sentence summary of what happened / what the article covers.
3. A one-sentence "key takeaway" - the single most important insight.

Keep language clear, active, and jargon-free. Do not editorialize beyond the article's content.
Do not use bullet points in your output - write short prose paragraphs.`

const articlePromptTemplate = `Please summarize the following article.

Title: %s
Source: %s
URL: %s

Article snippet:
%s

---
Return ONLY a JSON object with these exact keys:
{
  "hook": "...",
  "summary": "...",
  "takeaway": "..."
}`

const maxSnippetRunes = 1500

// AnthropicClient implements ports.SynopsisClient against the Anthropic
// messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

var _ ports.SynopsisClient = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration.
func NewAnthropicClient(cfg config.AnthropicConfig) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))

	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = anthropic.Model("claude-haiku-4-5")
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 512
	}

	return &AnthropicClient{client: &client, model: model, maxTokens: maxTokens}
}

// Summarize requests a smart-brevity synopsis for one article. Errors are
// classified so the caller's retry loop can tell rate limits from bad
// credentials.
func (c *AnthropicClient) Summarize(ctx context.Context, item domain.ContentItem) (domain.Synopsis, error) {
	prompt := fmt.Sprintf(articlePromptTemplate, item.Title, item.SourceName, item.URL, snippet(item))

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return domain.Synopsis{}, classify(err)
	}
	if len(resp.Content) == 0 {
		return domain.Synopsis{}, domain.Transient(errors.New("empty model response"))
	}

	content := cleanJSONResponse(resp.Content[0].Text)

	var synopsis domain.Synopsis
	if err := json.Unmarshal([]byte(content), &synopsis); err != nil {
		return domain.Synopsis{}, domain.Transient(fmt.Errorf("parse synopsis: %w", err))
	}
	if synopsis.Summary == "" {
		return domain.Synopsis{}, domain.Transient(errors.New("synopsis missing summary"))
	}
	return synopsis, nil
}

// Intro writes the personalized greeting paragraph.
func (c *AnthropicClient) Intro(ctx context.Context, req ports.IntroRequest) (string, error) {
	prompt := fmt.Sprintf(
		"Write a warm, 2-sentence personalized introduction for a daily newsletter.\n"+
			"Reader's name: %s\nDate: %s\nTopics covered: %s\nNumber of stories: %d\n\n"+
			"Be friendly, energetic, and mention 1-2 of their interest areas naturally. "+
			"Do NOT use emojis. Output the two sentences only.",
		req.Name, req.Date, strings.Join(req.Categories, ", "), req.StoryCount)

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 128,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Content) == 0 {
		return "", domain.Transient(errors.New("empty model response"))
	}
	return strings.TrimSpace(resp.Content[0].Text), nil
}

func snippet(item domain.ContentItem) string {
	text := item.Excerpt
	if text == "" {
		return item.Title
	}
	runes := []rune(text)
	if len(runes) > maxSnippetRunes {
		return string(runes[:maxSnippetRunes])
	}
	return text
}

// classify maps API failures onto the retry taxonomy: rate limits,
// timeouts and server errors are transient; auth and request errors are
// permanent. Plain transport faults stay transient.
func classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429 || apierr.StatusCode == 408 || apierr.StatusCode >= 500:
			return domain.Transient(err)
		case apierr.StatusCode >= 400:
			return domain.Permanent(err)
		}
	}
	return domain.Transient(err)
}

// cleanJSONResponse strips markdown fences and surrounding prose some
// model responses wrap around the JSON object.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
