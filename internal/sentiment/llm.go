package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// LLMRefiner asks a chat model to re-label a day's headlines when the keyword
// counts are ambiguous. It is optional: a nil refiner means heuristic-only.
type LLMRefiner struct {
	client openAIChatClient
	model  string
}

func NewLLMRefiner(apiKey, model string) *LLMRefiner {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &LLMRefiner{
		client: &openAIClient{client: client},
		model:  model,
	}
}

// Refine returns an adjusted category for the day's headlines. On any failure
// the caller should keep the heuristic category.
func (r *LLMRefiner) Refine(ctx context.Context, ticker string, headlines []string) (string, error) {
	if r == nil || r.client == nil || len(headlines) == 0 {
		return "", fmt.Errorf("refiner unavailable")
	}

	var sb strings.Builder
	for i, h := range headlines {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.TrimSpace(h)))
	}

	systemPrompt := "You classify the aggregate sentiment of stock news headlines. Return ONLY a JSON object {\"category\": \"POS\"|\"NEG\"|\"NEUT\"}. No markdown."
	userPrompt := fmt.Sprintf("Ticker: %s\nHeadlines:\n%s", ticker, sb.String())

	completion, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty refiner completion")
	}

	raw := trimCodeFence(completion.Choices[0].Message.Content)
	var parsed struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", fmt.Errorf("parse refiner json: %w", err)
	}

	switch strings.ToUpper(strings.TrimSpace(parsed.Category)) {
	case "POS":
		return "POS", nil
	case "NEG":
		return "NEG", nil
	case "NEUT", "NEUTRAL":
		return "NEUT", nil
	default:
		return "", fmt.Errorf("unrecognized refiner category %q", parsed.Category)
	}
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
