package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
)

func TestScoreCountsKeywords(t *testing.T) {
	a := NewAnalyzer()
	pos, neg := a.Score("Shares surge to record high after earnings beat")
	if pos != 3 {
		t.Fatalf("expected 3 positive hits (surge, record, beat), got %v", pos)
	}
	if neg != 0 {
		t.Fatalf("expected 0 negative hits, got %v", neg)
	}
}

func TestScoreIsCaseInsensitive(t *testing.T) {
	a := NewAnalyzer()
	upper, _ := a.Score("SURGE RALLY")
	lower, _ := a.Score("surge rally")
	if upper != lower || upper != 2 {
		t.Fatalf("case must not matter: got %v and %v", upper, lower)
	}
}

func TestScoreMatchesWholeWordsOnly(t *testing.T) {
	a := NewAnalyzer()
	// "gainsborough" must not count as "gains".
	pos, _ := a.Score("gainsborough exhibition opens")
	if pos != 0 {
		t.Fatalf("substring must not match, got %v positive hits", pos)
	}
}

func TestSummarizeCategories(t *testing.T) {
	a := NewAnalyzer()

	cases := []struct {
		name      string
		headlines []string
		category  string
	}{
		{"positive dominates", []string{"Profit surge on strong growth"}, "POS"},
		{"negative dominates", []string{"Shares plunge after lawsuit and downgrade"}, "NEG"},
		{"balanced", []string{"surge", "plunge"}, "NEUT"},
		{"no headlines", nil, "NEUT"},
		{"no keywords", []string{"Quarterly report published"}, "NEUT"},
	}
	for _, tc := range cases {
		got := a.Summarize(tc.headlines)
		if got.Category != tc.category {
			t.Fatalf("%s: expected %s, got %s (pos=%v neg=%v)", tc.name, tc.category, got.Category, got.Positive, got.Negative)
		}
	}
}

func TestRefinerParsesCategory(t *testing.T) {
	r := &LLMRefiner{
		client: stubChatClient{content: "```json\n{\"category\": \"neg\"}\n```"},
		model:  "gpt-4o-mini",
	}
	got, err := r.Refine(context.Background(), "AAPL", []string{"Shares fall"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "NEG" {
		t.Fatalf("expected NEG, got %s", got)
	}
}

func TestRefinerRejectsUnknownCategory(t *testing.T) {
	r := &LLMRefiner{
		client: stubChatClient{content: "{\"category\": \"mixed\"}"},
		model:  "gpt-4o-mini",
	}
	if _, err := r.Refine(context.Background(), "AAPL", []string{"x"}); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestRefinerPropagatesClientError(t *testing.T) {
	r := &LLMRefiner{
		client: stubChatClient{err: errors.New("boom")},
		model:  "gpt-4o-mini",
	}
	if _, err := r.Refine(context.Background(), "AAPL", []string{"x"}); err == nil {
		t.Fatal("expected client error to propagate")
	}
}

func TestNilRefinerIsUnavailable(t *testing.T) {
	var r *LLMRefiner
	if _, err := r.Refine(context.Background(), "AAPL", []string{"x"}); err == nil {
		t.Fatal("nil refiner must report unavailable")
	}
}

type stubChatClient struct {
	content string
	err     error
}

func (s stubChatClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}
