package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/civica/policyrag/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// passageLimit truncates passages before scoring; pairwise models degrade on
// long inputs and the query-relevant content sits at the front of a chunk.
const passageLimit = 512

// PairScorer implements ai.PairScorer using an OpenAI-compatible chat model.
// The model sees query and passage together, cross-encoder style, and emits
// one relevance score per passage.
type PairScorer struct {
	client llms.Model
	logger *slog.Logger
}

// scoreItem is an internal type used for JSON unmarshaling.
// It matches the structure requested from the LLM.
type scoreItem struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// scoreResponse is the wrapper structure for the LLM's JSON response.
type scoreResponse struct {
	Scores []scoreItem `json:"scores"`
}

const scorerSystemPrompt = `You score how relevant each numbered passage is to the user's question.
Return strict JSON: {"scores": [{"index": <passage number>, "score": <0.0-1.0>}, ...]}.
Score 1.0 means the passage directly answers the question, 0.0 means unrelated.
Score every passage exactly once. No prose, JSON only.`

// newPairScorer is an internal constructor that returns the concrete type.
func newPairScorer(config *ai.Config) (*PairScorer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ScorerHost),
		openai.WithToken("none"),
		openai.WithModel(config.ScorerModel),
	)
	if err != nil {
		return nil, err
	}

	return &PairScorer{
		client: client,
		logger: slog.Default().With("component", "openai-scorer"),
	}, nil
}

// NewPairScorer creates a new pairwise relevance scorer using the provided
// configuration.
//
// Returns ai.PairScorer interface to enforce abstraction.
func NewPairScorer(config *ai.Config) (ai.PairScorer, error) {
	return newPairScorer(config)
}

// ScorePairs scores each passage against the query in a single model call.
func (s *PairScorer) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return []float64{}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\nPassages:\n", query)
	for i, text := range texts {
		if len(text) > passageLimit {
			text = text[:passageLimit]
		}
		fmt.Fprintf(&sb, "[%d] %s\n", i, text)
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(scorerSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(sb.String()),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			s.logger.Error("failed to generate scores", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			s.logger.Debug("no choices returned from model")
			return make([]float64, len(texts)), nil
		}

		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		var parsed scoreResponse
		if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
			lastErr = err
			s.logger.Warn("error parsing scorer response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		scores := make([]float64, len(texts))
		for _, item := range parsed.Scores {
			if item.Index < 0 || item.Index >= len(texts) {
				continue
			}
			score := item.Score
			if score < 0 {
				score = 0
			}
			if score > 1 {
				score = 1
			}
			scores[item.Index] = score
		}
		return scores, nil
	}

	return nil, fmt.Errorf("scorer returned malformed JSON after retries: %w", lastErr)
}
