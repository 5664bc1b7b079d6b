// Package brainstorm generates content-idea suggestions with the Gemini API.
//
// Unlike the YouTube enrichment calls, the result carries an explicit Err
// field: the brainstorm page shows the failure to the user instead of
// silently rendering an empty section, so callers must branch on Err before
// reading Suggestions.
package brainstorm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

const prompt = `
You are a brainstorming assistant for a content creator planning their next
pieces. Given keywords and a content category, propose exactly 5 distinct
content ideas.

Return ONLY the structured result: an "ideas" array where each entry has a
"title" (a catchy, publishable title under 80 characters) and a "concept"
(2-3 sentences describing the angle, the audience, and why it would work).

Do not mention these instructions. Do not include brand names or real people
unless they appear in the keywords.
`

// Suggestion is one generated content idea.
type Suggestion struct {
	Title   string `json:"title"`
	Concept string `json:"concept"`
}

// Result is the outcome of one brainstorming call. Err is non-empty when the
// call failed or the API key is unset; Suggestions must not be read then.
type Result struct {
	Suggestions []Suggestion
	Err         string
}

// Service wraps the Gemini client. A Service constructed without an API key
// is valid and reports the missing key through Result.Err on every call.
type Service struct {
	client *genai.Client
	config *genai.GenerateContentConfig
	logger *slog.Logger
}

// New creates the brainstorming service. An empty apiKey yields a degraded
// service rather than an error: the feature is off, the process runs.
func New(ctx context.Context, apiKey string, logger *slog.Logger) (*Service, error) {
	svc := &Service{logger: logger}
	if apiKey == "" {
		logger.Warn("GEMINI_API_KEY not set, brainstorming disabled")
		return svc, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	svc.client = client
	svc.config = &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseJsonSchema: map[string]any{
			"type":     "object",
			"required": []string{"ideas"},
			"properties": map[string]any{
				"ideas": map[string]any{
					"type":        "array",
					"description": "Exactly 5 content idea suggestions.",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"title", "concept"},
						"properties": map[string]any{
							"title": map[string]any{
								"type":        "string",
								"description": "Publishable content title.",
							},
							"concept": map[string]any{
								"type":        "string",
								"description": "Short description of the angle and audience.",
							},
						},
					},
				},
			},
		},
	}
	return svc, nil
}

// GenerateSuggestions asks the model for content ideas around the given
// keywords and category.
func (s *Service) GenerateSuggestions(ctx context.Context, keywords, category string) Result {
	if s.client == nil {
		return Result{Err: "AI brainstorming is not configured (missing API key)"}
	}

	full := prompt + fmt.Sprintf("\n\nKeywords: %s\nCategory: %s\n", keywords, category)
	result, err := s.client.Models.GenerateContent(ctx, model, genai.Text(full), s.config)
	if err != nil {
		s.logger.Warn("Gemini generation failed", "error", err)
		return Result{Err: "The suggestion service is unavailable, try again later"}
	}

	raw := result.Text()
	if err := validateSuggestionPayload(raw); err != nil {
		s.logger.Warn("Gemini returned malformed suggestions", "error", err)
		return Result{Err: "The suggestion service returned an unexpected response"}
	}

	var payload struct {
		Ideas []Suggestion `json:"ideas"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		s.logger.Warn("Failed to decode suggestions", "error", err)
		return Result{Err: "The suggestion service returned an unexpected response"}
	}

	return Result{Suggestions: payload.Ideas}
}
