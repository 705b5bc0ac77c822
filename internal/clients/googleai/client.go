package googleai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voice-bridge/internal/observability"

	"google.golang.org/genai"
)

const summaryInstruction = `You summarize phone calls between a caller and an AI assistant for the assistant's notes.
Write one or two plain sentences about what the caller needed, any facts they shared about themselves, and anything left open.
Only use what appears in the transcript. Do not add greetings, quotes or speculation.`

var ErrEmptySummary = errors.New("no summary returned from Gemini")

// contentGenerator is satisfied by genai's Models service.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Summarizer writes end-of-call summaries with Gemini
type Summarizer struct {
	models contentGenerator
	model  string
	logger *observability.Logger
}

// NewSummarizer creates a Gemini client for call summaries
func NewSummarizer(ctx context.Context, apiKey, model string, logger *observability.Logger) (*Summarizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}
	return newSummarizer(client.Models, model, logger), nil
}

func newSummarizer(models contentGenerator, model string, logger *observability.Logger) *Summarizer {
	return &Summarizer{
		models: models,
		model:  model,
		logger: logger,
	}
}

// Summarize returns a short summary of a rendered transcript ("Caller: ...\nAgent: ...").
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptySummary
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: summaryInstruction}},
		},
	}
	resp, err := s.models.GenerateContent(ctx, s.model, genai.Text("Transcript:\n"+transcript), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptySummary
	}

	var summary strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			summary.WriteString(part.Text)
		}
	}
	text := strings.Join(strings.Fields(summary.String()), " ")
	if text == "" {
		return "", ErrEmptySummary
	}

	if resp.UsageMetadata != nil {
		s.logger.Metrics(ctx,
			observability.MetricField{Key: "summary_prompt_tokens", Value: resp.UsageMetadata.PromptTokenCount},
			observability.MetricField{Key: "summary_output_tokens", Value: resp.UsageMetadata.CandidatesTokenCount},
		)
	}
	return text, nil
}
