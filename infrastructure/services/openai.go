package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/ports"
)

// OpenAIDefaultModel is the default OpenAI model for frame-based analysis.
const OpenAIDefaultModel = "gpt-4o"

// OpenAIAnalyzer analyzes videos through a frame-sampling pipeline: evenly
// spaced frames are extracted locally and sent as images alongside the post
// text in a single vision request.
type OpenAIAnalyzer struct {
	model      string
	apiKey     string
	frames     *FrameExtractor
	frameCount int
	client     *lazy[*openai.Client]
	logger     zerolog.Logger
}

// NewOpenAIAnalyzer creates a frame-based analyzer backed by the OpenAI
// chat completions API.
func NewOpenAIAnalyzer(apiKey, model string, frames *FrameExtractor, logger zerolog.Logger) *OpenAIAnalyzer {
	if model == "" {
		model = OpenAIDefaultModel
	}
	a := &OpenAIAnalyzer{
		model:      model,
		apiKey:     apiKey,
		frames:     frames,
		frameCount: DefaultFrameCount,
		logger:     logger.With().Str("backend", "openai").Str("model", model).Logger(),
	}
	a.client = newLazy(func() (*openai.Client, error) {
		return openai.NewClient(a.apiKey), nil
	})
	return a
}

// Name returns the model identifier used in results and reports.
func (a *OpenAIAnalyzer) Name() string { return a.model }

// IsAvailable requires both an API key and the local ffmpeg tooling, since
// frame extraction happens before any network call.
func (a *OpenAIAnalyzer) IsAvailable(ctx context.Context) bool {
	return a.apiKey != "" && a.frames.Available()
}

// AnalyzeVideo extracts frames from the video and requests a structured
// assessment over them.
func (a *OpenAIAnalyzer) AnalyzeVideo(ctx context.Context, req ports.AnalysisRequest) domain.AnalysisResult {
	frames, err := a.frames.ExtractFrames(ctx, req.VideoPath, a.frameCount)
	if err != nil {
		return domain.NewAnalysisFailure(a.model, ports.NewBackendError(a.model, "frames", err))
	}

	client, err := a.client.get()
	if err != nil {
		return domain.NewAnalysisFailure(a.model, err)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: frameParts(frames, buildPrompt(req))},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return domain.NewAnalysisFailure(a.model,
			ports.NewBackendError(a.model, "generate", classifyOpenAIError(err)))
	}
	if len(resp.Choices) == 0 {
		return domain.NewAnalysisFailure(a.model,
			ports.NewBackendError(a.model, "generate", fmt.Errorf("%w: no choices returned", ports.ErrMalformedOutput)))
	}

	raw := resp.Choices[0].Message.Content
	assessment, err := ParseAssessment(raw)
	if err != nil {
		return domain.NewAnalysisFailureRaw(a.model, err, raw)
	}
	success, err := domain.NewAnalysisSuccess(a.model, assessment, raw)
	if err != nil {
		return domain.NewAnalysisFailureRaw(a.model, err, raw)
	}
	return success
}

// frameParts builds a multi-part user message from JPEG frames followed by
// the analysis prompt.
func frameParts(frames [][]byte, prompt string) []openai.ChatMessagePart {
	parts := make([]openai.ChatMessagePart, 0, len(frames)+1)
	for _, frame := range frames {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frame),
				Detail: openai.ImageURLDetailLow,
			},
		})
	}
	return append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: prompt,
	})
}

// classifyOpenAIError maps API errors onto the backend error taxonomy.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: http %d: %v", ports.ErrServiceUnavailable, apiErr.HTTPStatusCode, err)
		}
		return fmt.Errorf("http %d: %w", apiErr.HTTPStatusCode, err)
	}
	return err
}
