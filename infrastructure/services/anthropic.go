package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/ports"
)

const (
	// AnthropicDefaultModel is the default Claude model for frame-based
	// analysis.
	AnthropicDefaultModel = "claude-3-5-sonnet-latest"

	anthropicMaxTokens = 2048
)

// AnthropicAnalyzer analyzes videos by sending locally extracted frames to
// the Claude messages API as base64 image blocks.
type AnthropicAnalyzer struct {
	model      string
	apiKey     string
	frames     *FrameExtractor
	frameCount int
	client     *lazy[anthropic.Client]
	logger     zerolog.Logger
}

// NewAnthropicAnalyzer creates a frame-based analyzer backed by Claude.
func NewAnthropicAnalyzer(apiKey, model string, frames *FrameExtractor, logger zerolog.Logger) *AnthropicAnalyzer {
	if model == "" {
		model = AnthropicDefaultModel
	}
	a := &AnthropicAnalyzer{
		model:      model,
		apiKey:     apiKey,
		frames:     frames,
		frameCount: DefaultFrameCount,
		logger:     logger.With().Str("backend", "anthropic").Str("model", model).Logger(),
	}
	a.client = newLazy(func() (anthropic.Client, error) {
		return anthropic.NewClient(option.WithAPIKey(a.apiKey)), nil
	})
	return a
}

// Name returns the model identifier used in results and reports.
func (a *AnthropicAnalyzer) Name() string { return a.model }

// IsAvailable requires both an API key and the local ffmpeg tooling.
func (a *AnthropicAnalyzer) IsAvailable(ctx context.Context) bool {
	return a.apiKey != "" && a.frames.Available()
}

// AnalyzeVideo extracts frames from the video and requests a structured
// assessment over them.
func (a *AnthropicAnalyzer) AnalyzeVideo(ctx context.Context, req ports.AnalysisRequest) domain.AnalysisResult {
	frames, err := a.frames.ExtractFrames(ctx, req.VideoPath, a.frameCount)
	if err != nil {
		return domain.NewAnalysisFailure(a.model, ports.NewBackendError(a.model, "frames", err))
	}

	client, err := a.client.get()
	if err != nil {
		return domain.NewAnalysisFailure(a.model, err)
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(frames)+1)
	for _, frame := range frames {
		blocks = append(blocks, anthropic.NewImageBlockBase64(
			"image/jpeg", base64.StdEncoding.EncodeToString(frame)))
	}
	blocks = append(blocks, anthropic.NewTextBlock(buildPrompt(req)))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		return domain.NewAnalysisFailure(a.model,
			ports.NewBackendError(a.model, "generate", classifyAnthropicError(err)))
	}

	var raw strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			raw.WriteString(text.Text)
		}
	}
	if raw.Len() == 0 {
		return domain.NewAnalysisFailure(a.model,
			ports.NewBackendError(a.model, "generate", fmt.Errorf("%w: empty response", ports.ErrMalformedOutput)))
	}

	assessment, err := ParseAssessment(raw.String())
	if err != nil {
		return domain.NewAnalysisFailureRaw(a.model, err, raw.String())
	}
	success, err := domain.NewAnalysisSuccess(a.model, assessment, raw.String())
	if err != nil {
		return domain.NewAnalysisFailureRaw(a.model, err, raw.String())
	}
	return success
}

// classifyAnthropicError maps API errors onto the backend error taxonomy.
func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 || apiErr.StatusCode >= 500 {
			return fmt.Errorf("%w: http %d: %v", ports.ErrServiceUnavailable, apiErr.StatusCode, err)
		}
		return fmt.Errorf("http %d: %w", apiErr.StatusCode, err)
	}
	return err
}
