package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/ports"
)

// GeminiDefaultModel is the default Gemini model for native video analysis.
const GeminiDefaultModel = "gemini-2.0-flash"

// remoteVideoAPI is the slice of the Gemini API the analyzer depends on.
// Tests substitute a fake so upload, polling, and cleanup behavior can be
// exercised without a live client.
type remoteVideoAPI interface {
	Upload(ctx context.Context, path string) (*genai.File, error)
	State(ctx context.Context, name string) (*genai.File, error)
	Generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error)
	Remove(ctx context.Context, name string) error
}

// genaiAPI adapts *genai.Client to remoteVideoAPI.
type genaiAPI struct{ client *genai.Client }

func (a *genaiAPI) Upload(ctx context.Context, path string) (*genai.File, error) {
	return a.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType: videoMIMEType(path),
	})
}

func (a *genaiAPI) State(ctx context.Context, name string) (*genai.File, error) {
	return a.client.Files.Get(ctx, name, nil)
}

func (a *genaiAPI) Generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (a *genaiAPI) Remove(ctx context.Context, name string) error {
	_, err := a.client.Files.Delete(ctx, name, nil)
	return err
}

// GeminiAnalyzer sends videos to the Gemini API natively: the file is
// uploaded, the service polls until processing finishes, and the full video
// is attached to a single structured generation request. Uploaded files are
// deleted once the request completes, whatever the outcome.
type GeminiAnalyzer struct {
	model  string
	apiKey string
	api    *lazy[remoteVideoAPI]
	poll   PollConfig
	logger zerolog.Logger
}

// NewGeminiAnalyzer creates a Gemini analyzer. The client is built lazily on
// first use so construction never fails; a bad key surfaces as an analysis
// failure instead.
func NewGeminiAnalyzer(apiKey, model string, logger zerolog.Logger) *GeminiAnalyzer {
	if model == "" {
		model = GeminiDefaultModel
	}
	g := &GeminiAnalyzer{
		model:  model,
		apiKey: apiKey,
		poll:   DefaultPollConfig(),
		logger: logger.With().Str("backend", "gemini").Str("model", model).Logger(),
	}
	g.api = newLazy(func() (remoteVideoAPI, error) {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return &genaiAPI{client: client}, nil
	})
	return g
}

// Name returns the model identifier used in results and reports.
func (g *GeminiAnalyzer) Name() string { return g.model }

// IsAvailable reports whether the backend is configured for use.
func (g *GeminiAnalyzer) IsAvailable(ctx context.Context) bool {
	return g.apiKey != ""
}

// AnalyzeVideo uploads the video, waits for remote processing, and requests
// a structured assessment grounded in the full clip.
func (g *GeminiAnalyzer) AnalyzeVideo(ctx context.Context, req ports.AnalysisRequest) domain.AnalysisResult {
	api, err := g.api.get()
	if err != nil {
		return domain.NewAnalysisFailure(g.model, err)
	}

	file, err := api.Upload(ctx, req.VideoPath)
	if err != nil {
		return domain.NewAnalysisFailure(g.model,
			ports.NewBackendError(g.model, "upload", g.classify(err, ports.ErrUploadFailed)))
	}
	// The uploaded file is removed no matter how analysis ends. Orphaned
	// uploads count against the account's file quota.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := api.Remove(cleanupCtx, file.Name); err != nil {
			g.logger.Warn().Err(err).Str("file", file.Name).Msg("failed to delete uploaded video")
		}
	}()

	if err := g.waitForProcessing(ctx, api, file.Name); err != nil {
		return domain.NewAnalysisFailure(g.model, ports.NewBackendError(g.model, "process", err))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(file.URI, file.MIMEType),
			genai.NewPartFromText(buildPrompt(req)),
		}, genai.RoleUser),
	}

	raw, err := api.Generate(ctx, g.model, contents, g.generationConfig())
	if err != nil {
		return domain.NewAnalysisFailure(g.model,
			ports.NewBackendError(g.model, "generate", g.classify(err, ports.ErrServiceUnavailable)))
	}

	assessment, err := ParseAssessment(raw)
	if err != nil {
		return domain.NewAnalysisFailureRaw(g.model, err, raw)
	}
	success, err := domain.NewAnalysisSuccess(g.model, assessment, raw)
	if err != nil {
		return domain.NewAnalysisFailureRaw(g.model, err, raw)
	}
	return success
}

// waitForProcessing polls the uploaded file until it becomes active. A file
// that stays in processing past the poll budget is reported as a processing
// timeout; a failed file aborts immediately.
func (g *GeminiAnalyzer) waitForProcessing(ctx context.Context, api remoteVideoAPI, name string) error {
	err := PollUntil(ctx, g.poll, func(ctx context.Context) (bool, error) {
		file, err := api.State(ctx, name)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ports.ErrProcessingFailed, err)
		}
		switch file.State {
		case genai.FileStateActive:
			return true, nil
		case genai.FileStateFailed:
			return false, fmt.Errorf("%w: remote processing failed", ports.ErrProcessingFailed)
		default:
			return false, nil
		}
	})
	if errors.Is(err, ErrPollTimeout) {
		return fmt.Errorf("%w: %v", ports.ErrProcessingTimeout, err)
	}
	return err
}

func (g *GeminiAnalyzer) generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(0)),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiAssessmentSchema(),
	}
}

// geminiAssessmentSchema mirrors the structured output contract so the API
// constrains its decoding to valid assessments.
func geminiAssessmentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"predicted_label": {Type: genai.TypeString},
			"is_misleading":   {Type: genai.TypeBoolean},
			"summary":         {Type: genai.TypeString},
			"sources": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"misleading_tags": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"confidence": {
				Type: genai.TypeString,
				Enum: []string{"high", "medium", "low"},
			},
		},
		Required: []string{"predicted_label", "is_misleading", "summary", "confidence"},
	}
}

// classify maps transport errors onto the backend error taxonomy, keeping
// the HTTP status visible for retryable conditions.
func (g *GeminiAnalyzer) classify(err error, fallback error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429 || apiErr.Code >= 500:
			return fmt.Errorf("%w: http %d: %v", ports.ErrServiceUnavailable, apiErr.Code, err)
		default:
			return fmt.Errorf("http %d: %w", apiErr.Code, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", fallback, err)
}

func videoMIMEType(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t
	}
	return "video/mp4"
}
