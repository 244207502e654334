package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/notelens/notelens/internal/domain"
	"github.com/notelens/notelens/internal/ports"
)

const (
	// QwenDefaultModel is the default open-weight vision model.
	QwenDefaultModel = "qwen2.5vl:7b"

	// QwenDefaultAPIModel is the hosted variant used in API mode.
	QwenDefaultAPIModel = "qwen-vl-max"

	defaultOllamaHost = "http://localhost:11434"
)

// QwenMode selects where inference for the open-weight backend runs.
type QwenMode string

const (
	// QwenModeLocal runs inference against a local Ollama server.
	QwenModeLocal QwenMode = "local"
	// QwenModeAPI runs inference against a hosted OpenAI-compatible
	// endpoint.
	QwenModeAPI QwenMode = "api"
)

// QwenAnalyzer analyzes videos with an open-weight Qwen vision model. It is
// frame-based like the other non-native backends, but inference can run
// either locally through Ollama or remotely through an OpenAI-compatible
// API, chosen at construction.
type QwenAnalyzer struct {
	model      string
	mode       QwenMode
	host       string
	apiKey     string
	baseURL    string
	frames     *FrameExtractor
	frameCount int
	httpClient *http.Client
	client     *lazy[*openai.Client]
	logger     zerolog.Logger
}

// QwenConfig configures the open-weight backend.
type QwenConfig struct {
	// Model overrides the default model name for the chosen mode.
	Model string
	// Mode selects local or hosted inference. Defaults to local.
	Mode QwenMode
	// Host is the Ollama server address for local mode.
	Host string
	// APIKey authenticates hosted inference in API mode.
	APIKey string
	// BaseURL is the OpenAI-compatible endpoint for API mode.
	BaseURL string
}

// NewQwenAnalyzer creates an open-weight analyzer in the configured mode.
func NewQwenAnalyzer(cfg QwenConfig, frames *FrameExtractor, logger zerolog.Logger) *QwenAnalyzer {
	mode := cfg.Mode
	if mode == "" {
		mode = QwenModeLocal
	}
	model := cfg.Model
	if model == "" {
		if mode == QwenModeAPI {
			model = QwenDefaultAPIModel
		} else {
			model = QwenDefaultModel
		}
	}
	host := cfg.Host
	if host == "" {
		host = defaultOllamaHost
	}

	q := &QwenAnalyzer{
		model:      model,
		mode:       mode,
		host:       host,
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		frames:     frames,
		frameCount: DefaultFrameCount,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logger.With().Str("backend", "qwen").Str("model", model).Str("mode", string(mode)).Logger(),
	}
	q.client = newLazy(func() (*openai.Client, error) {
		if q.baseURL == "" {
			return nil, fmt.Errorf("qwen api mode requires a base URL")
		}
		clientConfig := openai.DefaultConfig(q.apiKey)
		clientConfig.BaseURL = q.baseURL
		return openai.NewClientWithConfig(clientConfig), nil
	})
	return q
}

// Name returns the model identifier used in results and reports.
func (q *QwenAnalyzer) Name() string { return q.model }

// IsAvailable probes the Ollama server in local mode and checks credentials
// in API mode. Both modes need the ffmpeg tooling for frame extraction.
func (q *QwenAnalyzer) IsAvailable(ctx context.Context) bool {
	if !q.frames.Available() {
		return false
	}
	if q.mode == QwenModeAPI {
		return q.apiKey != "" && q.baseURL != ""
	}

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, q.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// AnalyzeVideo extracts frames and runs inference in the configured mode.
func (q *QwenAnalyzer) AnalyzeVideo(ctx context.Context, req ports.AnalysisRequest) domain.AnalysisResult {
	frames, err := q.frames.ExtractFrames(ctx, req.VideoPath, q.frameCount)
	if err != nil {
		return domain.NewAnalysisFailure(q.model, ports.NewBackendError(q.model, "frames", err))
	}

	var raw string
	if q.mode == QwenModeAPI {
		raw, err = q.generateAPI(ctx, frames, buildPrompt(req))
	} else {
		raw, err = q.generateLocal(ctx, frames, buildPrompt(req))
	}
	if err != nil {
		return domain.NewAnalysisFailure(q.model, ports.NewBackendError(q.model, "generate", err))
	}

	assessment, err := ParseAssessment(raw)
	if err != nil {
		return domain.NewAnalysisFailureRaw(q.model, err, raw)
	}
	success, err := domain.NewAnalysisSuccess(q.model, assessment, raw)
	if err != nil {
		return domain.NewAnalysisFailureRaw(q.model, err, raw)
	}
	return success
}

// ollamaGenerateRequest is the subset of the Ollama generate API the
// analyzer uses.
type ollamaGenerateRequest struct {
	Model  string         `json:"model"`
	Prompt string         `json:"prompt"`
	System string         `json:"system"`
	Images []string       `json:"images"`
	Format string         `json:"format,omitempty"`
	Stream bool           `json:"stream"`
	Opts   map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (q *QwenAnalyzer) generateLocal(ctx context.Context, frames [][]byte, prompt string) (string, error) {
	images := make([]string, len(frames))
	for i, frame := range frames {
		images[i] = base64.StdEncoding.EncodeToString(frame)
	}

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  q.model,
		Prompt: prompt,
		System: systemPrompt,
		Images: images,
		Format: "json",
		Stream: false,
		Opts:   map[string]any{"temperature": 0},
	})
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, q.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := q.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: ollama http %d: %s", ports.ErrServiceUnavailable, resp.StatusCode, payload)
	}

	var decoded ollamaGenerateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrMalformedOutput, err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("ollama: %s", decoded.Error)
	}
	return decoded.Response, nil
}

func (q *QwenAnalyzer) generateAPI(ctx context.Context, frames [][]byte, prompt string) (string, error) {
	client, err := q.client.get()
	if err != nil {
		return "", err
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       q.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: frameParts(frames, prompt)},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ports.ErrMalformedOutput)
	}
	return resp.Choices[0].Message.Content, nil
}
