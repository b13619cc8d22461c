package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"billaudit/internal/analyzer"
	"billaudit/internal/config"
	"billaudit/internal/domain"
	"billaudit/internal/port"
)

// Provider defaults. Groq serves an OpenAI-compatible API.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"

	groqBaseURL     = "https://api.groq.com/openai/v1"
	groqTextModel   = "llama-3.3-70b-versatile"
	groqVisionModel = "meta-llama/llama-4-scout-17b-16e-instruct"
	openAIModel     = "gpt-4o-mini"

	defaultMaxTokens = 1000
)

func init() {
	factory := func(cfg *config.AnalyzerProviderConfig, opts analyzer.Options) (port.DocumentAnalyzer, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s analyzer: api key is required", cfg.Provider)
		}
		return NewAnalyzer(cfg, opts), nil
	}
	analyzer.RegisterProvider(ProviderGroq, factory)
	analyzer.RegisterProvider(ProviderOpenAI, factory)
}

// Analyzer implements port.DocumentAnalyzer with the Chat Completions API.
// Images go to the vision model, extracted document text to the text model.
type Analyzer struct {
	client       *goopenai.Client
	provider     string
	textModel    string
	visionModel  string
	maxTokens    int
	maxRetries   int
	maxTextChars int
}

// NewAnalyzer creates an Analyzer, filling unset models and base URL from the provider defaults.
func NewAnalyzer(cfg *config.AnalyzerProviderConfig, opts analyzer.Options) *Analyzer {
	baseURL, textModel, visionModel := cfg.BaseURL, cfg.TextModel, cfg.VisionModel
	switch cfg.Provider {
	case ProviderGroq:
		baseURL = firstNonEmpty(baseURL, groqBaseURL)
		textModel = firstNonEmpty(textModel, groqTextModel)
		visionModel = firstNonEmpty(visionModel, groqVisionModel)
	default:
		textModel = firstNonEmpty(textModel, openAIModel)
		visionModel = firstNonEmpty(visionModel, openAIModel)
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Analyzer{
		client:       goopenai.NewClientWithConfig(clientCfg),
		provider:     firstNonEmpty(cfg.Provider, ProviderOpenAI),
		textModel:    textModel,
		visionModel:  visionModel,
		maxTokens:    maxTokens,
		maxRetries:   cfg.MaxRetries,
		maxTextChars: opts.MaxTextChars,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*port.AnalyzeOutput, error) {
	req, err := a.buildRequest(input)
	if err != nil {
		return nil, err
	}

	var resp goopenai.ChatCompletionResponse
	for attempt := 0; ; attempt++ {
		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		if status := httpStatus(err); status == http.StatusTooManyRequests {
			return nil, analyzer.NewRateLimitError(a.provider, err, 0)
		} else if status < 500 || attempt >= a.maxRetries {
			return nil, fmt.Errorf("%s chat completion: %w", a.provider, err)
		}
		if err := sleep(ctx, time.Duration(attempt+1)*500*time.Millisecond); err != nil {
			return nil, err
		}
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", a.provider)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, fmt.Errorf("%s returned empty content", a.provider)
	}

	return &port.AnalyzeOutput{Text: text, ModelUsed: req.Model}, nil
}

func (a *Analyzer) buildRequest(input port.AnalyzeInput) (goopenai.ChatCompletionRequest, error) {
	req := goopenai.ChatCompletionRequest{MaxTokens: a.maxTokens}

	switch input.FileType {
	case domain.FileTypeImage:
		if len(input.FileBytes) == 0 {
			return req, errors.New("image analysis requires file bytes")
		}
		dataURI := fmt.Sprintf("data:%s;base64,%s", input.ContentType, base64.StdEncoding.EncodeToString(input.FileBytes))
		req.Model = a.visionModel
		req.Messages = []goopenai.ChatCompletionMessage{{
			Role: goopenai.ChatMessageRoleUser,
			MultiContent: []goopenai.ChatMessagePart{
				{Type: goopenai.ChatMessagePartTypeText, Text: analyzer.ImagePrompt},
				{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{URL: dataURI}},
			},
		}}
	case domain.FileTypeText:
		req.Model = a.textModel
		req.Messages = []goopenai.ChatCompletionMessage{{
			Role:    goopenai.ChatMessageRoleUser,
			Content: analyzer.BuildTextPrompt(input.ExtractedText, a.maxTextChars),
		}}
	default:
		return req, fmt.Errorf("unsupported file type for analysis: %q", input.FileType)
	}
	return req, nil
}

// httpStatus returns the HTTP status carried by a go-openai error, or 0.
func httpStatus(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
