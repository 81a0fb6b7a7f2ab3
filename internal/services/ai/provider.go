// -----------------------------------------------------------------------
// Provider factory - routes generation requests to Gemini or Claude.
// One upstream call per request: rate limiting happens before the call,
// retry policy belongs to callers, never to this layer.
// -----------------------------------------------------------------------

package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// GenerateRequest is a provider-agnostic content generation request.
// Optional fields and their defaults:
//   - Model: empty uses the configured default for the detected provider
//   - Temperature: nil uses the provider's configured default
//   - MaxOutputTokens: 0 uses the provider's configured default
//   - ThinkingBudget: 0 leaves thinking at the provider default (Gemini only)
//   - OutputSchema: non-nil enforces strict JSON output (Gemini only)
//   - EnableWebSearch: enables Google Search grounding (Gemini only)
type GenerateRequest struct {
	Messages          []models.Message
	Model             string
	Temperature       *float32
	MaxOutputTokens   int
	SystemInstruction string
	ThinkingBudget    int
	OutputSchema      *genai.Schema
	EnableWebSearch   bool
}

// GenerateResult is a provider-agnostic content generation response,
// carrying the raw text, token accounting and any grounding citations.
type GenerateResult struct {
	Text      string
	Provider  ProviderType
	Model     string
	Usage     models.Usage
	Citations []models.Citation
}

// Generator is the upstream generation contract consumed by the research
// facade. Tests substitute a stub implementation.
type Generator interface {
	GenerateContent(ctx context.Context, request *GenerateRequest) (*GenerateResult, error)
}

// ProviderFactory creates and manages AI provider clients.
type ProviderFactory struct {
	geminiConfig *common.GeminiConfig
	claudeConfig *common.ClaudeConfig
	llmConfig    *common.LLMConfig
	kvStorage    interfaces.KeyValueStorage
	logger       arbor.ILogger

	// clientMu guards the lazily created clients below. The factory is
	// shared by concurrent handlers and the refresh fan-out, so first use
	// can race without it.
	clientMu     sync.Mutex
	geminiClient *genai.Client
	claudeClient anthropic.Client
	claudeAPIKey string

	geminiLimiter *rate.Limiter
	claudeLimiter *rate.Limiter
	geminiTimeout time.Duration
	claudeTimeout time.Duration
}

// NewProviderFactory creates a new provider factory. Clients are created
// lazily on first use so the server can start without credentials.
func NewProviderFactory(
	geminiConfig *common.GeminiConfig,
	claudeConfig *common.ClaudeConfig,
	llmConfig *common.LLMConfig,
	kvStorage interfaces.KeyValueStorage,
	logger arbor.ILogger,
) *ProviderFactory {
	return &ProviderFactory{
		geminiConfig:  geminiConfig,
		claudeConfig:  claudeConfig,
		llmConfig:     llmConfig,
		kvStorage:     kvStorage,
		logger:        logger,
		geminiLimiter: limiterFromInterval(geminiConfig.RateLimit),
		claudeLimiter: limiterFromInterval(claudeConfig.RateLimit),
		geminiTimeout: durationOr(geminiConfig.Timeout, 2*time.Minute),
		claudeTimeout: durationOr(claudeConfig.Timeout, 2*time.Minute),
	}
}

func limiterFromInterval(interval string) *rate.Limiter {
	d, err := time.ParseDuration(interval)
	if err != nil || d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-haiku-3-5-20241022" -> Claude
// - "claude/claude-haiku-3-5-20241022" -> Claude (with prefix)
// - "gemini-3-flash-preview" -> Gemini
// - Empty string -> uses default provider from config
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	if model == "" {
		return ProviderType(f.llmConfig.DefaultProvider)
	}

	model = strings.ToLower(model)

	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini/") || strings.HasPrefix(model, "google/") {
		return ProviderGemini
	}

	if strings.HasPrefix(model, "claude-") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini-") {
		return ProviderGemini
	}

	return ProviderType(f.llmConfig.DefaultProvider)
}

// NormalizeModel removes a provider prefix from a model name if present.
func (f *ProviderFactory) NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// DefaultModel returns the configured default model for a provider.
func (f *ProviderFactory) DefaultModel(provider ProviderType) string {
	switch provider {
	case ProviderClaude:
		return f.claudeConfig.Model
	default:
		return f.geminiConfig.Model
	}
}

// getGeminiClient returns a Gemini client, creating one on first use. A
// failed creation is not cached, so credentials added later (via the KV
// store) are picked up on the next call.
func (f *ProviderFactory) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	f.clientMu.Lock()
	defer f.clientMu.Unlock()

	if f.geminiClient != nil {
		return f.geminiClient, nil
	}

	apiKey, err := common.ResolveAPIKey(ctx, f.kvStorage, "gemini_api_key", f.geminiConfig.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Gemini API key: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	f.geminiClient = client
	return client, nil
}

// getClaudeClient returns a Claude client, creating one on first use.
func (f *ProviderFactory) getClaudeClient(ctx context.Context) (anthropic.Client, error) {
	f.clientMu.Lock()
	defer f.clientMu.Unlock()

	if f.claudeAPIKey != "" {
		return f.claudeClient, nil
	}

	apiKey, err := common.ResolveAPIKey(ctx, f.kvStorage, "anthropic_api_key", f.claudeConfig.APIKey)
	if err != nil {
		return anthropic.Client{}, fmt.Errorf("failed to resolve Anthropic API key: %w", err)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	f.claudeClient = client
	f.claudeAPIKey = apiKey
	return client, nil
}

// GenerateContent generates content using the provider selected by the
// request's model string. Exactly one upstream call is made per invocation;
// callers that want retry re-invoke at their own layer.
func (f *ProviderFactory) GenerateContent(ctx context.Context, request *GenerateRequest) (*GenerateResult, error) {
	provider := f.DetectProvider(request.Model)
	model := f.NormalizeModel(request.Model)

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("message_count", len(request.Messages)).
		Bool("web_search", request.EnableWebSearch).
		Msg("Generating content with provider")

	switch provider {
	case ProviderClaude:
		return f.generateWithClaude(ctx, request, model)
	default:
		return f.generateWithGemini(ctx, request, model)
	}
}

// generateWithGemini generates content using the Gemini API.
func (f *ProviderFactory) generateWithGemini(ctx context.Context, request *GenerateRequest, model string) (*GenerateResult, error) {
	client, err := f.getGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = f.geminiConfig.Model
	}

	geminiContents, systemText, err := convertMessagesToGemini(request.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}
	if request.SystemInstruction != "" {
		systemText = request.SystemInstruction
	}

	temp := f.geminiConfig.Temperature
	if request.Temperature != nil {
		temp = *request.Temperature
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}
	if request.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxOutputTokens)
	}

	budget := request.ThinkingBudget
	if budget == 0 {
		budget = f.geminiConfig.ThinkingBudget
	}
	if budget > 0 {
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(budget)),
		}
	}

	// Schema enforcement and search grounding are mutually exclusive on
	// the Gemini API; search wins when both are requested.
	if request.EnableWebSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else if request.OutputSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = request.OutputSchema
	}

	if err := f.geminiLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, f.geminiTimeout)
	defer cancel()

	resp, err := client.Models.GenerateContent(callCtx, model, geminiContents, config)
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini API")
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty text in Gemini response")
	}

	result := &GenerateResult{
		Text:     text,
		Provider: ProviderGemini,
		Model:    model,
	}

	if resp.UsageMetadata != nil {
		result.Usage = models.Usage{
			PromptTokens:    int(resp.UsageMetadata.PromptTokenCount),
			CandidateTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:     int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web != nil {
				result.Citations = append(result.Citations, models.Citation{
					URI:   chunk.Web.URI,
					Title: chunk.Web.Title,
				})
			}
		}
	}

	return result, nil
}

// generateWithClaude generates content using the Claude API.
func (f *ProviderFactory) generateWithClaude(ctx context.Context, request *GenerateRequest, model string) (*GenerateResult, error) {
	client, err := f.getClaudeClient(ctx)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = f.claudeConfig.Model
	}

	claudeMessages, systemText, err := convertMessagesToClaude(request.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}
	if request.SystemInstruction != "" {
		systemText = request.SystemInstruction
	}

	maxTokens := request.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = f.claudeConfig.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}

	temp := f.claudeConfig.Temperature
	if request.Temperature != nil {
		temp = *request.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}

	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	if err := f.claudeLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, f.claudeTimeout)
	defer cancel()

	resp, err := client.Messages.New(callCtx, params)
	if err != nil {
		return nil, fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from Claude API")
	}

	return &GenerateResult{
		Text:     text.String(),
		Provider: ProviderClaude,
		Model:    model,
		Usage: models.Usage{
			PromptTokens:    int(resp.Usage.InputTokens),
			CandidateTokens: int(resp.Usage.OutputTokens),
			TotalTokens:     int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// Close releases provider clients.
func (f *ProviderFactory) Close() error {
	f.clientMu.Lock()
	defer f.clientMu.Unlock()

	f.geminiClient = nil
	f.claudeClient = anthropic.Client{}
	f.claudeAPIKey = ""
	return nil
}

// convertMessagesToGemini converts []models.Message to Gemini Content
// format, lifting the first system message out for SystemInstruction.
func convertMessagesToGemini(messages []models.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		var geminiRole string
		switch msg.Role {
		case "assistant":
			geminiRole = genai.RoleModel
		default:
			geminiRole = genai.RoleUser
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText, nil
}

// convertMessagesToClaude converts []models.Message to Claude MessageParam
// format, lifting the first system message out for the System parameter.
func convertMessagesToClaude(messages []models.Message) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		switch msg.Role {
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	return claudeMessages, systemText, nil
}
