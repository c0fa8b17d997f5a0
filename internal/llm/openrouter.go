package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/specforge/specforge/internal/logging"
	"github.com/specforge/specforge/internal/specerr"
)

const (
	openRouterDefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	openRouterReferer        = "https://specforge.dev"
	openRouterTitle          = "specforge"
)

// OpenRouterBackend talks to OpenRouter's OpenAI-compatible chat
// completions API, grounded on
// original_source/crates/xchecker-llm/src/openrouter_backend.rs.
type OpenRouterBackend struct {
	transport    *httpTransport
	baseURL      string
	apiKey       string
	defaultModel string
	defaults     httpParams
}

// NewOpenRouterBackend builds a backend from an already-resolved API key
// and model.
func NewOpenRouterBackend(apiKey, baseURL, defaultModel string, maxTokens int, temperature float64) *OpenRouterBackend {
	if baseURL == "" {
		baseURL = openRouterDefaultBaseURL
	}
	defaults := defaultHTTPParams()
	if maxTokens > 0 {
		defaults.MaxTokens = maxTokens
	}
	if temperature > 0 {
		defaults.Temperature = temperature
	}
	return &OpenRouterBackend{
		transport:    newHTTPTransport(),
		baseURL:      baseURL,
		apiKey:       apiKey,
		defaultModel: defaultModel,
		defaults:     defaults,
	}
}

// NewOpenRouterBackendFromEnv resolves the API key from apiKeyEnv
// (falling back to OPENROUTER_API_KEY).
func NewOpenRouterBackendFromEnv(apiKeyEnv, baseURL, defaultModel string, maxTokens int, temperature float64) (*OpenRouterBackend, error) {
	if apiKeyEnv == "" {
		apiKeyEnv = "OPENROUTER_API_KEY"
	}
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, specerr.New(specerr.KindLLMMisconfiguration,
			fmt.Sprintf("OpenRouter API key not found in environment variable '%s'", apiKeyEnv)).
			WithSuggestion("set this variable or configure a different api_key_env under [llm.openrouter]")
	}
	if defaultModel == "" {
		return nil, specerr.New(specerr.KindLLMMisconfiguration, "OpenRouter model not specified in configuration").
			WithSuggestion("set [llm.openrouter] model = \"model-name\"")
	}
	return NewOpenRouterBackend(apiKey, baseURL, defaultModel, maxTokens, temperature), nil
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream"`
}

type openRouterChoice struct {
	Message openAIResponseMessage `json:"message"`
}

type openRouterUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type openRouterResponse struct {
	Choices []openRouterChoice `json:"choices"`
	Usage   *openRouterUsage   `json:"usage"`
}

func convertOpenAIMessages(messages []Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(messages))
	for _, m := range messages {
		var role string
		switch m.Role {
		case RoleSystem:
			role = "system"
		case RoleAssistant:
			role = "assistant"
		default:
			role = "user"
		}
		out = append(out, openAIMessage{Role: role, Content: m.Content})
	}
	return out
}

// Invoke implements Backend.
func (b *OpenRouterBackend) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	log := logging.Get(logging.CategoryLLM)
	model, params := resolveParams(inv, b.defaultModel, b.defaults)
	log.Debug("invoking openrouter model=%s max_tokens=%d temperature=%.2f", model, params.MaxTokens, params.Temperature)

	reqBody := openRouterRequest{
		Model:       model,
		Messages:    convertOpenAIMessages(inv.Messages),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		Stream:      false,
	}

	return WithRetry(ctx, DefaultRetryPolicy(), func() (Result, error) {
		req, err := jsonRequest(ctx, "POST", b.baseURL, reqBody)
		if err != nil {
			return Result{}, err
		}
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
		req.Header.Set("HTTP-Referer", openRouterReferer)
		req.Header.Set("X-Title", openRouterTitle)

		resp, err := b.transport.send(req, "openrouter")
		if err != nil {
			return Result{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return Result{}, specerr.Wrap(specerr.KindLLMTransport, "failed to read OpenRouter response", err)
		}
		var parsed openRouterResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return Result{}, specerr.Wrap(specerr.KindLLMTransport, "failed to parse OpenRouter response", err)
		}
		if len(parsed.Choices) == 0 {
			return Result{}, specerr.New(specerr.KindLLMTransport, "OpenRouter response missing choices[0]")
		}
		content := parsed.Choices[0].Message.Content
		if content == "" {
			return Result{}, specerr.New(specerr.KindLLMTransport, "OpenRouter response missing content in choices[0]")
		}

		res := Result{
			Content:    content,
			Provider:   "openrouter",
			ModelUsed:  model,
			TimedOut:   boolPtr(false),
			RunnerUsed: "openrouter-http",
		}
		if parsed.Usage != nil {
			res.TokensInput = intPtr(parsed.Usage.PromptTokens)
			res.TokensOutput = intPtr(parsed.Usage.CompletionTokens)
		}
		return res, nil
	})
}
