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
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion        = "2023-06-01"
)

// AnthropicBackend talks directly to Anthropic's Messages API, grounded
// on original_source/crates/xchecker-llm/src/anthropic_backend.rs.
type AnthropicBackend struct {
	transport    *httpTransport
	baseURL      string
	apiKey       string
	defaultModel string
	defaults     httpParams
}

// NewAnthropicBackend builds a backend from an already-resolved API key
// and model. baseURL empty means the production endpoint.
func NewAnthropicBackend(apiKey, baseURL, defaultModel string, maxTokens int, temperature float64) *AnthropicBackend {
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}
	defaults := defaultHTTPParams()
	if maxTokens > 0 {
		defaults.MaxTokens = maxTokens
	}
	if temperature > 0 {
		defaults.Temperature = temperature
	}
	return &AnthropicBackend{
		transport:    newHTTPTransport(),
		baseURL:      baseURL,
		apiKey:       apiKey,
		defaultModel: defaultModel,
		defaults:     defaults,
	}
}

// NewAnthropicBackendFromEnv resolves the API key from apiKeyEnv (falling
// back to ANTHROPIC_API_KEY), mirroring new_from_config's
// Misconfiguration-on-missing-key behavior.
func NewAnthropicBackendFromEnv(apiKeyEnv, baseURL, defaultModel string, maxTokens int, temperature float64) (*AnthropicBackend, error) {
	if apiKeyEnv == "" {
		apiKeyEnv = "ANTHROPIC_API_KEY"
	}
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, specerr.New(specerr.KindLLMMisconfiguration,
			fmt.Sprintf("Anthropic API key not found in environment variable '%s'", apiKeyEnv)).
			WithSuggestion("set this variable or configure a different api_key_env under [llm.anthropic]")
	}
	if defaultModel == "" {
		return nil, specerr.New(specerr.KindLLMMisconfiguration, "Anthropic model not specified in configuration").
			WithSuggestion("set [llm.anthropic] model = \"model-name\"")
	}
	return NewAnthropicBackend(apiKey, baseURL, defaultModel, maxTokens, temperature), nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string              `json:"model"`
	Messages    []anthropicMessage  `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
	System      string              `json:"system,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   *anthropicUsage         `json:"usage"`
}

// convertAnthropicMessages splits Messages into a single concatenated
// system prompt plus the user/assistant turns, the same split Anthropic's
// API requires (anthropic_backend.rs convert_messages).
func convertAnthropicMessages(messages []Message) (string, []anthropicMessage) {
	var system string
	out := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case RoleUser:
			out = append(out, anthropicMessage{Role: "user", Content: m.Content})
		case RoleAssistant:
			out = append(out, anthropicMessage{Role: "assistant", Content: m.Content})
		}
	}
	return system, out
}

// Invoke implements Backend.
func (b *AnthropicBackend) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	log := logging.Get(logging.CategoryLLM)
	model, params := resolveParams(inv, b.defaultModel, b.defaults)
	log.Debug("invoking anthropic model=%s max_tokens=%d temperature=%.2f", model, params.MaxTokens, params.Temperature)

	system, messages := convertAnthropicMessages(inv.Messages)
	reqBody := anthropicRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		System:      system,
	}

	return WithRetry(ctx, DefaultRetryPolicy(), func() (Result, error) {
		req, err := jsonRequest(ctx, "POST", b.baseURL, reqBody)
		if err != nil {
			return Result{}, err
		}
		req.Header.Set("x-api-key", b.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		resp, err := b.transport.send(req, "anthropic")
		if err != nil {
			return Result{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return Result{}, specerr.Wrap(specerr.KindLLMTransport, "failed to read Anthropic response", err)
		}
		var parsed anthropicResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return Result{}, specerr.Wrap(specerr.KindLLMTransport, "failed to parse Anthropic response", err)
		}

		var content string
		for _, block := range parsed.Content {
			if block.Type == "text" {
				content += block.Text
			}
		}
		if content == "" {
			return Result{}, specerr.New(specerr.KindLLMTransport, "Anthropic response missing text content")
		}

		res := Result{
			Content:    content,
			Provider:   "anthropic",
			ModelUsed:  model,
			TimedOut:   boolPtr(false),
			RunnerUsed: "anthropic-http",
		}
		if parsed.Usage != nil {
			res.TokensInput = intPtr(parsed.Usage.InputTokens)
			res.TokensOutput = intPtr(parsed.Usage.OutputTokens)
		}
		return res, nil
	})
}
