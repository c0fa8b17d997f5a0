package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/specforge/specforge/internal/specerr"
)

// httpParams mirrors the Rust HttpParams shared by both HTTP backends:
// per-invocation overridable request shaping, independent of provider
// wire format.
type httpParams struct {
	MaxTokens   int
	Temperature float64
}

func defaultHTTPParams() httpParams {
	return httpParams{MaxTokens: 2048, Temperature: 0.2}
}

// resolveParams applies the original's precedence: inv.Model overrides
// the backend default; inv.Metadata["max_tokens"]/["temperature"]
// override the backend's default params.
func resolveParams(inv Invocation, defaultModel string, defaults httpParams) (string, httpParams) {
	model := defaultModel
	if inv.Model != "" {
		model = inv.Model
	}

	params := defaults
	if v, ok := inv.Metadata["max_tokens"]; ok {
		if n, ok := toInt(v); ok {
			params.MaxTokens = n
		}
	}
	if v, ok := inv.Metadata["temperature"]; ok {
		if f, ok := toFloat(v); ok {
			params.Temperature = f
		}
	}
	return model, params
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// httpTransport is the shared client every HTTP backend sends requests
// through, grounded on the original's HttpClient held behind an Arc by
// both AnthropicBackend and OpenRouterBackend.
type httpTransport struct {
	client *http.Client
}

func newHTTPTransport() *httpTransport {
	return &httpTransport{client: &http.Client{}}
}

// send executes one HTTP round trip and classifies a non-2xx response
// into the LLM error taxonomy (spec.md §7 "LLMIntegration
// (transport/auth/quota/outage/timeout/budget)"). On success the caller
// owns resp.Body and must close it.
func (t *httpTransport) send(req *http.Request, provider string) (*http.Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, specerr.Wrap(specerr.KindPhaseTimeout, fmt.Sprintf("%s invocation timed out", provider), err)
		}
		return nil, specerr.Wrap(specerr.KindLLMTransport, fmt.Sprintf("%s: transport error", provider), err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return nil, classifyStatus(resp.StatusCode, provider, string(body))
}

// classifyStatus maps an HTTP status code to the LlmError taxonomy
// (original_source/crates/xchecker-utils/src/error.rs LlmError variants
// ProviderAuth/ProviderQuota/ProviderOutage/Transport).
func classifyStatus(code int, provider, body string) error {
	status := strconv.Itoa(code)
	switch {
	case code == 401 || code == 403:
		return specerr.New(specerr.KindLLMProviderAuth, fmt.Sprintf("%s authentication failed", provider)).
			WithContext("status", status).
			WithSuggestion("check that the required API key environment variable is set").
			WithSuggestion("verify the API key is valid and not expired")
	case code == 429:
		return specerr.New(specerr.KindLLMProviderQuota, fmt.Sprintf("%s quota exceeded", provider)).
			WithContext("status", status).
			WithSuggestion("wait a few minutes and try again").
			WithSuggestion("check your provider's rate limits and usage dashboard")
	case code >= 500:
		return specerr.New(specerr.KindLLMProviderOutage, fmt.Sprintf("%s service outage", provider)).
			WithContext("status", status).
			WithSuggestion("wait a few minutes and try again").
			WithSuggestion("check the provider's status page for known issues")
	default:
		return specerr.New(specerr.KindLLMTransport, fmt.Sprintf("%s returned unexpected status %d: %s", provider, code, body)).
			WithContext("status", status)
	}
}

func jsonRequest(ctx context.Context, method, url string, v any) (*http.Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, specerr.Wrap(specerr.KindLLMMisconfiguration, "failed to encode request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return nil, specerr.Wrap(specerr.KindLLMMisconfiguration, "failed to build request", err)
	}
	req.Header.Set("content-type", "application/json")
	return req, nil
}
