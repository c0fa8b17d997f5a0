package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/specforge/specforge/internal/specerr"
)

func TestOpenRouterBackendInvokeParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected bearer auth header, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi back"}}],"usage":{"prompt_tokens":4,"completion_tokens":2}}`))
	}))
	defer srv.Close()

	b := NewOpenRouterBackend("test-key", srv.URL, "model-x", 0, 0)
	res, err := b.Invoke(context.Background(), Invocation{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Content != "hi back" {
		t.Errorf("expected parsed content, got %q", res.Content)
	}
	if res.TokensInput == nil || *res.TokensInput != 4 {
		t.Errorf("expected tokens_input=4, got %v", res.TokensInput)
	}
}

func TestOpenRouterBackendClassifiesQuotaFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	b := NewOpenRouterBackend("k", srv.URL, "model-x", 0, 0)
	_, err := b.Invoke(context.Background(), Invocation{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	se, ok := err.(*specerr.Error)
	if !ok {
		t.Fatalf("expected *specerr.Error, got %T (%v)", err, err)
	}
	if se.Kind != specerr.KindLLMProviderQuota {
		t.Errorf("expected KindLLMProviderQuota, got %v", se.Kind)
	}
}

func TestOpenRouterBackendMissingAPIKeyIsMisconfiguration(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	_, err := NewOpenRouterBackendFromEnv("", "", "model-x", 0, 0)
	if err == nil {
		t.Fatal("expected a misconfiguration error")
	}
	se, ok := err.(*specerr.Error)
	if !ok {
		t.Fatalf("expected *specerr.Error, got %T", err)
	}
	if se.Kind != specerr.KindLLMMisconfiguration {
		t.Errorf("expected KindLLMMisconfiguration, got %v", se.Kind)
	}
}
