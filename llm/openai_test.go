package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitrise-io/pr-review-bot/common"
)

func noRetry() common.RetryConfig {
	config := common.DefaultRetryConfig()
	config.RetryMax = 0
	return config
}

func newTestOpenRouter(t *testing.T, handler http.HandlerFunc) *OpenAIModel {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	model, err := NewOpenAI(common.ProviderOpenRouter, "test-key",
		WithBaseURL(server.URL),
		WithRetry(noRetry()),
	)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return model
}

func TestOpenAIPrompt_ReturnsFirstChoice(t *testing.T) {
	model := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", r.Header.Get("Authorization"))
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"LGTM"}}]}`)
	})

	resp := model.Prompt(context.Background(), Request{SystemPrompt: "system", UserPrompt: "user"})
	if resp.Error != nil {
		t.Fatalf("Expected no error, got %v", resp.Error)
	}
	if resp.Content != "LGTM" {
		t.Errorf("Expected 'LGTM', got %q", resp.Content)
	}
}

func TestOpenAIPrompt_SendsTwoMessageConversation(t *testing.T) {
	model := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}

		if body.Model != common.DefaultModel {
			t.Errorf("Expected model %s, got %s", common.DefaultModel, body.Model)
		}
		if len(body.Messages) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(body.Messages))
		}
		if body.Messages[0].Role != "system" || body.Messages[0].Content != "You are a reviewer." {
			t.Errorf("Unexpected system message: %+v", body.Messages[0])
		}
		if body.Messages[1].Role != "user" || body.Messages[1].Content != "Review this" {
			t.Errorf("Unexpected user message: %+v", body.Messages[1])
		}

		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	})

	resp := model.Prompt(context.Background(), Request{SystemPrompt: "You are a reviewer.", UserPrompt: "Review this"})
	if resp.Error != nil {
		t.Fatalf("Expected no error, got %v", resp.Error)
	}
}

func TestOpenAIPrompt_ServerError(t *testing.T) {
	model := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `upstream exploded`)
	})

	resp := model.Prompt(context.Background(), Request{SystemPrompt: "s", UserPrompt: "u"})

	var aiErr *common.AIRequestError
	if !errors.As(resp.Error, &aiErr) {
		t.Fatalf("Expected AIRequestError, got %v", resp.Error)
	}
	if aiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", aiErr.StatusCode)
	}
	if aiErr.Body != "upstream exploded" {
		t.Errorf("Expected raw body, got %q", aiErr.Body)
	}
}

func TestOpenAIPrompt_ErrorPayloadKeepsRawBody(t *testing.T) {
	raw := `{"error":{"message":"Invalid API key","code":401}}`
	model := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, raw)
	})

	resp := model.Prompt(context.Background(), Request{SystemPrompt: "s", UserPrompt: "u"})

	var aiErr *common.AIRequestError
	if !errors.As(resp.Error, &aiErr) {
		t.Fatalf("Expected AIRequestError, got %v", resp.Error)
	}
	if aiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", aiErr.StatusCode)
	}
	if aiErr.Body != raw {
		t.Errorf("Expected body %q, got %q", raw, aiErr.Body)
	}
}

func TestOpenAIPrompt_NoChoices(t *testing.T) {
	model := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	resp := model.Prompt(context.Background(), Request{SystemPrompt: "s", UserPrompt: "u"})

	var aiErr *common.AIRequestError
	if !errors.As(resp.Error, &aiErr) {
		t.Fatalf("Expected AIRequestError, got %v", resp.Error)
	}
}

func TestOpenAIPrompt_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"second try"}}]}`)
	}))
	defer server.Close()

	retry := noRetry()
	retry.RetryMax = 1
	retry.RetryWaitMin = 0
	retry.RetryWaitMax = 0

	model, err := NewOpenAI(common.ProviderOpenRouter, "test-key", WithBaseURL(server.URL), WithRetry(retry))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	resp := model.Prompt(context.Background(), Request{SystemPrompt: "s", UserPrompt: "u"})
	if resp.Error != nil {
		t.Fatalf("Expected retry to succeed, got %v", resp.Error)
	}
	if resp.Content != "second try" {
		t.Errorf("Expected 'second try', got %q", resp.Content)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestNewOpenAI_EmptyKey(t *testing.T) {
	if _, err := NewOpenAI(common.ProviderOpenRouter, ""); err == nil {
		t.Error("Expected error for empty API key")
	}
}

func TestNewLLM_UnsupportedProvider(t *testing.T) {
	if _, err := NewLLM("gemini", "key"); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}
