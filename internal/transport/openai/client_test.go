package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopmate/internal/domain"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"brands": []}`, `{"brands": []}`},
		{"fenced", "```\n{\"brands\": []}\n```", `{"brands": []}`},
		{"fenced with language", "```json\n{\"brands\": []}\n```", `{"brands": []}`},
		{"surrounding whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := buildExtractionPrompt("show me ck totes", `{"brands": []}`)

	for _, fragment := range []string{
		`New user input: "show me ck totes"`,
		`Previous preferences: {"brands": []}`,
		"Calvin Klein",
		`"price_min": null`,
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("extraction prompt missing %q", fragment)
		}
	}
}

func TestBuildConversationPrompt(t *testing.T) {
	prompt := buildConversationPrompt("Colors: black", "User: hi", "what do you stock?")

	for _, fragment := range []string{
		"Current user preferences: Colors: black",
		"User: hi",
		"User's message: what do you stock?",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("conversation prompt missing %q", fragment)
		}
	}
}

func TestCompleteHonorsConfiguredTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(&Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gpt-4o-mini",
		Timeout: 20 * time.Millisecond,
		Logger:  zap.NewNop(),
	})

	start := time.Now()
	_, err := c.GenerateReply(context.Background(), "", "", "hello")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Errorf("err = %v, want ErrLLMProviderError", err)
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("request was not cut off by the timeout, took %s", elapsed)
	}
}
