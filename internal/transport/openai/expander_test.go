package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/mediasearch/internal/domain"
)

type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func chatServer(t *testing.T, content string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if calls != nil {
			calls.Add(1)
		}

		resp := chatResponse{ID: "c1", Object: "chat.completion", Model: "test-model"}
		resp.Choices = make([]struct {
			Index   int `json:"index"`
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}, 1)
		resp.Choices[0].Message.Role = "assistant"
		resp.Choices[0].Message.Content = content
		resp.Choices[0].FinishReason = "stop"

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestExpander(t *testing.T, url string, maxQueries int) *Expander {
	t.Helper()
	e, err := NewExpander(&Config{APIKey: "test-key", BaseURL: url, Model: "test-model", MaxQueries: maxQueries})
	if err != nil {
		t.Fatalf("NewExpander: %v", err)
	}
	return e
}

func TestExpander_Expand(t *testing.T) {
	server := chatServer(t, "1. sports car\n- Red Car\n\nfast automobile\nracing vehicle", nil)
	defer server.Close()

	e := newTestExpander(t, server.URL, 3)
	got, err := e.Expand(context.Background(), "red car")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	want := []string{"sports car", "fast automobile", "racing vehicle"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestExpander_CachesResults(t *testing.T) {
	var calls atomic.Int32
	server := chatServer(t, "kitten", &calls)
	defer server.Close()

	e := newTestExpander(t, server.URL, 3)
	for _, q := range []string{"cat", "Cat ", "cat"} {
		if _, err := e.Expand(context.Background(), q); err != nil {
			t.Fatalf("Expand failed: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 API call, got %d", calls.Load())
	}
}

func TestExpander_APIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrPermissionDenied},
		{"rate limited", http.StatusTooManyRequests, domain.ErrTransient},
		{"server error", http.StatusInternalServerError, domain.ErrTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"error"}}`))
			}))
			defer server.Close()

			e := newTestExpander(t, server.URL, 3)
			if _, err := e.Expand(context.Background(), "red car"); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseQueries(t *testing.T) {
	got := parseQueries("  \"a dog\"\n* A DOG\npuppy\n3) canine\n3d render", "puppy", 3)
	if len(got) != 3 || got[0] != "a dog" || got[1] != "canine" || got[2] != "3d render" {
		t.Errorf("unexpected %v", got)
	}
}

func TestDisabled(t *testing.T) {
	got, err := Disabled{}.Expand(context.Background(), "anything")
	if err != nil || len(got) != 0 {
		t.Errorf("expected no expansion, got %v %v", got, err)
	}
}
