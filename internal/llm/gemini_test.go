package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GeminiClient, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := NewGeminiClient("key", "gemini-2.0-flash")
	c.BaseURL = srv.URL
	c.HTTPClient = &http.Client{Timeout: time.Second}
	return c, srv.Close
}

func TestGenerate_NoKey(t *testing.T) {
	c := NewGeminiClient("", "model")
	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error with missing key")
	}
}

func TestGenerate_OK(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hi" {
			t.Errorf("unexpected request contents: %+v", req.Contents)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":" hello there "}]}}]}`))
	})
	defer closeFn()

	got, err := c.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "hello there" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
}

func TestGenerateJSON_SetsGenerationConfig(t *testing.T) {
	schema := json.RawMessage(`{"type":"OBJECT"}`)
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.ResponseMIMEType != "application/json" {
			t.Errorf("expected json response mime type, got %+v", req.GenerationConfig)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"score\":82}"}]}}]}`))
	})
	defer closeFn()

	got, err := c.GenerateJSON(context.Background(), "assess", schema)
	if err != nil {
		t.Fatalf("generate json: %v", err)
	}
	if got != `{"score":82}` {
		t.Fatalf("unexpected structured payload: %q", got)
	}
}

func TestReply_Fallbacks(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"http_500", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(500)
			_, _ = w.Write([]byte("oops"))
		}, FallbackConnect},
		{"bad_json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not-json"))
		}, FallbackUnreadable},
		{"no_candidates", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}, FallbackNoContent},
		{"empty_text", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":""}]}}]}`))
		}, FallbackNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, closeFn := newTestClient(t, tc.handler)
			defer closeFn()
			if got := c.Reply(context.Background(), "hi"); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReply_TransportError(t *testing.T) {
	c := NewGeminiClient("key", "model")
	c.BaseURL = "http://127.0.0.1:1" // nothing listens here
	c.HTTPClient = &http.Client{Timeout: 200 * time.Millisecond}
	if got := c.Reply(context.Background(), "hi"); got != FallbackConnect {
		t.Fatalf("got %q, want %q", got, FallbackConnect)
	}
}
