package resultstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSubmit_OK(t *testing.T) {
	score := 82
	var received ResultPackage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.Submit(context.Background(), ResultPackage{
		UserID:         "u1",
		Status:         "Generated",
		Score:          &score,
		Recommendation: "Hire",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if received.UserID != "u1" || received.Status != "Generated" {
		t.Fatalf("unexpected payload: %+v", received)
	}
	if received.Score == nil || *received.Score != 82 {
		t.Fatalf("expected score 82, got %v", received.Score)
	}
}

func TestSubmit_NullScoreSerialized(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Submit(context.Background(), ResultPackage{UserID: "u1"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	v, ok := raw["score"]
	if !ok || v != nil {
		t.Fatalf("expected explicit null score, got %v (present=%v)", v, ok)
	}
}

func TestSubmit_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Submit(context.Background(), ResultPackage{}); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestSubmit_TransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	c.HTTPClient = &http.Client{Timeout: 200 * time.Millisecond}
	if err := c.Submit(context.Background(), ResultPackage{}); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestSubmit_NoEndpoint(t *testing.T) {
	c := NewClient("")
	if err := c.Submit(context.Background(), ResultPackage{}); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
