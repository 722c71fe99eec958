package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type memSaver struct {
	data []byte
	err  error
}

func (m *memSaver) Save(data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.data = data
	return "reply_test.wav", nil
}

func TestSynthesize_RejectsBadKeysBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	for _, key := range []string{"", "AIzaSyFakeGoogleKey"} {
		c := NewMurfClient(key, "", &memSaver{})
		c.BaseURL = srv.URL
		if _, err := c.Synthesize(context.Background(), "hello"); !errors.Is(err, ErrSynthesisFailed) {
			t.Fatalf("key %q: expected ErrSynthesisFailed, got %v", key, err)
		}
	}
	if called {
		t.Fatalf("key pre-check must run before any network call")
	}
}

func TestSynthesize_OK(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	audio := []byte("RIFF-pretend-wav")
	mux.HandleFunc("/v1/speech/generate", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("api-key"); got != "murf-key" {
			t.Errorf("missing api-key header, got %q", got)
		}
		fmt.Fprintf(w, `{"audioFile":%q}`, srv.URL+"/files/generated.wav")
	})
	mux.HandleFunc("/files/generated.wav", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(audio)
	})

	saver := &memSaver{}
	c := NewMurfClient("murf-key", "", saver)
	c.BaseURL = srv.URL

	ref, err := c.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if ref != "reply_test.wav" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if !bytes.Equal(saver.data, audio) {
		t.Fatalf("persisted audio mismatch")
	}
}

func TestSynthesize_FailureModes(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status_non_2xx", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(500)
			_, _ = w.Write([]byte("oops"))
		}},
		{"bad_json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not-json"))
		}},
		{"missing_audio_url", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"something":"else"}`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			c := NewMurfClient("murf-key", "", &memSaver{})
			c.BaseURL = srv.URL
			if _, err := c.Synthesize(context.Background(), "hello"); !errors.Is(err, ErrSynthesisFailed) {
				t.Fatalf("expected ErrSynthesisFailed, got %v", err)
			}
		})
	}
}

func TestSynthesize_DownloadFailure(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/v1/speech/generate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"audioFile":%q}`, srv.URL+"/files/missing.wav")
	})
	mux.HandleFunc("/files/missing.wav", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := NewMurfClient("murf-key", "", &memSaver{})
	c.BaseURL = srv.URL
	if _, err := c.Synthesize(context.Background(), "hello"); !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("expected ErrSynthesisFailed, got %v", err)
	}
}

func TestSynthesize_SaveFailure(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/v1/speech/generate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"audioFile":%q}`, srv.URL+"/files/ok.wav")
	})
	mux.HandleFunc("/files/ok.wav", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bytes"))
	})

	c := NewMurfClient("murf-key", "", &memSaver{err: errors.New("disk full")})
	c.BaseURL = srv.URL
	if _, err := c.Synthesize(context.Background(), "hello"); !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("expected ErrSynthesisFailed, got %v", err)
	}
}
