package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/archive"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/artifact"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/assess"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/audio"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/config"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/httpserver"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/llm"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/resultstore"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/session"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/stt"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/tts"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	sessions := session.NewManager()

	artifacts, err := artifact.NewStore(cfg.AudioDir)
	if err != nil {
		log.Fatalf("artifact store: %v", err)
	}

	var recognizer stt.Recognizer
	if google, err := stt.NewGoogleTranscriber(context.Background()); err != nil {
		log.Printf("WARNING: speech recognition disabled: %v", err)
	} else {
		recognizer = google
		defer google.Close()
	}

	gemini := llm.NewGeminiClient(cfg.GeminiKey, cfg.GeminiModelID)
	results := resultstore.NewClient(cfg.ResultsBackendURL)

	engine := assess.NewEngine(sessions, gemini, results, cfg.GeminiModelID)
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		archiver, err := archive.NewSupabaseArchiver(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
		if err != nil {
			log.Printf("WARNING: transcript archival disabled: %v", err)
		} else {
			engine.Archive = archiver
		}
	}

	e := httpserver.New(httpserver.Handlers{
		Sessions:   sessions,
		Normalizer: audio.NewNormalizer(cfg.FFmpegPath),
		Recognizer: recognizer,
		LLM:        gemini,
		Synth:      tts.NewMurfClient(cfg.MurfKey, cfg.MurfVoiceID, artifacts),
		Artifacts:  artifacts,
		Assessor:   engine,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}
