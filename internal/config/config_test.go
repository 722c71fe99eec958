package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	os.Setenv("HTTP_ADDRESS", "")
	os.Setenv("GEMINI_MODEL_ID", "")
	os.Setenv("MURF_VOICE_ID", "")
	os.Setenv("AUDIO_DIR", "")
	cfg := Load()
	if cfg.HTTPAddress == "" {
		t.Fatalf("expected default http address")
	}
	if cfg.GeminiModelID == "" {
		t.Fatalf("expected default gemini model id")
	}
	if cfg.MurfVoiceID == "" {
		t.Fatalf("expected default murf voice id")
	}
	if cfg.AudioDir == "" {
		t.Fatalf("expected default audio dir")
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("HTTP_ADDRESS", ":9999")
	os.Setenv("GEMINI_MODEL_ID", "gemini-custom")
	defer os.Unsetenv("HTTP_ADDRESS")
	defer os.Unsetenv("GEMINI_MODEL_ID")
	cfg := Load()
	if cfg.HTTPAddress != ":9999" {
		t.Fatalf("expected override http address, got %s", cfg.HTTPAddress)
	}
	if cfg.GeminiModelID != "gemini-custom" {
		t.Fatalf("expected override model id, got %s", cfg.GeminiModelID)
	}
}
