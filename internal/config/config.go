package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	GeminiKey     string
	GeminiModelID string

	MurfKey     string
	MurfVoiceID string

	ResultsBackendURL string

	AudioDir   string
	FFmpegPath string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set - replies and assessment will not work")
	}
	geminiModel := os.Getenv("GEMINI_MODEL_ID")
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash"
	}

	murfKey := os.Getenv("MURF_API_KEY")
	if murfKey == "" {
		log.Println("Warning: MURF_API_KEY not set - speech synthesis will not work")
	}
	murfVoice := os.Getenv("MURF_VOICE_ID")
	if murfVoice == "" {
		murfVoice = "en-US-natalie"
	}

	backendURL := os.Getenv("RESULTS_BACKEND_URL")
	if backendURL == "" {
		log.Println("Warning: RESULTS_BACKEND_URL not set - interview results cannot be saved")
	}

	audioDir := os.Getenv("AUDIO_DIR")
	if audioDir == "" {
		audioDir = filepath.Join(os.TempDir(), "prepwise-audio")
	}

	ffmpegPath := os.Getenv("FFMPEG_PATH")
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	supabaseBucket := os.Getenv("SUPABASE_BUCKET")
	if supabaseBucket == "" {
		supabaseBucket = "interview-transcripts"
	}
	if supabaseURL == "" || supabaseKey == "" {
		log.Println("Warning: SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY not set - transcript archival disabled")
	}

	log.Printf("config: HTTP_ADDRESS=%s", addr)
	return Config{
		HTTPAddress:        addr,
		GeminiKey:          geminiKey,
		GeminiModelID:      geminiModel,
		MurfKey:            murfKey,
		MurfVoiceID:        murfVoice,
		ResultsBackendURL:  backendURL,
		AudioDir:           audioDir,
		FFmpegPath:         ffmpegPath,
		SupabaseURL:        supabaseURL,
		SupabaseServiceKey: supabaseKey,
		SupabaseBucket:     supabaseBucket,
	}
}
