// Package tts synthesizes assistant replies to speech via Murf.ai. The
// service is two-hop: a generate call returns a downloadable audio URL,
// and a second fetch retrieves the waveform for local persistence.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrSynthesisFailed covers every synthesis failure mode: invalid key,
// service error, missing audio URL, malformed response, download failure.
var ErrSynthesisFailed = errors.New("tts: synthesis failed")

const defaultBaseURL = "https://api.murf.ai"

// googleKeyPrefix identifies a Google API key pasted into the Murf slot;
// such a credential is rejected before any network call.
const googleKeyPrefix = "AIza"

// ArtifactSaver persists downloaded audio and returns a retrieval reference.
type ArtifactSaver interface {
	Save(data []byte) (string, error)
}

// MurfClient calls the Murf.ai speech generation API.
type MurfClient struct {
	HTTPClient *http.Client
	APIKey     string
	VoiceID    string
	BaseURL    string
	Artifacts  ArtifactSaver
}

type generateSpeechRequest struct {
	Text         string `json:"text"`
	VoiceID      string `json:"voiceId"`
	Format       string `json:"format"`
	SampleRate   int    `json:"sampleRate"`
	ModelVersion string `json:"modelVersion"`
}

type generateSpeechResponse struct {
	AudioFile string `json:"audioFile"`
}

func NewMurfClient(apiKey, voiceID string, artifacts ArtifactSaver) *MurfClient {
	if voiceID == "" {
		voiceID = "en-US-natalie"
	}
	return &MurfClient{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     apiKey,
		VoiceID:    voiceID,
		BaseURL:    defaultBaseURL,
		Artifacts:  artifacts,
	}
}

// Synthesize requests speech for text, downloads the produced audio and
// persists it, returning a stable retrieval reference.
func (c *MurfClient) Synthesize(ctx context.Context, text string) (string, error) {
	if c.APIKey == "" || strings.HasPrefix(c.APIKey, googleKeyPrefix) {
		return "", fmt.Errorf("%w: invalid murf api key", ErrSynthesisFailed)
	}

	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	reqBody, _ := json.Marshal(generateSpeechRequest{
		Text:         text,
		VoiceID:      c.VoiceID,
		Format:       "WAV",
		SampleRate:   44100,
		ModelVersion: "GEN2",
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/speech/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status=%d body=%s", ErrSynthesisFailed, resp.StatusCode, string(b))
	}
	var gr generateSpeechResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrSynthesisFailed, err)
	}
	if gr.AudioFile == "" {
		return "", fmt.Errorf("%w: no audio URL in response", ErrSynthesisFailed)
	}

	audio, err := c.download(ctx, gr.AudioFile)
	if err != nil {
		return "", err
	}
	ref, err := c.Artifacts.Save(audio)
	if err != nil {
		return "", fmt.Errorf("%w: persist audio: %v", ErrSynthesisFailed, err)
	}
	return ref, nil
}

func (c *MurfClient) download(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: download status=%d", ErrSynthesisFailed, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrSynthesisFailed, err)
	}
	return data, nil
}
