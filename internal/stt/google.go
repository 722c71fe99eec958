// Package stt submits canonical audio to a speech-recognition service.
package stt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
)

// ErrNoSpeech signals that the engine found no confident speech in the
// audio. This is an expected outcome, not a system fault: the caller
// should prompt the user to retry.
var ErrNoSpeech = errors.New("stt: no speech detected")

// ErrService is returned for network or service failures, distinct from
// "no speech".
var ErrService = errors.New("stt: recognition service error")

const recognizeTimeout = 30 * time.Second

// Recognizer converts a canonical audio file into text.
type Recognizer interface {
	Transcribe(ctx context.Context, wavPath string, sampleRate int) (string, error)
}

// GoogleTranscriber performs whole-utterance recognition with the Google
// Cloud Speech API. It relies on Application Default Credentials.
type GoogleTranscriber struct {
	client *speech.Client
}

func NewGoogleTranscriber(ctx context.Context) (*GoogleTranscriber, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("stt: create speech client: %w", err)
	}
	return &GoogleTranscriber{client: client}, nil
}

// Close releases the underlying gRPC connection.
func (t *GoogleTranscriber) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// Transcribe submits the full audio file and returns the recognized text.
func (t *GoogleTranscriber) Transcribe(ctx context.Context, wavPath string, sampleRate int) (string, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return "", fmt.Errorf("%w: read audio: %v", ErrService, err)
	}

	ctx, cancel := context.WithTimeout(ctx, recognizeTimeout)
	defer cancel()

	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(sampleRate),
			LanguageCode:    "en-US",
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}

	text := joinResults(resp)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// joinResults concatenates the top alternative of each result segment.
func joinResults(resp *speechpb.RecognizeResponse) string {
	var parts []string
	for _, res := range resp.GetResults() {
		alts := res.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if s := strings.TrimSpace(alts[0].GetTranscript()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
