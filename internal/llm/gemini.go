package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Fallback replies for degraded turn generation. These are user-facing
// and deliberately distinct so each failure mode stays diagnosable from
// the transcript alone.
const (
	FallbackConnect    = "I'm sorry, I'm having trouble connecting to the AI."
	FallbackUnreadable = "I'm sorry, I received an unreadable response from the AI."
	FallbackNoContent  = "I'm sorry, I couldn't generate a response."
)

// ErrUnreadable marks a response body that could not be decoded as JSON.
var ErrUnreadable = errors.New("llm: unreadable response")

// ErrNoContent marks a well-formed response lacking the generated text.
var ErrNoContent = errors.New("llm: response has no generated content")

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient speaks the generateContent REST contract.
type GeminiClient struct {
	HTTPClient *http.Client
	APIKey     string
	Model      string
	BaseURL    string
}

type contentPart struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content *content `json:"content"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    defaultBaseURL,
	}
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, gc *generationConfig) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("gemini api key missing")
	}
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", base, c.Model, c.APIKey)

	reqBody, _ := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []contentPart{{Text: prompt}}}},
		GenerationConfig: gc,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini error: status=%d body=%s", resp.StatusCode, string(b))
	}
	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(gr.Candidates) == 0 || gr.Candidates[0].Content == nil || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoContent
	}
	text := strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// Generate submits a single-turn chat request and returns the generated
// text. All history folding happens in the prompt, not here.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

// GenerateJSON requests schema-constrained structured output and returns
// the raw JSON text of the first candidate.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, schema json.RawMessage) (string, error) {
	return c.generate(ctx, prompt, &generationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
}

// Reply never fails: each failure mode is absorbed into its fallback
// string so the conversation can continue mid-interview.
func (c *GeminiClient) Reply(ctx context.Context, prompt string) string {
	text, err := c.Generate(ctx, prompt)
	switch {
	case err == nil:
		return text
	case errors.Is(err, ErrUnreadable):
		log.Printf("gemini: unreadable response: %v", err)
		return FallbackUnreadable
	case errors.Is(err, ErrNoContent):
		log.Printf("gemini: no generated content: %v", err)
		return FallbackNoContent
	default:
		log.Printf("gemini: request failed: %v", err)
		return FallbackConnect
	}
}
