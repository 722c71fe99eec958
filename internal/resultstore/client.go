// Package resultstore submits finalized interview result packages to the
// external results backend.
package resultstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrPersistence is returned when the results backend rejects or never
// receives a result package. The caller must leave session state intact
// so the operation can be retried.
var ErrPersistence = errors.New("resultstore: persist failed")

// ResultPackage is the finalized payload for one interview session. The
// field names are the backend's wire contract.
type ResultPackage struct {
	UserID                      string `json:"userId"`
	AIGeneratedContent          string `json:"aiGeneratedContent"`
	AIModelUsed                 string `json:"aiModelUsed"`
	SourceDataReference         string `json:"sourceDataReference"`
	Status                      string `json:"status"`
	Score                       *int   `json:"score"`
	Feedback                    string `json:"feedback"`
	Recommendation              string `json:"recommendation"`
	OriginalInterviewDate       string `json:"originalInterviewDate"`
	OriginalCandidateIdentifier string `json:"originalCandidateIdentifier"`
}

// Client posts result packages over HTTP.
type Client struct {
	HTTPClient *http.Client
	Endpoint   string
}

func NewClient(endpoint string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Endpoint:   endpoint,
	}
}

// Submit sends the package and fails with ErrPersistence on any
// transport error or non-2xx status.
func (c *Client) Submit(ctx context.Context, pkg ResultPackage) error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: results backend URL not configured", ErrPersistence)
	}
	body, err := json.Marshal(pkg)
	if err != nil {
		return fmt.Errorf("%w: encode package: %v", ErrPersistence, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status=%d body=%s", ErrPersistence, resp.StatusCode, string(b))
	}
	return nil
}
