// Package advisor talks to an external scoring-suggestion service. Its
// output is advisory only: suggestions flow through the same untrusted
// override path as hand-entered values and never bypass clamping.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SuggestRequest carries the initiative's attribute bag plus the criterion
// names the model wants filled.
type SuggestRequest struct {
	InitiativeID string                 `json:"initiative_id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
	Criteria     []string               `json:"criteria"`
}

// Suggestion is whatever the advisor returned. Values are not trusted:
// callers clamp them into criterion ranges before use.
type Suggestion struct {
	Suggestions   map[string]float64 `json:"suggestions"`
	Justification string             `json:"justification,omitempty"`
	Strengths     []string           `json:"strengths,omitempty"`
	Weaknesses    []string           `json:"weaknesses,omitempty"`
	Confidence    *float64           `json:"confidence,omitempty"`
}

type Client interface {
	Suggest(ctx context.Context, req *SuggestRequest) (*Suggestion, error)
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("advisor %s %s: %d %s", method, path, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

func (c *HTTPClient) Suggest(ctx context.Context, req *SuggestRequest) (*Suggestion, error) {
	data, err := c.doReq(ctx, "POST", "/api/v1/suggest", req)
	if err != nil {
		return nil, err
	}
	var s Suggestion
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
