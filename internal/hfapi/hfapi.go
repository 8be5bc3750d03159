// Package hfapi is a client for hosted image-captioning model endpoints that
// accept raw image bytes with bearer-token authorization and return a JSON
// caption, or 503 while the model is still warming up.
package hfapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// fallbackCaption stands in when a 200 body carries no recognizable caption
// field.
const fallbackCaption = "Could not analyze image."

// StatusError reports a non-200 response from a captioning endpoint.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, e.Detail)
}

// Retryable reports whether the endpoint asked us to come back later, i.e.
// the model is still loading.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusServiceUnavailable
}

// Client calls hosted captioning endpoints using an injected http.Client,
// which owns the per-attempt timeout.
type Client struct {
	token  string
	client *http.Client
}

func New(token string, httpClient *http.Client) *Client {
	return &Client{token: token, client: httpClient}
}

// Caption posts the raw image bytes to url and returns the generated caption.
// Non-200 responses come back as *StatusError; transport failures are
// returned as-is.
func (c *Client) Caption(ctx context.Context, url string, image []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Detail: truncate(string(body), 200)}
	}

	return parseCaption(body), nil
}

type captionBody struct {
	GeneratedText string `json:"generated_text"`
	Caption       string `json:"caption"`
}

func (b captionBody) text() string {
	if b.GeneratedText != "" {
		return b.GeneratedText
	}
	return b.Caption
}

// parseCaption extracts the caption from a body that is either a JSON object
// or a sequence of objects, checking generated_text before caption.
func parseCaption(body []byte) string {
	var one captionBody
	if err := json.Unmarshal(body, &one); err == nil {
		if t := one.text(); t != "" {
			return t
		}
		return fallbackCaption
	}

	var many []captionBody
	if err := json.Unmarshal(body, &many); err == nil && len(many) > 0 {
		if t := many[0].text(); t != "" {
			return t
		}
	}
	return fallbackCaption
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
