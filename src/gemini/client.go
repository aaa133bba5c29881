// Package gemini calls the generateContent endpoint of the Gemini API and
// hands the raw response back without interpreting it.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Request is the generateContent body for a single text prompt.
type Request struct {
	Contents []Content `json:"contents"`
}

// Content is one turn of the conversation.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is a text fragment of a Content.
type Part struct {
	Text string `json:"text"`
}

// NewRequest wraps prompt the way generateContent expects it:
// contents[0].parts[0].text.
func NewRequest(prompt string) Request {
	return Request{Contents: []Content{{Parts: []Part{{Text: prompt}}}}}
}

// RemoteError is returned when the API answers with a non-2xx status. Detail
// holds the decoded error body for server-side logs only.
type RemoteError struct {
	StatusCode int
	Detail     any
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("gemini api returned status %d", e.StatusCode)
}

// Client posts prompts to one model. It holds no credential; the key is passed
// per call.
type Client struct {
	BaseURL string
	Model   string
	HTTP    *http.Client
}

// NewClient creates a Client. No timeout is set: the invocation context
// carries the platform deadline.
func NewClient(baseURL, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		Model:   model,
		HTTP:    &http.Client{},
	}
}

// Generate sends prompt with apiKey and returns the response body unchanged.
// A non-2xx status yields a *RemoteError. Errors never contain apiKey.
func (c *Client) Generate(ctx context.Context, apiKey, prompt string) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NewRequest(prompt)); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	body := bytes.TrimRight(buf.Bytes(), "\n")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(apiKey), bytes.NewReader(body))
	if err != nil {
		return nil, redact(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", redact(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail any
		if err := json.Unmarshal(raw, &detail); err != nil {
			detail = string(raw)
		}
		return nil, &RemoteError{StatusCode: resp.StatusCode, Detail: detail}
	}

	if !json.Valid(raw) {
		return nil, errors.New("gemini response is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

func (c *Client) endpoint(apiKey string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.BaseURL, url.PathEscape(c.Model), url.QueryEscape(apiKey))
}

// redact strips the key query parameter from URLs embedded in transport
// errors, which would otherwise reach the caller in the 500 message.
func redact(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	u, perr := url.Parse(uerr.URL)
	if perr != nil {
		uerr.URL = "[redacted]"
		return err
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	uerr.URL = u.String()
	return err
}
