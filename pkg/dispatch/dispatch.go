// Package dispatch talks to the serverless functions that deliver email
// and LINE push messages on behalf of the API.
package dispatch

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

var ErrNotConfigured = errors.New("dispatch function url is not configured")

// Email is a templated HTML message.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// LineField is one label/value row rendered in the LINE flex message.
type LineField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LineMessage is a templated push to a bound LINE user.
type LineMessage struct {
	To       string      `json:"to"`
	Title    string      `json:"title"`
	CoverURL string      `json:"cover_url,omitempty"`
	Fields   []LineField `json:"fields"`
	Link     string      `json:"link"`
}

type MailSender interface {
	SendEmail(ctx context.Context, email Email) error
}

type LinePusher interface {
	PushLine(ctx context.Context, msg LineMessage) error
}

// Client posts JSON payloads to the mail and LINE functions.
type Client struct {
	httpClient *http.Client
	mailURL    string
	lineURL    string
	apiKey     string
}

func NewClient(mailURL, lineURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		mailURL:    mailURL,
		lineURL:    lineURL,
		apiKey:     apiKey,
	}
}

func (c *Client) SendEmail(ctx context.Context, email Email) error {
	if email.To == "" {
		return errors.New("email recipient is required")
	}
	return c.post(ctx, c.mailURL, email)
}

func (c *Client) PushLine(ctx context.Context, msg LineMessage) error {
	if msg.To == "" {
		return errors.New("line recipient is required")
	}
	return c.post(ctx, c.lineURL, msg)
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	if url == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("function returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	// Functions answer {"success": bool}; a missing field counts as success.
	var result struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.Success != nil && !*result.Success {
		return fmt.Errorf("function reported failure: %s", result.Error)
	}
	return nil
}
