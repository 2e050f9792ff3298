package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider issues and verifies short-lived one-time codes bound to an
// email address. Both operations can fail; the caller decides how a
// failure maps to its own error surface. No retries happen here.
type Provider interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
}

// Client talks to an external OTP service over a small JSON API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) RequestCode(ctx context.Context, email string) error {
	return c.post(ctx, "/otp/send", map[string]any{"email": email})
}

func (c *Client) VerifyCode(ctx context.Context, email, code string) error {
	return c.post(ctx, "/otp/verify", map[string]any{"email": email, "code": code})
}
