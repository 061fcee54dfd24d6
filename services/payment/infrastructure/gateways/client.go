// Package gateways implements the payment provider ports: Toss Payments and
// NicePay over their JSON HTTP APIs, and Stripe through stripe-go.
package gateways

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

const (
	requestTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20
)

// Error is a provider rejection. Message is the provider's own text.
type Error struct {
	Provider   string
	HTTPStatus int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: http %d: %s", e.Provider, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

func basicAuth(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

func sha256Hex(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// postJSON sends body and returns the raw response. Transport failures are
// returned as errors; HTTP status handling is left to the caller.
func postJSON(ctx context.Context, client *http.Client, provider, url, authorization string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return resp.StatusCode, nil, &Error{Provider: provider, HTTPStatus: resp.StatusCode, Message: "response is not JSON"}
	}
	return resp.StatusCode, raw, nil
}
