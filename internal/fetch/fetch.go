// Package fetch retrieves raw bytes from the host's local admin surface:
// GET <base>/<relative-uri>. The engine never interprets the transport
// beyond "bytes in, bytes out"; timeouts bound how long a fetch may stay
// outstanding before it is treated as failed.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single fetch when the caller's context carries no
// earlier deadline.
const DefaultTimeout = 30 * time.Second

// maxBody caps a response body; mesh payloads beyond this are rejected
// rather than buffered.
const maxBody = 64 << 20

// Client fetches bytes relative to a base URL.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the given base URL (e.g. "http://127.0.0.1:7777").
// timeout <= 0 uses DefaultTimeout.
func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Bytes fetches base + rel and returns the body. Non-200 statuses are
// errors; bodies larger than the cap are rejected.
func (c *Client) Bytes(ctx context.Context, rel string) ([]byte, error) {
	url := c.base + "/" + strings.TrimLeft(rel, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: HTTP %d for %s", resp.StatusCode, rel)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if len(data) > maxBody {
		return nil, fmt.Errorf("fetch: body for %s exceeds %d bytes", rel, maxBody)
	}
	return data, nil
}

// VerifySHA256 checks data against a lowercase hex digest. An empty expected
// digest skips verification (the document did not pin the content).
func VerifySHA256(data []byte, expected string) error {
	if expected == "" {
		return nil
	}
	sum := sha256.Sum256(data)
	got := hex.EncodeToString(sum[:])
	if !strings.EqualFold(got, expected) {
		return fmt.Errorf("fetch: sha256 mismatch: got %s want %s", got, expected)
	}
	return nil
}

// ContentKey returns the hex SHA-256 of data, used as a content-address
// cache key.
func ContentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
