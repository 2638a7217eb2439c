package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/studyhub/sessionview/internal/session"
)

// backend is shared by the resource clients: it resolves the session,
// attaches the bearer token and decodes JSON.
type backend struct {
	baseURL string
	http    *Client
	now     func() time.Time
}

func newBackend(baseURL string, c *Client) backend {
	if c == nil {
		c = NewClient(DefaultClientConfig())
	}
	return backend{baseURL: baseURL, http: c, now: time.Now}
}

// call fails with a session error before any network I/O when the context
// carries no usable token.
func (b backend) call(ctx context.Context, method, path string, body, out any) error {
	s, err := session.Require(ctx, b.now())
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", s.Bearer())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.http.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
