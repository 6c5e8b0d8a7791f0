// Package translator is the HTTP client for the machine-translation
// provider. Requests are signed with an MD5 digest over the application
// id, the query text, a per-attempt salt, and the shared secret. Failed
// requests are retried with exponential backoff; when the retry budget
// runs out the client degrades to returning the source text unchanged
// rather than failing the whole run.
package translator

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/localehub/potool/cache"
)

// DefaultEndpoint is the provider's translation API.
const DefaultEndpoint = "https://fanyi-api.baidu.com/api/trans/vip/translate"

// Config holds the provider parameters.
type Config struct {
	// Endpoint is the API URL (DefaultEndpoint when empty).
	Endpoint string
	// AppID and AppKey are the provider credentials.
	AppID  string
	AppKey string
	// From and To are the source and target language codes.
	From string
	To   string
	// Retries is the attempt budget per text (default 3).
	Retries int
	// BaseDelay is the first backoff delay; attempt n waits
	// BaseDelay × 2^(n−1) (default 1s).
	BaseDelay time.Duration
	// RequestDelay is enforced after every successful API call to
	// respect the provider's rate limit (default 1s).
	RequestDelay time.Duration
	// Timeout is the per-request HTTP timeout (default 30s).
	Timeout time.Duration
	// Logf receives attempt and failure reports. Nil discards them.
	Logf func(format string, args ...any)
}

func (c *Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return DefaultEndpoint
}

func (c *Config) retries() int {
	if c.Retries > 0 {
		return c.Retries
	}
	return 3
}

func (c *Config) baseDelay() time.Duration {
	if c.BaseDelay > 0 {
		return c.BaseDelay
	}
	return time.Second
}

func (c *Config) requestDelay() time.Duration {
	if c.RequestDelay > 0 {
		return c.RequestDelay
	}
	return time.Second
}

// Client translates text through the provider, memoized by the store.
type Client struct {
	cfg   Config
	store cache.Store
	http  *http.Client
}

// New builds a client. The store is consulted before any network call
// and receives every successful translation.
func New(cfg Config, store cache.Store) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:   cfg,
		store: store,
		http:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) logf(format string, args ...any) {
	if c.cfg.Logf != nil {
		c.cfg.Logf(format, args...)
	}
}

// Translate returns the translation of text. Cache hits return
// immediately with no network call. Otherwise the provider is asked up
// to the configured number of times; if every attempt fails the source
// text is returned unchanged. The only error returned is a cancelled
// context.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if cached, ok := c.store.Get(text); ok {
		return cached, nil
	}

	retries := c.cfg.retries()
	for attempt := 1; attempt <= retries; attempt++ {
		translated, err := c.request(ctx, text)
		if err == nil {
			if err := c.store.Put(text, translated); err != nil {
				c.logf("caching translation: %v", err)
			}
			// Rate limit: the provider rejects back-to-back calls.
			if err := sleep(ctx, c.cfg.requestDelay()); err != nil {
				return translated, err
			}
			return translated, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		c.logf("translate attempt %d/%d failed: %v", attempt, retries, err)
		if attempt < retries {
			wait := c.cfg.baseDelay() * (1 << (attempt - 1))
			if err := sleep(ctx, wait); err != nil {
				return "", err
			}
		}
	}

	c.logf("giving up after %d attempts, keeping source text", retries)
	return text, nil
}

// apiResponse is the provider's reply: either translated segments or an
// error code.
type apiResponse struct {
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
	Result    []struct {
		Src string `json:"src"`
		Dst string `json:"dst"`
	} `json:"trans_result"`
}

func (c *Client) request(ctx context.Context, text string) (string, error) {
	salt := strconv.FormatInt(time.Now().UnixNano(), 10)
	form := url.Values{
		"q":     {text},
		"from":  {c.cfg.From},
		"to":    {c.cfg.To},
		"appid": {c.cfg.AppID},
		"salt":  {salt},
		"sign":  {Sign(c.cfg.AppID, text, salt, c.cfg.AppKey)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.endpoint(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if parsed.ErrorCode != "" && parsed.ErrorCode != "0" {
		return "", fmt.Errorf("API error %s: %s", parsed.ErrorCode, parsed.ErrorMsg)
	}
	if len(parsed.Result) == 0 {
		return "", fmt.Errorf("response has no translated segments: %s", truncate(string(body), 200))
	}

	segments := make([]string, 0, len(parsed.Result))
	for _, r := range parsed.Result {
		segments = append(segments, r.Dst)
	}
	return strings.TrimSpace(strings.Join(segments, "\n")), nil
}

// Sign computes the request signature: hex(md5(appid + query + salt + key)).
func Sign(appID, query, salt, key string) string {
	sum := md5.Sum([]byte(appID + query + salt + key))
	return fmt.Sprintf("%x", sum)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
