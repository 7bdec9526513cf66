// internal/wordapi/client.go
//
// HTTP clients for the two external word services.
//   - RandomWordClient: GET {base}/api?words=1&length=N → ["word"]
//   - DictionaryClient: GET {base}/api/v2/entries/en/{word} → 200 known, 404 unknown
//
// Every request is bounded by the client's Timeout. Neither client retries;
// retry policy belongs to the caller.

package wordapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultRandomWordURL = "https://random-word-api.vercel.app"
	DefaultDictionaryURL = "https://api.dictionaryapi.dev"
	DefaultTimeout       = 5 * time.Second

	maxBody = 1 << 20
)

// ErrMalformed is returned when a service answers with an unusable body.
var ErrMalformed = errors.New("wordapi: malformed response")

// StatusError reports an unexpected HTTP status from a service.
type StatusError struct {
	Service string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wordapi: %s returned %d %s", e.Service, e.Code, http.StatusText(e.Code))
}

// RandomWordClient fetches a random target word.
type RandomWordClient struct {
	BaseURL string
	HTTP    *http.Client
	Timeout time.Duration
}

// NewRandomWordClient returns a client for baseURL (DefaultRandomWordURL if empty).
func NewRandomWordClient(baseURL string, timeout time.Duration) *RandomWordClient {
	if baseURL == "" {
		baseURL = DefaultRandomWordURL
	}
	return &RandomWordClient{BaseURL: baseURL, HTTP: http.DefaultClient, Timeout: timeout}
}

// RandomWord asks the service for one lowercase word of the given length.
func (c *RandomWordClient) RandomWord(ctx context.Context, length int) (string, error) {
	q := url.Values{}
	q.Set("words", "1")
	q.Set("length", strconv.Itoa(length))
	u := strings.TrimRight(c.BaseURL, "/") + "/api?" + q.Encode()

	code, body, err := get(ctx, c.HTTP, c.Timeout, u)
	if err != nil {
		return "", fmt.Errorf("wordapi: random word: %w", err)
	}
	if code < 200 || code > 299 {
		return "", &StatusError{Service: "random word", Code: code}
	}

	var words []string
	if err := json.Unmarshal(body, &words); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(words) == 0 {
		return "", fmt.Errorf("%w: empty word list", ErrMalformed)
	}
	w := strings.ToLower(strings.TrimSpace(words[0]))
	if len(w) != length || !isAlpha(w) {
		return "", fmt.Errorf("%w: %q is not a %d-letter word", ErrMalformed, words[0], length)
	}
	return w, nil
}

// DictionaryClient checks whether a word exists.
type DictionaryClient struct {
	BaseURL string
	HTTP    *http.Client
	Timeout time.Duration
}

// NewDictionaryClient returns a client for baseURL (DefaultDictionaryURL if empty).
func NewDictionaryClient(baseURL string, timeout time.Duration) *DictionaryClient {
	if baseURL == "" {
		baseURL = DefaultDictionaryURL
	}
	return &DictionaryClient{BaseURL: baseURL, HTTP: http.DefaultClient, Timeout: timeout}
}

// IsWord returns (false, nil) on 404 and (true, nil) on any 2xx.
// Other statuses and transport failures are errors.
func (c *DictionaryClient) IsWord(ctx context.Context, word string) (bool, error) {
	u := strings.TrimRight(c.BaseURL, "/") + "/api/v2/entries/en/" + url.PathEscape(word)
	code, _, err := get(ctx, c.HTTP, c.Timeout, u)
	if err != nil {
		return false, fmt.Errorf("wordapi: dictionary: %w", err)
	}
	switch {
	case code == http.StatusNotFound:
		return false, nil
	case code >= 200 && code <= 299:
		return true, nil
	}
	return false, &StatusError{Service: "dictionary", Code: code}
}

// get performs a bounded GET and returns status and body.
func get(ctx context.Context, hc *http.Client, timeout time.Duration, u string) (int, []byte, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return res.StatusCode, nil, err
	}
	log.Debug().Str("url", u).Int("status", res.StatusCode).Dur("took", time.Since(start)).Msg("word service call")
	return res.StatusCode, body, nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
