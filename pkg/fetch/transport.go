package fetch

import (
	"errors"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout bounds one exchange on the default HTTP
	// client.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultMaxBodySize caps how many response bytes a transport reads.
	DefaultMaxBodySize = 4 * 1024 * 1024 // 4MB
)

// ErrBodyTooLarge is returned when a response body exceeds the
// transport's size limit.
var ErrBodyTooLarge = errors.New("fetch: response body exceeds limit")

// Transport performs one HTTP exchange. Implementations must be safe for
// concurrent use.
type Transport interface {
	RoundTrip(method, url string) (status int, body string, err error)
}

var defaultHTTPClient = &http.Client{Timeout: DefaultRequestTimeout}

// HTTPTransport performs exchanges over net/http.
type HTTPTransport struct {
	// Client is the underlying HTTP client. Nil uses a shared client
	// with DefaultRequestTimeout.
	Client *http.Client

	// MaxBodySize caps how many response bytes are read. Zero means
	// DefaultMaxBodySize.
	MaxBodySize int64
}

// RoundTrip issues the request and reads the whole body.
func (t *HTTPTransport) RoundTrip(method, url string) (int, string, error) {
	client := t.Client
	if client == nil {
		client = defaultHTTPClient
	}
	limit := t.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	// Read one byte past the limit so truncation is detectable.
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return resp.StatusCode, "", err
	}
	if int64(len(b)) > limit {
		return resp.StatusCode, "", ErrBodyTooLarge
	}
	return resp.StatusCode, string(b), nil
}
