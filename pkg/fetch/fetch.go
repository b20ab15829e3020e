package fetch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mote-dev/mote/pkg/dispatch"
)

// ErrNoTransport is reported to OnFailure when a request is issued on a
// client without a transport.
var ErrNoTransport = errors.New("fetch: no transport configured")

// StatusError reports a response that arrived with a status other than
// 200 OK.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: unexpected status %d", e.Code)
}

// Config describes one request. Callbacks are optional and run on the
// document's dispatch goroutine.
type Config struct {
	// URL is the request target.
	URL string

	// Method is the HTTP method. Empty means GET.
	Method string

	// OnSuccess receives the response body of a 200 reply.
	OnSuccess func(body string)

	// OnFailure receives transport errors and non-200 statuses. When nil,
	// failures are logged and dropped.
	OnFailure func(err error)
}

// Client issues requests and marshals their outcomes onto the dispatch
// queue. It performs no retries and offers no cancellation; a request,
// once issued, runs to completion.
type Client struct {
	transport Transport
	queue     *dispatch.Queue
	logger    *slog.Logger
}

// NewClient builds a client sending through transport. A nil transport
// is allowed and fails every request; a nil logger defaults to
// slog.Default().
func NewClient(transport Transport, queue *dispatch.Queue, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{transport: transport, queue: queue, logger: logger}
}

// Request starts the exchange described by cfg and returns immediately.
// Exactly one of OnSuccess or OnFailure runs, on the dispatch goroutine:
// OnSuccess for a 200 reply, OnFailure for everything else.
func (c *Client) Request(cfg Config) {
	if c.transport == nil {
		c.fail(cfg, ErrNoTransport)
		return
	}
	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}

	go func() {
		status, body, err := c.transport.RoundTrip(method, cfg.URL)
		switch {
		case err != nil:
			c.fail(cfg, err)
		case status == http.StatusOK:
			c.queue.Post(func() {
				if cfg.OnSuccess != nil {
					cfg.OnSuccess(body)
				}
			})
		default:
			c.fail(cfg, &StatusError{Code: status})
		}
	}()
}

func (c *Client) fail(cfg Config, err error) {
	c.queue.Post(func() {
		if cfg.OnFailure != nil {
			cfg.OnFailure(err)
			return
		}
		c.logger.Debug("request failed without failure listener",
			"url", cfg.URL, "error", err)
	})
}
