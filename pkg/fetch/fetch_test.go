package fetch

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mote-dev/mote/pkg/dispatch"
)

type stubTransport struct {
	status int
	body   string
	err    error

	calls      int
	lastMethod string
	lastURL    string
}

func (t *stubTransport) RoundTrip(method, url string) (int, string, error) {
	t.calls++
	t.lastMethod = method
	t.lastURL = url
	return t.status, t.body, t.err
}

func startQueue(t *testing.T) *dispatch.Queue {
	t.Helper()
	q := dispatch.NewQueue(slog.Default())
	go q.Run()
	t.Cleanup(q.Close)
	return q
}

func syncQueue(t *testing.T, q *dispatch.Queue) {
	t.Helper()
	done := make(chan struct{})
	q.Post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue did not drain in time")
	}
}

// await blocks until ch closes or the test deadline passes.
func await(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s never ran", what)
	}
}

func TestRequestSuccess(t *testing.T) {
	q := startQueue(t)
	tr := &stubTransport{status: 200, body: "hello"}
	c := NewClient(tr, q, nil)

	done := make(chan struct{})
	var got string
	failed := false
	c.Request(Config{
		URL:       "http://example.test/data",
		OnSuccess: func(body string) { got = body; close(done) },
		OnFailure: func(error) { failed = true },
	})
	await(t, done, "OnSuccess")

	if got != "hello" {
		t.Errorf("body = %q, want %q", got, "hello")
	}
	if failed {
		t.Error("OnFailure ran on a successful request")
	}
	if tr.lastMethod != "GET" {
		t.Errorf("method = %q, want GET by default", tr.lastMethod)
	}
	if tr.lastURL != "http://example.test/data" {
		t.Errorf("url = %q", tr.lastURL)
	}
}

func TestRequestExplicitMethod(t *testing.T) {
	q := startQueue(t)
	tr := &stubTransport{status: 200}
	c := NewClient(tr, q, nil)

	done := make(chan struct{})
	c.Request(Config{
		URL:       "http://example.test/submit",
		Method:    "POST",
		OnSuccess: func(string) { close(done) },
	})
	await(t, done, "OnSuccess")

	if tr.lastMethod != "POST" {
		t.Errorf("method = %q, want POST", tr.lastMethod)
	}
}

func TestRequestNon200IsFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"created", 201},
		{"not_modified", 304},
		{"not_found", 404},
		{"server_error", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := startQueue(t)
			tr := &stubTransport{status: tt.status, body: "ignored"}
			c := NewClient(tr, q, nil)

			done := make(chan struct{})
			var got error
			succeeded := false
			c.Request(Config{
				URL:       "http://example.test/data",
				OnSuccess: func(string) { succeeded = true },
				OnFailure: func(err error) { got = err; close(done) },
			})
			await(t, done, "OnFailure")

			if succeeded {
				t.Errorf("OnSuccess ran for status %d", tt.status)
			}
			var se *StatusError
			if !errors.As(got, &se) {
				t.Fatalf("error = %v, want *StatusError", got)
			}
			if se.Code != tt.status {
				t.Errorf("StatusError.Code = %d, want %d", se.Code, tt.status)
			}
		})
	}
}

func TestRequestTransportError(t *testing.T) {
	q := startQueue(t)
	boom := errors.New("connection refused")
	c := NewClient(&stubTransport{err: boom}, q, nil)

	done := make(chan struct{})
	var got error
	c.Request(Config{
		URL:       "http://example.test/data",
		OnFailure: func(err error) { got = err; close(done) },
	})
	await(t, done, "OnFailure")

	if !errors.Is(got, boom) {
		t.Errorf("error = %v, want the transport error", got)
	}
}

func TestRequestNilTransport(t *testing.T) {
	q := startQueue(t)
	c := NewClient(nil, q, nil)

	done := make(chan struct{})
	var got error
	c.Request(Config{
		URL:       "http://example.test/data",
		OnSuccess: func(string) { t.Error("OnSuccess ran without a transport") },
		OnFailure: func(err error) { got = err; close(done) },
	})
	await(t, done, "OnFailure")

	if !errors.Is(got, ErrNoTransport) {
		t.Errorf("error = %v, want ErrNoTransport", got)
	}
}

func TestRequestFailureWithoutListenerIsDropped(t *testing.T) {
	q := startQueue(t)
	c := NewClient(&stubTransport{status: 500}, q, nil)

	// Nothing to observe but the absence of a panic.
	c.Request(Config{URL: "http://example.test/data"})
	syncQueue(t, q)
	syncQueue(t, q)
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Code: 404}
	if got := err.Error(); got != "fetch: unexpected status 404" {
		t.Errorf("Error() = %q", got)
	}
}
