package bridge

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	clientdist "github.com/mote-dev/mote/client/dist"
)

var clientETag = func() string {
	sum := sha256.Sum256(clientdist.MoteBridgeJS)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:]))
}()

// serveClient serves the embedded browser shim. The page loads it with one
// script tag; the shim dials PathWS and answers ops.
func (s *Server) serveClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if len(clientdist.MoteBridgeJS) == 0 {
		http.Error(w, "Bridge client not available", http.StatusInternalServerError)
		return
	}

	// ETag-based caching (safe even without a versioned URL).
	w.Header().Set("ETag", clientETag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	// Caching policy:
	// - Debug: no-store to avoid stale shim behavior while iterating.
	// - Prod: revalidate via ETag (no versioned URL yet), so updates are picked up safely.
	if s.config.Debug {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}

	if etagMatches(r.Header.Get("If-None-Match"), clientETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(clientdist.MoteBridgeJS)
}

func etagMatches(ifNoneMatchHeader, etag string) bool {
	if ifNoneMatchHeader == "" || etag == "" {
		return false
	}
	// Handle lists: If-None-Match: "abc", W/"def"
	for _, part := range strings.Split(ifNoneMatchHeader, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == etag {
			return true
		}
		if strings.HasPrefix(candidate, "W/") && strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
