package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mote-dev/mote/internal/config"
	moteerrors "github.com/mote-dev/mote/internal/errors"
	"github.com/mote-dev/mote/pkg/bridge"
	"github.com/mote-dev/mote/pkg/dom"
	"github.com/mote-dev/mote/pkg/fetch"
	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/middleware"
	"github.com/mote-dev/mote/pkg/protocol"
)

func demoCmd() *cobra.Command {
	var (
		port        int
		hostFlag    string
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Start the playground server",
		Long: `Start a playground server that drives a live page over the bridge.

The server hosts a small demo page. When a browser connects, the
server binds handlers on the page and reacts to clicks, all from Go:

  • Boxes light up once the document is ready
  • Clicking a box toggles its highlight
  • The fortune button runs a fetch on the server and writes
    the result back into the page

Examples:
  mote demo
  mote demo --port=9090
  mote demo --host=0.0.0.0 --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(port, hostFlag, openBrowser)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from mote.json)")
	cmd.Flags().StringVarP(&hostFlag, "host", "H", "", "Host to bind to (default from mote.json)")
	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open browser on start")

	return cmd
}

func runDemo(port int, hostFlag string, openBrowser bool) error {
	// Load config; the demo also runs outside a mote project.
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		var me *moteerrors.MoteError
		if errors.As(err, &me) && me.Code == "E140" {
			warn("No mote.json found, using defaults")
			cfg = config.New()
		} else {
			return err
		}
	}

	// Apply command-line overrides
	if port > 0 {
		cfg.Server.Port = port
	}
	if hostFlag != "" {
		cfg.Server.Host = hostFlag
	}
	if openBrowser {
		cfg.Server.OpenBrowser = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	bcfg, err := cfg.BridgeConfig()
	if err != nil {
		return err
	}

	metrics := middleware.NewBridgeMetrics()
	obs := &demoObserver{metrics: metrics, baseURL: cfg.URL()}
	bcfg.Observer = obs

	srv := bridge.New(bcfg)
	srv.SetHandler(http.HandlerFunc(servePlayground))
	obs.server = srv

	r := chi.NewRouter()
	r.Use(middleware.Metrics())
	r.Use(middleware.OpenTelemetry())
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}
	r.Get("/api/fortune", serveFortune)
	r.Handle("/*", srv.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Print banner
	printBanner()
	fmt.Println("  demo")
	fmt.Println()
	info("Playground:  %s", cfg.URL())
	info("WebSocket:   ws://%s%s", cfg.Address(), bridge.PathWS)
	info("Health:      %s%s", cfg.URL(), bridge.PathHealth)
	if cfg.Metrics.Enabled {
		info("Metrics:     %s%s", cfg.URL(), cfg.Metrics.Path)
	}
	fmt.Println()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	// Open browser if requested
	if cfg.Server.OpenBrowser {
		go openURL(cfg.URL())
	}

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return moteerrors.New("E142").Wrap(err)
		}
		return nil

	case <-sigCh:
		fmt.Println("\n\n  Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		return httpServer.Shutdown(ctx)
	}
}

// === Session driving ===

// demoObserver forwards lifecycle notifications to the Prometheus set and
// drives each new page from the server side.
type demoObserver struct {
	metrics *middleware.BridgeMetrics
	server  *bridge.Server
	baseURL string
}

func (o *demoObserver) SessionStarted(id string) {
	o.metrics.SessionStarted(id)
	go o.runSession(id)
}

func (o *demoObserver) SessionClosed(id string) {
	o.metrics.SessionClosed(id)
}

func (o *demoObserver) OpCompleted(op protocol.OpCode, d time.Duration, err error) {
	o.metrics.OpCompleted(op, d, err)
}

func (o *demoObserver) EventRelayed(kind protocol.EventKind) {
	o.metrics.EventRelayed(kind)
}

// runSession binds the playground behavior onto one connected page and
// holds the document open until the session ends.
func (o *demoObserver) runSession(id string) {
	sess := o.server.Session(id)
	if sess == nil {
		return
	}

	doc := dom.New(sess, dom.WithTransport(&fetch.HTTPTransport{}))
	defer doc.Close()

	doc.Ready(func() {
		for _, box := range doc.QueryAll(".box") {
			doc.AddClass(box, "ready")
		}

		doc.Delegate(".box", "click", func(el host.Node, ev host.Event) {
			doc.ToggleClass(el, "lit")
		}, nil)

		if btn := doc.Query("#fortune-btn"); btn != nil {
			doc.On(btn, "click", func(host.Event) {
				o.fetchFortune(doc, sess)
			})
		}
	})

	<-sess.Done()
}

// fetchFortune runs a fetch on the server and writes the result into the
// page. The result lands in a data attribute the page's CSS renders.
func (o *demoObserver) fetchFortune(doc *dom.Document, sess *bridge.Session) {
	out := doc.Query("#fortune")
	if out == nil {
		return
	}

	doc.RemoveClass(out, "error")
	doc.AddClass(out, "loading")

	doc.Request(fetch.Config{
		URL: o.baseURL + "/api/fortune",
		OnSuccess: func(body string) {
			sess.SetAttr(out, "data-text", body)
			doc.RemoveClass(out, "loading")
			doc.AddClass(out, "filled")
		},
		OnFailure: func(err error) {
			doc.RemoveClass(out, "loading")
			doc.AddClass(out, "error")
		},
	})
}

// === Playground page ===

var fortunes = []string{
	"A program is never finished, only abandoned.",
	"The best debugger is a good night's sleep.",
	"Make it work, make it right, make it fast.",
	"Simplicity is prerequisite for reliability.",
	"Deleted code is debugged code.",
}

func serveFortune(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, fortunes[rand.Intn(len(fortunes))])
}

func servePlayground(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, playgroundHTML)
}

const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>mote playground</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 3rem auto; color: #222; }
  h1 { font-weight: 600; }
  .hint { color: #666; }
  .row { display: flex; gap: 1rem; margin: 2rem 0; }
  .box { width: 6rem; height: 6rem; border: 2px solid #ccc; border-radius: 8px;
         transition: all .15s ease; }
  .box.ready { border-color: #4a90d9; }
  .box.lit { background: #4a90d9; border-color: #2a6cb0; }
  #fortune-btn { padding: .5rem 1rem; font-size: 1rem; cursor: pointer; }
  #fortune { min-height: 1.5rem; color: #444; font-style: italic; }
  #fortune.loading::after { content: "…"; }
  #fortune.filled::after { content: attr(data-text); }
  #fortune.error::after { content: "fetch failed"; color: #c0392b; }
</style>
</head>
<body>
  <h1>mote playground</h1>
  <p class="hint">Everything on this page is driven from the Go server.
  Boxes get a blue border once the server sees the document ready.
  Click a box to toggle it. The button runs a fetch on the server and
  writes the answer back here.</p>

  <div class="row">
    <div class="box"></div>
    <div class="box"></div>
    <div class="box"></div>
  </div>

  <button id="fortune-btn">Fetch a fortune</button>
  <p id="fortune"></p>

  <script src="/mote/client.js"></script>
</body>
</html>
`

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd

	switch {
	case commandExists("xdg-open"):
		cmd = exec.Command("xdg-open", url)
	case commandExists("open"):
		cmd = exec.Command("open", url)
	case commandExists("start"):
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}

	cmd.Start()
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
