package mote

import (
	"testing"

	"github.com/mote-dev/mote/pkg/dom"
	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/memdom"
)

// =============================================================================
// Type Alias Tests
// =============================================================================

func TestDocumentIsDomDocument(t *testing.T) {
	// Verify that mote.Document is the same type as dom.Document
	var moteDoc *Document
	var domDoc *dom.Document

	// They should be assignable
	moteDoc = domDoc
	_ = moteDoc
}

func TestEnvIsHostEnv(t *testing.T) {
	var moteEnv Env
	var hostEnv host.Env

	moteEnv = hostEnv
	_ = moteEnv
}

func TestOptionsExist(t *testing.T) {
	// Verify document options are exported
	_ = WithLogger
	_ = WithTransport
	_ = WithQueue
	_ = WithReadyOptions
	_ = WithPollInterval
	_ = WithReadyTimeout
}

func TestReadyStateConstants(t *testing.T) {
	if ReadyLoading == ReadyComplete {
		t.Error("ready state constants must be distinct")
	}
	if ReadyInteractive == ReadyComplete {
		t.Error("ready state constants must be distinct")
	}
}

func TestStrategyConstants(t *testing.T) {
	if StrategyNative == StrategyLegacyStyleProbe {
		t.Error("strategy constants must be distinct")
	}
}

// =============================================================================
// String Helper Re-exports
// =============================================================================

func TestClassTokenHelpers(t *testing.T) {
	cls := AddToken("", "active")
	if cls != "active" {
		t.Errorf("AddToken: got %q, want %q", cls, "active")
	}
	if !HasToken(cls, "active") {
		t.Error("HasToken: expected active to be present")
	}
	cls = ToggleToken(cls, "active")
	if HasToken(cls, "active") {
		t.Error("ToggleToken: expected active to be removed")
	}
	cls = SetToken(cls, "lit", true)
	if !HasToken(cls, "lit") {
		t.Error("SetToken: expected lit to be present")
	}
	if got := Trim("  x  "); got != "x" {
		t.Errorf("Trim: got %q, want %q", got, "x")
	}
}

func TestTemplate(t *testing.T) {
	got := Template("hello {{name}}", map[string]string{"name": "mote"})
	if got != "hello mote" {
		t.Errorf("Template: got %q, want %q", got, "hello mote")
	}
}

// =============================================================================
// Facade Round Trip
// =============================================================================

func TestDocumentAgainstMemdom(t *testing.T) {
	env, err := memdom.New(`<html><body>
		<div id="a" class="card"></div>
		<div id="b" class="card"></div>
	</body></html>`, memdom.WithReadyState(ReadyComplete))
	if err != nil {
		t.Fatalf("memdom.New: %v", err)
	}

	doc := NewDocument(env)
	defer doc.Close()

	fired := make(chan struct{})
	doc.Ready(func() { close(fired) })
	<-fired

	cards := doc.QueryAll(".card")
	if len(cards) != 2 {
		t.Fatalf("QueryAll(.card): got %d nodes, want 2", len(cards))
	}

	doc.Do(func() {
		doc.AddClass(cards[0], "visible")
	})
	doc.Do(func() {
		if !doc.HasClass(cards[0], "visible") {
			t.Error("expected visible class after AddClass")
		}
		if doc.HasClass(cards[1], "visible") {
			t.Error("AddClass must not leak to sibling nodes")
		}
	})
}

func TestProbeCapabilities(t *testing.T) {
	env, err := memdom.New(`<html><body></body></html>`)
	if err != nil {
		t.Fatalf("memdom.New: %v", err)
	}
	caps := ProbeCapabilities(env)
	if !caps.NativeQuery {
		t.Error("memdom should report native selector support")
	}
}
