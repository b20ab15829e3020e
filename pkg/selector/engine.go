package selector

import (
	"log/slog"

	"github.com/mote-dev/mote/pkg/host"
)

// Strategy identifies how the engine answers selector queries.
type Strategy uint8

const (
	// StrategyNative delegates queries to the host's selector engine.
	StrategyNative Strategy = iota + 1
	// StrategyLegacyStyleProbe synthesizes matches with a throwaway style
	// rule and a full element scan.
	StrategyLegacyStyleProbe
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyNative:
		return "native"
	case StrategyLegacyStyleProbe:
		return "legacy-style-probe"
	default:
		return "unknown"
	}
}

// Choose picks the query strategy for a capability set.
func Choose(caps host.Capabilities) Strategy {
	if caps.NativeQuery {
		return StrategyNative
	}
	return StrategyLegacyStyleProbe
}

// Engine answers selector queries for one document. The strategy is fixed
// at construction.
type Engine struct {
	env    host.Env
	caps   host.Capabilities
	strat  Strategy
	logger *slog.Logger
}

// NewEngine builds an engine bound to the strategy Choose selects for
// caps. A nil logger defaults to slog.Default().
func NewEngine(env host.Env, caps host.Capabilities, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		env:    env,
		caps:   caps,
		strat:  Choose(caps),
		logger: logger,
	}
}

// Strategy returns the strategy the engine was bound to.
func (e *Engine) Strategy() Strategy {
	return e.strat
}

// QueryAll returns all descendants of root matching sel, in document
// order. A nil root queries the whole document. Failures degrade to an
// empty result.
func (e *Engine) QueryAll(sel string, root host.Node) []host.Node {
	if root == nil {
		root = e.env.Root()
	}
	switch e.strat {
	case StrategyNative:
		nodes, err := e.env.QueryAll(root, sel)
		if err != nil {
			e.logger.Debug("native query failed", "selector", sel, "error", err)
			return nil
		}
		return nodes
	default:
		return e.probeQuery(root, sel)
	}
}

// Matches reports whether n matches sel. The native single-node test is
// preferred; without one, membership in a document-scoped QueryAll
// decides.
func (e *Engine) Matches(n host.Node, sel string) bool {
	if n == nil {
		return false
	}
	if e.caps.NativeMatch {
		ok, err := e.env.Match(n, sel)
		if err != nil {
			e.logger.Debug("native match failed", "selector", sel, "error", err)
			return false
		}
		return ok
	}
	for _, candidate := range e.QueryAll(sel, nil) {
		if candidate.SameAs(n) {
			return true
		}
	}
	return false
}
