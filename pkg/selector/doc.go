// Package selector provides selector-based node lookup and single-node
// match tests over a host environment.
//
// The Engine binds to one of two strategies when it is constructed and
// never re-probes; capability is checked once per document, not once per
// call:
//
//   - StrategyNative delegates to the host's selector engine.
//   - StrategyLegacyStyleProbe synthesizes matches by installing a
//     throwaway style rule and testing a probe property on every element
//     under the root. It is O(all elements) per query and exists for
//     hosts without a native engine; expect it to be visibly slow.
//
// Strategy selection assumes host capability does not change during the
// process lifetime, which holds for the environments mote targets.
//
// Lookups are best effort: an invalid selector or a failed probe yields
// an empty result, never an error. Hosts surface their own diagnostics
// through the debug log.
package selector
