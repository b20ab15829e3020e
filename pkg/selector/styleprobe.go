package selector

import (
	"strconv"
	"sync/atomic"

	"github.com/mote-dev/mote/pkg/host"
)

// probeProperty is the custom style property the legacy strategy declares
// in its throwaway rule. Legacy engines expose declared properties through
// computed style even when they do not understand them, which is the whole
// trick.
const probeProperty = "-mote-probe"

var probeSeq atomic.Uint64

// probeQuery runs one legacy-style query: install `sel { -mote-probe: <marker> }`,
// scan every element under root for the marker in computed style, remove
// the rule. Hosts without style probing yield no matches.
func (e *Engine) probeQuery(root host.Node, sel string) []host.Node {
	sp, ok := e.env.(host.StyleProber)
	if !ok {
		e.logger.Debug("legacy query without style prober", "selector", sel)
		return nil
	}

	marker := "m" + strconv.FormatUint(probeSeq.Add(1), 10)
	remove, err := sp.InstallProbeRule(sel, probeProperty, marker)
	if err != nil {
		e.logger.Debug("probe rule install failed", "selector", sel, "error", err)
		return nil
	}
	defer remove()

	var out []host.Node
	sp.WalkElements(root, func(n host.Node) bool {
		v, err := sp.ComputedStyle(n, probeProperty)
		if err == nil && v == marker {
			out = append(out, n)
		}
		return true
	})
	return out
}
