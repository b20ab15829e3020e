package clientdist

import _ "embed"

// MoteBridgeJS is the browser shim JavaScript bundle.
//
// It is served by the bridge at "/mote/client.js".
//
//go:embed mote-bridge.js
var MoteBridgeJS []byte
