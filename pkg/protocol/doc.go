// Package protocol implements the binary wire protocol for the mote bridge.
//
// The bridge drives a real browser document from a Go process: document
// operations flow from server to client, and events, load signals, and
// operation results flow from client to server over a WebSocket connection.
// The protocol is optimized for minimal bandwidth and fast encoding/decoding.
//
// # Design Goals
//
//   - Minimal size: typical op < 20 bytes, typical event < 10 bytes
//   - Fast encoding/decoding: no reflection, direct byte manipulation
//   - Request/reply ops: every operation carries a sequence number the
//     client echoes, so replies correlate without ordering assumptions
//   - Defensive decoding: allocation, collection, and field length limits
//     on everything the peer controls
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): Connection setup
//   - FrameOp (0x01): Server → Client document operations
//   - FrameReply (0x02): Client → Server operation results
//   - FrameEvent (0x03): Client → Server notifications
//   - FrameControl (0x04): Control messages (ping, bye)
//   - FrameError (0x05): Error message
//
// # Encoding
//
// The protocol uses several encoding strategies:
//
//   - Varint: compact encoding for small integers (protobuf-style)
//   - Length-prefixed: strings and byte arrays prefixed with varint length
//   - Big-endian: fixed-width integers (uint16, uint32, uint64)
//
// Sequence numbers, node references, and listener IDs are varints because
// they start at small values and usually stay there.
//
// # Handshake
//
// Connection establishment uses ClientHello and ServerHello messages:
//
//	Client                          Server
//	  │                                │
//	  │──── ClientHello ─────────────>│
//	  │     (version, url, caps,      │
//	  │      ready state, viewport)   │
//	  │                                │
//	  │<──── ServerHello ─────────────│
//	  │     (status, session, time)   │
//	  │                                │
//
// The client probes its document once and declares the result as capability
// bits; the server never has to discover capabilities over the wire.
//
// # Operations
//
// Document operations are request/reply. The server assigns a sequence
// number, the client performs the operation and echoes the number in its
// reply:
//
//	Server                          Client
//	  │                                │
//	  │──── OpRequest ───────────────>│
//	  │     (seq, code, args)         │
//	  │                                │
//	  │<──── OpReply ─────────────────│
//	  │     (seq, status, results)    │
//	  │                                │
//
// Elements are named by NodeRef handles the client assigns when a query
// first returns them. Example query encoding:
//
//	[Seq: varint][Code: 0x01][Target: varint][ID: varint]
//	[Selector: len-prefixed][Name: 0][Value: 0]
//	Total: ~12 bytes for ".item"
//
// # Events
//
// Registered listeners report deliveries asynchronously; the document's
// load signals and ready state transitions arrive the same way:
//
//	[Kind: 0x01][Listener: varint][Target: varint][Type: len-prefixed]
//	Total: ~10 bytes for a "click"
//
// # Control Messages
//
//   - Ping/Pong: heartbeat for connection health
//   - Bye: orderly shutdown notice with reason
package protocol
