package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "WebSocket connection failed",
		Detail:   "The browser could not establish or maintain a WebSocket connection to the bridge.",
		DocURL:   "https://mote.dev/docs/errors/E060",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Invalid message format",
		Detail:   "A binary frame could not be decoded. The payload may be truncated or corrupt.",
		DocURL:   "https://mote.dev/docs/errors/E061",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "Unknown operation code",
		Detail:   "The peer sent an operation this version of mote does not recognize.",
		DocURL:   "https://mote.dev/docs/errors/E062",
	},
	"E063": {
		Category: CategoryProtocol,
		Message:  "Allocation limit exceeded",
		Detail:   "A length prefix in the frame exceeds the decoder's safety limits.",
		DocURL:   "https://mote.dev/docs/errors/E063",
	},
	"E064": {
		Category: CategoryProtocol,
		Message:  "Protocol version mismatch",
		Detail:   "The client and server speak incompatible protocol versions.",
		DocURL:   "https://mote.dev/docs/errors/E064",
	},
	"E065": {
		Category: CategoryProtocol,
		Message:  "Unexpected reply sequence",
		Detail:   "A reply arrived for an operation that is not pending. It may have already timed out.",
		DocURL:   "https://mote.dev/docs/errors/E065",
	},
	"E066": {
		Category: CategoryProtocol,
		Message:  "Handshake failed",
		Detail:   "The connection was rejected during the hello exchange.",
		DocURL:   "https://mote.dev/docs/errors/E066",
	},

	// ============================================
	// Bridge Errors (E080-E099)
	// ============================================

	"E080": {
		Category: CategoryBridge,
		Message:  "Session not found",
		Detail:   "No live or resumable session matches the given session ID.",
		DocURL:   "https://mote.dev/docs/errors/E080",
	},
	"E081": {
		Category: CategoryBridge,
		Message:  "Session expired",
		Detail:   "The session's resume window elapsed before the browser reconnected.",
		DocURL:   "https://mote.dev/docs/errors/E081",
	},
	"E082": {
		Category: CategoryBridge,
		Message:  "Server at session capacity",
		Detail:   "The bridge refused the connection because the session limit is reached.",
		DocURL:   "https://mote.dev/docs/errors/E082",
	},
	"E083": {
		Category: CategoryBridge,
		Message:  "Operation timed out",
		Detail:   "The browser did not acknowledge an operation within the configured timeout.",
		DocURL:   "https://mote.dev/docs/errors/E083",
	},
	"E084": {
		Category: CategoryBridge,
		Message:  "Operation failed in browser",
		Detail:   "The browser reported an error while applying an operation.",
		DocURL:   "https://mote.dev/docs/errors/E084",
	},
	"E085": {
		Category: CategoryBridge,
		Message:  "Event queue overflow",
		Detail:   "Browser events arrived faster than handlers could drain them and some were dropped.",
		DocURL:   "https://mote.dev/docs/errors/E085",
	},

	// ============================================
	// Snapshot Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategorySnapshot,
		Message:  "Snapshot not found",
		Detail:   "No snapshot with the given hash exists in the store.",
		DocURL:   "https://mote.dev/docs/errors/E100",
	},
	"E101": {
		Category: CategorySnapshot,
		Message:  "Snapshot write failed",
		Detail:   "The snapshot could not be persisted to the store.",
		DocURL:   "https://mote.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategorySnapshot,
		Message:  "Snapshot read failed",
		Detail:   "The snapshot exists but its contents could not be read back.",
		DocURL:   "https://mote.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategorySnapshot,
		Message:  "Snapshot directory unavailable",
		Detail:   "The configured snapshot directory does not exist and could not be created.",
		DocURL:   "https://mote.dev/docs/errors/E103",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid mote.json",
		Detail:   "The configuration file contains invalid JSON.",
		DocURL:   "https://mote.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration field is missing.",
		DocURL:   "https://mote.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port must be between 1 and 65535.",
		DocURL:   "https://mote.dev/docs/errors/E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		Detail:   "A duration field could not be parsed. Use Go syntax such as \"30s\" or \"2m\".",
		DocURL:   "https://mote.dev/docs/errors/E123",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Not a mote project",
		Detail:   "No mote.json found in this directory or any parent directory.",
		DocURL:   "https://mote.dev/docs/errors/E140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Input file not found",
		Detail:   "The file passed on the command line does not exist.",
		DocURL:   "https://mote.dev/docs/errors/E141",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Demo server failed",
		Detail:   "The demo server could not start. The port may already be in use.",
		DocURL:   "https://mote.dev/docs/errors/E142",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Snapshot capture failed",
		Detail:   "The document could not be parsed or the snapshot could not be stored.",
		DocURL:   "https://mote.dev/docs/errors/E143",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a custom error template to the registry.
// Intended for applications that want their own coded errors to render
// through the same formatter.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
