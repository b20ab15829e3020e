package protocol

// NodeRef identifies an element inside the remote document. References are
// handed out by the client: when a query reply names an element for the
// first time the client tags it with a fresh reference and reuses that
// reference for the element's lifetime. The server never invents references;
// it only echoes ones it has seen, plus the reserved values below.
type NodeRef uint32

const (
	// RefNone means "no element". Used for absent targets and as the scope
	// root meaning "the whole document".
	RefNone NodeRef = 0

	// RefRoot is the document's root element.
	RefRoot NodeRef = 1

	// RefBody is the document body. Delegated listeners bind here when no
	// container is given.
	RefBody NodeRef = 2

	// RefDynamicBase is the first reference the client may assign to an
	// element it discovers. Values below it are reserved.
	RefDynamicBase NodeRef = 16
)

// Reserved returns true for references the client must not assign dynamically.
func (r NodeRef) Reserved() bool {
	return r < RefDynamicBase
}
