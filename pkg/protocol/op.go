package protocol

// OpCode identifies a document operation the server asks the client to run.
type OpCode uint8

const (
	OpQuery         OpCode = 0x01 // Selector query under Target (RefNone = document)
	OpMatch         OpCode = 0x02 // Test Target against Selector
	OpGetAttr       OpCode = 0x03 // Read attribute Name from Target
	OpSetAttr       OpCode = 0x04 // Write attribute Name on Target
	OpListen        OpCode = 0x05 // Register listener for event Name on Target
	OpUnlisten      OpCode = 0x06 // Remove listener ID
	OpProbe         OpCode = 0x07 // Check layout readiness
	OpInstallRule   OpCode = 0x08 // Install style rule Selector { Name: Value }
	OpRemoveRule    OpCode = 0x09 // Remove style rule ID
	OpReadyState    OpCode = 0x0A // Report document ready state
	OpComputedStyle OpCode = 0x0B // Read computed style property Name from Target
	OpSnapshot      OpCode = 0x0C // Serialize the document
)

// String returns the string representation of the op code.
func (oc OpCode) String() string {
	switch oc {
	case OpQuery:
		return "Query"
	case OpMatch:
		return "Match"
	case OpGetAttr:
		return "GetAttr"
	case OpSetAttr:
		return "SetAttr"
	case OpListen:
		return "Listen"
	case OpUnlisten:
		return "Unlisten"
	case OpProbe:
		return "Probe"
	case OpInstallRule:
		return "InstallRule"
	case OpRemoveRule:
		return "RemoveRule"
	case OpReadyState:
		return "ReadyState"
	case OpComputedStyle:
		return "ComputedStyle"
	case OpSnapshot:
		return "Snapshot"
	default:
		return "Unknown"
	}
}

// OpStatus reports the outcome of an operation.
type OpStatus uint8

const (
	OpOK          OpStatus = 0x00 // Operation succeeded
	OpUnsupported OpStatus = 0x01 // Document cannot perform this operation
	OpNotFound    OpStatus = 0x02 // Unknown node reference or listener ID
	OpFailed      OpStatus = 0x03 // Operation failed; Error carries detail
)

// String returns the string representation of the op status.
func (os OpStatus) String() string {
	switch os {
	case OpOK:
		return "OK"
	case OpUnsupported:
		return "Unsupported"
	case OpNotFound:
		return "NotFound"
	case OpFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// OpRequest is one document operation. Ops are request/reply: the server
// assigns Seq, the client echoes it in the matching OpReply. The message is
// a flat schema with every field always on the wire; unused strings cost one
// byte each and unused integers one byte, which keeps encoding trivial for a
// message that is never on a hot path.
//
// Field use by op code:
//
//	Query:         Target (scope root, RefNone = document), Selector
//	Match:         Target, Selector
//	GetAttr:       Target, Name
//	SetAttr:       Target, Name, Value
//	Listen:        Target, Name (event type)
//	Unlisten:      ID (listener)
//	Probe:         —
//	InstallRule:   Selector, Name (property), Value
//	RemoveRule:    ID (rule)
//	ReadyState:    —
//	ComputedStyle: Target, Name (property)
//	Snapshot:      —
type OpRequest struct {
	Seq      uint32  // Round-trip correlator, assigned by the server
	Code     OpCode  // Operation to perform
	Target   NodeRef // Element the operation applies to
	ID       uint32  // Listener or rule ID
	Selector string  // Selector argument
	Name     string  // Attribute, property, or event type name
	Value    string  // Attribute or rule value
}

// EncodeOpRequest encodes an OpRequest to bytes.
func EncodeOpRequest(op *OpRequest) []byte {
	e := NewEncoder()
	EncodeOpRequestTo(e, op)
	return e.Bytes()
}

// EncodeOpRequestTo encodes an OpRequest using the provided encoder.
func EncodeOpRequestTo(e *Encoder, op *OpRequest) {
	e.WriteUvarint(uint64(op.Seq))
	e.WriteByte(byte(op.Code))
	e.WriteUvarint(uint64(op.Target))
	e.WriteUvarint(uint64(op.ID))
	e.WriteString(op.Selector)
	e.WriteString(op.Name)
	e.WriteString(op.Value)
}

// DecodeOpRequest decodes an OpRequest from bytes.
func DecodeOpRequest(data []byte) (*OpRequest, error) {
	d := NewDecoder(data)
	return DecodeOpRequestFrom(d)
}

// DecodeOpRequestFrom decodes an OpRequest from a decoder.
func DecodeOpRequestFrom(d *Decoder) (*OpRequest, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	code, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	target, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	id, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	selector, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := checkFieldLen(len(selector), MaxSelectorLen); err != nil {
		return nil, err
	}

	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := checkFieldLen(len(name), MaxNameLen); err != nil {
		return nil, err
	}

	value, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := checkFieldLen(len(value), MaxValueLen); err != nil {
		return nil, err
	}

	return &OpRequest{
		Seq:      uint32(seq),
		Code:     OpCode(code),
		Target:   NodeRef(target),
		ID:       uint32(id),
		Selector: selector,
		Name:     name,
		Value:    value,
	}, nil
}

// OpReply carries the outcome of one operation back to the server.
//
// Field use by op code:
//
//	Query:         Refs (matches in document order)
//	Match:         Flag
//	GetAttr:       Value
//	SetAttr:       —
//	Listen:        ID (assigned listener)
//	Unlisten:      —
//	Probe:         Flag (layout ready)
//	InstallRule:   ID (assigned rule)
//	RemoveRule:    —
//	ReadyState:    State
//	ComputedStyle: Value
//	Snapshot:      Value (serialized document, truncated to MaxSnapshotLen)
type OpReply struct {
	Seq    uint32    // Correlator echoed from the request
	Status OpStatus  // Outcome
	Flag   bool      // Boolean result
	ID     uint32    // Assigned listener or rule ID
	State  uint8     // Ready state snapshot
	Value  string    // String result
	Error  string    // Failure detail when Status != OpOK
	Refs   []NodeRef // Query results
}

// EncodeOpReply encodes an OpReply to bytes.
func EncodeOpReply(r *OpReply) []byte {
	e := NewEncoder()
	EncodeOpReplyTo(e, r)
	return e.Bytes()
}

// EncodeOpReplyTo encodes an OpReply using the provided encoder.
func EncodeOpReplyTo(e *Encoder, r *OpReply) {
	e.WriteUvarint(uint64(r.Seq))
	e.WriteByte(byte(r.Status))
	e.WriteBool(r.Flag)
	e.WriteUvarint(uint64(r.ID))
	e.WriteByte(r.State)
	e.WriteString(r.Value)
	e.WriteString(r.Error)
	e.WriteUvarint(uint64(len(r.Refs)))
	for _, ref := range r.Refs {
		e.WriteUvarint(uint64(ref))
	}
}

// DecodeOpReply decodes an OpReply from bytes.
func DecodeOpReply(data []byte) (*OpReply, error) {
	d := NewDecoder(data)
	return DecodeOpReplyFrom(d)
}

// DecodeOpReplyFrom decodes an OpReply from a decoder.
func DecodeOpReplyFrom(d *Decoder) (*OpReply, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	flag, err := d.ReadBool()
	if err != nil {
		return nil, err
	}

	id, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	state, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	// Reply values carry attribute reads and document snapshots; the
	// snapshot bound is the larger of the two.
	value, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := checkFieldLen(len(value), MaxSnapshotLen); err != nil {
		return nil, err
	}

	errText, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := checkFieldLen(len(errText), MaxTextLen); err != nil {
		return nil, err
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count > MaxQueryResults {
		return nil, ErrCollectionTooLarge
	}

	var refs []NodeRef
	if count > 0 {
		refs = make([]NodeRef, count)
		for i := 0; i < count; i++ {
			ref, err := d.ReadUvarint()
			if err != nil {
				return nil, err
			}
			refs[i] = NodeRef(ref)
		}
	}

	return &OpReply{
		Seq:    uint32(seq),
		Status: OpStatus(status),
		Flag:   flag,
		ID:     uint32(id),
		State:  state,
		Value:  value,
		Error:  errText,
		Refs:   refs,
	}, nil
}

// NewQueryOp creates a selector query scoped to root (RefNone = document).
func NewQueryOp(seq uint32, root NodeRef, selector string) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpQuery, Target: root, Selector: selector}
}

// NewMatchOp creates a selector test against a single element.
func NewMatchOp(seq uint32, target NodeRef, selector string) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpMatch, Target: target, Selector: selector}
}

// NewGetAttrOp creates an attribute read.
func NewGetAttrOp(seq uint32, target NodeRef, name string) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpGetAttr, Target: target, Name: name}
}

// NewSetAttrOp creates an attribute write.
func NewSetAttrOp(seq uint32, target NodeRef, name, value string) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpSetAttr, Target: target, Name: name, Value: value}
}

// NewListenOp creates a listener registration for an event type.
func NewListenOp(seq uint32, target NodeRef, event string) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpListen, Target: target, Name: event}
}

// NewUnlistenOp creates a listener removal.
func NewUnlistenOp(seq uint32, listenerID uint32) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpUnlisten, ID: listenerID}
}

// NewProbeOp creates a layout readiness check.
func NewProbeOp(seq uint32) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpProbe}
}

// NewInstallRuleOp creates a style rule installation.
func NewInstallRuleOp(seq uint32, selector, property, value string) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpInstallRule, Selector: selector, Name: property, Value: value}
}

// NewRemoveRuleOp creates a style rule removal.
func NewRemoveRuleOp(seq uint32, ruleID uint32) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpRemoveRule, ID: ruleID}
}

// NewReadyStateOp creates a ready state query.
func NewReadyStateOp(seq uint32) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpReadyState}
}

// NewComputedStyleOp creates a computed style property read.
func NewComputedStyleOp(seq uint32, target NodeRef, property string) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpComputedStyle, Target: target, Name: property}
}

// NewSnapshotOp creates a document serialization request.
func NewSnapshotOp(seq uint32) *OpRequest {
	return &OpRequest{Seq: seq, Code: OpSnapshot}
}

// NewOKReply creates a successful reply with no result payload.
func NewOKReply(seq uint32) *OpReply {
	return &OpReply{Seq: seq, Status: OpOK}
}

// NewFailedReply creates a failed reply carrying an error description.
func NewFailedReply(seq uint32, status OpStatus, detail string) *OpReply {
	return &OpReply{Seq: seq, Status: status, Error: detail}
}
