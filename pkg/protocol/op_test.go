package protocol

import (
	"errors"
	"testing"
)

func TestOpRequestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		op   *OpRequest
	}{
		{"query", NewQueryOp(1, RefNone, ".item")},
		{"query_scoped", NewQueryOp(2, NodeRef(17), "li > a.active")},
		{"match", NewMatchOp(3, NodeRef(20), "#sidebar .row")},
		{"get_attr", NewGetAttrOp(4, NodeRef(21), "class")},
		{"set_attr", NewSetAttrOp(5, NodeRef(21), "class", "item selected")},
		{"listen", NewListenOp(6, RefBody, "click")},
		{"unlisten", NewUnlistenOp(7, 99)},
		{"probe", NewProbeOp(8)},
		{"install_rule", NewInstallRuleOp(9, ".sentinel", "visibility", "hidden")},
		{"remove_rule", NewRemoveRuleOp(10, 3)},
		{"ready_state", NewReadyStateOp(11)},
		{"computed_style", NewComputedStyleOp(12, NodeRef(25), "display")},
		{"snapshot", NewSnapshotOp(13)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeOpRequest(tc.op)
			decoded, err := DecodeOpRequest(encoded)
			if err != nil {
				t.Fatalf("DecodeOpRequest() error = %v", err)
			}

			if decoded.Seq != tc.op.Seq {
				t.Errorf("Seq = %d, want %d", decoded.Seq, tc.op.Seq)
			}
			if decoded.Code != tc.op.Code {
				t.Errorf("Code = %v, want %v", decoded.Code, tc.op.Code)
			}
			if decoded.Target != tc.op.Target {
				t.Errorf("Target = %d, want %d", decoded.Target, tc.op.Target)
			}
			if decoded.ID != tc.op.ID {
				t.Errorf("ID = %d, want %d", decoded.ID, tc.op.ID)
			}
			if decoded.Selector != tc.op.Selector {
				t.Errorf("Selector = %q, want %q", decoded.Selector, tc.op.Selector)
			}
			if decoded.Name != tc.op.Name {
				t.Errorf("Name = %q, want %q", decoded.Name, tc.op.Name)
			}
			if decoded.Value != tc.op.Value {
				t.Errorf("Value = %q, want %q", decoded.Value, tc.op.Value)
			}
		})
	}
}

func TestOpReplyEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		reply *OpReply
	}{
		{
			name:  "query_result",
			reply: &OpReply{Seq: 1, Status: OpOK, Refs: []NodeRef{16, 17, 42}},
		},
		{
			name:  "query_empty",
			reply: &OpReply{Seq: 2, Status: OpOK},
		},
		{
			name:  "match_true",
			reply: &OpReply{Seq: 3, Status: OpOK, Flag: true},
		},
		{
			name:  "attr_value",
			reply: &OpReply{Seq: 4, Status: OpOK, Value: "item selected"},
		},
		{
			name:  "listener_assigned",
			reply: &OpReply{Seq: 5, Status: OpOK, ID: 7},
		},
		{
			name:  "ready_state",
			reply: &OpReply{Seq: 6, Status: OpOK, State: 2},
		},
		{
			name:  "computed_style",
			reply: &OpReply{Seq: 9, Status: OpOK, Value: "none"},
		},
		{
			name:  "snapshot",
			reply: &OpReply{Seq: 10, Status: OpOK, Value: "<html><body><p>hi</p></body></html>"},
		},
		{
			name:  "unsupported",
			reply: NewFailedReply(7, OpUnsupported, "legacy document"),
		},
		{
			name:  "unknown_ref",
			reply: NewFailedReply(8, OpNotFound, "ref 999"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeOpReply(tc.reply)
			decoded, err := DecodeOpReply(encoded)
			if err != nil {
				t.Fatalf("DecodeOpReply() error = %v", err)
			}

			if decoded.Seq != tc.reply.Seq {
				t.Errorf("Seq = %d, want %d", decoded.Seq, tc.reply.Seq)
			}
			if decoded.Status != tc.reply.Status {
				t.Errorf("Status = %v, want %v", decoded.Status, tc.reply.Status)
			}
			if decoded.Flag != tc.reply.Flag {
				t.Errorf("Flag = %v, want %v", decoded.Flag, tc.reply.Flag)
			}
			if decoded.ID != tc.reply.ID {
				t.Errorf("ID = %d, want %d", decoded.ID, tc.reply.ID)
			}
			if decoded.State != tc.reply.State {
				t.Errorf("State = %d, want %d", decoded.State, tc.reply.State)
			}
			if decoded.Value != tc.reply.Value {
				t.Errorf("Value = %q, want %q", decoded.Value, tc.reply.Value)
			}
			if decoded.Error != tc.reply.Error {
				t.Errorf("Error = %q, want %q", decoded.Error, tc.reply.Error)
			}
			if len(decoded.Refs) != len(tc.reply.Refs) {
				t.Fatalf("len(Refs) = %d, want %d", len(decoded.Refs), len(tc.reply.Refs))
			}
			for i, ref := range tc.reply.Refs {
				if decoded.Refs[i] != ref {
					t.Errorf("Refs[%d] = %d, want %d", i, decoded.Refs[i], ref)
				}
			}
		})
	}
}

func TestOpCodeString(t *testing.T) {
	tests := []struct {
		code OpCode
		want string
	}{
		{OpQuery, "Query"},
		{OpMatch, "Match"},
		{OpGetAttr, "GetAttr"},
		{OpSetAttr, "SetAttr"},
		{OpListen, "Listen"},
		{OpUnlisten, "Unlisten"},
		{OpProbe, "Probe"},
		{OpInstallRule, "InstallRule"},
		{OpRemoveRule, "RemoveRule"},
		{OpReadyState, "ReadyState"},
		{OpComputedStyle, "ComputedStyle"},
		{OpSnapshot, "Snapshot"},
		{OpCode(0xFF), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.code.String(); got != tc.want {
			t.Errorf("OpCode(%d).String() = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestOpStatusString(t *testing.T) {
	tests := []struct {
		status OpStatus
		want   string
	}{
		{OpOK, "OK"},
		{OpUnsupported, "Unsupported"},
		{OpNotFound, "NotFound"},
		{OpFailed, "Failed"},
		{OpStatus(0xFF), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("OpStatus(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestOpRequestSelectorTooLong(t *testing.T) {
	long := make([]byte, MaxSelectorLen+1)
	for i := range long {
		long[i] = 'a'
	}

	op := NewQueryOp(1, RefNone, string(long))
	_, err := DecodeOpRequest(EncodeOpRequest(op))
	if !errors.Is(err, ErrFieldTooLong) {
		t.Errorf("DecodeOpRequest(long selector) = %v, want ErrFieldTooLong", err)
	}
}

func TestOpReplyTooManyRefs(t *testing.T) {
	refs := make([]NodeRef, MaxQueryResults+1)
	for i := range refs {
		refs[i] = NodeRef(i + 16)
	}

	reply := &OpReply{Seq: 1, Status: OpOK, Refs: refs}
	_, err := DecodeOpReply(EncodeOpReply(reply))
	if !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("DecodeOpReply(huge result) = %v, want ErrCollectionTooLarge", err)
	}
}

func TestOpRequestTruncated(t *testing.T) {
	op := NewSetAttrOp(12, NodeRef(30), "class", "wrap active")
	encoded := EncodeOpRequest(op)

	for i := 0; i < len(encoded); i++ {
		if _, err := DecodeOpRequest(encoded[:i]); err == nil {
			t.Errorf("DecodeOpRequest(truncated at %d) succeeded, want error", i)
		}
	}
}

func TestNodeRefReserved(t *testing.T) {
	if !RefNone.Reserved() {
		t.Error("RefNone.Reserved() = false, want true")
	}
	if !RefRoot.Reserved() {
		t.Error("RefRoot.Reserved() = false, want true")
	}
	if !RefBody.Reserved() {
		t.Error("RefBody.Reserved() = false, want true")
	}
	if RefDynamicBase.Reserved() {
		t.Error("RefDynamicBase.Reserved() = true, want false")
	}
	if NodeRef(1000).Reserved() {
		t.Error("NodeRef(1000).Reserved() = true, want false")
	}
}
