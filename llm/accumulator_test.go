package llm

import "testing"

func TestAccumulatorTextConcatenation(t *testing.T) {
	var acc StreamAccumulator
	acc.AddContent("The Pegasus ")
	acc.AddContent("41 has a ")
	acc.AddContent("10mm drop.")

	resp := acc.Response()
	if resp.Content != "The Pegasus 41 has a 10mm drop." {
		t.Errorf("unexpected content: %q", resp.Content)
	}
	if len(resp.ToolCalls) != 0 {
		t.Errorf("expected no tool calls, got %d", len(resp.ToolCalls))
	}
}

func TestAccumulatorToolCallSplitAcrossFragments(t *testing.T) {
	var acc StreamAccumulator

	// id and name arrive on the first fragment, arguments dribble in.
	acc.AddToolCallDelta(0, "call_abc", "shoe_specs_search", "")
	acc.AddToolCallDelta(0, "", "", `{"shoe_`)
	acc.AddToolCallDelta(0, "", "", `name": "Nike`)
	acc.AddToolCallDelta(0, "", "", ` Pegasus 41"}`)

	resp := acc.Response()
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	call := resp.ToolCalls[0]
	if call.ID != "call_abc" {
		t.Errorf("unexpected call id: %q", call.ID)
	}
	if call.Name != "shoe_specs_search" {
		t.Errorf("unexpected tool name: %q", call.Name)
	}
	if string(call.Arguments) != `{"shoe_name": "Nike Pegasus 41"}` {
		t.Errorf("unexpected arguments: %s", call.Arguments)
	}
}

func TestAccumulatorInterleavedCallsKeyedByIndex(t *testing.T) {
	var acc StreamAccumulator

	acc.AddToolCallDelta(0, "call_1", "shoe_specs_search", `{"shoe_name":`)
	acc.AddToolCallDelta(1, "call_2", "multi_shoe_search", `{"shoe_names":`)
	acc.AddToolCallDelta(0, "", "", `"Hoka Clifton 9"}`)
	acc.AddToolCallDelta(1, "", "", `"a, b"}`)

	resp := acc.Response()
	if len(resp.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].ID != "call_1" || resp.ToolCalls[1].ID != "call_2" {
		t.Errorf("calls out of order: %+v", resp.ToolCalls)
	}
	if string(resp.ToolCalls[0].Arguments) != `{"shoe_name":"Hoka Clifton 9"}` {
		t.Errorf("unexpected arguments for call 0: %s", resp.ToolCalls[0].Arguments)
	}
}

func TestAccumulatorEmptyArgumentsDefaultToObject(t *testing.T) {
	var acc StreamAccumulator
	acc.AddToolCallDelta(0, "call_1", "shoe_specs_search", "")

	resp := acc.Response()
	if string(resp.ToolCalls[0].Arguments) != "{}" {
		t.Errorf("expected empty arguments to default to {}, got %s", resp.ToolCalls[0].Arguments)
	}
}

func TestAccumulatorIgnoresNegativeIndex(t *testing.T) {
	var acc StreamAccumulator
	acc.AddToolCallDelta(-1, "x", "y", "z")

	if acc.HasToolCalls() {
		t.Error("negative index should not create a call")
	}
}
