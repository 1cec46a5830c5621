// StreamAccumulator - incremental merge of streamed response fragments.
//
// Information Hiding:
// - Fragment buffering strategy
// - Partial tool-call bookkeeping keyed by call index
package llm

import "strings"

// partialCall accumulates one tool call's fields as they arrive split
// across fragments.
type partialCall struct {
	id   strings.Builder
	name strings.Builder
	args strings.Builder
}

// StreamAccumulator merges an incremental fragment stream back into a full
// response. Text merges by concatenation; tool-call fields merge by
// positional concatenation keyed by call index. Completeness can only be
// determined once the stream ends, so callers read Response() after the
// last fragment.
type StreamAccumulator struct {
	content strings.Builder
	calls   []*partialCall
}

// AddContent appends a text fragment.
func (a *StreamAccumulator) AddContent(text string) {
	a.content.WriteString(text)
}

// AddToolCallDelta merges a tool-call fragment at the given call index.
// Providers emit the id and name once and the arguments in pieces; all
// three are concatenated so the order of arrival does not matter.
func (a *StreamAccumulator) AddToolCallDelta(index int, id, name, args string) {
	if index < 0 {
		return
	}
	for len(a.calls) <= index {
		a.calls = append(a.calls, &partialCall{})
	}
	call := a.calls[index]
	call.id.WriteString(id)
	call.name.WriteString(name)
	call.args.WriteString(args)
}

// HasToolCalls reports whether any tool-call fragments were seen so far.
// Note this says nothing about completeness.
func (a *StreamAccumulator) HasToolCalls() bool {
	return len(a.calls) > 0
}

// Response materializes the accumulated fragments into a full response.
// Call only after the fragment stream has ended.
func (a *StreamAccumulator) Response() LLMResponse {
	resp := LLMResponse{Content: a.content.String()}
	for _, call := range a.calls {
		args := call.args.String()
		if args == "" {
			args = "{}"
		}
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        call.id.String(),
			Name:      call.name.String(),
			Arguments: []byte(args),
		})
	}
	return resp
}
