package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stridewise/stridewise/llm"
	"github.com/stridewise/stridewise/search"
	"github.com/stridewise/stridewise/tools"
)

// scriptedProvider replays canned responses and records the message list it
// received for each invocation.
type scriptedProvider struct {
	responses []llm.LLMResponse
	err       error
	calls     [][]llm.ChatMessage
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-1" }

func (p *scriptedProvider) Chat(ctx context.Context, messages []llm.ChatMessage) (llm.LLMResponse, error) {
	return p.ChatWithTools(ctx, messages, nil)
}

func (p *scriptedProvider) ChatWithTools(ctx context.Context, messages []llm.ChatMessage, _ []llm.ToolDefinition) (llm.LLMResponse, error) {
	if p.err != nil {
		return llm.LLMResponse{}, p.err
	}
	snapshot := make([]llm.ChatMessage, len(messages))
	copy(snapshot, messages)
	p.calls = append(p.calls, snapshot)

	if len(p.responses) == 0 {
		return llm.LLMResponse{Content: "out of script"}, nil
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func (p *scriptedProvider) StreamChatWithTools(ctx context.Context, messages []llm.ChatMessage, tools []llm.ToolDefinition, chunks chan<- string) (llm.LLMResponse, error) {
	resp, err := p.ChatWithTools(ctx, messages, tools)
	if err != nil {
		return llm.LLMResponse{}, err
	}
	// Emit the content split into two fragments to exercise reassembly on
	// the consumer side.
	if resp.Content != "" {
		half := len(resp.Content) / 2
		for _, fragment := range []string{resp.Content[:half], resp.Content[half:]} {
			if fragment == "" {
				continue
			}
			select {
			case chunks <- fragment:
			case <-ctx.Done():
				return llm.LLMResponse{}, ctx.Err()
			}
		}
	}
	return resp, nil
}

// loopingProvider always requests another tool call.
type loopingProvider struct {
	scriptedProvider
}

func (p *loopingProvider) ChatWithTools(ctx context.Context, messages []llm.ChatMessage, _ []llm.ToolDefinition) (llm.LLMResponse, error) {
	p.calls = append(p.calls, nil)
	return llm.LLMResponse{
		ToolCalls: []llm.ToolCall{{ID: fmt.Sprintf("call_%d", len(p.calls)), Name: "shoe_specs_search", Arguments: []byte(`{"shoe_name":"x"}`)}},
	}, nil
}

// stubSearcher answers every query.
type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	return &search.Response{
		Answer:  "answer for " + req.Query,
		Results: []search.Result{{Title: "t", URL: "https://u", Content: "c", Score: 0.9}},
	}, nil
}

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewShoeSearchTool(stubSearcher{})); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := registry.Register(tools.NewMultiShoeSearchTool(stubSearcher{})); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return registry
}

func TestRunReturnsDirectAnswerAfterOneInvocation(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		{Content: "The Pegasus 41 has a 10mm drop."},
	}}
	a := New(provider, newTestRegistry(t), DefaultConfig())

	answer, err := a.Run(context.Background(), "What is the drop of the Pegasus 41?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "The Pegasus 41 has a 10mm drop." {
		t.Errorf("answer should be the response text unchanged, got %q", answer)
	}
	if len(provider.calls) != 1 {
		t.Errorf("expected exactly one model invocation, got %d", len(provider.calls))
	}
}

func TestRunAppendsOneResultPerToolCallInRequestOrder(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "shoe_specs_search", Arguments: []byte(`{"shoe_name":"Nike Pegasus 41"}`)},
			{ID: "call_2", Name: "shoe_specs_search", Arguments: []byte(`{"shoe_name":"Brooks Ghost 16"}`)},
			{ID: "call_3", Name: "shoe_specs_search", Arguments: []byte(`{"shoe_name":"Hoka Clifton 9"}`)},
		}},
		{Content: "Comparison done."},
	}}
	a := New(provider, newTestRegistry(t), DefaultConfig())

	answer, err := a.Run(context.Background(), "Compare three shoes", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Comparison done." {
		t.Errorf("unexpected answer: %q", answer)
	}
	if len(provider.calls) != 2 {
		t.Fatalf("expected 2 model invocations, got %d", len(provider.calls))
	}

	// Second invocation sees: system, user, assistant w/ calls, 3 results.
	second := provider.calls[1]
	if len(second) != 6 {
		t.Fatalf("expected 6 messages on second invocation, got %d", len(second))
	}
	assistant := second[2]
	if assistant.Role != "assistant" || len(assistant.ToolCalls) != 3 {
		t.Fatalf("expected assistant message with 3 tool calls, got %+v", assistant)
	}
	wantIDs := []string{"call_1", "call_2", "call_3"}
	for i, want := range wantIDs {
		msg := second[3+i]
		if msg.Role != "tool" {
			t.Errorf("message %d: expected role tool, got %q", 3+i, msg.Role)
		}
		if msg.ToolCallID != want {
			t.Errorf("message %d: expected call id %q, got %q", 3+i, want, msg.ToolCallID)
		}
		if msg.Content == "" {
			t.Errorf("message %d: expected result content", 3+i)
		}
	}
}

func TestRunRecoversFromUnknownTool(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "laces_search", Arguments: []byte(`{}`)},
		}},
		{Content: "Sorry, I could not look that up."},
	}}
	a := New(provider, newTestRegistry(t), DefaultConfig())

	answer, err := a.Run(context.Background(), "Find laces", nil)
	if err != nil {
		t.Fatalf("unknown tool must not abort the loop: %v", err)
	}
	if answer != "Sorry, I could not look that up." {
		t.Errorf("unexpected answer: %q", answer)
	}

	second := provider.calls[1]
	result := second[len(second)-1]
	if result.Role != "tool" || result.ToolCallID != "call_1" {
		t.Fatalf("expected a tool result for call_1, got %+v", result)
	}
	if !strings.Contains(result.Content, "unknown tool") {
		t.Errorf("result content should name the unknown-tool error, got %q", result.Content)
	}
}

func TestRunPropagatesModelTransportError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection reset")}
	a := New(provider, newTestRegistry(t), DefaultConfig())

	_, err := a.Run(context.Background(), "anything", nil)
	if err == nil {
		t.Fatal("expected transport error to propagate")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected underlying cause preserved, got %v", err)
	}
}

func TestRunToolBudgetExceeded(t *testing.T) {
	provider := &loopingProvider{}
	a := New(provider, newTestRegistry(t), Config{MaxToolRounds: 3})

	_, err := a.Run(context.Background(), "loop forever", nil)
	if err == nil {
		t.Fatal("expected tool budget error")
	}
	if !errors.Is(err, ErrToolBudgetExceeded) {
		t.Errorf("expected ErrToolBudgetExceeded, got %v", err)
	}
	if len(provider.calls) != 3 {
		t.Errorf("expected exactly 3 rounds, got %d", len(provider.calls))
	}
}

func TestStreamEmitsFragmentsAndSearchingNotice(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "shoe_specs_search", Arguments: []byte(`{"shoe_name":"Nike Pegasus 41"}`)},
		}},
		{Content: "Here are the specs."},
	}}
	a := New(provider, newTestRegistry(t), DefaultConfig())

	chunks := make(chan string, 32)
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Stream(context.Background(), "Tell me about the Pegasus 41", nil, chunks)
		close(chunks)
	}()

	var fragments []string
	for chunk := range chunks {
		fragments = append(fragments, chunk)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	full := strings.Join(fragments, "")
	if !strings.Contains(full, "Searching for shoe specs") {
		t.Error("expected a user-visible searching notice before tool execution")
	}
	if !strings.HasSuffix(full, "Here are the specs.") {
		t.Errorf("expected final answer at end of stream, got %q", full)
	}
}

func TestStreamHistoryIsSeededIntoWorkingList(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		{Content: "Yes, as I said, 10mm."},
	}}
	a := New(provider, newTestRegistry(t), DefaultConfig())

	history := []llm.ChatMessage{
		llm.UserMessage("What is the drop of the Pegasus 41?"),
		llm.AssistantMessage("The drop is 10mm."),
	}

	chunks := make(chan string, 8)
	if err := a.Stream(context.Background(), "Are you sure?", history, chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := provider.calls[0]
	if len(first) != 4 {
		t.Fatalf("expected system + 2 history + user, got %d messages", len(first))
	}
	if first[0].Role != "system" {
		t.Errorf("first message should be the system prompt, got %q", first[0].Role)
	}
	if first[3].Content != "Are you sure?" {
		t.Errorf("last message should be the new user input, got %q", first[3].Content)
	}
}
