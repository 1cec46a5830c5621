// Tool-calling loop implementation.
//
// This is THE canonical implementation of the tool-calling cycle: send the
// conversation to the model, detect requested tool invocations, execute
// them, fold the results back into the conversation, repeat until the model
// answers in plain text.
//
// Information Hiding:
// - Loop internals hidden
// - LLM communication hidden
// - Tool execution coordination hidden
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stridewise/stridewise/llm"
	"github.com/stridewise/stridewise/tools"
)

// ErrToolBudgetExceeded means the model kept requesting tools past the
// configured round cap. It is distinguishable from transport failures so
// callers can render it separately.
var ErrToolBudgetExceeded = errors.New("tool-call budget exceeded")

// searchingNotice is streamed before dispatched tools execute so callers
// can render progress.
const searchingNotice = "\n\n🔍 Searching for shoe specs...\n\n"

// Agent answers shoe questions by driving a tool-calling loop against an
// LLM provider and a tool registry.
type Agent struct {
	provider llm.Provider
	registry *tools.Registry
	config   Config
}

// New creates an agent with the given provider and tools.
func New(provider llm.Provider, registry *tools.Registry, config Config) *Agent {
	if config.SystemPrompt == "" {
		config.SystemPrompt = DefaultSystemPrompt
	}
	return &Agent{
		provider: provider,
		registry: registry,
		config:   config,
	}
}

// Provider returns the underlying LLM provider.
func (a *Agent) Provider() llm.Provider {
	return a.provider
}

// Run executes one turn and returns the final answer.
//
// The working message list is seeded with the system prompt, prior history
// and the new user input. Each round sends the list plus tool definitions
// to the model; a response without tool calls is the final answer. A
// response with tool calls gets exactly one tool result appended per
// call_id, in request order, before the next model invocation.
func (a *Agent) Run(ctx context.Context, userInput string, history []llm.ChatMessage) (string, error) {
	messages := a.seed(userInput, history)

	for round := 0; round < a.config.maxRounds(); round++ {
		response, err := a.provider.ChatWithTools(ctx, messages, a.registry.Definitions())
		if err != nil {
			return "", fmt.Errorf("model invocation failed: %w", err)
		}

		if len(response.ToolCalls) == 0 {
			return response.Content, nil
		}

		messages = append(messages, llm.ChatMessage{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})
		messages = append(messages, a.executeCalls(ctx, response.ToolCalls)...)
	}

	return "", fmt.Errorf("%w after %d rounds", ErrToolBudgetExceeded, a.config.maxRounds())
}

// Stream executes one turn, sending text fragments to chunks as they
// arrive. The fragment sequence is finite and not restartable; a
// user-visible searching notice is emitted before dispatched tools run.
// The caller owns the channel and typically closes it when Stream returns.
func (a *Agent) Stream(ctx context.Context, userInput string, history []llm.ChatMessage, chunks chan<- string) error {
	messages := a.seed(userInput, history)

	for round := 0; round < a.config.maxRounds(); round++ {
		response, err := a.provider.StreamChatWithTools(ctx, messages, a.registry.Definitions(), chunks)
		if err != nil {
			return fmt.Errorf("model invocation failed: %w", err)
		}

		// Tool-call completeness is only known at stream end.
		if len(response.ToolCalls) == 0 {
			return nil
		}

		messages = append(messages, llm.ChatMessage{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		select {
		case chunks <- searchingNotice:
		case <-ctx.Done():
			return ctx.Err()
		}

		messages = append(messages, a.executeCalls(ctx, response.ToolCalls)...)
	}

	return fmt.Errorf("%w after %d rounds", ErrToolBudgetExceeded, a.config.maxRounds())
}

// seed builds the working message list for one turn.
func (a *Agent) seed(userInput string, history []llm.ChatMessage) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.SystemMessage(a.config.SystemPrompt))
	messages = append(messages, history...)
	messages = append(messages, llm.UserMessage(userInput))
	return messages
}

// executeCalls dispatches every requested call concurrently and returns one
// tool result message per call_id, re-sorted to request order regardless of
// completion order. Dispatch failures (unknown tool, invalid input, tool
// errors) become the result content so the model can recover; they never
// abort the loop.
func (a *Agent) executeCalls(ctx context.Context, calls []llm.ToolCall) []llm.ChatMessage {
	results := make([]llm.ChatMessage, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call llm.ToolCall) {
			defer wg.Done()
			results[i] = llm.ToolResultMessage(call.ID, a.executeCall(ctx, call))
		}(i, call)
	}
	wg.Wait()

	return results
}

// executeCall runs a single tool call and renders its outcome as result
// content.
func (a *Agent) executeCall(ctx context.Context, call llm.ToolCall) string {
	result, err := a.registry.Dispatch(ctx, call.Name, call.Arguments)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if !result.Success() {
		return fmt.Sprintf("Error: %v", result.Error)
	}
	return result.Output
}
