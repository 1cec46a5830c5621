// Per-connection chat session state.
//
// Information Hiding:
// - History windowing hidden
// - Turn execution and event sequencing hidden
package web

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/stridewise/stridewise/agent"
	"github.com/stridewise/stridewise/llm"
)

// WelcomeMessage greets a newly connected client.
const WelcomeMessage = `# 👟 Running Shoe Specs Finder

Ask me about **any running shoes** and I'll find their specs:
- Heel-to-toe drop
- Stack height
- Cushioning type
- Weight

**Examples:**
- "Tell me about the Nike Pegasus 41"
- "Compare ASICS Gel-Nimbus 26 and Brooks Ghost 16"
- "What's the stack height of the Hoka Clifton 9?"
- "Which has more cushioning: New Balance 1080v14 or Saucony Triumph 22?"

I use real-time web search to find the most accurate specifications.`

// emptyInputReply is sent when the client submits a blank message.
const emptyInputReply = "Please ask about a running shoe!"

// Event is one server-to-client message on the websocket.
type Event struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// Incoming is one client-to-server message.
type Incoming struct {
	Message string `json:"message"`
}

// Event types.
const (
	EventToken = "token"
	EventDone  = "done"
	EventError = "error"
)

// Session holds one client's conversation. Sessions are not shared between
// connections; each websocket gets its own.
type Session struct {
	ID      string
	agent   *agent.Agent
	history []llm.ChatMessage
	window  int
}

// NewSession creates a session around the given agent. window caps the
// retained history length; zero or negative means unbounded.
func NewSession(a *agent.Agent, window int) *Session {
	return &Session{
		ID:     uuid.New().String(),
		agent:  a,
		window: window,
	}
}

// History returns the retained conversation history.
func (s *Session) History() []llm.ChatMessage {
	return s.history
}

// HandleTurn runs one user turn, emitting token events as the answer
// streams and a final done event. A failed turn emits an error event and
// leaves the history unchanged, so the next turn sees a consistent
// conversation.
func (s *Session) HandleTurn(ctx context.Context, input string, send func(Event) error) error {
	input = strings.TrimSpace(input)
	if input == "" {
		if err := send(Event{Type: EventToken, Content: emptyInputReply}); err != nil {
			return err
		}
		return send(Event{Type: EventDone})
	}

	chunks := make(chan string, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.agent.Stream(ctx, input, s.history, chunks)
		close(chunks)
	}()

	var answer strings.Builder
	var sendErr error
	for chunk := range chunks {
		answer.WriteString(chunk)
		if sendErr == nil {
			sendErr = send(Event{Type: EventToken, Content: chunk})
		}
	}
	if err := <-errCh; err != nil {
		msg := fmt.Sprintf("Error: %v\n\nPlease try again or rephrase your question.", err)
		if sendErr := send(Event{Type: EventError, Content: msg}); sendErr != nil {
			return sendErr
		}
		return nil
	}
	if sendErr != nil {
		return sendErr
	}

	s.history = append(s.history,
		llm.UserMessage(input),
		llm.AssistantMessage(answer.String()),
	)
	s.history = trimHistory(s.history, s.window)

	return send(Event{Type: EventDone})
}

// trimHistory keeps only the most recent window entries.
func trimHistory(history []llm.ChatMessage, window int) []llm.ChatMessage {
	if window <= 0 || len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}
