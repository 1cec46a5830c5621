// Command execution for CLI commands.
//
// Information Hiding:
// - Command dispatch logic hidden
// - Agent/search setup hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/stridewise/stridewise/agent"
	"github.com/stridewise/stridewise/config"
	"github.com/stridewise/stridewise/llm"
	"github.com/stridewise/stridewise/model"
	"github.com/stridewise/stridewise/search"
	"github.com/stridewise/stridewise/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider     string
	Model        string
	MaxRounds    int
	DomainFilter bool
	Verbose      bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		Provider:     "openai",
		MaxRounds:    agent.DefaultMaxToolRounds,
		DomainFilter: true,
	}
}

// Chat starts an interactive chat session with streamed answers.
func Chat(ctx context.Context, opts Options) error {
	a, settings, err := createAgent(opts)
	if err != nil {
		return err
	}

	fmt.Printf("Running shoe assistant (%s, %s). Type 'quit' to exit.\n\n",
		a.Provider().Name(), a.Provider().Model())

	var history []llm.ChatMessage
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if isQuit(input) {
			break
		}

		fmt.Print("Assistant: ")

		answer, err := streamTurn(ctx, a, input, history)
		if err != nil {
			// History stays untouched so the next turn sees a
			// consistent conversation.
			fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
			continue
		}
		fmt.Print("\n\n")

		history = append(history,
			llm.UserMessage(input),
			llm.AssistantMessage(answer),
		)
		history = trimHistory(history, settings.Agent.HistoryWindow)
	}

	return scanner.Err()
}

// Search runs a one-shot batch lookup for the named shoes and prints a
// formatted spec block per shoe.
func Search(ctx context.Context, shoeNames []string, opts Options) error {
	searcher, err := createSearcher(opts)
	if err != nil {
		return err
	}

	fmt.Printf("Searching specs for %d shoe(s)...\n\n", len(shoeNames))

	result, err := tools.QuickSearch(ctx, searcher, shoeNames)
	if err != nil {
		return err
	}

	for _, shoe := range result.Shoes {
		printSpecBlock(shoe)
	}
	return nil
}

// ListTools lists the tools the agent can call.
func ListTools(verbose bool) error {
	registry, err := buildRegistry(noopSearcher{}, DefaultOptions(), search.DepthAdvanced)
	if err != nil {
		return err
	}

	fmt.Println("Available tools:")
	fmt.Println()
	for _, def := range registry.Definitions() {
		fmt.Printf("  %s\n", def.Name)
		fmt.Printf("    %s\n", def.Description)
		if verbose {
			if props, ok := def.Parameters["properties"].(map[string]interface{}); ok {
				fmt.Println("    Parameters:")
				for name, raw := range props {
					if p, ok := raw.(map[string]interface{}); ok {
						fmt.Printf("      %s: %v - %v\n", name, p["type"], p["description"])
					}
				}
			}
		}
		fmt.Println()
	}
	return nil
}

// streamTurn runs one streamed turn, printing fragments as they arrive,
// and returns the reassembled answer for the history.
func streamTurn(ctx context.Context, a *agent.Agent, input string, history []llm.ChatMessage) (string, error) {
	chunks := make(chan string, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Stream(ctx, input, history, chunks)
		close(chunks)
	}()

	var answer strings.Builder
	for chunk := range chunks {
		fmt.Print(chunk)
		answer.WriteString(chunk)
	}
	if err := <-errCh; err != nil {
		return "", err
	}
	return answer.String(), nil
}

// isQuit reports whether the input ends the session.
func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// trimHistory keeps only the most recent window entries.
func trimHistory(history []llm.ChatMessage, window int) []llm.ChatMessage {
	if window <= 0 || len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}

// printSpecBlock renders one shoe's specs between separator lines.
func printSpecBlock(shoe model.ShoeSpecs) {
	sep := strings.Repeat("=", 50)
	fmt.Println(sep)
	fmt.Printf("📦 %s\n", shoe.Name)
	fmt.Println(sep)
	fmt.Println(shoe.Summary)
	if len(shoe.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range shoe.Sources {
			fmt.Printf("  - %s\n", src.URL)
		}
	}
	fmt.Println()
}

// Setup helpers

// NewAgent builds a fully wired agent from the options and environment.
// Used by the chat command and as the per-connection factory for the web
// server.
func NewAgent(opts Options) (*agent.Agent, error) {
	a, _, err := createAgent(opts)
	return a, err
}

func createAgent(opts Options) (*agent.Agent, config.Settings, error) {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, config.Settings{}, err
	}

	provider, err := createProvider(opts, settings)
	if err != nil {
		return nil, config.Settings{}, err
	}

	searcher, err := createSearcher(opts)
	if err != nil {
		return nil, config.Settings{}, err
	}

	registry, err := buildRegistry(searcher, opts, settings.Search.Depth)
	if err != nil {
		return nil, config.Settings{}, err
	}

	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = settings.Agent.MaxToolRounds
	}

	cfg := agent.DefaultConfig()
	cfg.MaxToolRounds = maxRounds

	return agent.New(provider, registry, cfg), settings, nil
}

func createProvider(opts Options, settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(opts.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(opts.Provider)
	if err != nil {
		return nil, err
	}

	model := settings.LLM.Model
	if opts.Model != "" {
		model = opts.Model
	}

	return providerType.
		Model(model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}

func createSearcher(opts Options) (search.Searcher, error) {
	apiKey, err := config.TavilyAPIKey()
	if err != nil {
		return nil, err
	}
	return search.NewClient(apiKey), nil
}

func buildRegistry(searcher search.Searcher, opts Options, depth string) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	single := tools.NewShoeSearchTool(searcher).
		WithDomainFilter(opts.DomainFilter).
		WithSearchDepth(depth)
	if err := registry.Register(single); err != nil {
		return nil, err
	}
	multi := tools.NewMultiShoeSearchTool(searcher).
		WithDomainFilter(opts.DomainFilter).
		WithSearchDepth(depth)
	if err := registry.Register(multi); err != nil {
		return nil, err
	}
	return registry, nil
}

// noopSearcher satisfies search.Searcher for listing tool metadata without
// an API key.
type noopSearcher struct{}

func (noopSearcher) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	return &search.Response{}, nil
}
