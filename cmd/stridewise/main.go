// Package main provides the stridewise CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stridewise/stridewise/agent"
	"github.com/stridewise/stridewise/cli"
	"github.com/stridewise/stridewise/config"
	"github.com/stridewise/stridewise/web"
)

var (
	// Global flags
	provider       string
	model          string
	maxRounds      int
	noDomainFilter bool
	verbose        bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "stridewise",
		Short: "Running shoe specs assistant",
		Long: `A conversational assistant for running shoe specifications.

Ask about heel-to-toe drop, stack height, cushioning and weight for any
running shoe. Answers are grounded in real-time web search across trusted
review sites.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "openai", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Override the provider's default model")
	rootCmd.PersistentFlags().IntVarP(&maxRounds, "max-rounds", "m", agent.DefaultMaxToolRounds, "Maximum tool-calling rounds per turn")
	rootCmd.PersistentFlags().BoolVar(&noDomainFilter, "no-domain-filter", false, "Search the whole web instead of trusted review sites")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider:     provider,
		Model:        model,
		MaxRounds:    maxRounds,
		DomainFilter: !noDomainFilter,
		Verbose:      verbose,
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with streamed answers.

The assistant searches the web for shoe specifications as needed and cites
its sources. Type 'quit' to exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Chat(context.Background(), options())
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [shoe]...",
		Short: "Look up specs for one or more shoes without the chat loop",
		Long: `Run a one-shot batch lookup and print a spec block per shoe.

Example:
  stridewise search "Nike Pegasus 41" "Brooks Ghost 16"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Search(context.Background(), args, options())
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the websocket chat UI",
		Long: `Serve the chat UI over a websocket endpoint.

Each connection gets its own session with independent history. Endpoints:
  GET /ws       websocket chat
  GET /healthz  health check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options()

			// Fail at startup, not on first connection.
			if _, err := config.APIKeyFor(opts.Provider); err != nil {
				return err
			}
			if _, err := config.TavilyAPIKey(); err != nil {
				return err
			}

			settings, err := config.New(opts.Provider)
			if err != nil {
				return err
			}

			factory := func() (*agent.Agent, error) {
				return cli.NewAgent(opts)
			}

			fmt.Printf("Serving chat UI on %s\n", addr)
			return web.Serve(context.Background(), addr, factory, settings.Agent.HistoryWindow)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	return cmd
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the agent can call",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListTools(verbose)
		},
	}
}
