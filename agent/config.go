// Agent configuration types.
package agent

// DefaultSystemPrompt guides the assistant toward shoe-spec lookups and
// tells it when to prefer each search tool.
const DefaultSystemPrompt = `You are a running shoe expert assistant. Your job is to help users find
and compare running shoe specifications.

When users ask about shoes, use the available tools to search for accurate specifications:
- Use shoe_specs_search for a single shoe lookup
- Use multi_shoe_search when comparing 2+ shoes (more efficient)

Key specs to focus on:
- Heel-to-toe drop (mm): The height difference between heel and forefoot
- Stack height (mm): Total cushioning thickness under the heel/forefoot
- Cushioning: Type and level (plush, firm, responsive, etc.)
- Weight: In ounces or grams

When presenting results:
1. Start with a brief overview of each shoe
2. Present key specs clearly (use a table for comparisons)
3. Highlight notable differences when comparing
4. Cite your sources

If a shoe isn't found, suggest similar alternatives or ask for clarification.`

// DefaultMaxToolRounds bounds how many tool-calling rounds one turn may
// take before the loop gives up with ErrToolBudgetExceeded.
const DefaultMaxToolRounds = 10

// Config holds agent configuration.
type Config struct {
	// SystemPrompt guides the agent's behavior.
	SystemPrompt string

	// MaxToolRounds caps tool-calling rounds per turn. Zero means
	// DefaultMaxToolRounds.
	MaxToolRounds int
}

// DefaultConfig returns the shoe assistant configuration.
func DefaultConfig() Config {
	return Config{
		SystemPrompt:  DefaultSystemPrompt,
		MaxToolRounds: DefaultMaxToolRounds,
	}
}

// maxRounds returns the effective tool-round cap.
func (c Config) maxRounds() int {
	if c.MaxToolRounds <= 0 {
		return DefaultMaxToolRounds
	}
	return c.MaxToolRounds
}
