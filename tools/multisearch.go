// Multi-shoe search tool with concurrent fan-out.
//
// Information Hiding:
// - Comma-joined input parsing
// - Per-name failure isolation and result ordering
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/stridewise/stridewise/model"
	"github.com/stridewise/stridewise/search"
)

// maxShoesPerSearch caps how many shoes one multi-search handles.
const maxShoesPerSearch = 5

// MultiShoeSearchTool searches specifications for several shoes in
// parallel. The model supplies a single comma-joined string rather than a
// structured list; parsing it is this tool's responsibility.
type MultiShoeSearchTool struct {
	BaseTool
	single *ShoeSearchTool
}

// NewMultiShoeSearchTool creates a multi-shoe search tool fanning out to
// single-shoe lookups against the given searcher.
func NewMultiShoeSearchTool(searcher search.Searcher) *MultiShoeSearchTool {
	return &MultiShoeSearchTool{single: NewShoeSearchTool(searcher)}
}

// WithDomainFilter toggles the trusted-domain allow-list on the underlying
// single-shoe lookups.
func (t *MultiShoeSearchTool) WithDomainFilter(enabled bool) *MultiShoeSearchTool {
	t.single.WithDomainFilter(enabled)
	return t
}

// WithSearchDepth overrides the provider search depth on the underlying
// single-shoe lookups.
func (t *MultiShoeSearchTool) WithSearchDepth(depth string) *MultiShoeSearchTool {
	t.single.WithSearchDepth(depth)
	return t
}

// Metadata returns the tool metadata.
func (t *MultiShoeSearchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name: "multi_shoe_search",
		Description: "Search for specifications of multiple running shoes in parallel. " +
			"Input should be comma-separated shoe names like " +
			"'Nike Pegasus 41, ASICS Gel-Nimbus 26, Brooks Ghost 16'. " +
			"Use this when comparing multiple shoes.",
		Parameters: []ToolParameter{
			{Name: "shoe_names", ParamType: "string", Description: "Comma-separated names of the running shoes to search for", Required: true},
		},
	}
}

type multiShoeSearchArgs struct {
	ShoeNames string `json:"shoe_names"`
}

// Validate validates the arguments.
func (t *MultiShoeSearchTool) Validate(args json.RawMessage) error {
	var a multiShoeSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if len(ParseShoeNames(a.ShoeNames)) == 0 {
		return fmt.Errorf("%w: no valid shoe names provided", ErrInvalidInput)
	}
	return nil
}

// Execute runs the fan-out search and returns the result as indented JSON.
func (t *MultiShoeSearchTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a multiShoeSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	result, err := t.LookupAll(ctx, a.ShoeNames)
	if err != nil {
		return FailureResult(err), nil
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return FailureResult(fmt.Errorf("failed to encode result: %w", err)), nil
	}
	return SuccessResult(string(out)), nil
}

// ParseShoeNames splits a comma-joined input into shoe names: trims
// whitespace, drops blanks, caps at maxShoesPerSearch. Duplicates are
// preserved as separate entries.
func ParseShoeNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		names = append(names, name)
		if len(names) == maxShoesPerSearch {
			break
		}
	}
	return names
}

// LookupAll searches every named shoe concurrently. A failing per-name
// lookup is downgraded to a ShoeSpecs whose summary states the failure; it
// never cancels sibling lookups. Result order matches input order, not
// completion order.
func (t *MultiShoeSearchTool) LookupAll(ctx context.Context, rawNames string) (model.ShoeSearchResult, error) {
	names := ParseShoeNames(rawNames)
	if len(names) == 0 {
		return model.ShoeSearchResult{}, fmt.Errorf("%w: no valid shoe names provided", ErrInvalidInput)
	}

	shoes := make([]model.ShoeSpecs, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			specs, err := t.single.Lookup(ctx, name)
			if err != nil {
				shoes[i] = model.ShoeSpecs{
					Name:    name,
					Summary: fmt.Sprintf("Search failed: %v", err),
				}
				return
			}
			shoes[i] = specs
		}(i, name)
	}
	wg.Wait()

	return model.ShoeSearchResult{
		Query: rawNames,
		Shoes: shoes,
	}, nil
}

// QuickSearch looks up several shoes directly, without going through the
// agent. Useful for scripting and the batch CLI mode.
func QuickSearch(ctx context.Context, searcher search.Searcher, shoeNames []string) (model.ShoeSearchResult, error) {
	tool := NewMultiShoeSearchTool(searcher)
	return tool.LookupAll(ctx, strings.Join(shoeNames, ", "))
}

// Verify MultiShoeSearchTool implements Tool
var _ Tool = (*MultiShoeSearchTool)(nil)
