// Single-shoe search tool.
//
// Information Hiding:
// - Query construction for the search provider
// - Result filtering and truncation rules
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/stridewise/stridewise/model"
	"github.com/stridewise/stridewise/search"
)

// Filtering rules applied to raw search results.
const (
	// maxRawResults is how many results the provider is asked for.
	maxRawResults = 5
	// scoreThreshold drops low-relevance results.
	scoreThreshold = 0.5
	// maxSources caps the sources kept per shoe.
	maxSources = 3
	// maxContentChars truncates each kept result's extracted text.
	maxContentChars = 500
	// notFoundSummary is used when the provider returns no synthesized answer.
	notFoundSummary = "No specifications found."
)

// querySuffix steers the search toward spec pages.
const querySuffix = " running shoe specs heel drop stack height weight"

// TrustedShoeDomains is the allow-list of specification-review sites used
// when domain filtering is enabled.
var TrustedShoeDomains = []string{
	"runrepeat.com",
	"solereview.com",
	"believeintherun.com",
	"roadrunnersports.com",
	"runnersworld.com",
	"doctorsofrunning.com",
}

// ShoeSearchTool searches for a single running shoe's specifications.
type ShoeSearchTool struct {
	BaseTool
	searcher        search.Searcher
	useDomainFilter bool
	searchDepth     string
}

// NewShoeSearchTool creates a single-shoe search tool. Domain filtering is
// on by default.
func NewShoeSearchTool(searcher search.Searcher) *ShoeSearchTool {
	return &ShoeSearchTool{
		searcher:        searcher,
		useDomainFilter: true,
		searchDepth:     search.DepthAdvanced,
	}
}

// WithDomainFilter toggles the trusted-domain allow-list.
func (t *ShoeSearchTool) WithDomainFilter(enabled bool) *ShoeSearchTool {
	t.useDomainFilter = enabled
	return t
}

// WithSearchDepth overrides the provider search depth.
func (t *ShoeSearchTool) WithSearchDepth(depth string) *ShoeSearchTool {
	t.searchDepth = depth
	return t
}

// Metadata returns the tool metadata.
func (t *ShoeSearchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name: "shoe_specs_search",
		Description: "Search for running shoe specifications including heel-to-toe drop, " +
			"stack height, cushioning, and weight. Input should be a shoe name " +
			"like 'Nike Pegasus 41' or 'ASICS Gel-Nimbus 26'.",
		Parameters: []ToolParameter{
			{Name: "shoe_name", ParamType: "string", Description: "Name of the running shoe to search for", Required: true},
		},
	}
}

type shoeSearchArgs struct {
	ShoeName string `json:"shoe_name"`
}

// Validate validates the arguments.
func (t *ShoeSearchTool) Validate(args json.RawMessage) error {
	var a shoeSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.ShoeName == "" {
		return fmt.Errorf("%w: shoe_name cannot be empty", ErrInvalidInput)
	}
	return nil
}

// Execute runs the search and returns the specs as indented JSON.
func (t *ShoeSearchTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a shoeSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.ShoeName == "" {
		return FailureResultf("%v: shoe_name cannot be empty", ErrInvalidInput), nil
	}

	specs, err := t.Lookup(ctx, a.ShoeName)
	if err != nil {
		return FailureResult(err), nil
	}

	out, err := json.MarshalIndent(specs, "", "  ")
	if err != nil {
		return FailureResult(fmt.Errorf("failed to encode specs: %w", err)), nil
	}
	return SuccessResult(string(out)), nil
}

// Lookup searches the provider for one shoe and parses the response.
// Provider and transport failures are wrapped and propagated; callers that
// fan out downgrade them per name.
func (t *ShoeSearchTool) Lookup(ctx context.Context, shoeName string) (model.ShoeSpecs, error) {
	req := search.Request{
		Query:         buildQuery(shoeName),
		SearchDepth:   t.searchDepth,
		MaxResults:    maxRawResults,
		IncludeAnswer: "advanced",
	}
	if t.useDomainFilter {
		req.IncludeDomains = TrustedShoeDomains
	}

	resp, err := t.searcher.Search(ctx, req)
	if err != nil {
		return model.ShoeSpecs{}, fmt.Errorf("search failed for %s: %w", shoeName, err)
	}

	return parseSpecs(shoeName, resp), nil
}

// buildQuery builds an optimized search query for shoe specs.
func buildQuery(shoeName string) string {
	return shoeName + querySuffix
}

// parseSpecs filters raw results into structured specs: keep score above
// the threshold, top 3 by score, content truncated to 500 characters.
func parseSpecs(shoeName string, resp *search.Response) model.ShoeSpecs {
	var sources []model.ShoeSource
	for _, r := range resp.Results {
		if r.Score <= scoreThreshold {
			continue
		}
		sources = append(sources, model.ShoeSource{
			Title:   r.Title,
			URL:     r.URL,
			Content: truncate(r.Content, maxContentChars),
			Score:   r.Score,
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Score > sources[j].Score
	})
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	summary := resp.Answer
	if summary == "" {
		summary = notFoundSummary
	}

	return model.ShoeSpecs{
		Name:    shoeName,
		Summary: summary,
		Sources: sources,
	}
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Verify ShoeSearchTool implements Tool
var _ Tool = (*ShoeSearchTool)(nil)
