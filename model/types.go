// Package model provides domain types shared across packages.
package model

// ShoeSource is a source URL with extracted content and a provider-assigned
// relevance score in [0,1].
type ShoeSource struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// ShoeSpecs holds the specifications for a single running shoe.
// Measurement fields are opaque strings taken from search results;
// they are empty when a spec could not be determined.
type ShoeSpecs struct {
	Name          string       `json:"name"`
	HeelToToeDrop string       `json:"heel_to_toe_drop,omitempty"`
	StackHeight   string       `json:"stack_height,omitempty"`
	Cushioning    string       `json:"cushioning,omitempty"`
	Weight        string       `json:"weight,omitempty"`
	Summary       string       `json:"summary"`
	Sources       []ShoeSource `json:"sources,omitempty"`
}

// ShoeSearchResult is the outcome of a shoe search query.
// Shoes holds one entry per requested shoe in request order; a failed
// per-shoe lookup yields an entry whose summary states the failure rather
// than a missing entry.
type ShoeSearchResult struct {
	Query     string      `json:"query"`
	Shoes     []ShoeSpecs `json:"shoes"`
	RawAnswer string      `json:"raw_answer,omitempty"`
}

// ShoeComparisonRequest asks for a comparison of up to five shoes.
type ShoeComparisonRequest struct {
	ShoeNames       []string `json:"shoe_names"`
	FocusAttributes []string `json:"focus_attributes,omitempty"`
}

// DefaultFocusAttributes are the spec fields a comparison highlights when
// the caller does not name any.
func DefaultFocusAttributes() []string {
	return []string{"heel_to_toe_drop", "stack_height", "cushioning"}
}
