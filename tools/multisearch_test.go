package tools

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stridewise/stridewise/search"
)

// selectiveSearcher fails for queries containing failOn and answers the
// rest.
type selectiveSearcher struct {
	mu     sync.Mutex
	failOn string
	calls  int
}

func (s *selectiveSearcher) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.failOn != "" && strings.Contains(req.Query, s.failOn) {
		return nil, errors.New("dial tcp: connection timed out")
	}
	return &search.Response{
		Answer:  fmt.Sprintf("answer for %s", req.Query),
		Results: []search.Result{{Title: "t", URL: "https://u", Content: "c", Score: 0.8}},
	}, nil
}

func TestParseShoeNamesDropsBlanksKeepsDuplicates(t *testing.T) {
	names := ParseShoeNames("Nike Pegasus 41, , Brooks Ghost 16, Brooks Ghost 16")

	want := []string{"Nike Pegasus 41", "Brooks Ghost 16", "Brooks Ghost 16"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ParseShoeNames = %v, want %v", names, want)
	}
}

func TestParseShoeNamesCapsAtFive(t *testing.T) {
	names := ParseShoeNames("a, b, c, d, e, f, g")

	want := []string{"a", "b", "c", "d", "e"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ParseShoeNames = %v, want %v", names, want)
	}
}

func TestLookupAllBlankAndDuplicateHandling(t *testing.T) {
	tool := NewMultiShoeSearchTool(&selectiveSearcher{})

	raw := "Nike Pegasus 41, , Brooks Ghost 16, Brooks Ghost 16"
	result, err := tool.LookupAll(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Query != raw {
		t.Errorf("result query should be the raw input, got %q", result.Query)
	}
	if len(result.Shoes) != 3 {
		t.Fatalf("expected 3 shoes (blank dropped, duplicate kept), got %d", len(result.Shoes))
	}
	wantNames := []string{"Nike Pegasus 41", "Brooks Ghost 16", "Brooks Ghost 16"}
	for i, want := range wantNames {
		if result.Shoes[i].Name != want {
			t.Errorf("shoe %d: expected %q, got %q", i, want, result.Shoes[i].Name)
		}
	}
}

func TestLookupAllNoValidNames(t *testing.T) {
	tool := NewMultiShoeSearchTool(&selectiveSearcher{})

	_, err := tool.LookupAll(context.Background(), " , ,, ")
	if err == nil {
		t.Fatal("expected error for input with no valid names")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLookupAllIsolatesPerNameFailures(t *testing.T) {
	searcher := &selectiveSearcher{failOn: "Brooks Ghost 16"}
	tool := NewMultiShoeSearchTool(searcher)

	result, err := tool.LookupAll(context.Background(), "Nike Pegasus 41, Brooks Ghost 16, Hoka Clifton 9")
	if err != nil {
		t.Fatalf("a per-name failure must not fail the batch: %v", err)
	}

	if len(result.Shoes) != 3 {
		t.Fatalf("expected 3 entries despite one failure, got %d", len(result.Shoes))
	}

	failing := result.Shoes[1]
	if failing.Name != "Brooks Ghost 16" {
		t.Errorf("result order must match request order, got %q at index 1", failing.Name)
	}
	if !strings.Contains(failing.Summary, "Search failed") {
		t.Errorf("failing entry should carry a failure summary, got %q", failing.Summary)
	}

	for _, i := range []int{0, 2} {
		shoe := result.Shoes[i]
		if strings.Contains(shoe.Summary, "Search failed") {
			t.Errorf("shoe %q should be unaffected by the sibling failure", shoe.Name)
		}
		if len(shoe.Sources) == 0 {
			t.Errorf("shoe %q should have sources", shoe.Name)
		}
	}
}

func TestLookupAllCapsAtFiveLookups(t *testing.T) {
	searcher := &selectiveSearcher{}
	tool := NewMultiShoeSearchTool(searcher)

	result, err := tool.LookupAll(context.Background(), "a, b, c, d, e, f, g")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Shoes) != 5 {
		t.Errorf("expected 5 shoes, got %d", len(result.Shoes))
	}
	if searcher.calls != 5 {
		t.Errorf("expected 5 provider calls, got %d", searcher.calls)
	}
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		if result.Shoes[i].Name != want {
			t.Errorf("shoe %d: expected %q, got %q", i, want, result.Shoes[i].Name)
		}
	}
}

func TestQuickSearch(t *testing.T) {
	result, err := QuickSearch(context.Background(), &selectiveSearcher{}, []string{"Nike Pegasus 41", "Brooks Ghost 16"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Query != "Nike Pegasus 41, Brooks Ghost 16" {
		t.Errorf("unexpected query: %q", result.Query)
	}
	if len(result.Shoes) != 2 {
		t.Errorf("expected 2 shoes, got %d", len(result.Shoes))
	}
}
