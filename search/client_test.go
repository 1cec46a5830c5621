package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchSendsRequestAndParsesResponse(t *testing.T) {
	var gotReq Request
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("expected POST /search, got %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		resp := Response{
			Query:  gotReq.Query,
			Answer: "The Pegasus 41 has a 10mm drop.",
			Results: []Result{
				{Title: "Pegasus 41", URL: "https://runrepeat.com/p41", Content: "specs", Score: 0.9},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient("tvly-test-key").WithBaseURL(server.URL)

	resp, err := client.Search(context.Background(), Request{
		Query:          "Nike Pegasus 41 running shoe specs",
		SearchDepth:    DepthAdvanced,
		MaxResults:     5,
		IncludeAnswer:  "advanced",
		IncludeDomains: []string{"runrepeat.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer tvly-test-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotReq.SearchDepth != DepthAdvanced {
		t.Errorf("expected search_depth=advanced, got %q", gotReq.SearchDepth)
	}
	if gotReq.MaxResults != 5 {
		t.Errorf("expected max_results=5, got %d", gotReq.MaxResults)
	}
	if resp.Answer == "" {
		t.Error("expected a synthesized answer")
	}
	if len(resp.Results) != 1 || resp.Results[0].Score != 0.9 {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestSearchErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"error":"invalid api key"}}`))
	}))
	defer server.Close()

	client := NewClient("bad-key").WithBaseURL(server.URL)

	_, err := client.Search(context.Background(), Request{Query: "anything"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}
