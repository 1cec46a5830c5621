package tools

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry := NewRegistry()
	searcher := &selectiveSearcher{}
	if err := registry.Register(NewShoeSearchTool(searcher)); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := registry.Register(NewMultiShoeSearchTool(searcher)); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return registry
}

func TestRegistryDefinitionsOrder(t *testing.T) {
	registry := newTestRegistry(t)

	defs := registry.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != "shoe_specs_search" || defs[1].Name != "multi_shoe_search" {
		t.Errorf("definitions should preserve registration order, got %q then %q", defs[0].Name, defs[1].Name)
	}

	schema := defs[0].Parameters
	if schema["type"] != "object" {
		t.Errorf("expected object schema, got %v", schema["type"])
	}
	required, _ := schema["required"].([]string)
	if !reflect.DeepEqual(required, []string{"shoe_name"}) {
		t.Errorf("expected shoe_name required, got %v", required)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	searcher := &selectiveSearcher{}
	if err := registry.Register(NewShoeSearchTool(searcher)); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := registry.Register(NewShoeSearchTool(searcher)); err == nil {
		t.Error("expected error registering duplicate tool name")
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Dispatch(context.Background(), "laces_search", json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
}

func TestDispatchExecutesTool(t *testing.T) {
	registry := newTestRegistry(t)

	result, err := registry.Dispatch(context.Background(), "shoe_specs_search",
		json.RawMessage(`{"shoe_name": "Nike Pegasus 41"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got %v", result.Error)
	}
	if result.Output == "" {
		t.Error("expected JSON output")
	}
}

func TestDispatchValidationFailure(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Dispatch(context.Background(), "multi_shoe_search",
		json.RawMessage(`{"shoe_names": " , "}`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
