// Package tools provides tool management and registration.
//
// Information Hiding:
// - Tool storage and lookup implementation hidden
// - Registration and discovery mechanisms abstracted
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/stridewise/stridewise/llm"
)

// Registry manages available tools. Definitions preserve registration
// order so the model sees a stable tool list across turns.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a new tool to the registry.
// Returns error if a tool with the same name already exists.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Metadata().Name
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool '%s' already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Definitions returns tool definitions for the model, in registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		meta := r.tools[name].Metadata()
		defs = append(defs, llm.ToolDefinition{
			Name:        meta.Name,
			Description: meta.Description,
			Parameters:  meta.Schema(),
		})
	}
	return defs
}

// Dispatch validates and executes the named tool with raw arguments.
// An unregistered name fails with ErrUnknownTool; the caller decides
// whether that is fatal (the orchestration loop feeds it back to the
// model instead of aborting).
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (ToolResult, error) {
	tool, exists := r.Get(name)
	if !exists {
		return ToolResult{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	if err := tool.Validate(args); err != nil {
		return ToolResult{}, fmt.Errorf("validation failed for %q: %w", name, err)
	}

	return tool.Execute(ctx, args)
}
