package tool

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"familyglitch/internal/model"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Result is what an executor hands back to the conversation
type Result struct {
	TemplateType model.TemplateType `json:"templateType,omitempty"`
	Params       map[string]any     `json:"params,omitempty"`
	Data         map[string]any     `json:"data,omitempty"`
}

// Executor runs a tool with already-validated arguments
type Executor func(ctx context.Context, args map[string]any) (*Result, error)

type entry struct {
	def  Definition
	exec Executor
}

// Registry maps tool names to their definition and executor.
// It is built once at startup and read concurrently afterwards.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]entry),
	}
}

// Register stores def and exec under def.Name, replacing any previous entry
func (r *Registry) Register(def Definition, exec Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		log.Printf("tool registry: overwriting existing tool %q", def.Name)
	}
	r.tools[def.Name] = entry{def: def, exec: exec}
}

// Definitions returns the definitions for names, or every definition sorted by
// name when names is empty. Unknown names are skipped.
func (r *Registry) Definitions(names ...string) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(names) > 0 {
		defs := make([]Definition, 0, len(names))
		for _, name := range names {
			if e, ok := r.tools[name]; ok {
				defs = append(defs, e.def)
			}
		}
		return defs
	}

	defs := make([]Definition, 0, len(r.tools))
	for _, e := range r.tools {
		defs = append(defs, e.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Names lists registered tool names in sorted order
func (r *Registry) Names() []string {
	defs := r.Definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

// Len reports how many tools are registered
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Execute validates args against the tool's schema and runs its executor
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*Result, error) {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if err := Validate(args, e.def.Parameters); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
	}

	res, err := e.exec(ctx, args)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &Result{}
	}
	return res, nil
}

// Provider contributes a set of tools to a registry
type Provider interface {
	RegisterTools(reg *Registry)
}

// RegisterAll registers every provider's tools in order
func RegisterAll(reg *Registry, providers ...Provider) *Registry {
	for _, p := range providers {
		p.RegisterTools(reg)
	}
	return reg
}
