package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"familyglitch/internal/config"
	"familyglitch/internal/tool"
)

// Pinger checks that a backing store is reachable
type Pinger func(ctx context.Context) error

// HealthHandler reports model, tool and store status
type HealthHandler struct {
	ai       *config.AIConfig
	registry *tool.Registry
	checks   map[string]Pinger
}

// NewHealthHandler creates a new health handler; checks are keyed by the name
// reported in the response
func NewHealthHandler(ai *config.AIConfig, registry *tool.Registry, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{ai: ai, registry: registry, checks: checks}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var mu sync.Mutex
	status := "ok"
	resp := map[string]interface{}{
		"provider":         h.ai.Provider,
		"model":            h.ai.Model,
		"apiKeyConfigured": h.ai.IsEnabled(),
		"apiKeyPrefix":     h.ai.KeyPrefix(),
		"tools":            h.registry.Names(),
		"toolCount":        h.registry.Len(),
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, ping := range h.checks {
		g.Go(func() error {
			result := "ok"
			if err := ping(gctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			resp[name] = result
			if result != "ok" {
				status = "degraded"
			}
			return nil
		})
	}
	g.Wait()

	if !h.ai.IsEnabled() {
		status = "degraded"
	}
	resp["status"] = status

	writeJSON(w, http.StatusOK, resp)
}
