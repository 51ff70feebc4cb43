package handlers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arwoh/storefront-go/internal/clients"
	"github.com/arwoh/storefront-go/internal/http/dto"
)

// BackendCheck probes an optional local dependency such as postgres or redis.
type BackendCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	Upstreams []clients.Upstream
	Backends  []BackendCheck
}

func (h *HealthHandler) Gateway(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", Service: "storefront-bff"})
}

// Dependencies reports the remote services and local backends. Anything down
// makes the status "degraded"; the endpoint itself still answers 200.
func (h *HealthHandler) Dependencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	results := make([]dto.DependencyHealth, 0, len(h.Upstreams)+len(h.Backends))

	for _, st := range clients.ProbeAll(ctx, h.Upstreams) {
		results = append(results, dto.DependencyHealth{
			Name:       st.Name,
			OK:         st.Up,
			StatusCode: st.StatusCode,
			LatencyMS:  st.Latency.Milliseconds(),
			Error:      st.Error,
		})
	}

	local := make([]dto.DependencyHealth, len(h.Backends))
	var g errgroup.Group
	for i, b := range h.Backends {
		g.Go(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			start := time.Now()
			err := b.Ping(pingCtx)
			local[i] = dto.DependencyHealth{Name: b.Name, OK: err == nil, LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				local[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	results = append(results, local...)

	status := "ok"
	for _, res := range results {
		if !res.OK {
			status = "degraded"
			break
		}
	}
	writeJSON(w, http.StatusOK, dto.UpstreamsHealthResponse{Status: status, Service: "storefront-bff", Upstream: results})
}
