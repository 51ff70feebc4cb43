package clients

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Upstream is a remote the drawer depends on. /health/upstreams probes each one.
type Upstream struct {
	Name   string
	Client *Client
	Path   string
}

type UpstreamStatus struct {
	Name       string
	Up         bool
	StatusCode int
	Latency    time.Duration
	Error      string
}

const upstreamProbeTimeout = 2 * time.Second

// Probe calls the upstream's health path. Any 2xx counts as up; health
// endpoints do not answer with the response envelope, so the body is ignored.
func (u Upstream) Probe(ctx context.Context) UpstreamStatus {
	ctx, cancel := context.WithTimeout(ctx, upstreamProbeTimeout)
	defer cancel()

	st := UpstreamStatus{Name: u.Name}
	start := time.Now()
	resp, err := u.Client.Do(ctx, http.MethodGet, u.Path, nil)
	st.Latency = time.Since(start)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	st.StatusCode = resp.StatusCode
	st.Up = resp.StatusCode >= 200 && resp.StatusCode < 300
	return st
}

// ProbeAll probes every upstream at once. Results keep the input order.
func ProbeAll(ctx context.Context, ups []Upstream) []UpstreamStatus {
	out := make([]UpstreamStatus, len(ups))
	var g errgroup.Group
	for i, u := range ups {
		g.Go(func() error {
			out[i] = u.Probe(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
