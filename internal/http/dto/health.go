package dto

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type DependencyHealth struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	LatencyMS  int64  `json:"latencyMs"`
	Error      string `json:"error,omitempty"`
}

type UpstreamsHealthResponse struct {
	Status   string             `json:"status"`
	Service  string             `json:"service"`
	Upstream []DependencyHealth `json:"upstream"`
}
