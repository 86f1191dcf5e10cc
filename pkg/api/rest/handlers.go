package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/vectorbench/vectorbench/pkg/aggregate"
	"github.com/vectorbench/vectorbench/pkg/campaign"
	"github.com/vectorbench/vectorbench/pkg/config"
)

// Handler serves the campaign and run endpoints against an in-process
// experiment driver — there is no gRPC backend to proxy to, unlike the
// teacher's REST layer, which only forwarded requests to a separate
// vector-database process.
type Handler struct {
	campaigns *campaign.Manager
	runner    *Runner
}

// NewHandler creates a new REST API handler.
func NewHandler(campaigns *campaign.Manager, runner *Runner) *Handler {
	return &Handler{campaigns: campaigns, runner: runner}
}

// HealthCheck handles GET /v1/health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// CreateCampaignRequest is the POST /v1/campaigns request body.
type CreateCampaignRequest struct {
	Name  string         `json:"name"`
	Quota campaign.Quota `json:"quota"`
}

// CreateCampaign handles POST /v1/campaigns.
func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Quota == (campaign.Quota{}) {
		req.Quota = campaign.DefaultQuota()
	}

	c, err := h.campaigns.CreateCampaign(req.Name, req.Quota)
	if err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, c, http.StatusCreated)
}

// ListCampaigns handles GET /v1/campaigns.
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.campaigns.ListCampaigns(), http.StatusOK)
}

// GetCampaign handles GET /v1/campaigns/{id}.
func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.campaigns.GetCampaign(id)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, c, http.StatusOK)
}

// DeleteCampaign handles DELETE /v1/campaigns/{id}.
func (h *Handler) DeleteCampaign(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.campaigns.DeleteCampaign(id); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunExperimentRequest is the POST /v1/campaigns/{id}/runs request body: an
// experiment file submitted inline rather than read from disk.
type RunExperimentRequest struct {
	Experiment config.ExperimentFile `json:"experiment"`
}

// RunResult summarizes one completed run for the HTTP response.
type RunResult struct {
	RangeResults map[string]aggregate.Snapshot `json:"range_results"`
	KNNResults   map[string]aggregate.Snapshot `json:"knn_results"`
}

// RunExperiment handles POST /v1/campaigns/{id}/runs.
func (h *Handler) RunExperiment(w http.ResponseWriter, r *http.Request, campaignID string) {
	c, err := h.campaigns.GetCampaign(campaignID)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	if !c.IsActive {
		writeError(w, "campaign is not active", http.StatusConflict)
		return
	}
	if err := c.CheckRateLimit(); err != nil {
		writeError(w, err.Error(), http.StatusTooManyRequests)
		return
	}

	var req RunExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if err := req.Experiment.Validate(); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := c.CheckMethodQuota(len(req.Experiment.Methods)); err != nil {
		writeError(w, err.Error(), http.StatusForbidden)
		return
	}

	result, err := h.runner.Run(r.Context(), &req.Experiment)
	if err != nil {
		writeError(w, fmt.Sprintf("run failed: %v", err), http.StatusInternalServerError)
		return
	}

	c.RecordRun(int64(len(req.Experiment.Methods))*int64(len(req.Experiment.Ks)+len(req.Experiment.Ranges)), len(req.Experiment.Methods))
	writeJSON(w, result, http.StatusOK)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// ServeDocs serves the OpenAPI/Swagger documentation.
func ServeDocs(w http.ResponseWriter, r *http.Request) {
	content, err := os.ReadFile("docs/api/openapi.yaml")
	if err != nil {
		writeError(w, "OpenAPI spec not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// ServeSwaggerUI serves the Swagger UI HTML page.
func ServeSwaggerUI(w http.ResponseWriter, r *http.Request) {
	html := `<!DOCTYPE html>
<html>
<head>
    <title>vectorbench control API</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "/docs/openapi.yaml",
                dom_id: '#swagger-ui',
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIBundle.SwaggerUIStandalonePreset
                ],
                layout: "BaseLayout"
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// ParseIntQuery parses an integer query parameter.
func ParseIntQuery(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
