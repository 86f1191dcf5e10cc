package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vectorbench/vectorbench/pkg/campaign"
)

func newTestHandler() *Handler {
	return NewHandler(campaign.NewManager(), NewRunner())
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rr := httptest.NewRecorder()

	h.HealthCheck(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestCreateListGetDeleteCampaign(t *testing.T) {
	h := newTestHandler()

	createBody, _ := json.Marshal(CreateCampaignRequest{Name: "sweep-1"})
	req := httptest.NewRequest(http.MethodPost, "/v1/campaigns", bytes.NewReader(createBody))
	rr := httptest.NewRecorder()
	h.CreateCampaign(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created campaign.Campaign
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created campaign: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated campaign id")
	}

	listReq := httptest.NewRequest(http.MethodGet, "/v1/campaigns", nil)
	listRR := httptest.NewRecorder()
	h.ListCampaigns(listRR, listReq)
	if listRR.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", listRR.Code)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/v1/campaigns/"+created.ID, nil)
	getRR := httptest.NewRecorder()
	h.GetCampaign(getRR, getReq, created.ID)
	if getRR.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", getRR.Code)
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/v1/campaigns/"+created.ID, nil)
	delRR := httptest.NewRecorder()
	h.DeleteCampaign(delRR, delReq, created.ID)
	if delRR.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", delRR.Code)
	}

	missingRR := httptest.NewRecorder()
	h.GetCampaign(missingRR, getReq, created.ID)
	if missingRR.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after deletion, got %d", missingRR.Code)
	}
}

func TestCreateCampaignRejectsMalformedBody(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/v1/campaigns", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	h.CreateCampaign(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestRunExperimentRejectsInvalidExperimentFile(t *testing.T) {
	h := newTestHandler()
	c, err := h.campaigns.CreateCampaign("sweep-1", campaign.DefaultQuota())
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	body, _ := json.Marshal(RunExperimentRequest{})
	req := httptest.NewRequest(http.MethodPost, "/v1/campaigns/"+c.ID+"/runs", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.RunExperiment(rr, req, c.ID)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for an empty experiment file, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRunExperimentRejectsUnknownCampaign(t *testing.T) {
	h := newTestHandler()
	body, _ := json.Marshal(RunExperimentRequest{})
	req := httptest.NewRequest(http.MethodPost, "/v1/campaigns/nope/runs", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.RunExperiment(rr, req, "nope")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25", nil)
	if got := ParseIntQuery(req, "limit", 10); got != 25 {
		t.Errorf("expected 25, got %d", got)
	}
	if got := ParseIntQuery(req, "missing", 10); got != 10 {
		t.Errorf("expected default 10, got %d", got)
	}

	badReq := httptest.NewRequest(http.MethodGet, "/?limit=notanumber", nil)
	if got := ParseIntQuery(badReq, "limit", 10); got != 10 {
		t.Errorf("expected default 10 for an invalid value, got %d", got)
	}
}
