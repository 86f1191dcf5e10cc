package campaign

import "testing"

func TestCreateGetDeleteCampaign(t *testing.T) {
	m := NewManager()

	c, err := m.CreateCampaign("sweep-1", DefaultQuota())
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if c.ID == "" {
		t.Fatal("expected a non-empty generated ID")
	}
	if !c.IsActive {
		t.Error("expected a new campaign to be active")
	}

	got, err := m.GetCampaign(c.ID)
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if got.Name != "sweep-1" {
		t.Errorf("expected name sweep-1, got %s", got.Name)
	}

	if len(m.ListCampaigns()) != 1 {
		t.Fatalf("expected 1 campaign, got %d", len(m.ListCampaigns()))
	}

	if err := m.DeleteCampaign(c.ID); err != nil {
		t.Fatalf("DeleteCampaign: %v", err)
	}
	if _, err := m.GetCampaign(c.ID); err == nil {
		t.Error("expected GetCampaign to fail after delete")
	}
}

func TestGetCampaignNotFound(t *testing.T) {
	m := NewManager()
	if _, err := m.GetCampaign("nope"); err == nil {
		t.Error("expected an error for an unknown campaign id")
	}
}

func TestCheckQueryQuota(t *testing.T) {
	c := &Campaign{Quota: Quota{MaxQueries: 100}}

	if err := c.CheckQueryQuota(50); err != nil {
		t.Errorf("expected no error within quota, got %v", err)
	}
	c.RecordRun(80, 1)
	if err := c.CheckQueryQuota(50); err == nil {
		t.Error("expected quota to be exceeded")
	}
}

func TestCheckQueryQuotaUnlimited(t *testing.T) {
	c := &Campaign{Quota: UnlimitedQuota()}
	if err := c.CheckQueryQuota(1_000_000_000); err != nil {
		t.Errorf("expected unlimited quota to never reject, got %v", err)
	}
}

func TestCheckMethodQuota(t *testing.T) {
	c := &Campaign{Quota: Quota{MaxMethods: 2}}
	if err := c.CheckMethodQuota(2); err != nil {
		t.Errorf("expected 2 methods to fit quota of 2, got %v", err)
	}
	if err := c.CheckMethodQuota(3); err == nil {
		t.Error("expected 3 methods to exceed quota of 2")
	}
}

func TestCheckRateLimit(t *testing.T) {
	c := &Campaign{Quota: Quota{RateLimitRPS: 2}}

	if err := c.CheckRateLimit(); err != nil {
		t.Fatalf("first run should pass: %v", err)
	}
	if err := c.CheckRateLimit(); err != nil {
		t.Fatalf("second run should pass: %v", err)
	}
	if err := c.CheckRateLimit(); err == nil {
		t.Error("expected the third run within the same second to be rate limited")
	}
}

func TestIsOverQuota(t *testing.T) {
	c := &Campaign{Quota: Quota{MaxQueries: 10}}
	if c.IsOverQuota() {
		t.Error("fresh campaign should not be over quota")
	}
	c.RecordRun(20, 1)
	if !c.IsOverQuota() {
		t.Error("expected campaign to be over quota after recording 20 against a max of 10")
	}
}

func TestSetActiveAndMetadata(t *testing.T) {
	c := &Campaign{Metadata: make(map[string]interface{})}

	c.SetActive(false)
	if c.IsActive {
		t.Error("expected campaign to be inactive")
	}

	c.SetMetadata("dataset", "colors112")
	v, ok := c.GetMetadata("dataset")
	if !ok || v != "colors112" {
		t.Errorf("expected metadata roundtrip, got %v, %v", v, ok)
	}

	if _, ok := c.GetMetadata("missing"); ok {
		t.Error("expected missing metadata key to report not found")
	}
}

func TestUpdateQuota(t *testing.T) {
	m := NewManager()
	c, _ := m.CreateCampaign("q", Quota{MaxQueries: 10})

	if err := m.UpdateQuota(c.ID, Quota{MaxQueries: 500}); err != nil {
		t.Fatalf("UpdateQuota: %v", err)
	}
	updated, _ := m.GetCampaign(c.ID)
	if updated.Quota.MaxQueries != 500 {
		t.Errorf("expected updated quota of 500, got %d", updated.Quota.MaxQueries)
	}
}
