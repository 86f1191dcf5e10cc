// Package campaign groups benchmark runs under named, quota-bounded
// campaigns — a rework of the teacher package's tenant manager
// (pkg/tenant/manager.go) for a single benchmarking process instead of a
// multi-tenant storage service: a Campaign stands in for a Tenant, and its
// Quota bounds how much of an experiment run it may launch rather than how
// much data it may store.
package campaign

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Quota bounds the resources one campaign's runs may consume. A zero or
// negative field means unlimited, matching the teacher's convention.
type Quota struct {
	MaxQueries     int64 // total queries across all runs
	MaxMethods     int   // distinct methods benchmarked
	MaxConcurrency int   // worker goroutines per run
	RateLimitRPS   int   // experiment runs started per second
}

// Usage tracks a campaign's consumption against its Quota.
type Usage struct {
	QueriesRun   int64
	MethodsRun   int
	LastRunTime  time.Time
	RunsThisSec  int64
}

// Campaign is a named collection of experiment runs sharing one quota.
type Campaign struct {
	ID        string
	Name      string
	Quota     Quota
	Usage     Usage
	CreatedAt time.Time
	UpdatedAt time.Time
	IsActive  bool
	Metadata  map[string]interface{}
	mu        sync.RWMutex
}

// Manager handles campaign lifecycle and quota enforcement.
type Manager struct {
	campaigns map[string]*Campaign
	mu        sync.RWMutex
}

// NewManager creates an empty campaign manager.
func NewManager() *Manager {
	return &Manager{campaigns: make(map[string]*Campaign)}
}

// CreateCampaign creates a new campaign with the given name and quota. The
// campaign's ID is a fresh UUID, not derived from the name, so two
// campaigns may share a display name.
func (m *Manager) CreateCampaign(name string, quota Quota) (*Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	if _, exists := m.campaigns[id]; exists {
		return nil, fmt.Errorf("campaign id collision for %q", id)
	}

	c := &Campaign{
		ID:        id,
		Name:      name,
		Quota:     quota,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		IsActive:  true,
		Metadata:  make(map[string]interface{}),
	}

	m.campaigns[id] = c
	return c, nil
}

// GetCampaign retrieves a campaign by ID.
func (m *Manager) GetCampaign(id string) (*Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.campaigns[id]
	if !exists {
		return nil, fmt.Errorf("campaign %q not found", id)
	}
	return c, nil
}

// DeleteCampaign removes a campaign.
func (m *Manager) DeleteCampaign(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.campaigns[id]; !exists {
		return fmt.Errorf("campaign %q not found", id)
	}
	delete(m.campaigns, id)
	return nil
}

// ListCampaigns returns every known campaign.
func (m *Manager) ListCampaigns() []*Campaign {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Campaign, 0, len(m.campaigns))
	for _, c := range m.campaigns {
		out = append(out, c)
	}
	return out
}

// UpdateQuota replaces a campaign's quota.
func (m *Manager) UpdateQuota(id string, quota Quota) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, exists := m.campaigns[id]
	if !exists {
		return fmt.Errorf("campaign %q not found", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Quota = quota
	c.UpdatedAt = time.Now()
	return nil
}

// CheckQueryQuota returns an error if running count more queries would
// exceed the campaign's MaxQueries.
func (c *Campaign) CheckQueryQuota(count int64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Quota.MaxQueries > 0 && c.Usage.QueriesRun+count > c.Quota.MaxQueries {
		return fmt.Errorf("query quota exceeded: used=%d requested=%d max=%d",
			c.Usage.QueriesRun, count, c.Quota.MaxQueries)
	}
	return nil
}

// CheckMethodQuota returns an error if benchmarking total distinct methods
// would exceed the campaign's MaxMethods.
func (c *Campaign) CheckMethodQuota(total int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Quota.MaxMethods > 0 && total > c.Quota.MaxMethods {
		return fmt.Errorf("method quota exceeded: requested=%d max=%d", total, c.Quota.MaxMethods)
	}
	return nil
}

// CheckRateLimit enforces RateLimitRPS on experiment-run starts, using the
// same same-second counter reset the teacher's CheckRateLimit used for
// queries per second.
func (c *Campaign) CheckRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Quota.RateLimitRPS <= 0 {
		return nil
	}

	now := time.Now()
	if now.Sub(c.Usage.LastRunTime) < time.Second {
		if c.Usage.RunsThisSec >= int64(c.Quota.RateLimitRPS) {
			return fmt.Errorf("rate limit exceeded: %d runs/sec (max: %d)",
				c.Usage.RunsThisSec, c.Quota.RateLimitRPS)
		}
	} else {
		c.Usage.RunsThisSec = 0
		c.Usage.LastRunTime = now
	}

	c.Usage.RunsThisSec++
	return nil
}

// RecordRun folds one completed experiment run's consumption into usage.
func (c *Campaign) RecordRun(queries int64, methods int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Usage.QueriesRun += queries
	if methods > c.Usage.MethodsRun {
		c.Usage.MethodsRun = methods
	}
	c.UpdatedAt = time.Now()
}

// IsOverQuota reports whether queries-run has exceeded MaxQueries.
func (c *Campaign) IsOverQuota() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Quota.MaxQueries > 0 && c.Usage.QueriesRun > c.Quota.MaxQueries
}

// SetActive toggles whether new runs may be started under this campaign.
func (c *Campaign) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.IsActive = active
	c.UpdatedAt = time.Now()
}

// SetMetadata attaches an arbitrary label to the campaign, e.g. the data
// set name or git commit the run was launched from.
func (c *Campaign) SetMetadata(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Metadata[key] = value
	c.UpdatedAt = time.Now()
}

// GetMetadata retrieves a previously attached label.
func (c *Campaign) GetMetadata(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.Metadata[key]
	return v, ok
}

// DefaultQuota is a reasonable bound for an interactive benchmarking
// session: enough to run a full sweep of methods/ranges/ks over a
// medium-sized query set without runaway resource use.
func DefaultQuota() Quota {
	return Quota{
		MaxQueries:     10_000_000,
		MaxMethods:     32,
		MaxConcurrency: 64,
		RateLimitRPS:   100,
	}
}

// UnlimitedQuota removes every bound.
func UnlimitedQuota() Quota {
	return Quota{MaxQueries: -1, MaxMethods: -1, MaxConcurrency: -1, RateLimitRPS: -1}
}
