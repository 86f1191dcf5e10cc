package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all control-service configuration.
type Config struct {
	Server    ServerConfig
	Benchmark BenchmarkConfig
	Methods   MethodsConfig
	Cache     CacheConfig
}

// ServerConfig holds the REST control API's listener, TLS, and middleware
// configuration — the teacher split this into a separate gRPC ServerConfig
// plus an ad hoc REST section; this rewrite has exactly one listener, so
// both collapse into one struct.
type ServerConfig struct {
	Host             string        // Server host (default: "0.0.0.0")
	Port             int           // Server port (default: 8080)
	MaxConnections   int           // Max concurrent connections
	RequestTimeout   time.Duration // Request timeout
	ShutdownTimeout  time.Duration // Graceful shutdown timeout
	EnableTLS        bool          // Enable TLS
	CertFile         string        // TLS certificate file
	KeyFile          string        // TLS key file
	CORSEnabled      bool
	CORSOrigins      []string
	AuthEnabled      bool
	JWTSecret        string
	PublicPaths      []string
	AdminPaths       []string
	RateLimitEnabled bool
	RateLimitPerSec  float64
	RateLimitBurst   int
	RateLimitPerIP   bool
	RateLimitPerUser bool
	RateLimitGlobal  bool
}

// BenchmarkConfig holds the default two-pass protocol parameters applied
// when an ExperimentFile doesn't override them.
type BenchmarkConfig struct {
	ThreadQty   int     // Pass 1 worker goroutines
	Eps         float32 // k-NN approximation slack
	Ranges      []float64
	Ks          []int
	SampleFrac  float64 // query subsampling fraction, 1.0 = full set
	SampleMin   int     // minimum sampled queries regardless of SampleFrac
	SampleSeed  int64
}

// MethodsConfig holds per-method index construction/search parameters,
// generalizing the teacher's single HNSWConfig across every registered
// method adapter.
type MethodsConfig struct {
	HNSW    HNSWParams
	NSG     NSGParams
	DiskANN DiskANNParams
	IVFFlat IVFParams
	IVFPQ   IVFParams
	SCANN   SCANNParams
}

// HNSWParams mirrors the teacher's HNSWConfig fields.
type HNSWParams struct {
	M              int // connections per layer (default: 16)
	EfConstruction int // construction-time accuracy (default: 200)
	EfSearch       int // default search-time accuracy (default: 100)
}

// NSGParams configures the NSG adapter.
type NSGParams struct {
	L int // construction-time candidate pool size (default: 100)
}

// DiskANNParams configures the DiskANN adapter.
type DiskANNParams struct {
	R int // graph degree (default: 64)
	L int // search list size (default: 100)
}

// IVFParams configures the IVF-Flat and IVF-PQ adapters.
type IVFParams struct {
	NumCentroids int // (default: 16)
	NProbe       int // (default: 4)
}

// SCANNParams configures the SCANN adapter.
type SCANNParams struct {
	NumPartitions int // (default: 16)
	NProbe        int // (default: 4)
	NumSubvectors int // (default: 8)
}

// CacheConfig holds gold-standard distance cache configuration.
type CacheConfig struct {
	Enabled  bool          // Enable the ristretto-backed distance cache
	Capacity int64         // Max cache entries
	TTL      time.Duration // unused by ristretto directly, kept for parity with teacher's knob
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			MaxConnections:   1000,
			RequestTimeout:   30 * time.Second,
			ShutdownTimeout:  10 * time.Second,
			EnableTLS:        false,
			CORSEnabled:      true,
			CORSOrigins:      []string{"*"},
			AuthEnabled:      false,
			RateLimitEnabled: true,
			RateLimitPerSec:  50,
			RateLimitBurst:   100,
			RateLimitPerIP:   true,
		},
		Benchmark: BenchmarkConfig{
			ThreadQty:  4,
			Eps:        0,
			Ranges:     nil,
			Ks:         []int{1, 10, 100},
			SampleFrac: 1.0,
			SampleMin:  0,
			SampleSeed: 1,
		},
		Methods: MethodsConfig{
			HNSW:    HNSWParams{M: 16, EfConstruction: 200, EfSearch: 100},
			NSG:     NSGParams{L: 100},
			DiskANN: DiskANNParams{R: 64, L: 100},
			IVFFlat: IVFParams{NumCentroids: 16, NProbe: 4},
			IVFPQ:   IVFParams{NumCentroids: 16, NProbe: 4},
			SCANN:   SCANNParams{NumPartitions: 16, NProbe: 4, NumSubvectors: 8},
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1_000_000,
			TTL:      5 * time.Minute,
		},
	}
}

// LoadFromEnv loads configuration from environment variables, falling back
// to Default for anything unset.
func LoadFromEnv() *Config {
	cfg := Default()

	if host := os.Getenv("VECTORBENCH_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("VECTORBENCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if maxConn := os.Getenv("VECTORBENCH_MAX_CONNECTIONS"); maxConn != "" {
		if mc, err := strconv.Atoi(maxConn); err == nil {
			cfg.Server.MaxConnections = mc
		}
	}
	if timeout := os.Getenv("VECTORBENCH_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if enableTLS := os.Getenv("VECTORBENCH_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("VECTORBENCH_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("VECTORBENCH_TLS_KEY")
	}
	if authEnabled := os.Getenv("VECTORBENCH_AUTH_ENABLED"); authEnabled == "true" {
		cfg.Server.AuthEnabled = true
		cfg.Server.JWTSecret = os.Getenv("VECTORBENCH_JWT_SECRET")
	}

	if threads := os.Getenv("VECTORBENCH_THREADS"); threads != "" {
		if t, err := strconv.Atoi(threads); err == nil {
			cfg.Benchmark.ThreadQty = t
		}
	}
	if m := os.Getenv("VECTORBENCH_HNSW_M"); m != "" {
		if mVal, err := strconv.Atoi(m); err == nil {
			cfg.Methods.HNSW.M = mVal
		}
	}
	if ef := os.Getenv("VECTORBENCH_HNSW_EF_CONSTRUCTION"); ef != "" {
		if efVal, err := strconv.Atoi(ef); err == nil {
			cfg.Methods.HNSW.EfConstruction = efVal
		}
	}

	if cacheEnabled := os.Getenv("VECTORBENCH_CACHE_ENABLED"); cacheEnabled == "false" {
		cfg.Cache.Enabled = false
	}
	if capacity := os.Getenv("VECTORBENCH_CACHE_CAPACITY"); capacity != "" {
		if c, err := strconv.ParseInt(capacity, 10, 64); err == nil {
			cfg.Cache.Capacity = c
		}
	}
	if ttl := os.Getenv("VECTORBENCH_CACHE_TTL"); ttl != "" {
		if t, err := time.ParseDuration(ttl); err == nil {
			cfg.Cache.TTL = t
		}
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxConnections < 1 {
		return fmt.Errorf("invalid max connections: %d (must be > 0)", c.Server.MaxConnections)
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
	}
	if c.Server.AuthEnabled && c.Server.JWTSecret == "" {
		return fmt.Errorf("auth enabled but JWT secret not specified")
	}

	if c.Benchmark.ThreadQty < 1 {
		return fmt.Errorf("invalid thread quantity: %d (must be > 0)", c.Benchmark.ThreadQty)
	}

	if c.Methods.HNSW.M < 2 || c.Methods.HNSW.M > 100 {
		return fmt.Errorf("invalid HNSW M: %d (recommended: 16)", c.Methods.HNSW.M)
	}
	if c.Methods.HNSW.EfConstruction < 10 {
		return fmt.Errorf("invalid HNSW efConstruction: %d (must be >= 10)", c.Methods.HNSW.EfConstruction)
	}

	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("invalid cache capacity: %d (must be > 0)", c.Cache.Capacity)
	}

	return nil
}

// Address returns the server address (host:port).
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
