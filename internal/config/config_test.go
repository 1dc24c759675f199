package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{APIKey: "test-key", Model: "test-model"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing addrs")
	}
}

func TestValidate_HopBoundsOrdered(t *testing.T) {
	cfg := validConfig()
	cfg.Planner.MinHops = 4
	cfg.Planner.MaxHops = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for min_hops > max_hops")
	}
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := validConfig()
	cfg.Planner.CoverageThreshold = 1.2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for coverage_threshold > 1")
	}

	cfg = validConfig()
	cfg.Planner.MinConfidence = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for min_confidence > 1")
	}
}

func TestValidate_ConcurrencyCapped(t *testing.T) {
	cfg := validConfig()
	cfg.Planner.Concurrency = 16
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for concurrency above cap")
	}
}

func TestValidate_MissingEmbeddingKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("read timeout default %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Retrieval.IndexName != "idx:docs" || cfg.Retrieval.KeyPrefix != "doc:" {
		t.Errorf("retrieval defaults %q %q", cfg.Retrieval.IndexName, cfg.Retrieval.KeyPrefix)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("top_k default %d", cfg.Retrieval.TopK)
	}
	if cfg.Planner.MinHops != 1 || cfg.Planner.MaxHops != 5 {
		t.Errorf("hop defaults %d..%d", cfg.Planner.MinHops, cfg.Planner.MaxHops)
	}
	if cfg.Planner.CoverageThreshold != 0.5 || cfg.Planner.MinConfidence != 0.7 {
		t.Errorf("threshold defaults %f %f", cfg.Planner.CoverageThreshold, cfg.Planner.MinConfidence)
	}
	if cfg.Planner.MaxSubqueriesPerHop != 3 || cfg.Planner.Concurrency != 4 {
		t.Errorf("planner defaults %d %d", cfg.Planner.MaxSubqueriesPerHop, cfg.Planner.Concurrency)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := validConfig()
	cfg.Planner.MaxHops = 8
	cfg.Retrieval.TopK = 10
	cfg.ApplyDefaults()

	if cfg.Planner.MaxHops != 8 {
		t.Errorf("max_hops overridden to %d", cfg.Planner.MaxHops)
	}
	if cfg.Retrieval.TopK != 10 {
		t.Errorf("top_k overridden to %d", cfg.Retrieval.TopK)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("HOPLITE_TEST_KEY", "secret")

	out := string(expandEnvVars([]byte("api_key: ${HOPLITE_TEST_KEY}\nmodel: ${HOPLITE_TEST_MODEL:-fallback}")))
	if out != "api_key: secret\nmodel: fallback" {
		t.Errorf("unexpected expansion %q", out)
	}
}
