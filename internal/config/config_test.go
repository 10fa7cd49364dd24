package config

import "testing"

func TestLoadRetrievalDefaults(t *testing.T) {
	t.Setenv("FUSION_ALPHA", "")
	t.Setenv("SEARCH_TOP_K", "")
	t.Setenv("HYBRID_CANDIDATES", "")
	t.Setenv("RERANK_TOP_N", "")
	t.Setenv("ANSWER_TOP_N", "")

	cfg := Load()
	if cfg.FusionAlpha != 0.7 {
		t.Fatalf("expected default fusion alpha 0.7, got %v", cfg.FusionAlpha)
	}
	if cfg.SearchTopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.SearchTopK)
	}
	if cfg.HybridCandidates != 30 {
		t.Fatalf("expected default hybrid candidates 30, got %d", cfg.HybridCandidates)
	}
	if cfg.RerankTopN != 20 {
		t.Fatalf("expected default rerank top n 20, got %d", cfg.RerankTopN)
	}
	if cfg.AnswerTopN != 4 {
		t.Fatalf("expected default answer top n 4, got %d", cfg.AnswerTopN)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("FUSION_ALPHA", "0.3")
	t.Setenv("HYBRID_CANDIDATES", "40")
	t.Setenv("RERANK_TOP_N", "12")
	t.Setenv("API_RATE_LIMIT_RPS", "25.5")
	t.Setenv("RESILIENCE_BREAKER_ENABLED", "false")

	cfg := Load()
	if cfg.FusionAlpha != 0.3 {
		t.Fatalf("expected fusion alpha 0.3, got %v", cfg.FusionAlpha)
	}
	if cfg.HybridCandidates != 40 {
		t.Fatalf("expected hybrid candidates 40, got %d", cfg.HybridCandidates)
	}
	if cfg.RerankTopN != 12 {
		t.Fatalf("expected rerank top n 12, got %d", cfg.RerankTopN)
	}
	if cfg.APIRateLimitRPS != 25.5 {
		t.Fatalf("expected rate limit 25.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.ResilienceBreakerOn {
		t.Fatalf("expected breaker disabled")
	}
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("FUSION_ALPHA", "not-a-number")
	t.Setenv("SEARCH_TOP_K", "many")

	cfg := Load()
	if cfg.FusionAlpha != 0.7 {
		t.Fatalf("expected fallback alpha 0.7, got %v", cfg.FusionAlpha)
	}
	if cfg.SearchTopK != 5 {
		t.Fatalf("expected fallback top k 5, got %d", cfg.SearchTopK)
	}
}
