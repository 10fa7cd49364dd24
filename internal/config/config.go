package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	OllamaURL        string
	OllamaGenModel   string
	OllamaEmbedModel string

	// Optional integrations; empty disables them.
	PostgresDSN string
	NATSURL     string
	NATSSubject string
	LexiconPath string

	FusionAlpha          float64
	SearchTopK           int
	HybridCandidates     int
	RerankTopN           int
	RerankWorkers        int
	ExpansionMaxVariants int
	MaxQueryChars        int
	AnswerTopN           int

	EmbedTimeoutSeconds    int
	ExpandTimeoutSeconds   int
	GenerateTimeoutSeconds int

	APIRateLimitRPS     float64
	APIRateLimitBurst   int
	APIMaxInFlight      int
	ResilienceBreakerOn bool
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:   mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),
		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "documents.indexed"),
		LexiconPath: mustEnv("LEXICON_PATH", ""),

		FusionAlpha:          mustEnvFloat("FUSION_ALPHA", 0.7),
		SearchTopK:           mustEnvInt("SEARCH_TOP_K", 5),
		HybridCandidates:     mustEnvInt("HYBRID_CANDIDATES", 30),
		RerankTopN:           mustEnvInt("RERANK_TOP_N", 20),
		RerankWorkers:        mustEnvInt("RERANK_WORKERS", 8),
		ExpansionMaxVariants: mustEnvInt("EXPANSION_MAX_VARIANTS", 4),
		MaxQueryChars:        mustEnvInt("MAX_QUERY_CHARS", 512),
		AnswerTopN:           mustEnvInt("ANSWER_TOP_N", 4),

		EmbedTimeoutSeconds:    mustEnvInt("EMBED_TIMEOUT_SECONDS", 10),
		ExpandTimeoutSeconds:   mustEnvInt("EXPAND_TIMEOUT_SECONDS", 5),
		GenerateTimeoutSeconds: mustEnvInt("GENERATE_TIMEOUT_SECONDS", 60),

		APIRateLimitRPS:     mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:   mustEnvInt("API_RATE_LIMIT_BURST", 0),
		APIMaxInFlight:      mustEnvInt("API_MAX_IN_FLIGHT", 0),
		ResilienceBreakerOn: mustEnvBool("RESILIENCE_BREAKER_ENABLED", true),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
