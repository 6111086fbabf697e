// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, upstream providers, the
// retrieval pipeline, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "faq-chat-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// OpenAIConfig holds credentials and model ids for the OpenAI provider.
type OpenAIConfig struct {
	APIKey     string // OPENAI_API_KEY
	BaseURL    string // OPENAI_BASE_URL (optional; proxies and tests)
	ChatModel  string // OPENAI_CHAT_MODEL
	EmbedModel string // OPENAI_EMBED_MODEL
}

// GeminiConfig holds credentials and model ids for the Gemini provider.
type GeminiConfig struct {
	APIKey     string // GEMINI_API_KEY
	ChatModel  string // GEMINI_CHAT_MODEL
	EmbedModel string // GEMINI_EMBED_MODEL
}

// VectorConfig selects and configures the vector index backend.
type VectorConfig struct {
	Backend         string // pinecone|pgvector|memory
	PineconeAPIKey  string // PINECONE_API_KEY
	PineconeHost    string // PINECONE_INDEX_HOST
	PGVectorDSN     string // PGVECTOR_DSN
	MemoryIndexPath string // MEMORY_INDEX_PATH (JSON snapshot, optional)
}

// RAGConfig mirrors the retrieval knobs consumed by the pipeline.
type RAGConfig struct {
	TopK                   int     // RAG_TOP_K (>= 1)
	ScoreThreshold         float64 // RAG_SCORE_THRESHOLD
	Namespace              string  // RAG_NAMESPACE
	RewriteFallbackOnError bool    // RAG_REWRITE_FALLBACK_ON_ERROR
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 60s (four sequential upstream calls)
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath          string        // SQLite path for chat logs
	MaxMessageRunes int           // cap on incoming chat messages
	LogRetention    time.Duration // 0 disables pruning of chat logs
	RetentionCron   string        // 5-field cron spec for the pruning job

	// Upstreams
	LLMProvider     string        // openai|gemini
	OpenAI          OpenAIConfig  //
	Gemini          GeminiConfig  //
	Vector          VectorConfig  //
	UpstreamTimeout time.Duration // per-call deadline; 0 disables
	EmbedCacheSize  int           // LRU entries; 0 disables
	EmbedCacheTTL   time.Duration // LRU entry lifetime

	// Retrieval
	RAG RAGConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// App
		DBPath:          getenv("DB_PATH", "chat_history.db"),
		MaxMessageRunes: getint("MAX_MESSAGE_RUNES", 2000),
		LogRetention:    getdur("LOG_RETENTION", 0),
		RetentionCron:   getenv("LOG_RETENTION_CRON", "0 3 * * *"),

		// Upstreams
		LLMProvider: strings.ToLower(getenv("LLM_PROVIDER", "openai")),
		OpenAI: OpenAIConfig{
			APIKey:     getenv("OPENAI_API_KEY", ""),
			BaseURL:    getenv("OPENAI_BASE_URL", ""),
			ChatModel:  getenv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			EmbedModel: getenv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		},
		Gemini: GeminiConfig{
			APIKey:     getenv("GEMINI_API_KEY", ""),
			ChatModel:  getenv("GEMINI_CHAT_MODEL", "gemini-2.0-flash"),
			EmbedModel: getenv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		Vector: VectorConfig{
			Backend:         strings.ToLower(getenv("VECTOR_BACKEND", "pinecone")),
			PineconeAPIKey:  getenv("PINECONE_API_KEY", ""),
			PineconeHost:    getenv("PINECONE_INDEX_HOST", ""),
			PGVectorDSN:     getenv("PGVECTOR_DSN", ""),
			MemoryIndexPath: getenv("MEMORY_INDEX_PATH", ""),
		},
		UpstreamTimeout: getdur("UPSTREAM_TIMEOUT", 20*time.Second),
		EmbedCacheSize:  getint("EMBED_CACHE_SIZE", 512),
		EmbedCacheTTL:   getdur("EMBED_CACHE_TTL", time.Hour),

		// Retrieval
		RAG: RAGConfig{
			TopK:                   getint("RAG_TOP_K", 3),
			ScoreThreshold:         getfloat("RAG_SCORE_THRESHOLD", 0.6),
			Namespace:              getenv("RAG_NAMESPACE", "default"),
			RewriteFallbackOnError: getbool("RAG_REWRITE_FALLBACK_ON_ERROR", false),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "faq-chat-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	cfg.RAG.Namespace = strings.TrimSpace(cfg.RAG.Namespace)

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.MaxMessageRunes < 0 {
		return cfg, errors.New("MAX_MESSAGE_RUNES must be >= 0")
	}
	if cfg.LogRetention < 0 {
		return cfg, errors.New("LOG_RETENTION must be >= 0")
	}
	if cfg.LogRetention > 0 && strings.TrimSpace(cfg.RetentionCron) == "" {
		return cfg, errors.New("LOG_RETENTION_CRON must be set when LOG_RETENTION is enabled")
	}
	if err := validateProviders(cfg); err != nil {
		return cfg, err
	}
	if cfg.UpstreamTimeout < 0 {
		return cfg, errors.New("UPSTREAM_TIMEOUT must be >= 0")
	}
	if cfg.EmbedCacheSize < 0 {
		return cfg, errors.New("EMBED_CACHE_SIZE must be >= 0")
	}
	if cfg.RAG.TopK < 1 {
		return cfg, errors.New("RAG_TOP_K must be >= 1")
	}
	if cfg.RAG.ScoreThreshold < -1 || cfg.RAG.ScoreThreshold > 1 {
		return cfg, errors.New("RAG_SCORE_THRESHOLD must be between -1 and 1")
	}
	if cfg.RAG.Namespace == "" {
		return cfg, errors.New("RAG_NAMESPACE must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// validateProviders checks credentials only for the selected backends.
func validateProviders(cfg Config) error {
	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
			return errors.New("OPENAI_API_KEY must be set when LLM_PROVIDER=openai")
		}
	case "gemini":
		if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
			return errors.New("GEMINI_API_KEY must be set when LLM_PROVIDER=gemini")
		}
	default:
		return errors.New("LLM_PROVIDER must be one of: openai, gemini")
	}

	switch cfg.Vector.Backend {
	case "pinecone":
		if strings.TrimSpace(cfg.Vector.PineconeAPIKey) == "" || strings.TrimSpace(cfg.Vector.PineconeHost) == "" {
			return errors.New("PINECONE_API_KEY and PINECONE_INDEX_HOST must be set when VECTOR_BACKEND=pinecone")
		}
	case "pgvector":
		if strings.TrimSpace(cfg.Vector.PGVectorDSN) == "" {
			return errors.New("PGVECTOR_DSN must be set when VECTOR_BACKEND=pgvector")
		}
	case "memory":
	default:
		return errors.New("VECTOR_BACKEND must be one of: pinecone, pgvector, memory")
	}
	return nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// splitCSV returns the non-blank comma-separated items of s, or nil.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
