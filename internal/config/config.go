package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Graph     GraphConfig
	Ai        AIConfig
	Diagnosis DiagnosisConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LogLevel           string
	CorsAllowedOrigins string
	NatsURL            string // empty disables event publishing
	RedisURL           string
	JWTSecret          string
	OtelEnabled        bool
	OtelEndpoint       string
}

type GraphConfig struct {
	Backend       string // "neo4j", "postgres" or "file"
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string
	PostgresDSN   string
	ExportPath    string // JSON export used by the "file" backend
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "gemini" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	GeminiAPIKey      string
	JinaAPIKey        string
	EmbeddingCacheTTL time.Duration
}

type DiagnosisConfig struct {
	SimThreshold    float64
	DiagThreshold   float64
	SuggestLimit    int
	BestGuessLimit  int
	RefreshInterval time.Duration // 0 disables the periodic refresh
	SnapshotSource  string        // "file", "postgres" or "embed"
	SnapshotPath    string
	MirrorKey       string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			OtelEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Graph: GraphConfig{
			Backend:       getEnv("GRAPH_BACKEND", "neo4j"),
			Neo4jURI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
			Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
			Neo4jPassword: getEnv("NEO4J_PASSWORD", ""),
			Neo4jDatabase: getEnv("NEO4J_DATABASE", ""),
			PostgresDSN:   getEnv("DB_CONNECTION_STRING", ""),
			ExportPath:    getEnv("GRAPH_EXPORT_PATH", "data/graph.json"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "m3e-small"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JinaAPIKey:        getEnv("JINA_API_KEY", ""),
			EmbeddingCacheTTL: getEnvAsDuration("EMBEDDING_CACHE_TTL", 10*time.Minute),
		},
		Diagnosis: DiagnosisConfig{
			SimThreshold:    getEnvAsFloat("SIM_THRESHOLD", 0.7),
			DiagThreshold:   getEnvAsFloat("DIAG_THRESHOLD", 0.7),
			SuggestLimit:    getEnvAsInt("SUGGEST_LIMIT", 5),
			BestGuessLimit:  getEnvAsInt("BEST_GUESS_LIMIT", 3),
			RefreshInterval: getEnvAsDuration("KB_REFRESH_INTERVAL", 30*time.Minute),
			SnapshotSource:  getEnv("SYMPTOM_SNAPSHOT_SOURCE", "file"),
			SnapshotPath:    getEnv("SYMPTOM_SNAPSHOT_PATH", "data/feature_vecs.json"),
			MirrorKey:       getEnv("KB_MIRROR_KEY", "disease_symptoms"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
