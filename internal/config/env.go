package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	AIAPIKey   string
	EmbedModel string
	EmbedDim   int
	GenModel   string

	Storage      string // "local" or "s3"
	UploadDir    string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	ChunkSize    int
	ChunkOverlap int
	BatchChars   int
	SummaryChars int

	TopK             int
	MaxContextChunks int
	ScoreThreshold   float64
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		AIAPIKey:   getEnv("GEMINI_API_KEY", ""),
		EmbedModel: getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:   getEnvInt("EMBED_DIM", 768),
		GenModel:   getEnv("GEN_MODEL", "gemini-1.5-flash"),

		Storage:      getEnv("STORAGE", "local"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "localrag-docs"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 900),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		BatchChars:   getEnvInt("BATCH_CHARS", 120_000),
		SummaryChars: getEnvInt("SUMMARY_CHARS", 4000),

		TopK:             getEnvInt("TOP_K", 8),
		MaxContextChunks: getEnvInt("MAX_CONTEXT_CHUNKS", 4),
		ScoreThreshold:   getEnvFloat("SCORE_THRESHOLD", 0.45),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %g", key, v, def)
		return def
	}
	return f
}
