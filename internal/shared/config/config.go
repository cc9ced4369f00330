package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	ContentStoreType string
	UploadDir        string
	TextDir          string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	SSEKMSKeyID      string

	AnalyticsStore string
	AnalyticsFile  string
	UsersStore     string
	DatabaseURL    string
	RedisURL       string

	LLMProvider   string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiRPM     int
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	SpeechAPIKey  string

	PopplerPath     string
	TesseractCmd    string
	OCRDPI          int
	OCRLanguage     string
	MaxUploadMB     int
	AskMaxChars     int
	AskAllMaxChars  int
	SummaryMaxChars int

	JWTSecret      string
	OTLPEndpoint   string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables, falling back to an
// optional YAML file and then to defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	file, err := loadFile(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Printf("config: ignoring config file: %v", err)
		file = fileConfig{}
	}

	env := normalizeEnv(getEnv("ENV", or(file.Env, "dev")))
	dbURL := getEnv("DATABASE_URL", file.Database.URL)
	provider := normalizeLLMProvider(getEnv("LLM_PROVIDER", or(file.LLM.Provider, "gemini")))
	fileModel := func(p string) string {
		if provider == p {
			return file.LLM.Model
		}
		return ""
	}
	analyticsStore := normalizeAnalyticsStore(getEnv("ANALYTICS_STORE", or(file.Analytics.Store, "file")))

	if analyticsStore == "postgres" && dbURL == "" {
		log.Printf("DATABASE_URL is required for ANALYTICS_STORE=postgres")
	}

	return Config{
		Port:            getEnv("PORT", or(file.Port, "8080")),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", or(file.CORSAllowOrigins, "*"))),

		ContentStoreType: normalizeStoreType(getEnv("CONTENT_STORE", or(file.Content.Store, "local"))),
		UploadDir:        getEnv("UPLOAD_DIR", or(file.Content.UploadDir, "uploads")),
		TextDir:          getEnv("TEXT_DIR", or(file.Content.TextDir, "extracted_texts")),
		AWSRegion:        getEnv("AWS_REGION", file.Content.S3.Region),
		S3Bucket:         getEnv("S3_BUCKET", file.Content.S3.Bucket),
		S3Prefix:         getEnv("S3_PREFIX", file.Content.S3.Prefix),
		SSEKMSKeyID:      getEnv("SSE_KMS_KEY_ID", file.Content.S3.KMSKeyID),

		AnalyticsStore: analyticsStore,
		AnalyticsFile:  getEnv("ANALYTICS_FILE", or(file.Analytics.File, "analytics.json")),
		UsersStore:     normalizeUsersStore(getEnv("USERS_STORE", or(file.Users.Store, "memory"))),
		DatabaseURL:    dbURL,
		RedisURL:       getEnv("REDIS_URL", file.Redis.URL),

		LLMProvider:   provider,
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		GeminiModel:   getEnv("GEMINI_MODEL", or(fileModel("gemini"), "gemini-1.5-flash")),
		GeminiRPM:     getEnvInt("GEMINI_RPM", orInt(file.LLM.RPM, 15)),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", or(fileModel("openai"), "gpt-4o-mini")),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", file.LLM.BaseURL),
		SpeechAPIKey:  getEnv("SPEECH_API_KEY", ""),

		PopplerPath:     getEnv("POPPLER_PATH", file.OCR.PopplerPath),
		TesseractCmd:    getEnv("TESSERACT_CMD", or(file.OCR.TesseractCmd, "tesseract")),
		OCRDPI:          getEnvInt("OCR_DPI", orInt(file.OCR.DPI, 200)),
		OCRLanguage:     getEnv("OCR_LANGUAGE", or(file.OCR.Language, "eng")),
		MaxUploadMB:     getEnvInt("MAX_UPLOAD_MB", orInt(file.Limits.MaxUploadMB, 25)),
		AskMaxChars:     getEnvInt("ASK_MAX_CHARS", orInt(file.Limits.AskMaxChars, 12000)),
		AskAllMaxChars:  getEnvInt("ASK_ALL_MAX_CHARS", orInt(file.Limits.AskAllMaxChars, 15000)),
		SummaryMaxChars: getEnvInt("SUMMARY_MAX_CHARS", orInt(file.Limits.SummaryMaxChars, 10000)),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", file.OTLPEndpoint),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", orFloat(file.RateLimit.RPS, 2)),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", orInt(file.RateLimit.Burst, 10)),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config env %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config env %s invalid float: %v", key, err)
		return def
	}
	return val
}

func or(val, def string) string {
	if strings.TrimSpace(val) != "" {
		return val
	}
	return def
}

func orInt(val, def int) int {
	if val > 0 {
		return val
	}
	return def
}

func orFloat(val, def float64) float64 {
	if val > 0 {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeAnalyticsStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "memory":
		return "memory"
	case "postgres", "pg":
		return "postgres"
	case "redis":
		return "redis"
	default:
		return "file"
	}
}

func normalizeUsersStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	default:
		return "memory"
	}
}

func normalizeLLMProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}
