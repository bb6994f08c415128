package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting. It is read once at startup; nothing
// consults the environment afterwards.
type Config struct {
	AppEnv       string
	IsProduction bool
	LogLevel     string
	Port         string

	// completion
	GeminiAPIKey string
	GeminiModels []string

	// search
	SearchProvider string // "serpapi", "google", "none" or "" for auto
	SerpAPIKey     string
	GoogleCSEKey   string
	GoogleCSECX    string
	WikiBaseURL    string
	WikiSummaryURL string

	// state
	DataDir      string
	StaticDir    string
	StoreBackend string // "file", "sqlite" or "mysql"
	StoreDSN     string
	HistoryLimit int

	// runtime tunables
	SearchCacheTTLSeconds int
	SearchCacheMaxItems   int
	TTSEnabled            bool
	CORSOrigins           []string
}

var defaultModels = []string{"gemini-2.0-flash-exp", "gemini-2.5-flash"}

// loadAppEnv only loads .env outside production. A missing file is not fatal.
func loadAppEnv() string {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		return appEnv
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}
	return os.Getenv("APP_ENV")
}

// Load reads .env (outside production) and the process environment.
func Load() *Config {
	appEnv := loadAppEnv()

	cfg := &Config{
		AppEnv:       appEnv,
		IsProduction: appEnv == "production",
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "5000"),

		GeminiAPIKey: firstNonEmpty(os.Getenv("GOOGLE_API_KEY"), os.Getenv("GEMINI_API_KEY")),
		GeminiModels: splitList(os.Getenv("GEMINI_MODELS")),

		SearchProvider: strings.ToLower(strings.TrimSpace(os.Getenv("SEARCH_PROVIDER"))),
		SerpAPIKey:     os.Getenv("SERPAPI_KEY"),
		GoogleCSEKey:   os.Getenv("GOOGLE_CSE_KEY"),
		GoogleCSECX:    os.Getenv("GOOGLE_CSE_CX"),
		WikiBaseURL:    getEnv("WIKI_BASE_URL", "https://en.wikipedia.org/w/api.php"),
		WikiSummaryURL: getEnv("WIKI_SUMMARY_URL", "https://en.wikipedia.org/api/rest_v1/page/summary/"),

		DataDir:      getEnv("DATA_DIR", "."),
		StaticDir:    getEnv("STATIC_DIR", "static"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "file")),
		StoreDSN:     os.Getenv("STORE_DSN"),
		HistoryLimit: atoiOr(os.Getenv("HISTORY_LIMIT"), 200),

		SearchCacheTTLSeconds: atoiOr(os.Getenv("SEARCH_CACHE_TTL_SECONDS"), 600),
		SearchCacheMaxItems:   atoiOr(os.Getenv("SEARCH_CACHE_MAX_ITEMS"), 500),
		TTSEnabled:            getEnv("TTS_ENABLED", "1") == "1",
		CORSOrigins:           splitList(os.Getenv("CORS_ORIGINS")),
	}

	if len(cfg.GeminiModels) == 0 {
		cfg.GeminiModels = append([]string(nil), defaultModels...)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 200
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
