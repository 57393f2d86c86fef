package config

import (
	"os"
	"strings"
	"time"

	"github.com/subosito/gotenv"
)

const (
	BackendREST  = "rest"
	BackendGenAI = "genai"
)

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	// Backend selects the provider client: BackendREST or BackendGenAI.
	Backend string

	ReferenceFile string
	ListenAddr    string

	// ChatTimeout bounds a single interactive turn.
	ChatTimeout time.Duration
	// HTTPChatTimeout bounds a POST /chat call. Zero means no bound.
	HTTPChatTimeout time.Duration
	// ServeProgress draws the terminal indicator for server requests too.
	ServeProgress bool

	Debug bool
}

// Load reads .env (when present) and then the environment.
func Load() *Config {
	_ = gotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:   strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
		Backend:         strings.ToLower(getEnv("LLM_BACKEND", BackendREST)),
		ReferenceFile:   getEnv("REFERENCE_FILE", "data.txt"),
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		ChatTimeout:     getEnvDuration("CHAT_TIMEOUT", 30*time.Second),
		HTTPChatTimeout: getEnvDuration("HTTP_CHAT_TIMEOUT", 0),
		ServeProgress:   getEnvBool("SERVE_PROGRESS", false),
		Debug:           getEnvBool("DEBUG", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
