package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// placeholderGeminiKey is the value shipped in the sample .env file.
const placeholderGeminiKey = "your_gemini_api_key_here"

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr         string
	LogLevel         string
	StaticDir        string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	// Story store: firestore, postgres or memory
	StoreBackend        string
	StoreTimeout        time.Duration
	FirebaseKeyPath     string
	FirebaseProjectID   string
	FirestoreCollection string
	DatabaseURL         string
	SeedOnStartup       bool

	// Gemini API
	GeminiAPIKey      string
	GeminiAPIEndpoint string // if set, overrides default Gemini API base URL
	GeminiModel       string
	GeminiModelTTS    string
	GeminiTTSVoice    string
	GenerationTimeout time.Duration

	// Speech synthesis: google (Cloud Text-to-Speech) or gemini
	TTSProvider string
	TTSKeyPath  string
	TTSVoice    string
	TTSLanguage string
	TTSTimeout  time.Duration

	// Synthesized audio: local or s3
	AudioStore         string
	AudioDir           string
	AudioURLPrefix     string
	AudioRetention     time.Duration // 0 keeps files forever
	AudioSweepInterval time.Duration

	// S3/Storage
	S3Endpoint   string
	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3PublicURL  string
	S3PresignTTL time.Duration
}

// Load loads configuration from the environment, reading a .env file first when present.
func Load() *Config {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() *Config {
	staticDir := getEnv("STATIC_DIR", "static")

	return &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":5000"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		StaticDir:        staticDir,
		HTTPReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		HTTPWriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 90*time.Second),

		StoreBackend:        getEnv("STORE_BACKEND", "firestore"),
		StoreTimeout:        getEnvDuration("STORE_TIMEOUT", 10*time.Second),
		FirebaseKeyPath:     getEnv("FIREBASE_KEY_PATH", "firebase-key.json"),
		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		FirestoreCollection: getEnv("FIRESTORE_COLLECTION", "stories"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		SeedOnStartup:       getEnvBool("SEED_ON_STARTUP", true),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiAPIEndpoint: getEnv("GEMINI_API_ENDPOINT", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiModelTTS:    getEnv("GEMINI_MODEL_TTS", "gemini-2.5-flash-preview-tts"),
		GeminiTTSVoice:    getEnv("GEMINI_TTS_VOICE", "Aoede"),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 60*time.Second),

		TTSProvider: getEnv("TTS_PROVIDER", "google"),
		TTSKeyPath:  getEnv("TTS_KEY_PATH", "tts-key.json"),
		TTSVoice:    getEnv("TTS_VOICE", "en-US-Chirp3-HD-Laomedeia"),
		TTSLanguage: getEnv("TTS_LANGUAGE", "en-US"),
		TTSTimeout:  getEnvDuration("TTS_TIMEOUT", 30*time.Second),

		AudioStore:         getEnv("AUDIO_STORE", "local"),
		AudioDir:           getEnv("AUDIO_DIR", filepath.Join(staticDir, "audio")),
		AudioURLPrefix:     getEnv("AUDIO_URL_PREFIX", "/static/audio"),
		AudioRetention:     getEnvDuration("AUDIO_RETENTION", 24*time.Hour),
		AudioSweepInterval: clampMinDuration(getEnvDuration("AUDIO_SWEEP_INTERVAL", time.Hour), time.Minute),

		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3Region:     getEnv("S3_REGION", "us-east-1"),
		S3Bucket:     getEnv("S3_BUCKET", "bedtime-audio"),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:  getEnv("S3_PUBLIC_URL", ""),
		S3PresignTTL: getEnvDuration("S3_PRESIGN_TTL", time.Hour),
	}
}

// GeminiConfigured reports whether a usable Gemini API key is set.
func (c *Config) GeminiConfigured() bool {
	return c.GeminiAPIKey != "" && c.GeminiAPIKey != placeholderGeminiKey
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// clampMinDuration returns v if v >= min, otherwise min.
func clampMinDuration(v, min time.Duration) time.Duration {
	if v < min {
		return min
	}
	return v
}
