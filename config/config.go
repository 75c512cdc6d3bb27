package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	DatabaseURL string
	JWTSecret   string

	OpenAI struct {
		APIKey  string
		BaseURL string
		Model   string
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		Sender   string
	}

	Cloudinary struct {
		CloudName string
		APIKey    string
		APISecret string
	}

	UploadDir      string
	TrustedOrigins []string

	RateLimit struct {
		RPS   float64
		Burst int
	}
}

// Load reads .env (when present) and the process environment into a
// Config. DATABASE_URL, JWT_SECRET and OPENAI_API_KEY are required.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process env")
	}

	var cfg Config
	cfg.Port = envInt("PORT", 8080)

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL not set")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET not set")
	}

	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY not set")
	}
	cfg.OpenAI.BaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.OpenAI.Model = envString("OPENAI_MODEL", "qwen2.5-vl-72b-instruct")

	cfg.SMTP.Host = os.Getenv("SMTP_HOST")
	cfg.SMTP.Port = envInt("SMTP_PORT", 587)
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.Sender = os.Getenv("SMTP_SENDER")

	cfg.Cloudinary.CloudName = os.Getenv("CLOUDINARY_CLOUD_NAME")
	cfg.Cloudinary.APIKey = os.Getenv("CLOUDINARY_API_KEY")
	cfg.Cloudinary.APISecret = os.Getenv("CLOUDINARY_API_SECRET")

	cfg.UploadDir = envString("UPLOAD_DIR", "uploads")
	if origin := os.Getenv("TRUSTED_ORIGIN"); origin != "" {
		cfg.TrustedOrigins = []string{origin}
	} else {
		cfg.TrustedOrigins = []string{"*"}
	}

	cfg.RateLimit.RPS = envFloat("RATE_LIMIT_RPS", 10)
	cfg.RateLimit.Burst = envInt("RATE_LIMIT_BURST", 20)

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid value %q for %s, defaulting to %d", v, key, fallback)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid value %q for %s, defaulting to %g", v, key, fallback)
		return fallback
	}
	return f
}
