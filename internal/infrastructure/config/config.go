// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PostgreSQL
	PostgresURI string
	AutoMigrate bool

	// MongoDB, optional provider fetch log
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Redis, optional rate limiting and geocode cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	GeocodeTTL    time.Duration

	// RabbitMQ, optional ingestion events
	RabbitMQURL   string
	IngestedQueue string

	// Providers
	ProvidersFile       string
	ProviderTimeout     time.Duration
	MaxPages            int
	ScheduleWindowMins  int
	RapidAPIKey         string
	AeroDataBoxURL      string
	AmadeusClientID     string
	AmadeusClientSecret string
	AmadeusURL          string
	AmadeusTokenURL     string
	AviationStackKey    string
	AviationStackURL    string
	AirLabsKey          string
	AirLabsURL          string
	IPIntelKey          string
	IPIntelURL          string
	PublicIPURL         string

	// Geolocation
	NearbyRadiusKm   float64
	DefaultLatitude  float64
	DefaultLongitude float64

	// Rate limiting
	RateLimit RateLimitConfig
}

// RateLimitConfig controls the token bucket guarding provider-backed endpoints
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 60)) * time.Second,

		PostgresURI: getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=wanderlust port=5432 sslmode=disable"),
		AutoMigrate: getEnvAsBool("AUTO_MIGRATE", true),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "wanderlust"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		GeocodeTTL:    time.Duration(getEnvAsInt("GEOCODE_TTL_HOURS", 24)) * time.Hour,

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		IngestedQueue: getEnv("INGESTED_QUEUE", "schedules.ingested"),

		ProvidersFile:       getEnv("PROVIDERS_FILE", "providers.yaml"),
		ProviderTimeout:     time.Duration(getEnvAsInt("PROVIDER_TIMEOUT", 15)) * time.Second,
		MaxPages:            getEnvAsInt("PROVIDER_MAX_PAGES", 5),
		ScheduleWindowMins:  getEnvAsInt("SCHEDULE_WINDOW_MINUTES", 720),
		RapidAPIKey:         getEnv("RAPID_API_KEY", ""),
		AeroDataBoxURL:      getEnv("AERODATABOX_URL", "https://aerodatabox.p.rapidapi.com/"),
		AmadeusClientID:     getEnv("AMADEUS_CLIENT_ID", ""),
		AmadeusClientSecret: getEnv("AMADEUS_CLIENT_SECRET", ""),
		AmadeusURL:          getEnv("AMADEUS_URL", "https://test.api.amadeus.com/v1/"),
		AmadeusTokenURL:     getEnv("AMADEUS_TOKEN_URL", "https://test.api.amadeus.com/v1/security/oauth2/token"),
		AviationStackKey:    getEnv("AVIATION_STACK_APIKEY", ""),
		AviationStackURL:    getEnv("AVIATION_STACK_URL", "https://api.aviationstack.com/v1/"),
		AirLabsKey:          getEnv("AIRLABS_API_KEY", ""),
		AirLabsURL:          getEnv("AIRLABS_URL", "https://airlabs.co/api/v9/"),
		IPIntelKey:          getEnv("IP_INTEL_API_KEY", ""),
		IPIntelURL:          getEnv("IP_INTEL_URL", "https://ip-intelligence.abstractapi.com/v1/"),
		PublicIPURL:         getEnv("PUBLIC_IP_URL", "https://api4.ipify.org"),

		NearbyRadiusKm:   getEnvAsFloat("NEARBY_RADIUS_KM", 100),
		DefaultLatitude:  getEnvAsFloat("DEFAULT_LATITUDE", 12.9716),
		DefaultLongitude: getEnvAsFloat("DEFAULT_LONGITUDE", 77.5946),

		RateLimit: RateLimitConfig{
			Enabled:        getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Capacity:       getEnvAsInt("RATE_LIMIT_CAPACITY", 30),
			RefillTokens:   getEnvAsInt("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: time.Duration(getEnvAsInt("RATE_LIMIT_REFILL_MS", 2000)) * time.Millisecond,
			TTL:            time.Duration(getEnvAsInt("RATE_LIMIT_TTL", 600)) * time.Second,
			Prefix:         getEnv("RATE_LIMIT_PREFIX", "rl"),
		},
	}

	if config.MaxPages < 1 {
		config.MaxPages = 1
	}
	if config.ScheduleWindowMins <= 0 || config.ScheduleWindowMins > 720 {
		config.ScheduleWindowMins = 720
	}
	if config.RateLimit.Capacity < 1 {
		config.RateLimit.Capacity = 1
	}
	if config.RateLimit.RefillInterval <= 0 {
		config.RateLimit.RefillInterval = time.Second
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}
