package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Slots    SlotConfig
	Prayer   PrayerConfig
	Booking  BookingConfig
	Events   EventsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig toggles the Redis backed lookup cache.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// JWTConfig holds the secret used to verify tokens issued by the account service.
type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SlotConfig tunes slot grid generation.
type SlotConfig struct {
	GranularityMinutes int
	DefaultTimezone    string
}

// City pins a city name to the coordinates used for prayer time calculation.
type City struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// PrayerConfig configures the prayer time collaborator and blackout shape.
type PrayerConfig struct {
	BaseURL           string
	CalculationMethod int
	Timeout           time.Duration
	CacheTTL          time.Duration
	Relevant          []string
	DurationMinutes   int
	Cities            []City
}

// BookingConfig governs slot allocation.
type BookingConfig struct {
	InitialStatus      string
	MaxRetries         int
	RetryBackoff       time.Duration
	AllocationTimeout  time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

// EventsConfig wires the booking event publisher.
type EventsConfig struct {
	Brokers      []string
	BookingTopic string
	Workers      int
	BufferSize   int
	MaxRetries   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("CACHE_ENABLED"),
		DefaultTTL: parseDuration(v.GetString("CACHE_DEFAULT_TTL"), 10*time.Minute),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Slots = SlotConfig{
		GranularityMinutes: positiveOr(v.GetInt("SLOT_GRANULARITY_MINUTES"), 15),
		DefaultTimezone:    v.GetString("DEFAULT_TIMEZONE"),
	}

	cities, err := parseCities(v.GetString("PRAYER_CITIES"))
	if err != nil {
		return nil, err
	}
	cfg.Prayer = PrayerConfig{
		BaseURL:           strings.TrimRight(v.GetString("PRAYER_API_BASE_URL"), "/"),
		CalculationMethod: v.GetInt("PRAYER_CALCULATION_METHOD"),
		Timeout:           parseDuration(v.GetString("PRAYER_API_TIMEOUT"), 3*time.Second),
		CacheTTL:          parseDuration(v.GetString("PRAYER_CACHE_TTL"), 720*time.Hour),
		Relevant:          lowerAll(splitAndTrim(v.GetString("PRAYER_RELEVANT"))),
		DurationMinutes:   positiveOr(v.GetInt("PRAYER_DURATION_MINUTES"), 30),
		Cities:            cities,
	}

	cfg.Booking = BookingConfig{
		InitialStatus:      v.GetString("BOOKING_INITIAL_STATUS"),
		MaxRetries:         positiveOr(v.GetInt("BOOKING_MAX_RETRIES"), 3),
		RetryBackoff:       parseDuration(v.GetString("BOOKING_RETRY_BACKOFF"), 25*time.Millisecond),
		AllocationTimeout:  parseDuration(v.GetString("BOOKING_ALLOCATION_TIMEOUT"), 5*time.Second),
		RateLimitPerMinute: v.GetInt("BOOKING_RATE_LIMIT_PER_MINUTE"),
		RateLimitBurst:     positiveOr(v.GetInt("BOOKING_RATE_LIMIT_BURST"), 1),
	}

	cfg.Events = EventsConfig{
		Brokers:      splitAndTrim(v.GetString("KAFKA_BROKERS")),
		BookingTopic: v.GetString("KAFKA_BOOKING_TOPIC"),
		Workers:      positiveOr(v.GetInt("EVENTS_WORKERS"), 1),
		BufferSize:   positiveOr(v.GetInt("EVENTS_BUFFER_SIZE"), 256),
		MaxRetries:   v.GetInt("EVENTS_MAX_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "beauty_booking")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_DEFAULT_TTL", "10m")

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SLOT_GRANULARITY_MINUTES", 15)
	v.SetDefault("DEFAULT_TIMEZONE", "Asia/Riyadh")

	v.SetDefault("PRAYER_API_BASE_URL", "https://api.aladhan.com/v1")
	v.SetDefault("PRAYER_CALCULATION_METHOD", 4)
	v.SetDefault("PRAYER_API_TIMEOUT", "3s")
	v.SetDefault("PRAYER_CACHE_TTL", "720h")
	v.SetDefault("PRAYER_RELEVANT", "dhuhr,asr,maghrib")
	v.SetDefault("PRAYER_DURATION_MINUTES", 30)
	v.SetDefault("PRAYER_CITIES", "riyadh:24.7136:46.6753,jeddah:21.4858:39.1925,dammam:26.4207:50.0888,kuwait:29.3759:47.9774,dubai:25.2048:55.2708,doha:25.2854:51.5310")

	v.SetDefault("BOOKING_INITIAL_STATUS", "pending")
	v.SetDefault("BOOKING_MAX_RETRIES", 3)
	v.SetDefault("BOOKING_RETRY_BACKOFF", "25ms")
	v.SetDefault("BOOKING_ALLOCATION_TIMEOUT", "5s")
	v.SetDefault("BOOKING_RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("BOOKING_RATE_LIMIT_BURST", 10)

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_BOOKING_TOPIC", "booking.created.v1")
	v.SetDefault("EVENTS_WORKERS", 1)
	v.SetDefault("EVENTS_BUFFER_SIZE", 256)
	v.SetDefault("EVENTS_MAX_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func lowerAll(values []string) []string {
	for i, value := range values {
		values[i] = strings.ToLower(value)
	}
	return values
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

// parseCities reads "name:lat:lng" entries separated by commas.
func parseCities(raw string) ([]City, error) {
	entries := splitAndTrim(raw)
	cities := make([]City, 0, len(entries))
	for _, entry := range entries {
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid PRAYER_CITIES entry %q", entry)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", entry, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", entry, err)
		}
		cities = append(cities, City{Name: strings.ToLower(strings.TrimSpace(parts[0])), Latitude: lat, Longitude: lng})
	}
	return cities, nil
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}
