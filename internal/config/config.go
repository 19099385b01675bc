package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string
	// Store selects the persistence backend: "postgres" or "memory".
	Store string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// RedisURL is optional; without it ride events stay in process.
	RedisURL string

	JWTSecret             string
	JWTTTL                time.Duration
	UniversityEmailDomain string

	LocationsCSV     string
	AreasDB          string
	LocationRadiusKm float64

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSS3Bucket        string
	TranscriptDir      string
	BaseURL            string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", ""),
		Store:   getEnv("STORE", "postgres"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "uniride"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "uniride"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret:             os.Getenv("JWT_SECRET"),
		JWTTTL:                time.Duration(getEnvAsInt("JWT_TTL_HOURS", 168)) * time.Hour,
		UniversityEmailDomain: os.Getenv("UNIVERSITY_EMAIL_DOMAIN"),

		LocationsCSV:     getEnv("LOCATIONS_CSV", "data/locations.csv"),
		AreasDB:          os.Getenv("AREAS_DB"),
		LocationRadiusKm: getEnvAsFloat("LOCATION_RADIUS_KM", 4),

		AWSRegion:          os.Getenv("AWS_REGION"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSS3Bucket:        os.Getenv("AWS_S3_BUCKET"),
		TranscriptDir:      getEnv("TRANSCRIPT_DIR", "./transcripts"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Store {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE must be postgres or memory, got %q", c.Store)
	}
	if c.LocationRadiusKm <= 0 {
		return fmt.Errorf("LOCATION_RADIUS_KM must be positive")
	}
	return nil
}

// DSN is the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// S3Enabled reports whether transcripts go to S3 rather than local disk.
func (c *Config) S3Enabled() bool {
	return c.AWSS3Bucket != "" && c.AWSRegion != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
