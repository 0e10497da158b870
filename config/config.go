package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	AccessTokenTTLMin  int
	RefreshTokenTTLDay int
	CookieSecure       bool
	CookieDomain       string

	DefaultLang string

	StorageGatewayURL string
	StorageAPIKey     string
	StorageBucket     string
	UploadDir         string

	SendgridAPIKey string
	EmailSender    string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		AccessTokenTTLMin:  getEnvInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTokenTTLDay: getEnvInt("REFRESH_TOKEN_TTL_DAY", 30),
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),
		CookieDomain:       getEnv("COOKIE_DOMAIN", ""),

		DefaultLang: getEnv("DEFAULT_LANG", "en"),

		StorageGatewayURL: getEnv("STORAGE_GATEWAY_URL", ""),
		StorageAPIKey:     getEnv("STORAGE_API_KEY", ""),
		StorageBucket:     getEnv("STORAGE_BUCKET", "osvita-files"),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),

		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@osvita.school"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.StorageGatewayURL == "" {
		log.Println("Warning: STORAGE_GATEWAY_URL not set. Uploads will be stored on local disk.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvBool retrieves an environment variable as a boolean or returns the default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
