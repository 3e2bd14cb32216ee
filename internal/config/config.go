package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppPort string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	Currency    string
	BankAccount string

	GatewayBaseURL   string
	GatewaySecretKey string
	CallbackSecret   string
	SuccessURL       string
	CancelURL        string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:  os.Getenv("APP_ENV"),
		AppPort: getEnv("APP_PORT", "8080"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),

		Currency:    getEnv("CURRENCY", "CZK"),
		BankAccount: os.Getenv("BANK_ACCOUNT"),

		GatewayBaseURL:   os.Getenv("GATEWAY_BASE_URL"),
		GatewaySecretKey: os.Getenv("GATEWAY_SECRET_KEY"),
		CallbackSecret:   os.Getenv("GATEWAY_CALLBACK_SECRET"),
		SuccessURL:       os.Getenv("SUCCESS_RETURN_URL"),
		CancelURL:        os.Getenv("CANCEL_RETURN_URL"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
