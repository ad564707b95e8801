package configs

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port           string
	MongoURI       string
	DBName         string
	JWTSecret      string
	CORSOrigin     string
	FineRate       float64
	LoanPeriodDays int
	MaxRenewals    int
	AdminName      string
	AdminEmail     string
	AdminPassword  string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	fineRate := 5.0
	if val := os.Getenv("FINE_RATE"); val != "" {
		if _, err := fmt.Sscanf(val, "%f", &fineRate); err != nil {
			log.Fatal().Err(err).Msg("invalid FINE_RATE")
		}
	}

	loanPeriodDays := 14
	if val := os.Getenv("LOAN_PERIOD_DAYS"); val != "" {
		if _, err := fmt.Sscanf(val, "%d", &loanPeriodDays); err != nil {
			log.Fatal().Err(err).Msg("invalid LOAN_PERIOD_DAYS")
		}
	}

	maxRenewals := 2
	if val := os.Getenv("MAX_RENEWALS"); val != "" {
		if _, err := fmt.Sscanf(val, "%d", &maxRenewals); err != nil {
			log.Fatal().Err(err).Msg("invalid MAX_RENEWALS")
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		Port:           port,
		MongoURI:       os.Getenv("MONGO_URI"),
		DBName:         os.Getenv("DB_NAME"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CORSOrigin:     os.Getenv("CORS_ORIGIN"),
		FineRate:       fineRate,
		LoanPeriodDays: loanPeriodDays,
		MaxRenewals:    maxRenewals,
		AdminName:      os.Getenv("ADMIN_NAME"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}
}
