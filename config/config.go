package config

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
)

// DefaultAffiliateCode is the shared school affiliation code used when none is
// configured. It gates signup navigation only and is not a security control.
const DefaultAffiliateCode = "2132394"

// Config holds the project config values
type Config struct {
	URL           string
	DatabaseName  string
	BaseURL       string
	Port          string
	AffiliateCode string
	JWTSecret     string
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger, err := setLogger(os.Getenv("APP_ENV"))
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	affiliateCode := os.Getenv("AFFILIATE_CODE")
	if affiliateCode == "" {
		affiliateCode = DefaultAffiliateCode
	}

	return &Config{
		URL:           os.Getenv("DB_URI"),
		DatabaseName:  os.Getenv("DB_NAME"),
		BaseURL:       os.Getenv("BASE_URL"),
		Port:          os.Getenv("PORT"),
		AffiliateCode: affiliateCode,
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}

}

// setLogger returns the zap logger for the given environment
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
	return
}
