package config

import (
	"log"
	"os"
)

type Config struct {
	Port        string
	DBDSN       string
	LogFile     string
	TokenSecret string // signs password-reset tokens
	StatusURL   string // upstream Minecraft status endpoint for the game header
	CheckoutURL string // external payment page the money checkout redirects to
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "grivyzom.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./grivyzom.log" // default log sink in project root
	}
	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		secret = "dev-only-secret-change-me"
	}
	statusURL := os.Getenv("STATUS_URL")
	if statusURL == "" {
		statusURL = "https://api.mcsrvstat.us/3/play.grivyzom.com"
	}
	checkoutURL := os.Getenv("CHECKOUT_URL")
	if checkoutURL == "" {
		checkoutURL = "https://pay.grivyzom.com/checkout"
	}

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, TokenSecret: secret, StatusURL: statusURL, CheckoutURL: checkoutURL}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s STATUS_URL=%s", cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.StatusURL)
	return cfg
}
