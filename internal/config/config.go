package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	LocalDSN        string
	RemoteStoreURL  string
	RemoteTimeout   time.Duration
	DisplayCurrency string
	LogFile         string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("LOCAL_DSN")
	if dsn == "" {
		dsn = "craftmart.db" // sqlite file in project root
	}
	remote := os.Getenv("REMOTE_STORE_URL") // empty means local-only carts

	timeout := 5 * time.Second
	if ms := os.Getenv("REMOTE_TIMEOUT_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Millisecond
		}
	}

	display := os.Getenv("DISPLAY_CURRENCY")
	if display == "" {
		display = "INR"
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./craftmart.log"
	}

	cfg := Config{
		Port:            port,
		LocalDSN:        dsn,
		RemoteStoreURL:  remote,
		RemoteTimeout:   timeout,
		DisplayCurrency: display,
		LogFile:         logFile,
	}
	log.Printf("[config] PORT=%s LOCAL_DSN=%s REMOTE_STORE_URL=%s REMOTE_TIMEOUT=%s DISPLAY_CURRENCY=%s LOG_FILE=%s",
		cfg.Port, cfg.LocalDSN, cfg.RemoteStoreURL, cfg.RemoteTimeout, cfg.DisplayCurrency, cfg.LogFile)
	return cfg
}
