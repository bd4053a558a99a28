// Package config provides runtime configuration values for the storefront
// client and the service simulator.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the client and the simulator.
type Config struct {
	// Client side.
	StoreURL    string
	NotifyURL   string
	ClientID    int64
	HTTPTimeout time.Duration // zero means no request timeout

	// Simulator side.
	HTTPAddr        string
	ShutdownTimeout time.Duration
	NotifyBuffer    int
	PaymentInterval time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		StoreURL:        getenv("STORE_URL", "http://localhost:8000"),
		NotifyURL:       getenv("NOTIFY_URL", "http://localhost:8004/notificacoes"),
		ClientID:        int64(atoienv("CLIENT_ID", 1)),
		HTTPTimeout:     durenvms("HTTP_TIMEOUT_MS", 0),
		HTTPAddr:        getenv("HTTP_ADDR", ":8000"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		NotifyBuffer:    atoienv("NOTIFY_BUFFER", 16),
		PaymentInterval: durenvms("PAYMENT_INTERVAL_MS", 2000),
	}
}
