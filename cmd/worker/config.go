package main

import (
	"log"

	"auctionhouse-backend/internal/shared/utils"
)

// Config holds the worker's own knobs; everything else comes from the
// shared container config.
type Config struct {
	RedisAddr string
	SMTPHost  string
	SMTPPort  string
	EmailFrom string
}

func loadConfig() *Config {
	cfg := &Config{
		RedisAddr: utils.GetEnvVariable("REDIS_HOST", "localhost:6379"),
		SMTPHost:  utils.GetEnvVariable("SMTP_HOST", "localhost"),
		SMTPPort:  utils.GetEnvVariable("SMTP_PORT", "1025"),
		EmailFrom: utils.GetEnvVariable("EMAIL_FROM", "noreply@auctionhouse.dev"),
	}

	log.Printf("[Config] Redis: %s, SMTP: %s:%s",
		cfg.RedisAddr, cfg.SMTPHost, cfg.SMTPPort)

	return cfg
}
