package main

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/salon-service/internal/cache"
)

type serviceConfig struct {
	Service  string
	LogLevel string
	Port     string
	GRPCPort string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SlotCacheTTL  time.Duration
	KafkaBrokers  []string
	JWTSecret     string

	SlotInterval     int
	Buffer           int
	MaxAdvanceMonths int
	MinAdvanceHours  int
	Location         *time.Location

	RateLimitPerMinute int
	CORSOrigins        []string
}

func loadConfig() (serviceConfig, error) {
	cfg := serviceConfig{
		Service:       config.String("SERVICE_NAME", "salon-service"),
		LogLevel:      config.String("LOG_LEVEL", "info"),
		RedisAddr:     config.String("REDIS_ADDR", ""),
		RedisPassword: config.String("REDIS_PASSWORD", ""),
		KafkaBrokers:  config.List("KAFKA_BROKERS"),
		CORSOrigins:   config.List("CORS_ALLOWED_ORIGINS"),
	}
	var err error
	if cfg.Port, err = config.Port("PORT", "8080"); err != nil {
		return cfg, err
	}
	if cfg.GRPCPort, err = config.Port("GRPC_PORT", "9090"); err != nil {
		return cfg, err
	}
	if cfg.DatabaseURL, err = config.RequiredString("DATABASE_URL"); err != nil {
		return cfg, err
	}
	if cfg.JWTSecret, err = config.RequiredString("JWT_SECRET"); err != nil {
		return cfg, err
	}
	if cfg.RedisDB, err = config.Int("REDIS_DB", 0); err != nil {
		return cfg, err
	}
	if cfg.SlotCacheTTL, err = config.Duration("SLOT_CACHE_TTL", cache.DefaultTTL); err != nil {
		return cfg, err
	}
	if cfg.SlotInterval, err = config.Int("SLOT_INTERVAL_MINUTES", availability.DefaultSlotIntervalMinutes); err != nil {
		return cfg, err
	}
	if cfg.Buffer, err = config.Int("BUFFER_MINUTES", availability.DefaultBufferMinutes); err != nil {
		return cfg, err
	}
	if cfg.MaxAdvanceMonths, err = config.Int("MAX_ADVANCE_MONTHS", availability.DefaultMaxAdvanceMonths); err != nil {
		return cfg, err
	}
	if cfg.MinAdvanceHours, err = config.Int("MIN_ADVANCE_HOURS", availability.DefaultMinAdvanceHours); err != nil {
		return cfg, err
	}
	if cfg.RateLimitPerMinute, err = config.Int("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return cfg, err
	}
	tz := config.String("SALON_TIMEZONE", "Asia/Tokyo")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return cfg, fmt.Errorf("SALON_TIMEZONE: %w", err)
	}
	return cfg, nil
}
