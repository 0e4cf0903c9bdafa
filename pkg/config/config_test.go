package config

import (
	"testing"
	"time"
)

func TestLoad_ProducerTuningDefaults(t *testing.T) {
	t.Setenv(EnvJWTSecret, "test-secret")

	cfg := Load("test")
	if cfg.KafkaMaxAttempts != DefaultKafkaMaxAttempts {
		t.Errorf("expected default max attempts %d, got %d", DefaultKafkaMaxAttempts, cfg.KafkaMaxAttempts)
	}
	if cfg.KafkaBatchWait != DefaultKafkaBatchWait {
		t.Errorf("expected default batch wait %s, got %s", DefaultKafkaBatchWait, cfg.KafkaBatchWait)
	}
	if cfg.IdempotencyTTL != DefaultIdempotencyTTL {
		t.Errorf("expected default idempotency TTL %s, got %s", DefaultIdempotencyTTL, cfg.IdempotencyTTL)
	}
}

func TestLoad_ProducerTuningFromEnv(t *testing.T) {
	t.Setenv(EnvJWTSecret, "test-secret")
	t.Setenv(EnvKafkaMaxAttempts, "7")
	t.Setenv(EnvKafkaBatchWait, "250ms")
	t.Setenv(EnvIdempotencyTTL, "2h")

	cfg := Load("test")
	if cfg.KafkaMaxAttempts != 7 {
		t.Errorf("expected max attempts 7, got %d", cfg.KafkaMaxAttempts)
	}
	if cfg.KafkaBatchWait != 250*time.Millisecond {
		t.Errorf("expected batch wait 250ms, got %s", cfg.KafkaBatchWait)
	}
	if cfg.IdempotencyTTL != 2*time.Hour {
		t.Errorf("expected idempotency TTL 2h, got %s", cfg.IdempotencyTTL)
	}
}
