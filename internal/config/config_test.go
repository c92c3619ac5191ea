package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_UsesWalletServiceJWTSecretAlias(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "JWT_SECRET")
	setEnvWithCleanup(t, "WALLET_SERVICE_JWT_SECRET", "alias-only-secret")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.JWTSecret != "alias-only-secret" {
		t.Fatalf("expected JWTSecret from alias env var, got %q", cfg.JWTSecret)
	}
}

func TestLoadConfig_TransferFeeWholeUnitsConvertsToPaise(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "TRANSFER_FEE_PAISE")
	setEnvWithCleanup(t, "TRANSFER_FEE", "2.50")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TransferFeePaise != 250 {
		t.Fatalf("expected TRANSFER_FEE=2.50 to load as 250 paise, got %d", cfg.TransferFeePaise)
	}
}

func TestLoadConfig_NegativeTransferFeeCoercedToZero(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "TRANSFER_FEE")
	unsetEnvWithCleanup(t, "TRANSFER_FEE_RUPEES")
	setEnvWithCleanup(t, "TRANSFER_FEE_PAISE", "-100")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TransferFeePaise != 0 {
		t.Fatalf("expected negative fee to coerce to 0, got %d", cfg.TransferFeePaise)
	}
}

func TestLoadConfig_DeclineRateCappedAtOne(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "GATEWAY_DECLINE_RATE", "3.5")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GatewayDeclineRate != 1 {
		t.Fatalf("expected decline rate capped at 1, got %f", cfg.GatewayDeclineRate)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	for _, key := range []string{"SERVER_PORT", "PORT", "PAYMENT_RATE_LIMIT_PER_MINUTE", "SWEEP_INTERVAL_SECONDS", "SWEEP_MAX_AGE_SECONDS"} {
		unsetEnvWithCleanup(t, key)
	}

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.ServerPort)
	}
	if cfg.PaymentRateLimitPerMin != 30 {
		t.Fatalf("expected default payment rate limit 30, got %d", cfg.PaymentRateLimitPerMin)
	}
	if cfg.SweepIntervalSeconds != 60 || cfg.SweepMaxAgeSeconds != 300 {
		t.Fatalf("unexpected sweeper defaults: interval=%d max_age=%d", cfg.SweepIntervalSeconds, cfg.SweepMaxAgeSeconds)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}
