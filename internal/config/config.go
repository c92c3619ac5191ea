/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the wallet-service.
// These values are loaded from environment variables. Monetary values are in
// paise, durations in seconds.
type Config struct {
	ServerPort             string  `mapstructure:"SERVER_PORT"`
	DatabaseURL            string  `mapstructure:"DATABASE_URL"`
	RedisURL               string  `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix   string  `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL            string  `mapstructure:"RABBITMQ_URL"`
	JWTSecret              string  `mapstructure:"JWT_SECRET"`
	TransferFeePaise       int64   `mapstructure:"TRANSFER_FEE_PAISE"`
	WithdrawalFeePaise     int64   `mapstructure:"WITHDRAWAL_FEE_PAISE"`
	PaymentRateLimitPerMin int     `mapstructure:"PAYMENT_RATE_LIMIT_PER_MINUTE"`
	GatewayDelayMs         int     `mapstructure:"GATEWAY_DELAY_MS"`
	GatewayDeclineRate     float64 `mapstructure:"GATEWAY_DECLINE_RATE"`
	SweepIntervalSeconds   int     `mapstructure:"SWEEP_INTERVAL_SECONDS"`
	SweepMaxAgeSeconds     int     `mapstructure:"SWEEP_MAX_AGE_SECONDS"`
	RequestTimeoutSeconds  int     `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "zippay:rate_limit")
	viper.SetDefault("TRANSFER_FEE_PAISE", 0)
	viper.SetDefault("WITHDRAWAL_FEE_PAISE", 0)
	viper.SetDefault("PAYMENT_RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("GATEWAY_DELAY_MS", 200)
	viper.SetDefault("GATEWAY_DECLINE_RATE", 0.05)
	viper.SetDefault("SWEEP_INTERVAL_SECONDS", 60)
	viper.SetDefault("SWEEP_MAX_AGE_SECONDS", 300)
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 60)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "WALLET_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET", "JWT_SECRET", "WALLET_SERVICE_JWT_SECRET")
	_ = viper.BindEnv("TRANSFER_FEE_PAISE")
	_ = viper.BindEnv("TRANSFER_FEE")
	_ = viper.BindEnv("TRANSFER_FEE_RUPEES")
	_ = viper.BindEnv("WITHDRAWAL_FEE_PAISE")
	_ = viper.BindEnv("PAYMENT_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("GATEWAY_DELAY_MS")
	_ = viper.BindEnv("GATEWAY_DECLINE_RATE")
	_ = viper.BindEnv("SWEEP_INTERVAL_SECONDS")
	_ = viper.BindEnv("SWEEP_MAX_AGE_SECONDS")
	_ = viper.BindEnv("REQUEST_TIMEOUT_SECONDS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "zippay:rate_limit"
	}

	// Allow specifying the transfer fee in whole currency units via
	// TRANSFER_FEE or TRANSFER_FEE_RUPEES.
	if viper.IsSet("TRANSFER_FEE") {
		feeStr := strings.TrimSpace(viper.GetString("TRANSFER_FEE"))
		if feeStr != "" {
			feeValue, parseErr := strconv.ParseFloat(feeStr, 64)
			if parseErr != nil {
				log.Printf("level=warn component=config msg=\"invalid TRANSFER_FEE\" value=%q err=%v", feeStr, parseErr)
			} else {
				config.TransferFeePaise = int64(math.Round(feeValue * 100))
			}
		}
	} else if viper.IsSet("TRANSFER_FEE_RUPEES") {
		feeStr := strings.TrimSpace(viper.GetString("TRANSFER_FEE_RUPEES"))
		if feeStr != "" {
			feeValue, parseErr := strconv.ParseFloat(feeStr, 64)
			if parseErr != nil {
				log.Printf("level=warn component=config msg=\"invalid TRANSFER_FEE_RUPEES\" value=%q err=%v", feeStr, parseErr)
			} else {
				config.TransferFeePaise = int64(math.Round(feeValue * 100))
			}
		}
	}

	if config.TransferFeePaise < 0 {
		log.Printf("level=warn component=config msg=\"negative transfer fee configured; coercing to zero\" fee_paise=%d", config.TransferFeePaise)
		config.TransferFeePaise = 0
	}
	if config.WithdrawalFeePaise < 0 {
		log.Printf("level=warn component=config msg=\"negative withdrawal fee configured; coercing to zero\" fee_paise=%d", config.WithdrawalFeePaise)
		config.WithdrawalFeePaise = 0
	}

	if config.GatewayDeclineRate < 0 {
		log.Printf("level=warn component=config msg=\"negative gateway decline rate configured; coercing to zero\" rate=%f", config.GatewayDeclineRate)
		config.GatewayDeclineRate = 0
	}
	if config.GatewayDeclineRate > 1 {
		log.Printf("level=warn component=config msg=\"gateway decline rate too high; capping at 1\" rate=%f", config.GatewayDeclineRate)
		config.GatewayDeclineRate = 1
	}

	if config.PaymentRateLimitPerMin <= 0 {
		config.PaymentRateLimitPerMin = 30
	}
	if config.GatewayDelayMs < 0 {
		config.GatewayDelayMs = 0
	}
	if config.SweepIntervalSeconds <= 0 {
		config.SweepIntervalSeconds = 60
	}
	if config.SweepMaxAgeSeconds <= 0 {
		config.SweepMaxAgeSeconds = 300
	}
	if config.RequestTimeoutSeconds <= 0 {
		config.RequestTimeoutSeconds = 60
	}

	return
}
