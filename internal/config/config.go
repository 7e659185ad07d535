package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/spf13/viper"

	apperrors "vehicle-alert/pkg/errors"
)

// MinPepperLength is the minimum accepted length for hash peppers.
// Hashing identifiers with a short pepper would make offline
// re-identification of a leaked dump feasible, so startup refuses it.
const MinPepperLength = 32

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Push      PushConfig
	RateLimit RateLimitConfig
	Retention RetentionConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// SecurityConfig holds the hash peppers. Device and vehicle identifiers
// are hashed with distinct peppers so one leaked pepper cannot be used
// to cross-reference the other table.
type SecurityConfig struct {
	DevicePepper  string
	VehiclePepper string
	QRBaseURL     string
}

type PushConfig struct {
	Endpoint         string
	TimeoutSeconds   int
	FailureThreshold int
}

type RateLimitConfig struct {
	GeneralRPS   float64
	GeneralBurst int

	DeviceRegisterPerMinute  int
	VehicleRegisterPerMinute int
	AlertsPerHour            int
	GeneralPerMinute         int
}

type RetentionConfig struct {
	SweepIntervalMinutes int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Security: SecurityConfig{
			DevicePepper:  viper.GetString("DEVICE_HASH_PEPPER"),
			VehiclePepper: viper.GetString("VEHICLE_HASH_PEPPER"),
			QRBaseURL:     viper.GetString("QR_CODE_BASE_URL"),
		},
		Push: PushConfig{
			Endpoint:         viper.GetString("PUSH_ENDPOINT"),
			TimeoutSeconds:   viper.GetInt("PUSH_TIMEOUT_SECONDS"),
			FailureThreshold: viper.GetInt("PUSH_FAILURE_THRESHOLD"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:               viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst:             viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
			DeviceRegisterPerMinute:  viper.GetInt("RATE_LIMIT_REGISTER_PER_MINUTE"),
			VehicleRegisterPerMinute: viper.GetInt("RATE_LIMIT_VEHICLES_PER_MINUTE"),
			AlertsPerHour:            viper.GetInt("RATE_LIMIT_ALERTS_PER_HOUR"),
			GeneralPerMinute:         viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Retention: RetentionConfig{
			SweepIntervalMinutes: viper.GetInt("RETENTION_SWEEP_INTERVAL_MINUTES"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("JWT_EXPIRY_HOURS", 168)
	viper.SetDefault("PUSH_ENDPOINT", "https://exp.host/--/api/v2/push/send")
	viper.SetDefault("PUSH_TIMEOUT_SECONDS", 10)
	viper.SetDefault("PUSH_FAILURE_THRESHOLD", 5)
	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)
	viper.SetDefault("RATE_LIMIT_REGISTER_PER_MINUTE", 10)
	viper.SetDefault("RATE_LIMIT_VEHICLES_PER_MINUTE", 20)
	viper.SetDefault("RATE_LIMIT_ALERTS_PER_HOUR", 10)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	viper.SetDefault("RETENTION_SWEEP_INTERVAL_MINUTES", 60)
}

// Validate fails fast on configuration that would weaken the privacy
// guarantees. Called once at startup; the config is immutable afterwards.
func (c *Config) Validate() error {
	if len(c.Security.DevicePepper) < MinPepperLength {
		return apperrors.Configuration("DEVICE_HASH_PEPPER must be set and at least 32 characters", apperrors.ErrWeakPepper)
	}
	if len(c.Security.VehiclePepper) < MinPepperLength {
		return apperrors.Configuration("VEHICLE_HASH_PEPPER must be set and at least 32 characters", apperrors.ErrWeakPepper)
	}
	if c.Security.DevicePepper == c.Security.VehiclePepper {
		return apperrors.Configuration("device and vehicle peppers must differ", apperrors.ErrWeakPepper)
	}
	if c.JWT.Secret == "" {
		return apperrors.Configuration("JWT_SECRET must be set", apperrors.ErrMissingSecret)
	}
	if c.Security.QRBaseURL != "" {
		parsed, err := url.Parse(c.Security.QRBaseURL)
		if err != nil {
			return apperrors.Configuration("QR_CODE_BASE_URL is not a valid URL", err)
		}
		if c.Server.Environment == "production" && parsed.Scheme != "https" {
			return apperrors.Configuration("QR_CODE_BASE_URL must use https in production", nil)
		}
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
