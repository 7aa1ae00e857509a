package configs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg/utils"
)

// Config holds application configuration for invest-api.
type Config struct {
	Port         string `mapstructure:"PORT" validate:"required"`
	StoreBackend string `mapstructure:"STORE_BACKEND" validate:"required,oneof=postgres memory"`

	PrimaryDbAddr string `mapstructure:"PRIMARY_DB_ADDR" validate:"required_if=StoreBackend postgres"`
	ReadDbAddr    string `mapstructure:"READ_DB_ADDR"`
	MaxDbCons     int32  `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons     int32  `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`

	RedisAddr string `mapstructure:"REDIS_ADDR" validate:"required_if=StoreBackend postgres"`

	KafkaBrokers          string        `mapstructure:"KAFKA_BROKERS"`
	KafkaReceiptTopic     string        `mapstructure:"KAFKA_RECEIPT_TOPIC" validate:"required"`
	KafkaPartition        uint32        `mapstructure:"KAFKA_PARTITION" validate:"min=1"`
	KafkaReceiptRetention time.Duration `mapstructure:"KAFKA_RECEIPT_RETENTION" validate:"required"`

	AesKey        string `mapstructure:"AES_KEY"`
	InternalToken string `mapstructure:"INTERNAL_TOKEN" validate:"required"`

	// Broker-less mode sends receipts in-process with the same mail
	// semantics the worker applies.
	MailSendTimeout          time.Duration `mapstructure:"MAIL_SEND_TIMEOUT" validate:"required"`
	MailFromAddress          string        `mapstructure:"MAIL_FROM_ADDRESS" validate:"required,email"`
	MailProviderLatencyFloor time.Duration `mapstructure:"MAIL_PROVIDER_LATENCY_FLOOR"`

	NavApiBaseURL      string        `mapstructure:"NAV_API_BASE_URL" validate:"required"`
	NavCacheTTL        time.Duration `mapstructure:"NAV_CACHE_TTL" validate:"required"`
	NavHistoryLimit    int           `mapstructure:"NAV_HISTORY_LIMIT" validate:"min=1"`
	NavRatePerMin      int           `mapstructure:"NAV_RATE_PER_MIN" validate:"min=1"`
	NavRefreshInterval time.Duration `mapstructure:"NAV_REFRESH_INTERVAL" validate:"required"`
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("STORE_BACKEND", "postgres")
	viper.SetDefault("MAX_DB_CONNECTIONS", "10")
	viper.SetDefault("MIN_DB_CONNECTIONS", "2")
	viper.SetDefault("KAFKA_RECEIPT_TOPIC", "invest.receipt.requested")
	viper.SetDefault("KAFKA_PARTITION", "4")
	viper.SetDefault("KAFKA_RECEIPT_RETENTION", "168h")
	viper.SetDefault("MAIL_SEND_TIMEOUT", "5s")
	viper.SetDefault("MAIL_FROM_ADDRESS", "receipts@fundlane.example")
	viper.SetDefault("MAIL_PROVIDER_LATENCY_FLOOR", "150ms")
	viper.SetDefault("NAV_API_BASE_URL", "https://api.mfapi.in")
	viper.SetDefault("NAV_CACHE_TTL", "15m")
	viper.SetDefault("NAV_HISTORY_LIMIT", "365")
	viper.SetDefault("NAV_RATE_PER_MIN", "60")
	viper.SetDefault("NAV_REFRESH_INTERVAL", "24h")

	// Optional: Read from config.yaml if exists
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running in test mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running in development mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./services/invest-api/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
