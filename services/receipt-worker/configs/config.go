package configs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg/utils"
)

// Config holds application configuration for receipt-worker.
type Config struct {
	MetricsAddr              string        `mapstructure:"METRICS_ADDR" validate:"required"`
	KafkaBrokers             string        `mapstructure:"KAFKA_BROKERS" validate:"required"`
	KafkaReceiptTopic        string        `mapstructure:"KAFKA_RECEIPT_TOPIC" validate:"required"`
	KafkaDLQTopic            string        `mapstructure:"KAFKA_DLQ_TOPIC" validate:"required"`
	KafkaConsumerGroup       string        `mapstructure:"KAFKA_CONSUMER_GROUP" validate:"required"`
	PrimaryDbAddr            string        `mapstructure:"PRIMARY_DB_ADDR" validate:"required"`
	ReadDbAddr               string        `mapstructure:"READ_DB_ADDR"`
	MaxDbCons                int32         `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons                int32         `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`
	MaxConcurrentReceipts    int           `mapstructure:"MAX_CONCURRENT_RECEIPTS" validate:"min=1"`
	MailSendTimeout          time.Duration `mapstructure:"MAIL_SEND_TIMEOUT" validate:"required"`
	MailFromAddress          string        `mapstructure:"MAIL_FROM_ADDRESS" validate:"required,email"`
	MailProviderLatencyFloor time.Duration `mapstructure:"MAIL_PROVIDER_LATENCY_FLOOR"`
	MailRetryAttempts        int           `mapstructure:"MAIL_RETRY_ATTEMPTS" validate:"min=1"`
	MailRetryBackoff         time.Duration `mapstructure:"MAIL_RETRY_BACKOFF" validate:"required"`
	MailRetryBackoffMax      time.Duration `mapstructure:"MAIL_RETRY_BACKOFF_MAX" validate:"required"`
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("METRICS_ADDR", ":9104")
	viper.SetDefault("KAFKA_RECEIPT_TOPIC", "invest.receipt.requested")
	viper.SetDefault("KAFKA_DLQ_TOPIC", "invest.receipt.dlq")
	viper.SetDefault("KAFKA_CONSUMER_GROUP", "receipt-worker")
	viper.SetDefault("MAX_DB_CONNECTIONS", "5")
	viper.SetDefault("MIN_DB_CONNECTIONS", "1")
	viper.SetDefault("MAX_CONCURRENT_RECEIPTS", "8")
	viper.SetDefault("MAIL_SEND_TIMEOUT", "5s")
	viper.SetDefault("MAIL_FROM_ADDRESS", "receipts@fundlane.example")
	viper.SetDefault("MAIL_PROVIDER_LATENCY_FLOOR", "150ms")
	viper.SetDefault("MAIL_RETRY_ATTEMPTS", "3")
	viper.SetDefault("MAIL_RETRY_BACKOFF", "200ms")
	viper.SetDefault("MAIL_RETRY_BACKOFF_MAX", "2s")

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
	viper.AddConfigPath("./services/receipt-worker/configs")
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
