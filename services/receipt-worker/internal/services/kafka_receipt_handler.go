package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/views"
	"github.com/fundlane/fundlane/services/receipt-worker/configs"
	"github.com/fundlane/fundlane/services/receipt-worker/internal/observability"
)

// KafkaReceiptHandler consumes the receipt topic.
type KafkaReceiptHandler interface {
	Start() func()
}

// KafkaReceiptConfig holds configuration and dependencies for the receipt
// consumer.
type KafkaReceiptConfig struct {
	Context          context.Context
	Logger           *zap.Logger
	Config           *configs.Config
	ReceiptProcessor ReceiptProcessor

	// internal initialization
	consumer    *kafka.Consumer
	dlqProducer *kafka.Producer
	validate    *validator.Validate
	receiptSem  chan struct{} // Semaphore to limit concurrent receipt processing
}

// NewKafkaReceiptConsumer initializes the consumer, DLQ producer, and
// semaphore from config values.
func NewKafkaReceiptConsumer(cfg KafkaReceiptConfig) KafkaReceiptHandler {
	kafkaConfig := &kafka.ConfigMap{
		"bootstrap.servers":  cfg.Config.KafkaBrokers,
		"group.id":           cfg.Config.KafkaConsumerGroup,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false, // Manual offset management
	}
	kafkaConsumer, err := kafka.NewConsumer(kafkaConfig)
	if err != nil {
		cfg.Logger.Fatal("failed to create kafka receipt consumer", zap.Error(err))
	}

	dlqProducer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Config.KafkaBrokers,
		"acks":               "all",
		"enable.idempotence": true,
	})
	if err != nil {
		cfg.Logger.Fatal("failed to create DLQ producer", zap.Error(err))
	}

	cfg.receiptSem = make(chan struct{}, cfg.Config.MaxConcurrentReceipts)
	cfg.consumer = kafkaConsumer
	cfg.dlqProducer = dlqProducer
	cfg.validate = validator.New()
	return &cfg
}

// Start begins the consumption loop and returns a cleanup function.
func (k *KafkaReceiptConfig) Start() func() {
	err := k.consumer.SubscribeTopics([]string{k.Config.KafkaReceiptTopic}, nil)
	if err != nil {
		k.Logger.Fatal("failed to subscribe to kafka topic", zap.Error(err))
	}

	k.Logger.Info("listening to kafka topic",
		zap.String("topic", k.Config.KafkaReceiptTopic),
		zap.String("group", k.Config.KafkaConsumerGroup))

	go func() {
		for {
			msg, err := k.consumer.ReadMessage(-1)
			if err != nil {
				k.Logger.Error("failed to read kafka message", zap.Error(err))
				continue
			}
			observability.MessagesReceived.WithLabelValues(k.Config.KafkaReceiptTopic).Inc()
			// Acquire semaphore slot, blocking if the limit is reached
			k.receiptSem <- struct{}{}
			observability.InflightJobs.Inc()
			go func(m *kafka.Message) {
				defer func() {
					<-k.receiptSem
					observability.InflightJobs.Dec()
				}()
				k.processMessage(m)
			}(msg)
		}
	}()

	return func() {
		if k.dlqProducer != nil {
			k.dlqProducer.Flush(5000)
			k.dlqProducer.Close()
		}
		if err := k.consumer.Close(); err != nil {
			k.Logger.Error("failed to close kafka consumer", zap.Error(err))
			return
		}
		k.Logger.Info("kafka consumer closed successfully")
	}
}

// processMessage decodes, validates and processes one receipt job, committing
// or sending to DLQ as needed. Poison messages are committed after DLQ so
// they are never replayed.
func (k *KafkaReceiptConfig) processMessage(msg *kafka.Message) {
	select {
	case <-k.Context.Done():
		return
	default:
	}

	start := time.Now()
	topic := k.Config.KafkaReceiptTopic

	var job views.ReceiptJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		k.Logger.Error("failed to decode kafka message", zap.Error(err))
		observability.ReceiptsFailed.WithLabelValues(topic, "json_unmarshal").Inc()
		k.sendToDLQ(job, "json unmarshal error", err.Error())
		_, _ = k.consumer.CommitMessage(msg)
		return
	}

	if err := k.validate.Struct(&job); err != nil {
		k.Logger.Error("failed to validate receipt job", zap.Error(err))
		observability.ReceiptsFailed.WithLabelValues(topic, "validation").Inc()
		k.sendToDLQ(job, "validation error", err.Error())
		_, _ = k.consumer.CommitMessage(msg)
		return
	}

	k.Logger.Info("processing receipt job", zap.String(pkg.OrderId, job.OrderID))
	procErr := k.ReceiptProcessor.ProcessReceipt(k.Context, job)
	if procErr != nil {
		k.Logger.Error("failed to process receipt, sending to DLQ",
			zap.String(pkg.OrderId, job.OrderID),
			zap.Error(procErr))
		observability.ReceiptsFailed.WithLabelValues(topic, "process").Inc()
		k.sendToDLQ(job, "processReceiptError", procErr.Error())
		if _, err := k.consumer.CommitMessage(msg); err != nil {
			k.Logger.Error("failed to commit offset after DLQ", zap.Error(err))
		}
		return
	}

	if _, err := k.consumer.CommitMessage(msg); err != nil {
		k.Logger.Error("failed to commit offset", zap.Error(err))
		return
	}
	observability.ReceiptsSent.WithLabelValues(topic).Inc()
	observability.SendLatency.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	k.Logger.Info("receipt processed successfully", zap.String(pkg.OrderId, job.OrderID))
}

// sendToDLQ sends a failed job to the dead letter queue with context.
func (k *KafkaReceiptConfig) sendToDLQ(job views.ReceiptJob, reason, errMsg string) {
	payload := map[string]any{
		"job":           job,
		"failureReason": reason,
		"error":         errMsg,
		"failedAt":      time.Now().UTC().Format(time.RFC3339Nano),
	}

	b, err := json.Marshal(payload)
	if err != nil {
		k.Logger.Error("failed to marshal DLQ payload",
			zap.String(pkg.OrderId, job.OrderID),
			zap.Error(err))
		return
	}

	err = k.dlqProducer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.Config.KafkaDLQTopic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(job.OrderID),
		Value: b,
	}, nil)
	if err != nil {
		k.Logger.Error("failed to produce to DLQ",
			zap.String(pkg.OrderId, job.OrderID),
			zap.Error(err))
		return
	}
	observability.DLQPublished.WithLabelValues(k.Config.KafkaDLQTopic, reason).Inc()
	k.Logger.Info("sent to receipt DLQ",
		zap.String(pkg.OrderId, job.OrderID),
		zap.String("reason", reason))
}
