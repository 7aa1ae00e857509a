package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"

	kafkautils "github.com/fundlane/fundlane/pkg/kafka"
	"github.com/fundlane/fundlane/pkg/views"
	"github.com/fundlane/fundlane/services/invest-api/configs"
	"go.uber.org/zap"
)

// ReceiptPublisher hands executed orders off for receipt emailing.
type ReceiptPublisher interface {
	Publish(job views.ReceiptJob) error
	Close()
}

type KafkaReceiptPublisher struct {
	logger   *zap.Logger
	producer *kafka.Producer
	cnf      *configs.Config
}

// NewKafkaReceiptPublisher creates the receipt topic and a producer bound to it.
func NewKafkaReceiptPublisher(logger *zap.Logger, ctx context.Context, cnf *configs.Config) ReceiptPublisher {
	topicConfig := kafkautils.KafkaConfig{
		BootstrapServers: cnf.KafkaBrokers,
		Topics: []kafkautils.TopicConfig{
			{
				Topic:             cnf.KafkaReceiptTopic,
				NumPartitions:     int(cnf.KafkaPartition),
				ReplicationFactor: 1,
				Config: map[string]string{
					"cleanup.policy": "delete",
					"retention.ms":   fmt.Sprintf("%d", cnf.KafkaReceiptRetention.Milliseconds()),
				},
			},
		},
	}
	err := kafkautils.InitKafkaTopics(logger, ctx, topicConfig)
	if err != nil {
		logger.Fatal("failed to initialize kafka topics", zap.Error(err))
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cnf.KafkaBrokers,
		"acks":               "all",
		"enable.idempotence": "true",
		"retries":            "1",
	})
	if err != nil {
		logger.Fatal("failed to create kafka producer", zap.Error(err))
	}
	logger.Info("kafka producer created successfully", zap.String("brokers", cnf.KafkaBrokers))
	go handleDeliveryReports(logger, p)
	return &KafkaReceiptPublisher{
		logger:   logger,
		cnf:      cnf,
		producer: p,
	}
}

func (k *KafkaReceiptPublisher) Publish(job views.ReceiptJob) error {
	msgBytes, err := json.Marshal(job)
	if err != nil {
		return err
	}

	// Deterministic partitioning so one user's receipts stay ordered.
	partition := int32(0)
	if uid, err := uuid.Parse(job.UserID); err == nil {
		partition = int32(uid.ID() % k.cnf.KafkaPartition)
	}

	return k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.cnf.KafkaReceiptTopic,
			Partition: partition,
		},
		Key:   []byte(job.OrderID),
		Value: msgBytes,
	}, nil)
}

func (k *KafkaReceiptPublisher) Close() {
	k.producer.Close()
}

func handleDeliveryReports(logger *zap.Logger, p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logger.Error("failed to publish message", zap.Error(ev.TopicPartition.Error))
			}
		}
	}
}

// LocalReceiptDispatcher runs receipt jobs on an in-process queue. It is the
// fallback when no Kafka brokers are configured, which keeps single-binary
// deployments and local development working without a broker.
type LocalReceiptDispatcher struct {
	logger  *zap.Logger
	jobs    chan views.ReceiptJob
	done    chan struct{}
	process func(ctx context.Context, job views.ReceiptJob) error
}

func NewLocalReceiptDispatcher(logger *zap.Logger, buffer int, process func(ctx context.Context, job views.ReceiptJob) error) *LocalReceiptDispatcher {
	d := &LocalReceiptDispatcher{
		logger:  logger,
		jobs:    make(chan views.ReceiptJob, buffer),
		done:    make(chan struct{}),
		process: process,
	}
	go d.run()
	return d
}

func (d *LocalReceiptDispatcher) run() {
	defer close(d.done)
	for job := range d.jobs {
		if err := d.process(context.Background(), job); err != nil {
			d.logger.Error("receipt job failed",
				zap.String("orderId", job.OrderID),
				zap.Error(err))
		}
	}
}

func (d *LocalReceiptDispatcher) Publish(job views.ReceiptJob) error {
	select {
	case d.jobs <- job:
		return nil
	default:
		return fmt.Errorf("receipt queue full, dropping order %s", job.OrderID)
	}
}

// Close drains queued jobs before returning.
func (d *LocalReceiptDispatcher) Close() {
	close(d.jobs)
	<-d.done
}
