package kafka

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

type KafkaClient struct {
	logger   *slog.Logger
	producer sarama.SyncProducer
}

type Message struct {
	Key     string
	Value   []byte
	Headers map[string]string
}

// NewConfig returns the producer configuration used by NewKafkaClient.
func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0

	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 50 * time.Millisecond
	config.Producer.Flush.Messages = 50
	config.Producer.MaxMessageBytes = 1024 * 1024

	return config
}

func NewKafkaClient(logger *slog.Logger, brokers string) (*KafkaClient, error) {
	producer, err := sarama.NewSyncProducer(strings.Split(brokers, ","), NewConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	logger.Info("Kafka producer initialized", "brokers", brokers)

	return NewKafkaClientWithProducer(logger, producer), nil
}

// NewKafkaClientWithProducer wraps an existing producer, e.g. a sarama mock.
func NewKafkaClientWithProducer(logger *slog.Logger, producer sarama.SyncProducer) *KafkaClient {
	return &KafkaClient{
		logger:   logger,
		producer: producer,
	}
}

// Producer sends messages to topic as one batch.
func (k *KafkaClient) Producer(messages []Message, topic string) error {
	if len(messages) == 0 {
		return nil
	}

	batch := make([]*sarama.ProducerMessage, len(messages))
	for i, msg := range messages {
		batch[i] = &sarama.ProducerMessage{
			Topic:   topic,
			Key:     sarama.StringEncoder(msg.Key),
			Value:   sarama.ByteEncoder(msg.Value),
			Headers: recordHeaders(msg.Headers),
		}
	}

	err := k.producer.SendMessages(batch)
	if err != nil {
		var producerErrors sarama.ProducerErrors
		if errors.As(err, &producerErrors) {
			for _, producerErr := range producerErrors {
				k.logger.Error("Kafka message failed", "topic", topic, "error", producerErr.Err)
			}
			return fmt.Errorf("batch send failed: %d/%d messages failed: %w", len(producerErrors), len(batch), err)
		}
		return fmt.Errorf("batch send failed: %w", err)
	}

	k.logger.Debug("Batch sent", "topic", topic, "count", len(batch))
	return nil
}

func (k *KafkaClient) Close() error {
	if err := k.producer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	return nil
}

func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}

	records := make([]sarama.RecordHeader, 0, len(headers))
	for key, value := range headers {
		records = append(records, sarama.RecordHeader{
			Key:   []byte(key),
			Value: []byte(value),
		})
	}
	return records
}
