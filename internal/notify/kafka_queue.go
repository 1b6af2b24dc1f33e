package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// KafkaQueue publishes work-queue messages to a Kafka topic.
type KafkaQueue struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaQueue creates a synchronous producer for the given brokers.
func NewKafkaQueue(brokers []string, topic string) (*KafkaQueue, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &KafkaQueue{producer: producer, topic: topic}, nil
}

// Send implements QueueSender. The order id is used as the partition key.
func (q *KafkaQueue) Send(_ context.Context, msg QueueMessage) (string, error) {
	record := &sarama.ProducerMessage{
		Topic:     q.topic,
		Key:       sarama.StringEncoder(msg.Key),
		Value:     sarama.ByteEncoder(msg.Body),
		Timestamp: time.Now(),
		Headers: []sarama.RecordHeader{
			{Key: []byte("message_id"), Value: []byte(msg.ID)},
		},
	}

	partition, offset, err := q.producer.SendMessage(record)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return fmt.Sprintf("%s/%d/%d", q.topic, partition, offset), nil
}

// Close flushes and closes the producer.
func (q *KafkaQueue) Close() error {
	if err := q.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
