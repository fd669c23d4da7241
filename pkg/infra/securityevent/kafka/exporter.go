package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/mitchellh/mapstructure"

	"github.com/SafeField/FieldGate/pkg/infra/securityevent"
)

const ExporterName = "kafka"

type Config struct {
	Host  string `mapstructure:"host"`
	Port  string `mapstructure:"port"`
	Topic string `mapstructure:"topic"`
}

// Exporter ships security events to a Kafka topic. Delivery failures are
// returned to the worker, which counts them; they never reach the caller
// of the sanitization API.
type Exporter struct {
	cfg      Config
	producer *kafka.Producer
}

func NewExporter(settings map[string]interface{}) (*Exporter, error) {
	var cfg Config
	if err := mapstructure.Decode(settings, &cfg); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}
	if cfg.Host == "" || cfg.Port == "" {
		return nil, errors.New("kafka host and port are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Exporter{cfg: cfg, producer: producer}, nil
}

func (e *Exporter) Name() string { return ExporterName }

func (e *Exporter) Handle(_ context.Context, evt securityevent.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = e.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &e.cfg.Topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(evt.Kind),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}
	return nil
}

func (e *Exporter) Close() {
	if e.producer != nil {
		e.producer.Flush(5000)
		e.producer.Close()
	}
}
