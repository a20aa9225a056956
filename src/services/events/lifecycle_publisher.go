package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"entitycore/src/domain/model"
	"entitycore/src/infra/kafka"

	"github.com/google/uuid"
)

const (
	SourceService = "entitycore"
	SchemaVersion = "v1"
)

// Envelope is the JSON value of a lifecycle message.
type Envelope struct {
	Event      string            `json:"event"`
	EntityType string            `json:"entity_type"`
	Table      string            `json:"table"`
	Data       *model.Attributes `json:"data"`
}

// LifecyclePublisher forwards entity lifecycle events to a Kafka topic.
// Messages are keyed by primary key value so events of one row keep their order.
type LifecyclePublisher struct {
	logger      *slog.Logger
	kafkaClient *kafka.KafkaClient
	topic       string
}

func NewLifecyclePublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient, topic string) *LifecyclePublisher {
	return &LifecyclePublisher{
		logger:      logger,
		kafkaClient: kafkaClient,
		topic:       topic,
	}
}

// Emit publishes the entity carried in payload. Failures are logged only.
func (p *LifecyclePublisher) Emit(ctx context.Context, eventType string, payload []any) {
	entity := entityOf(payload)
	if entity == nil {
		p.logger.Warn("Ignoring lifecycle event without entity", "event_type", eventType)
		return
	}

	msg, err := p.message(eventType, entity)
	if err != nil {
		p.logger.Error("Failed to build lifecycle message", "event_type", eventType, "error", err)
		return
	}

	if err := p.kafkaClient.Producer([]kafka.Message{msg}, p.topic); err != nil {
		p.logger.Error("Failed to publish lifecycle event",
			"error", err,
			"topic", p.topic,
			"event_type", eventType,
			"event_id", msg.Headers["event_id"])
		return
	}

	p.logger.Debug("Published lifecycle event",
		"topic", p.topic,
		"event_type", eventType,
		"key", msg.Key)
}

func (p *LifecyclePublisher) message(eventType string, entity *model.Entity) (kafka.Message, error) {
	kind := entity.Type()

	value, err := json.Marshal(Envelope{
		Event:      eventName(eventType),
		EntityType: kind.Name(),
		Table:      kind.TableName(),
		Data:       entity.ToArray(),
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return kafka.Message{
		Key:     messageKey(entity),
		Value:   value,
		Headers: p.headers(eventType, entity),
	}, nil
}

func (p *LifecyclePublisher) headers(eventType string, entity *model.Entity) map[string]string {
	headers := map[string]string{
		"event_type":     eventType,
		"entity_type":    entity.Type().Name(),
		"event_id":       uuid.NewString(),
		"source_service": SourceService,
		"schema_version": SchemaVersion,
	}

	// Emit runs before the snapshot reset, so the dirty set is still visible.
	fields := entity.MutatedAttributes().Keys()
	if len(fields) > 0 {
		headers["fields_changed"] = strings.Join(fields, ",")
	}

	return headers
}

func entityOf(payload []any) *model.Entity {
	if len(payload) == 0 {
		return nil
	}
	entity, _ := payload[0].(*model.Entity)
	return entity
}

func messageKey(entity *model.Entity) string {
	primaryKey := entity.Type().PrimaryKey()
	if primaryKey == "" {
		return ""
	}
	value, ok := entity.GetAttribute(primaryKey)
	if !ok {
		return ""
	}
	return fmt.Sprint(value)
}

// eventName strips the type prefix of a lifecycle topic: "user.created" → "created".
func eventName(eventType string) string {
	if i := strings.LastIndex(eventType, "."); i >= 0 {
		return eventType[i+1:]
	}
	return eventType
}
