package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// MessageWriter parte de *kafka.Writer que usa el sink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publica los eventos de auditoría en un tópico. Clave = id de la entidad, para que
// los eventos de un mismo documento queden en la misma partición.
type KafkaSink struct {
	w       MessageWriter
	timeout time.Duration
}

// NewKafkaWriter crea el writer síncrono contra los brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaSink envuelve w. timeout acota cada publicación (0 = 5s).
func NewKafkaSink(w MessageWriter, timeout time.Duration) *KafkaSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KafkaSink{w: w, timeout: timeout}
}

type auditMessage struct {
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	CompanyID  string         `json:"company_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	At         time.Time      `json:"at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Record serializa y publica el evento.
func (s *KafkaSink) Record(ctx context.Context, ev inventory.AuditEvent) error {
	data, err := json.Marshal(auditMessage{
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		CompanyID:  ev.CompanyID,
		ActorID:    ev.ActorID,
		At:         ev.At,
		Payload:    ev.Payload,
	})
	if err != nil {
		return fmt.Errorf("audit: serializar evento: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.EntityID),
		Value: data,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(ev.Action)},
			{Key: "company_id", Value: []byte(ev.CompanyID)},
		},
	})
	if err != nil {
		return fmt.Errorf("audit: publicar en kafka: %w", err)
	}
	return nil
}

// Close cierra el writer.
func (s *KafkaSink) Close() error {
	return s.w.Close()
}
