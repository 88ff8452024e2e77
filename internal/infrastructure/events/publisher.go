// Package events publishes report lifecycle changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/laporpak/report-service/internal/core/domain"
)

const schemaVersion = "v1"

// ReportEvent is the message contract written to the report events topic.
type ReportEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`
	ReportID      string    `json:"report_id"`
	OwnerID       string    `json:"owner_id"`
	Status        string    `json:"status,omitempty"`
}

// NewReportEvent builds the envelope for a change.
func NewReportEvent(c domain.ReportChange) ReportEvent {
	at := c.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return ReportEvent{
		EventType:     string(c.Kind),
		EventID:       uuid.New().String(),
		EventTime:     at,
		SchemaVersion: schemaVersion,
		ReportID:      c.ReportID,
		OwnerID:       c.OwnerID,
		Status:        string(c.Status),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per change, keyed by report id so every
// change of a report lands on the same partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, c domain.ReportChange) error {
	event := NewReportEvent(c)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(c.ReportID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: []byte(schemaVersion)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	Logger zerolog.Logger
}

func (p LogPublisher) Publish(_ context.Context, c domain.ReportChange) error {
	p.Logger.Debug().
		Str("event_type", string(c.Kind)).
		Str("report_id", c.ReportID).
		Str("status", string(c.Status)).
		Msg("report change")
	return nil
}

func (LogPublisher) Close() error { return nil }
