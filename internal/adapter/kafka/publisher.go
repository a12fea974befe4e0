package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/outage-timeline-service/internal/config"
	"github.com/couchcryptid/outage-timeline-service/internal/domain"
	"github.com/couchcryptid/outage-timeline-service/internal/observability"
	"github.com/couchcryptid/outage-timeline-service/internal/pipeline"
)

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// rowMessage is the value of one published timeline row. Categories lists
// the keys of Values bottom layer first.
type rowMessage struct {
	Hour       time.Time                 `json:"hour"`
	Categories []domain.Category         `json:"categories"`
	Values     map[domain.Category]int64 `json:"values"`
	Total      int64                     `json:"total"`
	Label      string                    `json:"label"`
}

// Publisher writes built timelines to a Kafka topic, one message per hourly row.
type Publisher struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured timeline topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTimelineTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger, metrics: metrics}
}

// Publish serializes every row of res and writes them in a single
// WriteMessages call. Rows are keyed by hour so a compacted topic keeps the
// latest value for each hour.
func (p *Publisher) Publish(ctx context.Context, res pipeline.Result) error {
	msgs, err := serializeResult(res)
	if err != nil {
		p.metrics.PublishFailures.Inc()
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.metrics.PublishFailures.Inc()
		return fmt.Errorf("publish timeline %s: %w", res.RunID, err)
	}
	p.metrics.TimelineRowsSent.Add(float64(len(msgs)))
	p.logger.Info("timeline published", "run_id", res.RunID.String(), "rows", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func serializeResult(res pipeline.Result) ([]kafkago.Message, error) {
	tl := res.Timeline
	totals := tl.Totals()
	order := tl.Categories()
	headers := []kafkago.Header{
		{Key: "run_id", Value: []byte(res.RunID.String())},
		{Key: "policy", Value: []byte(res.Request.Policy.String())},
		{Key: "generated_at", Value: []byte(res.GeneratedAt.Format(time.RFC3339))},
	}

	msgs := make([]kafkago.Message, 0, tl.Rows())
	for i, h := range tl.Hours {
		row := rowMessage{
			Hour:       h,
			Categories: order,
			Values:     make(map[domain.Category]int64, len(tl.Columns)),
			Total:      totals[i],
			Label:      domain.FormatMW(totals[i]),
		}
		for _, col := range tl.Columns {
			row.Values[col.Category] = col.Values[i]
		}
		msg, err := serializeRow(row, headers)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// serializeRow marshals one hourly row into a Kafka message.
func serializeRow(row rowMessage, headers []kafkago.Header) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize timeline row: %w", err)
	}
	return kafkago.Message{
		Key:     []byte(row.Hour.Format(time.RFC3339)),
		Value:   data,
		Headers: headers,
	}, nil
}
