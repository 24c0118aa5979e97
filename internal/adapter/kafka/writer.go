package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/config"
	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/couchcryptid/storm-impact-report/internal/report"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of kafkago.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// RankingMessage is the JSON value of one ranked row on the report topic.
type RankingMessage struct {
	Question    report.Question `json:"question"`
	Metric      domain.Metric   `json:"metric"`
	Rank        int             `json:"rank"`
	EventType   string          `json:"event_type"`
	Value       float64         `json:"value"`
	ScaledValue float64         `json:"scaled_value"`
	TopN        int             `json:"top_n"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Writer publishes ranked report rows to a Kafka topic.
// It implements pipeline.ReportSink.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReportTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// Publish serializes every ranked row of the report and writes them in a
// single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, rep report.Report) error {
	msgs, err := reportToMessages(rep)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		w.logger.Info("report has no ranked rows, nothing to publish")
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write ranking messages: %w", err)
	}
	w.logger.Info("ranking messages written", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func reportToMessages(rep report.Report) ([]kafkago.Message, error) {
	var msgs []kafkago.Message
	for _, sec := range rep.Sections {
		for _, p := range sec.Panels {
			for i, row := range p.Rows {
				msg, err := serializeToMessage(RankingMessage{
					Question:    sec.Question,
					Metric:      p.Metric,
					Rank:        row.Rank,
					EventType:   row.EventType,
					Value:       row.Value,
					ScaledValue: p.Series.Values[i],
					TopN:        rep.TopN,
					GeneratedAt: rep.GeneratedAt,
				})
				if err != nil {
					return nil, err
				}
				msgs = append(msgs, msg)
			}
		}
	}
	return msgs, nil
}

// serializeToMessage marshals a ranked row into a Kafka message keyed by
// metric and event type, so reruns land on the same partition.
func serializeToMessage(m RankingMessage) (kafkago.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize ranking: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(string(m.Metric) + "|" + m.EventType),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "question", Value: []byte(m.Question)},
			{Key: "metric", Value: []byte(m.Metric)},
			{Key: "generated_at", Value: []byte(m.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
