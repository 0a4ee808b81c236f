package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/publisher"
)

const (
	exchangeName = "patrol.events"
	queueName    = "scan_verdicts"
)

type VerdictPublisher struct {
	ch *amqp.Channel
}

var _ publisher.VerdictPublisher = (*VerdictPublisher)(nil)

func NewVerdictPublisher(conn *amqp.Connection) (*VerdictPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &VerdictPublisher{ch: ch}, nil
}

type verdictMessage struct {
	ScanID         string  `json:"scan_id"`
	CheckpointID   string  `json:"checkpoint_id,omitempty"`
	CheckpointName string  `json:"checkpoint_name"`
	Officer        string  `json:"officer"`
	Status         string  `json:"status"`
	DistanceM      float64 `json:"distance_m"`
	TimestampMS    int64   `json:"timestamp_ms"`
}

func (p *VerdictPublisher) PublishVerdict(ctx context.Context, ev *domain.ScanEvent) error {
	body, err := json.Marshal(verdictMessage{
		ScanID:         ev.ScanID,
		CheckpointID:   ev.CheckpointID,
		CheckpointName: ev.CheckpointName,
		Officer:        ev.Officer,
		Status:         string(ev.Status),
		DistanceM:      ev.DistanceM,
		TimestampMS:    ev.TimestampMS,
	})
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish verdict: %w", err)
	}
	return nil
}

func (p *VerdictPublisher) Close() error {
	return p.ch.Close()
}
