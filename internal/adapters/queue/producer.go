package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"leadscout/internal/domain"
)

// Publisher is satisfied by *amqp.Channel.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// LeadMessage is one lead plus where it came from.
type LeadMessage struct {
	RunID string      `json:"run_id"`
	CSV   string      `json:"csv"`
	Lead  domain.Lead `json:"lead"`
}

type Producer struct{ ch Publisher }

func NewProducer(ch Publisher) *Producer { return &Producer{ch: ch} }

func (p *Producer) Name() string { return "queue" }

// Export publishes one persistent message per lead and stops at the first
// broker error.
func (p *Producer) Export(ctx context.Context, leads []domain.Lead, a domain.Artifact) error {
	for i, l := range leads {
		body, err := json.Marshal(LeadMessage{RunID: a.RunID, CSV: a.Path, Lead: l})
		if err != nil {
			return fmt.Errorf("encode lead %s: %w", l.Key(), err)
		}
		err = p.ch.PublishWithContext(ctx, ExchangeName, RoutingKey, false, false, amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     a.RunID + ":" + l.Key(),
			CorrelationId: a.RunID,
			Timestamp:     a.GeneratedAt,
			Body:          body,
		})
		if err != nil {
			return fmt.Errorf("publish lead %d/%d: %w", i+1, len(leads), err)
		}
	}
	log.Ctx(ctx).Info().Int("messages", len(leads)).Str("exchange", ExchangeName).Msg("leads published")
	return nil
}
