package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-imoveis/internal/infra/metrics"
)

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, event LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao converter evento: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		event.RoutingKey(),
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		metrics.RecordEventPublished(event.Type, "error")
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	metrics.RecordEventPublished(event.Type, "ok")
	return nil
}

// NoopProducer descarta os eventos; usado quando não há broker configurado.
type NoopProducer struct{}

func (NoopProducer) PublishLeadEvent(context.Context, LeadEvent) error { return nil }
