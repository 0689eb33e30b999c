package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

// TestPublishLeadEventRoutesByType - a routing key segue o tipo do evento
func TestPublishLeadEventRoutesByType(t *testing.T) {
	ctx := context.Background()
	ch := new(MockPublisher)
	producer := NewProducer(ch)

	event := LeadEvent{
		Type:           EventStatusChange,
		LeadID:         "lead-1",
		CRMID:          4242,
		Name:           "João Silva",
		StatusName:     "Proposta",
		FromStatusName: "Novo",
		Origin:         "BOARD",
	}

	var sent amqp.Publishing
	ch.On("PublishWithContext", ctx, ExchangeName, "lead.status_change", false, false, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(5).(amqp.Publishing) }).
		Return(nil).Once()

	require.NoError(t, producer.PublishLeadEvent(ctx, event))

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)
	assert.Equal(t, EventStatusChange, sent.Type)

	var received LeadEvent
	require.NoError(t, json.Unmarshal(sent.Body, &received))
	assert.Equal(t, "Novo", received.FromStatusName)
	assert.Equal(t, 4242, received.CRMID)
	ch.AssertExpectations(t)
}

func TestPublishLeadEventSurfacesBrokerError(t *testing.T) {
	ch := new(MockPublisher)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel closed"))

	err := NewProducer(ch).PublishLeadEvent(context.Background(), LeadEvent{Type: EventLeadCreated})

	assert.ErrorContains(t, err, "channel closed")
}

func TestRoutingKeyMatchesBinding(t *testing.T) {
	for _, kind := range []string{EventLeadCreated, EventStatusChange, EventLeadDeleted} {
		assert.Regexp(t, `^lead\.[a-z_]+$`, LeadEvent{Type: kind}.RoutingKey())
	}
}
