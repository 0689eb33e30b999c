package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

func TestHubDeliversOnlyToSession(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()

	mine, cancelMine := hub.Subscribe("s1")
	defer cancelMine()
	other, cancelOther := hub.Subscribe("s2")
	defer cancelOther()

	hub.For("s1").Notify(ctx, usecase.Notification{Kind: usecase.NotifySuccess, Title: "Status Atualizado!"})

	require.Len(t, mine, 1)
	n := <-mine
	assert.Equal(t, "Status Atualizado!", n.Title)
	assert.Len(t, other, 0)
}

func TestHubCloseEndsStreams(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("s1")
	assert.Equal(t, 1, hub.Subscribers("s1"))

	hub.Close("s1")
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, hub.Subscribers("s1"))

	// cancel depois do Close não pode fechar de novo
	assert.NotPanics(t, cancel)
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("s1")
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.For("s1").Notify(context.Background(), usecase.Notification{Title: "x"})
	}
	assert.Len(t, ch, subscriberBuffer)
}

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify(context.Context, usecase.Notification) { c.n++ }

func TestMultiFansOut(t *testing.T) {
	a, b := &countingNotifier{}, &countingNotifier{}
	Multi{a, nil, b, Log{SessionID: "s1"}}.Notify(context.Background(), usecase.Notification{Kind: usecase.NotifyError})
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}
