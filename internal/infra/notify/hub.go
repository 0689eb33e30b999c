// Package notify entrega as notificações do board (toasts) para quem está
// escutando a sessão via SSE, e para o log.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/logger"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

const subscriberBuffer = 16

type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan usecase.Notification
	nextID int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan usecase.Notification)}
}

// For devolve o Notifier de uma sessão do board.
func (h *Hub) For(sessionID string) usecase.Notifier {
	return sessionNotifier{hub: h, sessionID: sessionID}
}

// Subscribe abre um stream de notificações da sessão. cancel fecha o canal.
func (h *Hub) Subscribe(sessionID string) (<-chan usecase.Notification, func()) {
	ch := make(chan usecase.Notification, subscriberBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int]chan usecase.Notification)
	}
	h.subs[sessionID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.subs[sessionID]; ok {
				if c, ok := subs[id]; ok {
					delete(subs, id)
					close(c)
				}
				if len(subs) == 0 {
					delete(h.subs, sessionID)
				}
			}
		})
	}
	return ch, cancel
}

// Close encerra todos os streams da sessão.
func (h *Hub) Close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[sessionID] {
		close(ch)
	}
	delete(h.subs, sessionID)
}

func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}

func (h *Hub) publish(ctx context.Context, sessionID string, n usecase.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[sessionID] {
		select {
		case ch <- n:
		default:
			logger.FromContext(ctx).Warn("stream de notificações cheio, descartando",
				zap.String("session_id", sessionID),
				zap.String("title", n.Title),
			)
		}
	}
}

type sessionNotifier struct {
	hub       *Hub
	sessionID string
}

func (s sessionNotifier) Notify(ctx context.Context, n usecase.Notification) {
	s.hub.publish(ctx, s.sessionID, n)
}
