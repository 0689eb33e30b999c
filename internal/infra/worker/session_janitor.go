package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionPruner fecha sessões de board paradas há mais de idle.
type SessionPruner interface {
	Prune(idle time.Duration) int
}

// SessionJanitor roda de tempos em tempos fechando boards abandonados
// (aba fechada sem DELETE).
type SessionJanitor struct {
	sessions     SessionPruner
	idleTTL      time.Duration
	tickInterval time.Duration
	log          *zap.Logger
}

func NewSessionJanitor(sessions SessionPruner, idleTTL time.Duration, log *zap.Logger) *SessionJanitor {
	tick := idleTTL / 4
	if tick < time.Second {
		tick = time.Second
	}
	return &SessionJanitor{
		sessions:     sessions,
		idleTTL:      idleTTL,
		tickInterval: tick,
		log:          log,
	}
}

func (w *SessionJanitor) Start(ctx context.Context) {
	w.log.Info("janitor de sessões iniciado", zap.Duration("idle_ttl", w.idleTTL))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("janitor de sessões encerrado")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SessionJanitor) sweep() int {
	n := w.sessions.Prune(w.idleTTL)
	if n > 0 {
		w.log.Info("sessões de board ociosas encerradas", zap.Int("count", n))
	}
	return n
}
