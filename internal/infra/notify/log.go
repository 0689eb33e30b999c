package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/logger"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

// Log registra a notificação no log da aplicação.
type Log struct {
	SessionID string
}

func (l Log) Notify(ctx context.Context, n usecase.Notification) {
	log := logger.FromContext(ctx).With(
		zap.String("session_id", l.SessionID),
		zap.String("lead_id", n.LeadID),
		zap.String("title", n.Title),
	)
	if n.Kind == usecase.NotifyError {
		log.Warn(n.Description)
		return
	}
	log.Info(n.Description)
}

// Multi repassa para todos.
type Multi []usecase.Notifier

func (m Multi) Notify(ctx context.Context, n usecase.Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}
