package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/infra/queue"
	"github.com/xavierca1/ligue-imoveis/internal/logger"
)

type DeleteLeadUseCase struct {
	Repo   LeadStore
	Events EventPublisher
}

func NewDeleteLeadUseCase(repo LeadStore, events EventPublisher) *DeleteLeadUseCase {
	return &DeleteLeadUseCase{Repo: repo, Events: events}
}

func (uc *DeleteLeadUseCase) Execute(ctx context.Context, id string) error {
	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return mapLeadError(err)
	}

	if err := uc.Repo.Delete(ctx, id); err != nil {
		return mapLeadError(err)
	}

	if uc.Events != nil {
		if err := uc.Events.PublishLeadEvent(ctx, leadEvent(queue.EventLeadDeleted, *lead, "", OriginAdmin)); err != nil {
			logger.FromContext(ctx).Warn("lead apagado, mas falha na fila", zap.String("lead_id", id), zap.Error(err))
		}
	}
	return nil
}
