package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/queue"
	"github.com/xavierca1/ligue-imoveis/internal/logger"
)

// UpdateLeadUseCase é o onUpdate do painel de detalhe.
type UpdateLeadUseCase struct {
	Repo       LeadStore
	Statuses   *StatusRegistry
	Activities ActivityRecorder
	Events     EventPublisher
}

func NewUpdateLeadUseCase(repo LeadStore, statuses *StatusRegistry, activities ActivityRecorder, events EventPublisher) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{Repo: repo, Statuses: statuses, Activities: activities, Events: events}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, id string, patch entity.LeadPatch, user string) (*entity.Lead, error) {
	if errs := ValidateLeadPatch(patch); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	before, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLeadError(err)
	}

	var target entity.Status
	statusChanged := patch.StatusID != nil && *patch.StatusID != before.StatusID
	if statusChanged {
		target, err = uc.Statuses.Find(ctx, *patch.StatusID)
		if err != nil {
			if errors.Is(err, entity.ErrStatusNotFound) {
				return nil, &DomainError{Code: CodeStatusNotFound, Message: "etapa não encontrada"}
			}
			return nil, &TechnicalError{Code: CodePersistence, Message: "erro ao buscar etapa", Err: err}
		}
	}

	updated, err := uc.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, mapLeadError(err)
	}

	if !statusChanged {
		return updated, nil
	}

	log := logger.FromContext(ctx).With(zap.String("lead_id", id))
	fromName := before.StatusID
	if s, err := uc.Statuses.Find(ctx, before.StatusID); err == nil {
		fromName = s.Name
	}

	desc := fmt.Sprintf("Status alterado de %s para %s", fromName, target.Name)
	if err := uc.Activities.Append(ctx, entity.NewActivity(id, entity.ActivityStatusChange, desc, user)); err != nil {
		log.Warn("falha ao registrar atividade", zap.Error(err))
	}

	if uc.Events != nil {
		event := leadEvent(queue.EventStatusChange, *updated, target.Name, OriginAdmin)
		event.FromStatusName = fromName
		if err := uc.Events.PublishLeadEvent(ctx, event); err != nil {
			log.Warn("lead atualizado, mas falha na fila", zap.Error(err))
		}
	}

	return updated, nil
}

func mapLeadError(err error) error {
	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		return &DomainError{Code: CodeLeadNotFound, Message: "lead não encontrado"}
	case errors.Is(err, entity.ErrStatusNotFound):
		return &DomainError{Code: CodeStatusNotFound, Message: "etapa não encontrada"}
	default:
		return &TechnicalError{Code: CodePersistence, Message: "erro ao acessar leads", Err: err}
	}
}
