package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/metrics"
	"github.com/xavierca1/ligue-imoveis/internal/infra/queue"
	"github.com/xavierca1/ligue-imoveis/internal/logger"
)

type CreateLeadInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
	StatusID string `json:"status_id"`

	Origin string `json:"-"`
	User   string `json:"-"`
}

type CreateLeadUseCase struct {
	Repo       LeadStore
	Statuses   *StatusRegistry
	Activities ActivityRecorder
	Events     EventPublisher
}

func NewCreateLeadUseCase(
	repo LeadStore,
	statuses *StatusRegistry,
	activities ActivityRecorder,
	events EventPublisher,
) *CreateLeadUseCase {
	return &CreateLeadUseCase{
		Repo:       repo,
		Statuses:   statuses,
		Activities: activities,
		Events:     events,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	origin := input.Origin
	if origin == "" {
		origin = OriginAdmin
	}

	// status_id vazio ou inexistente cai na primeira etapa do funil
	status, err := uc.Statuses.Resolve(ctx, input.StatusID)
	if err != nil {
		if errors.Is(err, entity.ErrNoStatuses) {
			return nil, &DomainError{Code: CodeNoStatuses, Message: "cadastre ao menos uma etapa do funil"}
		}
		return nil, &TechnicalError{Code: CodePersistence, Message: "erro ao resolver etapa", Err: err}
	}

	lead, err := entity.NewLead(input.Name, input.Email, input.Phone, input.Message, status.ID)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}

	tx := NewTransaction()
	tx.AddOperation("insert_lead", func(ctx context.Context) error {
		return uc.Repo.Create(ctx, lead)
	})
	tx.AddCompensation("delete_lead", func(ctx context.Context) error {
		return uc.Repo.Delete(ctx, lead.ID)
	})
	tx.AddOperation("append_activity", func(ctx context.Context) error {
		desc := fmt.Sprintf("Lead criado via %s na etapa %s", origin, status.Name)
		return uc.Activities.Append(ctx, entity.NewActivity(lead.ID, entity.ActivityLeadCreated, desc, input.User))
	})

	if err := tx.Execute(ctx); err != nil {
		if errors.Is(err, entity.ErrStatusNotFound) {
			return nil, &DomainError{Code: CodeStatusNotFound, Message: "a etapa foi removida, tente de novo"}
		}
		return nil, &TechnicalError{Code: CodePersistence, Message: "erro ao salvar lead", Err: err}
	}

	metrics.RecordLeadCaptured(origin)
	log := logger.FromContext(ctx).With(zap.String("lead_id", lead.ID), zap.String("origin", origin))
	log.Info("lead criado", zap.String("status", status.Name))

	if uc.Events != nil {
		if err := uc.Events.PublishLeadEvent(ctx, leadEvent(queue.EventLeadCreated, *lead, status.Name, origin)); err != nil {
			log.Warn("lead salvo, mas falha na fila", zap.Error(err))
		}
	}

	return lead, nil
}
