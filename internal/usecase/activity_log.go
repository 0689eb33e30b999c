package usecase

import (
	"context"
	"strings"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

// ActivityLog é o histórico append-only de um lead (painel de detalhe).
type ActivityLog struct {
	Repo  ActivityRepository
	Leads LeadStore
}

func NewActivityLog(repo ActivityRepository, leads LeadStore) *ActivityLog {
	return &ActivityLog{Repo: repo, Leads: leads}
}

func (l *ActivityLog) Append(ctx context.Context, a *entity.Activity) error {
	return l.Repo.Append(ctx, a)
}

// AddNote é o onAddActivity do painel.
func (l *ActivityLog) AddNote(ctx context.Context, leadID, description, user string) (*entity.Activity, error) {
	return l.Record(ctx, leadID, entity.ActivityNoteAdded, description, user)
}

func (l *ActivityLog) Record(ctx context.Context, leadID string, kind entity.ActivityType, description, user string) (*entity.Activity, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, validationFailed([]ValidationError{{"description", "is required"}})
	}
	if !kind.Valid() {
		return nil, validationFailed([]ValidationError{{"type", "is invalid"}})
	}

	if _, err := l.Leads.FindByID(ctx, leadID); err != nil {
		return nil, mapLeadError(err)
	}

	a := entity.NewActivity(leadID, kind, description, user)
	if err := l.Repo.Append(ctx, a); err != nil {
		return nil, &TechnicalError{Code: CodePersistence, Message: "erro ao registrar atividade", Err: err}
	}
	return a, nil
}

// List devolve o histórico do lead, mais recente primeiro.
func (l *ActivityLog) List(ctx context.Context, leadID string) ([]entity.Activity, error) {
	if _, err := l.Leads.FindByID(ctx, leadID); err != nil {
		return nil, mapLeadError(err)
	}

	items, err := l.Repo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, &TechnicalError{Code: CodePersistence, Message: "erro ao listar atividades", Err: err}
	}
	return items, nil
}
