package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/queue"
)

type StatusSource interface {
	List(ctx context.Context) ([]entity.Status, error)
}

type LeadStore interface {
	List(ctx context.Context) ([]entity.Lead, error)
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	Create(ctx context.Context, lead *entity.Lead) error
	Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error)
	Delete(ctx context.Context, id string) error
}

type ActivityRecorder interface {
	Append(ctx context.Context, a *entity.Activity) error
}

type ActivityRepository interface {
	ActivityRecorder
	ListByLead(ctx context.Context, leadID string) ([]entity.Activity, error)
}

type EventPublisher interface {
	PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error
}

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	LeadID      string           `json:"lead_id,omitempty"`
	At          time.Time        `json:"at"`
}

// Notifier é fire-and-forget: ninguém consome retorno.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LeadSelector abre o painel de detalhe de um lead.
type LeadSelector interface {
	SelectLead(lead entity.EnrichedLead)
}

// Origens de um lead/evento.
const (
	OriginSite  = "SITE"
	OriginAdmin = "ADMIN"
	OriginBoard = "BOARD"
)

func leadEvent(kind string, lead entity.Lead, statusName, origin string) queue.LeadEvent {
	return queue.LeadEvent{
		Type:       kind,
		LeadID:     lead.ID,
		CRMID:      lead.CRMID,
		Name:       lead.Name,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Message:    lead.Message,
		StatusID:   lead.StatusID,
		StatusName: statusName,
		Origin:     origin,
		OccurredAt: time.Now().UTC(),
	}
}
