package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message,omitempty"`
	StatusID  string    `json:"status_id"`
	CRMID     int       `json:"crm_id,omitempty"` // id do lead espelhado no Kommo, 0 = não sincronizado
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeadPatch carrega só os campos alterados (nil = não mexe).
type LeadPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Message  *string `json:"message,omitempty"`
	StatusID *string `json:"status_id,omitempty"`
	CRMID    *int    `json:"crm_id,omitempty"`
}

func (p LeadPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil &&
		p.Message == nil && p.StatusID == nil && p.CRMID == nil
}

// Apply aplica o patch em memória. UpdatedAt fica a cargo de quem persiste.
func (p LeadPatch) Apply(l *Lead) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.Message != nil {
		l.Message = *p.Message
	}
	if p.StatusID != nil {
		l.StatusID = *p.StatusID
	}
	if p.CRMID != nil {
		l.CRMID = *p.CRMID
	}
}

// Factory
func NewLead(name, email, phone, message, statusID string) (*Lead, error) {
	now := time.Now().UTC()
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		Message:   message,
		StatusID:  statusID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// EnrichedLead é o view model do board: o lead com a etapa completa.
type EnrichedLead struct {
	Lead
	Status Status `json:"status"`
	// StatusResolved fica false quando o status_id não bateu com nenhuma etapa
	// e caímos no fallback.
	StatusResolved bool `json:"status_resolved"`
}

// Operações vindas do feed realtime do Postgres.
const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

type LeadChange struct {
	Op   string `json:"op"`
	Lead Lead   `json:"lead"`

	// Partial indica que Lead veio só do payload do NOTIFY, sem message.
	Partial bool `json:"-"`
}

type LeadRepositoryInterface interface {
	List(ctx context.Context) ([]Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, id string, patch LeadPatch) (*Lead, error)
	Delete(ctx context.Context, id string) error
}
