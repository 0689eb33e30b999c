package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityStatusChange     ActivityType = "status_change"
	ActivityNoteAdded        ActivityType = "note_added"
	ActivityPropertyLinked   ActivityType = "property_linked"
	ActivityPropertyUnlinked ActivityType = "property_unlinked"
	ActivityLeadCreated      ActivityType = "lead_created"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityStatusChange, ActivityNoteAdded, ActivityPropertyLinked,
		ActivityPropertyUnlinked, ActivityLeadCreated:
		return true
	}
	return false
}

// Activity é append-only: nunca é editada nem apagada.
type Activity struct {
	ID          string       `json:"id"`
	LeadID      string       `json:"lead_id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
	User        string       `json:"user,omitempty"`
}

func NewActivity(leadID string, kind ActivityType, description, user string) *Activity {
	return &Activity{
		ID:          uuid.New().String(),
		LeadID:      leadID,
		Type:        kind,
		Description: description,
		Timestamp:   time.Now().UTC(),
		User:        user,
	}
}

type ActivityRepositoryInterface interface {
	Append(ctx context.Context, a *Activity) error
	ListByLead(ctx context.Context, leadID string) ([]Activity, error)
}
