package queue

import "time"

// Tipos de evento publicados no exchange do CRM.
const (
	EventLeadCreated  = "lead_created"
	EventStatusChange = "status_change"
	EventLeadDeleted  = "lead_deleted"
)

type LeadEvent struct {
	Type       string `json:"type"`
	LeadID     string `json:"lead_id"`
	CRMID      int    `json:"crm_id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Message    string `json:"message,omitempty"`
	StatusID   string `json:"status_id,omitempty"`
	StatusName string `json:"status_name,omitempty"`

	FromStatusName string `json:"from_status_name,omitempty"` // só em status_change

	Origin     string    `json:"origin"` // SITE, ADMIN, BOARD
	OccurredAt time.Time `json:"occurred_at"`
}

// RoutingKey devolve a chave de roteamento do evento (lead.<tipo>).
func (e LeadEvent) RoutingKey() string {
	return "lead." + e.Type
}
