package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

var _ entity.ActivityRepositoryInterface = (*ActivityRepository)(nil)

type ActivityRepository struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Append(ctx context.Context, a *entity.Activity) error {
	query := `
		INSERT INTO lead_activities (id, lead_id, type, description, user_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		a.ID,
		a.LeadID,
		string(a.Type),
		a.Description,
		a.User,
		a.Timestamp,
	)
	if err != nil {
		// FK de lead_id: lead apagado
		if isPgCode(err, pgForeignKeyViolation) {
			return entity.ErrLeadNotFound
		}
		return err
	}
	return nil
}

// ListByLead devolve o histórico, mais recente primeiro.
func (r *ActivityRepository) ListByLead(ctx context.Context, leadID string) ([]entity.Activity, error) {
	query := `
		SELECT id, lead_id, type, description, user_name, created_at
		FROM lead_activities
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		if isPgCode(err, pgInvalidTextRepr) {
			return []entity.Activity{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	activities := []entity.Activity{}
	for rows.Next() {
		var a entity.Activity
		var kind string
		if err := rows.Scan(&a.ID, &a.LeadID, &kind, &a.Description, &a.User, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Type = entity.ActivityType(kind)
		activities = append(activities, a)
	}

	return activities, rows.Err()
}
