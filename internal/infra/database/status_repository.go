package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

var _ entity.StatusRepositoryInterface = (*StatusRepository)(nil)

type StatusRepository struct {
	DB *sql.DB
}

func NewStatusRepository(db *sql.DB) *StatusRepository {
	return &StatusRepository{DB: db}
}

func (r *StatusRepository) List(ctx context.Context) ([]entity.Status, error) {
	query := `
		SELECT id, name, color, sort_order
		FROM lead_statuses
		ORDER BY sort_order, created_at
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []entity.Status
	for rows.Next() {
		var s entity.Status
		if err := rows.Scan(&s.ID, &s.Name, &s.Color, &s.Order); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}

	return statuses, rows.Err()
}
