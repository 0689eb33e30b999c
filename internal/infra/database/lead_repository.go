package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

const (
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

var _ entity.LeadRepositoryInterface = (*LeadRepository)(nil)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, name, email, phone, message, status_id, crm_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var l entity.Lead
	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Email,
		&l.Phone,
		&l.Message,
		&l.StatusID,
		&l.CRMID,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}

	return leads, rows.Err()
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return lead, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, message, status_id, crm_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Message,
		lead.StatusID,
		lead.CRMID,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// Update aplica só os campos não-nil do patch. updated_at sempre anda.
func (r *LeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	query := `
		UPDATE leads SET
			name      = COALESCE($2, name),
			email     = COALESCE($3, email),
			phone     = COALESCE($4, phone),
			message   = COALESCE($5, message),
			status_id = COALESCE($6, status_id),
			crm_id    = COALESCE($7, crm_id),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leadColumns

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query,
		id,
		patch.Name,
		patch.Email,
		patch.Phone,
		patch.Message,
		patch.StatusID,
		patch.CRMID,
	))
	if err != nil {
		return nil, translateError(err)
	}
	return lead, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

// translateError converte erros do driver nos sentinels do domínio.
func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", entity.ErrStatusNotFound, pgErr.ConstraintName)
		case pgInvalidTextRepr:
			// id que nem é UUID não existe
			return entity.ErrLeadNotFound
		}
	}
	return err
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
