package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/football-tournament/models"
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	GetByNationalID(ctx context.Context, nationalID string) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID string) ([]*models.Player, error)
	ListByStatus(ctx context.Context, status models.ValidationStatus) ([]*models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, team_id, first_name, last_name, national_id, birth_date, shirt_number,
	category, status, validated_by, validated_at, notes, created_at, updated_at`

func scanPlayer(row interface{ Scan(...interface{}) error }) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(
		&p.ID,
		&p.TeamID,
		&p.FirstName,
		&p.LastName,
		&p.NationalID,
		&p.BirthDate,
		&p.ShirtNumber,
		&p.Category,
		&p.Status,
		&p.ValidatedBy,
		&p.ValidatedAt,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	query := `
		INSERT INTO players
			(id, team_id, first_name, last_name, national_id, birth_date, shirt_number, category, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.ID,
		p.TeamID,
		p.FirstName,
		p.LastName,
		p.NationalID,
		p.BirthDate,
		p.ShirtNumber,
		p.Category,
		p.Status,
		p.Notes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	return mapConstraintError(err)
}

func (r *postgresPlayerRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Player, error) {
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	return r.getOne(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
}

func (r *postgresPlayerRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Player, error) {
	return r.getOne(ctx, `SELECT `+playerColumns+` FROM players WHERE national_id = $1`, nationalID)
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE team_id = $1 ORDER BY shirt_number ASC, created_at ASC`
	return r.list(ctx, query, teamID)
}

func (r *postgresPlayerRepository) ListByStatus(ctx context.Context, status models.ValidationStatus) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE status = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, status)
}

func (r *postgresPlayerRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, scanErr := scanPlayer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	query := `
		UPDATE players
		SET first_name = $1, last_name = $2, birth_date = $3, shirt_number = $4, category = $5,
		    status = $6, validated_by = $7, validated_at = $8, notes = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.FirstName,
		p.LastName,
		p.BirthDate,
		p.ShirtNumber,
		p.Category,
		p.Status,
		p.ValidatedBy,
		p.ValidatedAt,
		p.Notes,
		p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	return mapConstraintError(err)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
