package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/football-tournament/models"
	"github.com/lib/pq"
)

type PhaseRepository interface {
	Create(ctx context.Context, exec SQLExecutor, phase *models.Phase) error
	GetByID(ctx context.Context, id string) (*models.Phase, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Phase, error)
	Update(ctx context.Context, exec SQLExecutor, phase *models.Phase) error
}

type postgresPhaseRepository struct {
	db *sql.DB
}

func NewPostgresPhaseRepository(db *sql.DB) PhaseRepository {
	return &postgresPhaseRepository{db: db}
}

func (r *postgresPhaseRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const phaseColumns = `id, tournament_id, name, format, order_index, participants, configuration,
	status, match_ids, qualified_teams, started_at, finished_at, created_at, updated_at`

func scanPhase(row interface{ Scan(...interface{}) error }) (*models.Phase, error) {
	p := &models.Phase{}
	var configJSON []byte
	err := row.Scan(
		&p.ID,
		&p.TournamentID,
		&p.Name,
		&p.Format,
		&p.Order,
		pq.Array(&p.Participants),
		&configJSON,
		&p.Status,
		pq.Array(&p.MatchIDs),
		pq.Array(&p.QualifiedTeams),
		&p.StartedAt,
		&p.FinishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := scanJSON(configJSON, &p.Config); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresPhaseRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Phase) error {
	configJSON, err := jsonValue(p.Config)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO phases
			(id, tournament_id, name, format, order_index, participants, configuration, status, match_ids, qualified_teams)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		p.ID,
		p.TournamentID,
		p.Name,
		p.Format,
		p.Order,
		pq.Array(p.Participants),
		configJSON,
		p.Status,
		pq.Array(p.MatchIDs),
		pq.Array(p.QualifiedTeams),
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	return mapConstraintError(err)
}

func (r *postgresPhaseRepository) GetByID(ctx context.Context, id string) (*models.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE id = $1`

	p, err := scanPhase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPhaseRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE tournament_id = $1 ORDER BY order_index ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phases := make([]*models.Phase, 0)
	for rows.Next() {
		p, scanErr := scanPhase(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		phases = append(phases, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return phases, nil
}

func (r *postgresPhaseRepository) Update(ctx context.Context, exec SQLExecutor, p *models.Phase) error {
	configJSON, err := jsonValue(p.Config)
	if err != nil {
		return err
	}

	query := `
		UPDATE phases
		SET name = $1, participants = $2, configuration = $3, status = $4, match_ids = $5,
		    qualified_teams = $6, started_at = $7, finished_at = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		p.Name,
		pq.Array(p.Participants),
		configJSON,
		p.Status,
		pq.Array(p.MatchIDs),
		pq.Array(p.QualifiedTeams),
		p.StartedAt,
		p.FinishedAt,
		p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPhaseNotFound
	}
	return mapConstraintError(err)
}
