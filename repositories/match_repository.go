package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/football-tournament/models"
)

// MatchFilter сужает выборку матчей фазы. Пустые поля не фильтруют.
type MatchFilter struct {
	Matchday *int
	Group    *string
	Status   *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByPhase(ctx context.Context, phaseID string, filter MatchFilter) ([]*models.Match, error)
	ListByTeam(ctx context.Context, teamID string) ([]*models.Match, error)
	// ListDue возвращает запланированные матчи, чьё время начала не позже before.
	ListDue(ctx context.Context, before time.Time, limit int) ([]*models.Match, error)
	// ListUpcoming возвращает ближайшие запланированные матчи начиная с after.
	ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, phase_id, tournament_id, home_team_id, away_team_id, scheduled_at, venue, referee,
	matchday, group_letter, knockout, leg, status, result, goals, cards, notes,
	started_at, finished_at, created_at, updated_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	var (
		resultJSON, goalsJSON, cardsJSON []byte
		group                            sql.NullString
	)
	err := row.Scan(
		&m.ID,
		&m.PhaseID,
		&m.TournamentID,
		&m.HomeTeamID,
		&m.AwayTeamID,
		&m.ScheduledAt,
		&m.Venue,
		&m.Referee,
		&m.Matchday,
		&group,
		&m.Knockout,
		&m.Leg,
		&m.Status,
		&resultJSON,
		&goalsJSON,
		&cardsJSON,
		&m.Notes,
		&m.StartedAt,
		&m.FinishedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Group = group.String

	if len(resultJSON) > 0 && string(resultJSON) != "null" {
		m.Result = &models.MatchResult{}
		if err := scanJSON(resultJSON, m.Result); err != nil {
			return nil, err
		}
	}
	m.Goals = []models.GoalEvent{}
	if err := scanJSON(goalsJSON, &m.Goals); err != nil {
		return nil, err
	}
	m.Cards = []models.CardEvent{}
	if err := scanJSON(cardsJSON, &m.Cards); err != nil {
		return nil, err
	}
	return m, nil
}

func nullableGroup(group string) sql.NullString {
	return sql.NullString{String: group, Valid: group != ""}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	resultJSON, goalsJSON, cardsJSON, err := encodeMatchDocuments(m)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(id, phase_id, tournament_id, home_team_id, away_team_id, scheduled_at, venue, referee,
			 matchday, group_letter, knockout, leg, status, result, goals, cards, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		m.ID,
		m.PhaseID,
		m.TournamentID,
		m.HomeTeamID,
		m.AwayTeamID,
		m.ScheduledAt,
		m.Venue,
		m.Referee,
		m.Matchday,
		nullableGroup(m.Group),
		m.Knockout,
		m.Leg,
		m.Status,
		resultJSON,
		goalsJSON,
		cardsJSON,
		m.Notes,
	).Scan(&m.CreatedAt, &m.UpdatedAt)

	return mapConstraintError(err)
}

func encodeMatchDocuments(m *models.Match) (result sql.NullString, goals, cards string, err error) {
	if m.Result != nil {
		if result.String, err = jsonValue(m.Result); err != nil {
			return result, "", "", err
		}
		result.Valid = true
	}
	if goals, err = jsonValue(nonNilGoals(m.Goals)); err != nil {
		return result, "", "", err
	}
	if cards, err = jsonValue(nonNilCards(m.Cards)); err != nil {
		return result, "", "", err
	}
	return result, goals, cards, nil
}

func nonNilGoals(goals []models.GoalEvent) []models.GoalEvent {
	if goals == nil {
		return []models.GoalEvent{}
	}
	return goals
}

func nonNilCards(cards []models.CardEvent) []models.CardEvent {
	if cards == nil {
		return []models.CardEvent{}
	}
	return cards
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByPhase(ctx context.Context, phaseID string, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE phase_id = $1`)

	args := []interface{}{phaseID}
	placeholderIndex := 2

	if filter.Matchday != nil {
		queryBuilder.WriteString(" AND matchday = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Matchday)
		placeholderIndex++
	}

	if filter.Group != nil {
		queryBuilder.WriteString(" AND group_letter = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Group)
		placeholderIndex++
	}

	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY matchday ASC, group_letter ASC NULLS FIRST, created_at ASC")

	return r.list(ctx, queryBuilder.String(), args...)
}

func (r *postgresMatchRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE home_team_id = $1 OR away_team_id = $1
		ORDER BY scheduled_at ASC NULLS LAST, matchday ASC`
	return r.list(ctx, query, teamID)
}

func (r *postgresMatchRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE status = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
		LIMIT $3`
	return r.list(ctx, query, models.MatchStatusScheduled, before, limit)
}

func (r *postgresMatchRepository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE status = $1 AND scheduled_at >= $2
		ORDER BY scheduled_at ASC
		LIMIT $3`
	return r.list(ctx, query, models.MatchStatusScheduled, after, limit)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	resultJSON, goalsJSON, cardsJSON, err := encodeMatchDocuments(m)
	if err != nil {
		return err
	}

	query := `
		UPDATE matches
		SET scheduled_at = $1, venue = $2, referee = $3, status = $4, result = $5, goals = $6,
		    cards = $7, notes = $8, started_at = $9, finished_at = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		m.ScheduledAt,
		m.Venue,
		m.Referee,
		m.Status,
		resultJSON,
		goalsJSON,
		cardsJSON,
		m.Notes,
		m.StartedAt,
		m.FinishedAt,
		m.ID,
	).Scan(&m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchNotFound
	}
	return mapConstraintError(err)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
