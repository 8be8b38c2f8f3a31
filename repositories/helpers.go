package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrPhaseNotFound  = errors.New("phase not found")
	ErrMatchNotFound  = errors.New("match not found")

	ErrTeamNameConflict        = errors.New("team name is already in use")
	ErrNationalIDConflict      = errors.New("national id is already registered")
	ErrShirtNumberConflict     = errors.New("shirt number is already taken in this team")
	ErrPlayerTeamInvalid       = errors.New("player team reference is invalid")
	ErrMatchPhaseInvalid       = errors.New("match phase reference is invalid")
	ErrMatchTeamInvalid        = errors.New("match team reference is invalid")
	ErrPhaseOrderConflict      = errors.New("phase order is already used in this tournament")
	ErrMatchTeamsMustDiffer    = errors.New("match home and away teams must differ")
	ErrUnexpectedConstraintErr = errors.New("unexpected constraint violation")
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// mapConstraintError переводит нарушения ограничений Postgres в ошибки репозитория.
// Имена ограничений совпадают со схемой в db/schema.sql.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		switch pqErr.Constraint {
		case "teams_name_key":
			return ErrTeamNameConflict
		case "players_national_id_key":
			return ErrNationalIDConflict
		case "players_team_shirt_active_idx":
			return ErrShirtNumberConflict
		case "phases_tournament_order_key":
			return ErrPhaseOrderConflict
		}
	case "23503": // foreign_key_violation
		switch pqErr.Constraint {
		case "players_team_id_fkey":
			return ErrPlayerTeamInvalid
		case "matches_phase_id_fkey":
			return ErrMatchPhaseInvalid
		case "matches_home_team_id_fkey", "matches_away_team_id_fkey":
			return ErrMatchTeamInvalid
		}
	case "23514": // check_violation
		if pqErr.Constraint == "matches_teams_differ" {
			return ErrMatchTeamsMustDiffer
		}
	}
	if pqErr.Code.Class() == "23" { // integrity_constraint_violation
		return fmt.Errorf("%w: %s (%s)", ErrUnexpectedConstraintErr, pqErr.Constraint, pqErr.Code)
	}
	return err
}

// jsonValue сериализует значение для колонки jsonb. lib/pq отправляет []byte
// как bytea, поэтому передаём строку.
func jsonValue(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode jsonb value: %w", err)
	}
	return string(data), nil
}

func scanJSON(data []byte, dst interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode jsonb value: %w", err)
	}
	return nil
}
