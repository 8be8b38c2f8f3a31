package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/football-tournament/models"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Конкретные "не найдено" оборачивают ErrNotFound
	ErrTeamNotFound   = fmt.Errorf("%w: team", ErrNotFound)
	ErrPlayerNotFound = fmt.Errorf("%w: player", ErrNotFound)
	ErrPhaseNotFound  = fmt.Errorf("%w: phase", ErrNotFound)
	ErrMatchNotFound  = fmt.Errorf("%w: match", ErrNotFound)

	// Ошибки валидации
	ErrValidationFailed    = fmt.Errorf("%w: validation failed", models.ErrInvalidInput)
	ErrPlayerNotInMatch    = fmt.Errorf("%w: player does not belong to either team", models.ErrInvalidInput)
	ErrUnknownParticipant  = fmt.Errorf("%w: participant team does not exist", models.ErrInvalidInput)
	ErrTeamNotInPhase      = fmt.Errorf("%w: team is not a participant of the phase", models.ErrInvalidInput)
	ErrInvalidQualifierQty = fmt.Errorf("%w: qualifier count must be positive", models.ErrInvalidInput)
	ErrWrongPhaseFormat    = fmt.Errorf("%w: operation is not available for this phase format", models.ErrInvalidInput)

	// Ошибки конфликтов
	ErrTeamNameConflict    = fmt.Errorf("%w: team name is already in use", models.ErrStateConflict)
	ErrNationalIDConflict  = fmt.Errorf("%w: national id is already registered", models.ErrStateConflict)
	ErrShirtNumberConflict = fmt.Errorf("%w: shirt number is already taken in this team", models.ErrStateConflict)
	ErrRosterFull          = fmt.Errorf("%w: team roster is full", models.ErrStateConflict)
	ErrPhaseOrderConflict  = fmt.Errorf("%w: phase order is already used in this tournament", models.ErrStateConflict)
)

// RegulationError несёт полный список нарушений регламента.
type RegulationError struct {
	Violations []string
}

func (e *RegulationError) Error() string {
	return "regulation check failed: " + strings.Join(e.Violations, "; ")
}

// Unwrap позволяет проверять нарушение регламента как конфликт состояния.
func (e *RegulationError) Unwrap() error {
	return models.ErrStateConflict
}
