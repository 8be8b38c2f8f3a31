package models

import (
	"errors"
	"fmt"
)

// Базовые категории ошибок доменного слоя. Конкретные ошибки оборачивают их,
// поэтому errors.Is(err, ErrInvalidInput) срабатывает для любой ошибки валидации.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrStateConflict = errors.New("state conflict")
)

// Ошибки матча
var (
	ErrSameTeams            = fmt.Errorf("%w: home and away teams must differ", ErrInvalidInput)
	ErrInvalidMinute        = fmt.Errorf("%w: minute must be between %d and %d", ErrInvalidInput, MinEventMinute, MaxEventMinute)
	ErrInvalidGoals         = fmt.Errorf("%w: goals must not be negative", ErrInvalidInput)
	ErrInvalidCardColor     = fmt.Errorf("%w: card color must be yellow or red", ErrInvalidInput)
	ErrTeamNotInMatch       = fmt.Errorf("%w: team does not play in this match", ErrInvalidInput)
	ErrPenaltyNotAllowed    = fmt.Errorf("%w: penalty winner is only allowed when a knockout match or tie is level", ErrInvalidInput)
	ErrFirstLegMismatch     = fmt.Errorf("%w: first leg must be a finished match of the same tie with teams reversed", ErrInvalidInput)
	ErrMatchNotScheduled    = fmt.Errorf("%w: match is not scheduled", ErrStateConflict)
	ErrMatchNotInProgress   = fmt.Errorf("%w: match is not in progress", ErrStateConflict)
	ErrMatchAlreadyFinished = fmt.Errorf("%w: match is already finished", ErrStateConflict)
	ErrMatchCancelled       = fmt.Errorf("%w: match is cancelled", ErrStateConflict)
	ErrMatchSuspended       = fmt.Errorf("%w: match is suspended", ErrStateConflict)
)

// Ошибки фазы
var (
	ErrInvalidFormat         = fmt.Errorf("%w: unknown phase format", ErrInvalidInput)
	ErrInvalidOrder          = fmt.Errorf("%w: phase order must be positive", ErrInvalidInput)
	ErrInvalidTieBreak       = fmt.Errorf("%w: unknown tie-break criterion", ErrInvalidInput)
	ErrDuplicateParticipant  = fmt.Errorf("%w: participant listed more than once", ErrInvalidInput)
	ErrTooManyGroups         = fmt.Errorf("%w: numberOfGroups must not exceed %d", ErrInvalidInput, MaxGroups)
	ErrPhaseNotConfiguring   = fmt.Errorf("%w: phase is not in configuring status", ErrStateConflict)
	ErrPhaseNotInProgress    = fmt.Errorf("%w: phase is not in progress", ErrStateConflict)
	ErrPhaseAlreadyScheduled = fmt.Errorf("%w: phase schedule already generated", ErrStateConflict)
)

// Ошибки игрока и команды
var (
	ErrInvalidCategory      = fmt.Errorf("%w: unknown player category", ErrInvalidInput)
	ErrInvalidShirtNumber   = fmt.Errorf("%w: shirt number out of range", ErrInvalidInput)
	ErrInvalidValidation    = fmt.Errorf("%w: unknown validation status", ErrInvalidInput)
	ErrPlayerAlreadyOnTeam  = fmt.Errorf("%w: player already on roster", ErrStateConflict)
	ErrPlayerNotOnRoster    = fmt.Errorf("%w: player is not on roster", ErrStateConflict)
	ErrPlayerLocked         = fmt.Errorf("%w: validated player cannot be modified", ErrStateConflict)
	ErrTeamNameRequired     = fmt.Errorf("%w: team name is required", ErrInvalidInput)
	ErrPlayerNameRequired   = fmt.Errorf("%w: player first and last name are required", ErrInvalidInput)
	ErrNationalIDRequired   = fmt.Errorf("%w: national id is required", ErrInvalidInput)
	ErrInvalidTeamStatus    = fmt.Errorf("%w: unknown team status", ErrInvalidInput)
	ErrBirthDateInTheFuture = fmt.Errorf("%w: birth date is in the future", ErrInvalidInput)
)
