package models

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusFinished   MatchStatus = "finished"
	MatchStatusCancelled  MatchStatus = "cancelled"
	MatchStatusSuspended  MatchStatus = "suspended"
)

type CardColor string

const (
	CardYellow CardColor = "yellow"
	CardRed    CardColor = "red"
)

const (
	MinEventMinute = 0
	MaxEventMinute = 120
)

// MatchResult хранится как jsonb в формате, общем с остальной системой.
type MatchResult struct {
	GoalsHome           int     `json:"goalsHome"`
	GoalsAway           int     `json:"goalsAway"`
	PenaltyWinnerTeamID *string `json:"penaltyWinnerTeamId,omitempty"`
}

type GoalEvent struct {
	PlayerID       string `json:"player_id"`
	ScorerTeamID   string `json:"scorer_team_id"`
	CreditedTeamID string `json:"credited_team_id"`
	Minute         int    `json:"minute"`
	OwnGoal        bool   `json:"own_goal"`
}

type CardEvent struct {
	PlayerID string    `json:"player_id"`
	TeamID   string    `json:"team_id"`
	Minute   int       `json:"minute"`
	Color    CardColor `json:"color"`
}

type Match struct {
	ID           string       `json:"id" db:"id"`
	PhaseID      string       `json:"phase_id" db:"phase_id"`
	TournamentID string       `json:"tournament_id" db:"tournament_id"`
	HomeTeamID   string       `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   string       `json:"away_team_id" db:"away_team_id"`
	ScheduledAt  *time.Time   `json:"scheduled_at,omitempty" db:"scheduled_at"`
	Venue        *string      `json:"venue,omitempty" db:"venue"`
	Referee      *string      `json:"referee,omitempty" db:"referee"`
	Matchday     int          `json:"matchday,omitempty" db:"matchday"`
	Group        string       `json:"group,omitempty" db:"group_letter"`
	Knockout     bool         `json:"knockout" db:"knockout"`
	Leg          int          `json:"leg,omitempty" db:"leg"`
	Status       MatchStatus  `json:"status" db:"status"`
	Result       *MatchResult `json:"result,omitempty" db:"result"`
	Goals        []GoalEvent  `json:"goals" db:"goals"`
	Cards        []CardEvent  `json:"cards" db:"cards"`
	Notes        *string      `json:"notes,omitempty" db:"notes"`
	StartedAt    *time.Time   `json:"started_at,omitempty" db:"started_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// NewMatch создаёт матч в статусе scheduled. Идентификатор назначает вызывающий код.
func NewMatch(phaseID, tournamentID, homeTeamID, awayTeamID string) (*Match, error) {
	if homeTeamID == "" || awayTeamID == "" {
		return nil, fmt.Errorf("%w: both teams are required", ErrInvalidInput)
	}
	if homeTeamID == awayTeamID {
		return nil, ErrSameTeams
	}
	return &Match{
		PhaseID:      phaseID,
		TournamentID: tournamentID,
		HomeTeamID:   homeTeamID,
		AwayTeamID:   awayTeamID,
		Status:       MatchStatusScheduled,
		Goals:        []GoalEvent{},
		Cards:        []CardEvent{},
	}, nil
}

func (m *Match) Involves(teamID string) bool {
	return teamID != "" && (teamID == m.HomeTeamID || teamID == m.AwayTeamID)
}

func (m *Match) opponentOf(teamID string) string {
	if teamID == m.HomeTeamID {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

func (m *Match) Start(now time.Time) error {
	if m.Status != MatchStatusScheduled {
		return fmt.Errorf("%w (status %s)", ErrMatchNotScheduled, m.Status)
	}
	m.Status = MatchStatusInProgress
	m.StartedAt = &now
	return nil
}

func checkMinute(minute int) error {
	if minute < MinEventMinute || minute > MaxEventMinute {
		return ErrInvalidMinute
	}
	return nil
}

// RecordGoal дописывает гол и обновляет текущий счёт. Автогол засчитывается
// сопернику команды игрока.
func (m *Match) RecordGoal(playerID, playerTeamID string, minute int, ownGoal bool) error {
	if m.Status != MatchStatusInProgress {
		return fmt.Errorf("%w (status %s)", ErrMatchNotInProgress, m.Status)
	}
	if !m.Involves(playerTeamID) {
		return ErrTeamNotInMatch
	}
	if err := checkMinute(minute); err != nil {
		return err
	}

	credited := playerTeamID
	if ownGoal {
		credited = m.opponentOf(playerTeamID)
	}

	if m.Result == nil {
		m.Result = &MatchResult{}
	}
	if credited == m.HomeTeamID {
		m.Result.GoalsHome++
	} else {
		m.Result.GoalsAway++
	}
	m.Goals = append(m.Goals, GoalEvent{
		PlayerID:       playerID,
		ScorerTeamID:   playerTeamID,
		CreditedTeamID: credited,
		Minute:         minute,
		OwnGoal:        ownGoal,
	})
	return nil
}

func (m *Match) RecordCard(playerID, playerTeamID string, minute int, color CardColor) error {
	if m.Status != MatchStatusInProgress {
		return fmt.Errorf("%w (status %s)", ErrMatchNotInProgress, m.Status)
	}
	if !m.Involves(playerTeamID) {
		return ErrTeamNotInMatch
	}
	if err := checkMinute(minute); err != nil {
		return err
	}
	if color != CardYellow && color != CardRed {
		return ErrInvalidCardColor
	}
	m.Cards = append(m.Cards, CardEvent{
		PlayerID: playerID,
		TeamID:   playerTeamID,
		Minute:   minute,
		Color:    color,
	})
	return nil
}

// Finish фиксирует итоговый счёт. Переданный счёт считается окончательным
// и заменяет счёт, набранный по событиям. Победитель серии пенальти
// допускается только в ничейном матче плей-офф.
func (m *Match) Finish(goalsHome, goalsAway int, penaltyWinner *string, now time.Time) error {
	return m.finish(goalsHome, goalsAway, penaltyWinner, goalsHome == goalsAway, now)
}

// FinishReturnLeg завершает ответный матч пары плей-офф. Серия пенальти
// допускается, когда равна сумма голов двух матчей, даже если сам ответный
// матч не закончился вничью.
func (m *Match) FinishReturnLeg(goalsHome, goalsAway int, firstLeg *Match, penaltyWinner *string, now time.Time) error {
	if firstLeg == nil || !firstLeg.IsFinished() ||
		firstLeg.HomeTeamID != m.AwayTeamID || firstLeg.AwayTeamID != m.HomeTeamID {
		return ErrFirstLegMismatch
	}
	homeTotal := goalsHome + firstLeg.Result.GoalsAway
	awayTotal := goalsAway + firstLeg.Result.GoalsHome
	return m.finish(goalsHome, goalsAway, penaltyWinner, homeTotal == awayTotal, now)
}

func (m *Match) finish(goalsHome, goalsAway int, penaltyWinner *string, level bool, now time.Time) error {
	switch m.Status {
	case MatchStatusFinished:
		return ErrMatchAlreadyFinished
	case MatchStatusCancelled:
		return ErrMatchCancelled
	case MatchStatusSuspended:
		return ErrMatchSuspended
	}
	if goalsHome < 0 || goalsAway < 0 {
		return ErrInvalidGoals
	}
	if penaltyWinner != nil {
		if !m.Knockout || !level {
			return ErrPenaltyNotAllowed
		}
		if !m.Involves(*penaltyWinner) {
			return fmt.Errorf("%w: penalty winner", ErrTeamNotInMatch)
		}
	}

	result := &MatchResult{GoalsHome: goalsHome, GoalsAway: goalsAway}
	if penaltyWinner != nil {
		winner := *penaltyWinner
		result.PenaltyWinnerTeamID = &winner
	}
	m.Result = result
	m.Status = MatchStatusFinished
	m.FinishedAt = &now
	return nil
}

// Cancel переводит любой незавершённый матч в cancelled и сохраняет причину.
func (m *Match) Cancel(reason string) error {
	if m.Status == MatchStatusFinished {
		return ErrMatchAlreadyFinished
	}
	m.Status = MatchStatusCancelled
	if reason != "" {
		m.Notes = &reason
	}
	return nil
}

// Suspend останавливает идущий матч. Возобновление не поддерживается.
func (m *Match) Suspend(reason string) error {
	if m.Status != MatchStatusInProgress {
		return fmt.Errorf("%w (status %s)", ErrMatchNotInProgress, m.Status)
	}
	m.Status = MatchStatusSuspended
	if reason != "" {
		m.Notes = &reason
	}
	return nil
}

func (m *Match) IsFinished() bool {
	return m.Status == MatchStatusFinished && m.Result != nil
}

// Winner возвращает победителя завершённого матча или nil при ничьей.
// Победитель серии пенальти имеет приоритет над счётом.
func (m *Match) Winner() *string {
	if !m.IsFinished() {
		return nil
	}
	if m.Result.PenaltyWinnerTeamID != nil {
		winner := *m.Result.PenaltyWinnerTeamID
		return &winner
	}
	var winner string
	switch {
	case m.Result.GoalsHome > m.Result.GoalsAway:
		winner = m.HomeTeamID
	case m.Result.GoalsAway > m.Result.GoalsHome:
		winner = m.AwayTeamID
	default:
		return nil
	}
	return &winner
}
