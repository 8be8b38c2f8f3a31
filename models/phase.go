package models

import (
	"fmt"
	"time"
)

type PhaseFormat string

const (
	FormatLeague   PhaseFormat = "LEAGUE"
	FormatGroups   PhaseFormat = "GROUPS"
	FormatKnockout PhaseFormat = "KNOCKOUT"
)

func (f PhaseFormat) IsValid() bool {
	switch f {
	case FormatLeague, FormatGroups, FormatKnockout:
		return true
	}
	return false
}

type PhaseStatus string

const (
	PhaseStatusConfiguring PhaseStatus = "configuring"
	PhaseStatusInProgress  PhaseStatus = "in_progress"
	PhaseStatusFinished    PhaseStatus = "finished"
)

// TieBreakCriterion задаёт один из критериев сортировки турнирной таблицы.
type TieBreakCriterion string

const (
	TieBreakPoints         TieBreakCriterion = "POINTS"
	TieBreakGoalDifference TieBreakCriterion = "GOAL_DIFFERENCE"
	TieBreakGoalsFor       TieBreakCriterion = "GOALS_FOR"
	TieBreakGoalsAgainst   TieBreakCriterion = "GOALS_AGAINST"
	TieBreakMatchesWon     TieBreakCriterion = "MATCHES_WON"
	TieBreakHeadToHead     TieBreakCriterion = "HEAD_TO_HEAD"
)

func (c TieBreakCriterion) IsValid() bool {
	switch c {
	case TieBreakPoints, TieBreakGoalDifference, TieBreakGoalsFor,
		TieBreakGoalsAgainst, TieBreakMatchesWon, TieBreakHeadToHead:
		return true
	}
	return false
}

const (
	DefaultPointsWin  = 3
	DefaultPointsDraw = 1
	DefaultPointsLoss = 0
)

// MaxGroups ограничивает число групп буквами от A до Z.
const MaxGroups = 26

// DefaultTieBreakCriteria применяется, если в конфигурации фазы список пуст.
var DefaultTieBreakCriteria = []TieBreakCriterion{
	TieBreakPoints,
	TieBreakGoalDifference,
	TieBreakGoalsFor,
}

// PhaseConfig хранится как jsonb; незаданные поля получают значения по умолчанию.
type PhaseConfig struct {
	PointsWin          *int                `json:"pointsWin,omitempty"`
	PointsDraw         *int                `json:"pointsDraw,omitempty"`
	PointsLoss         *int                `json:"pointsLoss,omitempty"`
	DoubleRoundRobin   bool                `json:"doubleRoundRobin,omitempty"`
	TieBreakCriteria   []TieBreakCriterion `json:"tieBreakCriteria,omitempty"`
	NumberOfGroups     int                 `json:"numberOfGroups,omitempty"`
	TeamsPerGroup      int                 `json:"teamsPerGroup,omitempty"`
	QualifiersPerGroup int                 `json:"qualifiersPerGroup,omitempty"`
}

// PointsScheme возвращает очки за победу, ничью и поражение с учётом умолчаний.
func (c PhaseConfig) PointsScheme() (win, draw, loss int) {
	win, draw, loss = DefaultPointsWin, DefaultPointsDraw, DefaultPointsLoss
	if c.PointsWin != nil {
		win = *c.PointsWin
	}
	if c.PointsDraw != nil {
		draw = *c.PointsDraw
	}
	if c.PointsLoss != nil {
		loss = *c.PointsLoss
	}
	return win, draw, loss
}

func (c PhaseConfig) Criteria() []TieBreakCriterion {
	if len(c.TieBreakCriteria) == 0 {
		return DefaultTieBreakCriteria
	}
	return c.TieBreakCriteria
}

func (c PhaseConfig) Validate() error {
	for _, criterion := range c.TieBreakCriteria {
		if !criterion.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidTieBreak, criterion)
		}
	}
	if c.NumberOfGroups < 0 || c.TeamsPerGroup < 0 || c.QualifiersPerGroup < 0 {
		return fmt.Errorf("%w: group settings must not be negative", ErrInvalidInput)
	}
	if c.NumberOfGroups > MaxGroups {
		return fmt.Errorf("%w (got %d)", ErrTooManyGroups, c.NumberOfGroups)
	}
	return nil
}

type Phase struct {
	ID             string      `json:"id" db:"id"`
	TournamentID   string      `json:"tournament_id" db:"tournament_id"`
	Name           string      `json:"name" db:"name"`
	Format         PhaseFormat `json:"format" db:"format"`
	Order          int         `json:"order" db:"order_index"`
	Participants   []string    `json:"participants" db:"participants"`
	Config         PhaseConfig `json:"configuration" db:"configuration"`
	Status         PhaseStatus `json:"status" db:"status"`
	MatchIDs       []string    `json:"match_ids" db:"match_ids"`
	QualifiedTeams []string    `json:"qualified_teams" db:"qualified_teams"`
	StartedAt      *time.Time  `json:"started_at,omitempty" db:"started_at"`
	FinishedAt     *time.Time  `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// SetParticipants заменяет список участников, пока фаза настраивается.
func (p *Phase) SetParticipants(teamIDs []string) error {
	if p.Status != PhaseStatusConfiguring {
		return ErrPhaseNotConfiguring
	}
	seen := make(map[string]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, id)
		}
		seen[id] = struct{}{}
	}
	p.Participants = append([]string(nil), teamIDs...)
	return nil
}

// MarkScheduled добавляет сгенерированные матчи к уже созданным вручную
// и переводит фазу в работу.
func (p *Phase) MarkScheduled(matchIDs []string, now time.Time) error {
	if p.Status != PhaseStatusConfiguring {
		return ErrPhaseAlreadyScheduled
	}
	p.MatchIDs = append(p.MatchIDs, matchIDs...)
	p.Status = PhaseStatusInProgress
	p.StartedAt = &now
	return nil
}

func (p *Phase) AppendMatch(matchID string) {
	p.MatchIDs = append(p.MatchIDs, matchID)
}

func (p *Phase) RemoveMatch(matchID string) {
	for i, id := range p.MatchIDs {
		if id == matchID {
			p.MatchIDs = append(p.MatchIDs[:i:i], p.MatchIDs[i+1:]...)
			return
		}
	}
}

// Finish закрывает фазу; повторное завершение запрещено.
func (p *Phase) Finish(now time.Time) error {
	if p.Status != PhaseStatusInProgress {
		return ErrPhaseNotInProgress
	}
	p.Status = PhaseStatusFinished
	p.FinishedAt = &now
	return nil
}

func (p *Phase) HasParticipant(teamID string) bool {
	for _, id := range p.Participants {
		if id == teamID {
			return true
		}
	}
	return false
}
