package models

import (
	"slices"
	"time"
)

type TeamStatus string

const (
	TeamStatusPending   TeamStatus = "pending"
	TeamStatusValidated TeamStatus = "validated"
	TeamStatusRejected  TeamStatus = "rejected"
)

func (s TeamStatus) IsValid() bool {
	switch s {
	case TeamStatusPending, TeamStatusValidated, TeamStatusRejected:
		return true
	}
	return false
}

type Team struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Roster    []string   `json:"roster" db:"roster"`
	Status    TeamStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`

	Players []*Player `json:"players,omitempty" db:"-"`
}

// RosterSize возвращает текущее количество игроков в заявке.
func (t *Team) RosterSize() int {
	return len(t.Roster)
}

func (t *Team) HasPlayer(playerID string) bool {
	return slices.Contains(t.Roster, playerID)
}

// AddToRoster добавляет игрока в конец заявки, сохраняя порядок.
func (t *Team) AddToRoster(playerID string) error {
	if t.HasPlayer(playerID) {
		return ErrPlayerAlreadyOnTeam
	}
	t.Roster = append(t.Roster, playerID)
	return nil
}

func (t *Team) RemoveFromRoster(playerID string) error {
	idx := slices.Index(t.Roster, playerID)
	if idx < 0 {
		return ErrPlayerNotOnRoster
	}
	t.Roster = slices.Delete(t.Roster, idx, idx+1)
	return nil
}
