package services

import (
	"context"

	"github.com/Dosada05/football-tournament/models"
)

// Типы событий, которые получают подписчики комнаты фазы.
const (
	EventMatchUpdated   = "match_updated"
	EventPhaseScheduled = "phase_scheduled"
	EventPhaseFinished  = "phase_finished"
)

// Notifier рассылает события фазы подписчикам (websocket-комната фазы).
type Notifier interface {
	Publish(phaseID string, eventType string, payload interface{})
}

// StandingsSnapshot хранит итоговое состояние фазы для архива.
type StandingsSnapshot struct {
	Phase     *models.Phase         `json:"phase"`
	Rows      []*models.StandingRow `json:"standings"`
	Groups    []models.GroupTable   `json:"groups,omitempty"`
	Qualified []string              `json:"qualified_teams"`
}

// StandingsArchiver сохраняет итоговую таблицу завершённой фазы и возвращает её адрес.
type StandingsArchiver interface {
	ArchiveStandings(ctx context.Context, snapshot *StandingsSnapshot) (string, error)
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, string, interface{}) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
