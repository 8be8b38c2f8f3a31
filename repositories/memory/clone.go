package memory

import (
	"slices"

	"github.com/Dosada05/football-tournament/models"
)

// Репозитории хранят копии, чтобы вызывающий код не мог изменить
// сохранённое состояние в обход Update.

func cloneTeam(t *models.Team) *models.Team {
	c := *t
	c.Roster = slices.Clone(t.Roster)
	if c.Roster == nil {
		c.Roster = []string{}
	}
	c.Players = nil
	return &c
}

func clonePlayer(p *models.Player) *models.Player {
	c := *p
	return &c
}

func clonePhase(p *models.Phase) *models.Phase {
	c := *p
	c.Participants = slices.Clone(p.Participants)
	c.MatchIDs = slices.Clone(p.MatchIDs)
	c.QualifiedTeams = slices.Clone(p.QualifiedTeams)
	c.Config.TieBreakCriteria = slices.Clone(p.Config.TieBreakCriteria)
	return &c
}

func cloneMatch(m *models.Match) *models.Match {
	c := *m
	if m.Result != nil {
		r := *m.Result
		c.Result = &r
	}
	c.Goals = slices.Clone(m.Goals)
	if c.Goals == nil {
		c.Goals = []models.GoalEvent{}
	}
	c.Cards = slices.Clone(m.Cards)
	if c.Cards == nil {
		c.Cards = []models.CardEvent{}
	}
	return &c
}
