// Package standings строит турнирную таблицу фазы по завершённым матчам.
// Таблица каждый раз пересчитывается с нуля и нигде не кэшируется.
package standings

import (
	"sort"

	"github.com/Dosada05/football-tournament/brackets"
	"github.com/Dosada05/football-tournament/models"
)

type points struct {
	win, draw, loss int
}

// Compute возвращает таблицу, отсортированную по критериям конфигурации фазы.
// Каждая команда из participants получает строку, даже без сыгранных матчей.
// Матчи с командами вне списка участников пропускаются.
func Compute(participants []string, matches []*models.Match, cfg models.PhaseConfig) []*models.StandingRow {
	win, draw, loss := cfg.PointsScheme()
	scheme := points{win: win, draw: draw, loss: loss}

	rows := make([]*models.StandingRow, 0, len(participants))
	byTeam := make(map[string]*models.StandingRow, len(participants))
	for _, teamID := range participants {
		if _, dup := byTeam[teamID]; dup {
			continue
		}
		row := &models.StandingRow{TeamID: teamID}
		rows = append(rows, row)
		byTeam[teamID] = row
	}

	counted := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if !m.IsFinished() {
			continue
		}
		home, okHome := byTeam[m.HomeTeamID]
		away, okAway := byTeam[m.AwayTeamID]
		if !okHome || !okAway {
			continue
		}
		applyResult(home, away, m.Result, scheme)
		counted = append(counted, m)
	}

	rankBlock(rows, cfg.Criteria(), counted, scheme)

	for i, row := range rows {
		row.Position = i + 1
	}
	return rows
}

func applyResult(home, away *models.StandingRow, result *models.MatchResult, scheme points) {
	home.Played++
	away.Played++
	home.GoalsFor += result.GoalsHome
	home.GoalsAgainst += result.GoalsAway
	away.GoalsFor += result.GoalsAway
	away.GoalsAgainst += result.GoalsHome

	switch {
	case result.GoalsHome > result.GoalsAway:
		home.Won++
		home.Points += scheme.win
		away.Lost++
		away.Points += scheme.loss
	case result.GoalsHome < result.GoalsAway:
		away.Won++
		away.Points += scheme.win
		home.Lost++
		home.Points += scheme.loss
	default:
		home.Drawn++
		away.Drawn++
		home.Points += scheme.draw
		away.Points += scheme.draw
	}

	home.GoalDifference = home.GoalsFor - home.GoalsAgainst
	away.GoalDifference = away.GoalsFor - away.GoalsAgainst
}

// score сравнивается поэлементно, большее значение выше в таблице.
type score [3]int

func (s score) beats(other score) bool {
	for i := range s {
		if s[i] != other[i] {
			return s[i] > other[i]
		}
	}
	return false
}

// rankBlock сортирует блок команд, равных по предыдущим критериям, по первому
// из оставшихся критериев и рекурсивно разбирает новые блоки равных.
// Полностью равные команды сохраняют порядок участников.
func rankBlock(block []*models.StandingRow, criteria []models.TieBreakCriterion, matches []*models.Match, scheme points) {
	if len(block) < 2 || len(criteria) == 0 {
		return
	}

	scores := scoreBlock(block, criteria[0], matches, scheme)
	sort.SliceStable(block, func(i, j int) bool {
		return scores[block[i].TeamID].beats(scores[block[j].TeamID])
	})

	start := 0
	for i := 1; i <= len(block); i++ {
		if i < len(block) && scores[block[i].TeamID] == scores[block[start].TeamID] {
			continue
		}
		rankBlock(block[start:i], criteria[1:], matches, scheme)
		start = i
	}
}

func scoreBlock(block []*models.StandingRow, criterion models.TieBreakCriterion, matches []*models.Match, scheme points) map[string]score {
	if criterion == models.TieBreakHeadToHead {
		return headToHeadTable(block, matches, scheme)
	}

	scores := make(map[string]score, len(block))
	for _, row := range block {
		var value int
		switch criterion {
		case models.TieBreakPoints:
			value = row.Points
		case models.TieBreakGoalDifference:
			value = row.GoalDifference
		case models.TieBreakGoalsFor:
			value = row.GoalsFor
		case models.TieBreakGoalsAgainst:
			value = -row.GoalsAgainst
		case models.TieBreakMatchesWon:
			value = row.Won
		}
		scores[row.TeamID] = score{value}
	}
	return scores
}

// ComputeGroups раскладывает участников по группам так же, как генератор
// расписания, и считает таблицу для каждой группы отдельно.
func ComputeGroups(participants []string, matches []*models.Match, cfg models.PhaseConfig) []models.GroupTable {
	if cfg.NumberOfGroups <= 0 {
		return nil
	}
	groups := brackets.AssignGroups(participants, cfg.NumberOfGroups)

	tables := make([]models.GroupTable, 0, cfg.NumberOfGroups)
	for idx := 0; idx < cfg.NumberOfGroups; idx++ {
		letter := brackets.GroupLetter(idx)
		members, ok := groups[letter]
		if !ok {
			continue
		}
		rows := Compute(members, matches, cfg)
		for _, row := range rows {
			row.Group = letter
		}
		tables = append(tables, models.GroupTable{Group: letter, Rows: rows})
	}
	return tables
}

// Qualifiers возвращает идентификаторы первых count команд таблицы.
func Qualifiers(rows []*models.StandingRow, count int) []string {
	if count > len(rows) {
		count = len(rows)
	}
	if count < 0 {
		count = 0
	}
	ids := make([]string, 0, count)
	for _, row := range rows[:count] {
		ids = append(ids, row.TeamID)
	}
	return ids
}

// GroupQualifiers берёт по perGroup лучших команд из каждой группы:
// сначала все победители групп, затем вторые места и т.д.
func GroupQualifiers(tables []models.GroupTable, perGroup int) []string {
	ids := make([]string, 0, perGroup*len(tables))
	for pos := 0; pos < perGroup; pos++ {
		for _, table := range tables {
			if pos < len(table.Rows) {
				ids = append(ids, table.Rows[pos].TeamID)
			}
		}
	}
	return ids
}
