package standings

import "github.com/Dosada05/football-tournament/models"

type tie struct {
	first, second string
	goals         map[string]int
	legs          int
	finished      int
	penaltyWinner *string
	penaltyLeg    int
}

// KnockoutWinners возвращает победителей пар плей-офф в порядке первой встречи.
// Пара из двух матчей решается по сумме голов, при равенстве по серии
// пенальти. Незавершённые и нерешённые пары пропускаются.
func KnockoutWinners(matches []*models.Match) []string {
	ties := make([]*tie, 0)
	byPair := make(map[pairKey]*tie)

	for _, m := range matches {
		if !m.Knockout || m.Status == models.MatchStatusCancelled {
			continue
		}
		key := keyFor(m.HomeTeamID, m.AwayTeamID)
		t, ok := byPair[key]
		if !ok {
			t = &tie{first: m.HomeTeamID, second: m.AwayTeamID, goals: make(map[string]int)}
			byPair[key] = t
			ties = append(ties, t)
		}
		t.legs++
		if !m.IsFinished() {
			continue
		}
		t.finished++
		t.goals[m.HomeTeamID] += m.Result.GoalsHome
		t.goals[m.AwayTeamID] += m.Result.GoalsAway
		// решает серия пенальти последнего матча пары
		if m.Result.PenaltyWinnerTeamID != nil && (t.penaltyWinner == nil || m.Leg >= t.penaltyLeg) {
			t.penaltyWinner = m.Result.PenaltyWinnerTeamID
			t.penaltyLeg = m.Leg
		}
	}

	winners := make([]string, 0, len(ties))
	for _, t := range ties {
		if t.finished == 0 || t.finished < t.legs {
			continue
		}
		switch a, b := t.goals[t.first], t.goals[t.second]; {
		case a > b:
			winners = append(winners, t.first)
		case b > a:
			winners = append(winners, t.second)
		case t.penaltyWinner != nil:
			winners = append(winners, *t.penaltyWinner)
		}
	}
	return winners
}
