package standings

import "github.com/Dosada05/football-tournament/models"

type pairKey struct {
	a, b string
}

func keyFor(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// headToHeadTable строит мини-таблицу по матчам только между командами блока:
// очки, затем разница мячей, затем забитые. Команды без встреч друг с другом
// остаются равными.
func headToHeadTable(block []*models.StandingRow, matches []*models.Match, scheme points) map[string]score {
	table := make(map[string]score, len(block))
	for _, row := range block {
		table[row.TeamID] = score{}
	}

	for _, m := range matches {
		home, okHome := table[m.HomeTeamID]
		away, okAway := table[m.AwayTeamID]
		if !okHome || !okAway {
			continue
		}

		goalsHome, goalsAway := m.Result.GoalsHome, m.Result.GoalsAway
		switch {
		case goalsHome > goalsAway:
			home[0] += scheme.win
			away[0] += scheme.loss
		case goalsHome < goalsAway:
			away[0] += scheme.win
			home[0] += scheme.loss
		default:
			home[0] += scheme.draw
			away[0] += scheme.draw
		}
		home[1] += goalsHome - goalsAway
		away[1] += goalsAway - goalsHome
		home[2] += goalsHome
		away[2] += goalsAway

		table[m.HomeTeamID] = home
		table[m.AwayTeamID] = away
	}
	return table
}
