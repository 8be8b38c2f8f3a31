package standings

import (
	"testing"

	"github.com/Dosada05/football-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finished(home, away string, goalsHome, goalsAway int) *models.Match {
	return &models.Match{
		HomeTeamID: home,
		AwayTeamID: away,
		Status:     models.MatchStatusFinished,
		Result:     &models.MatchResult{GoalsHome: goalsHome, GoalsAway: goalsAway},
	}
}

func rowByTeam(rows []*models.StandingRow, teamID string) *models.StandingRow {
	for _, r := range rows {
		if r.TeamID == teamID {
			return r
		}
	}
	return nil
}

func order(rows []*models.StandingRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.TeamID
	}
	return ids
}

func scenarioMatches() []*models.Match {
	return []*models.Match{
		finished("A", "B", 2, 1),
		finished("C", "D", 0, 0),
		finished("A", "C", 1, 1),
		finished("B", "D", 3, 0),
	}
}

func TestLeagueScenario(t *testing.T) {
	rows := Compute([]string{"A", "B", "C", "D"}, scenarioMatches(), models.PhaseConfig{})
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"A", "B", "C", "D"}, order(rows))

	a := rowByTeam(rows, "A")
	assert.Equal(t, 4, a.Points)
	assert.Equal(t, 1, a.Won)
	assert.Equal(t, 1, a.Drawn)
	assert.Equal(t, 0, a.Lost)
	assert.Equal(t, 3, a.GoalsFor)
	assert.Equal(t, 2, a.GoalsAgainst)
	assert.Equal(t, 1, a.GoalDifference)
	assert.Equal(t, 1, a.Position)

	b := rowByTeam(rows, "B")
	assert.Equal(t, 3, b.Points)
	assert.Equal(t, 2, b.GoalDifference)

	c := rowByTeam(rows, "C")
	assert.Equal(t, 2, c.Points)
	assert.Equal(t, 0, c.GoalDifference)

	d := rowByTeam(rows, "D")
	assert.Equal(t, 1, d.Points)
	assert.Equal(t, -3, d.GoalDifference)
	assert.Equal(t, 4, d.Position)
}

func TestPlayedEqualsTwiceFinishedMatches(t *testing.T) {
	matches := append(scenarioMatches(),
		&models.Match{HomeTeamID: "A", AwayTeamID: "D", Status: models.MatchStatusScheduled},
		&models.Match{HomeTeamID: "B", AwayTeamID: "C", Status: models.MatchStatusInProgress, Result: &models.MatchResult{GoalsHome: 1}},
		&models.Match{HomeTeamID: "C", AwayTeamID: "A", Status: models.MatchStatusCancelled},
	)
	rows := Compute([]string{"A", "B", "C", "D"}, matches, models.PhaseConfig{})

	total := 0
	for _, r := range rows {
		total += r.Played
	}
	assert.Equal(t, 2*4, total)
}

func TestComputeIsIdempotent(t *testing.T) {
	participants := []string{"A", "B", "C", "D"}
	first := Compute(participants, scenarioMatches(), models.PhaseConfig{})
	second := Compute(participants, scenarioMatches(), models.PhaseConfig{})
	assert.Equal(t, first, second)
}

func TestTeamsWithoutMatchesAreSeeded(t *testing.T) {
	rows := Compute([]string{"A", "B", "Z"}, []*models.Match{finished("A", "B", 1, 0)}, models.PhaseConfig{})
	require.Len(t, rows, 3)
	z := rowByTeam(rows, "Z")
	require.NotNil(t, z)
	assert.Zero(t, z.Played)
}

func TestMatchesWithUnknownTeamsAreSkipped(t *testing.T) {
	rows := Compute([]string{"A", "B"}, []*models.Match{finished("A", "X", 5, 0)}, models.PhaseConfig{})
	assert.Zero(t, rowByTeam(rows, "A").Played)
}

func TestCustomPointsScheme(t *testing.T) {
	win, draw := 2, 0
	cfg := models.PhaseConfig{PointsWin: &win, PointsDraw: &draw}
	rows := Compute([]string{"A", "B", "C", "D"}, scenarioMatches(), cfg)
	assert.Equal(t, 2, rowByTeam(rows, "A").Points)
	assert.Equal(t, 0, rowByTeam(rows, "C").Points)
}

func TestTieBreakCriteria(t *testing.T) {
	// A and B both on 3 points; B has the better goal difference, A won the meeting
	matches := []*models.Match{
		finished("A", "B", 1, 0),
		finished("B", "C", 5, 0),
	}
	participants := []string{"A", "B", "C", "D"}

	rows := Compute(participants, matches, models.PhaseConfig{
		TieBreakCriteria: []models.TieBreakCriterion{models.TieBreakPoints, models.TieBreakGoalDifference},
	})
	assert.Equal(t, []string{"B", "A", "D", "C"}, order(rows))

	rows = Compute(participants, matches, models.PhaseConfig{
		TieBreakCriteria: []models.TieBreakCriterion{models.TieBreakPoints, models.TieBreakHeadToHead},
	})
	assert.Equal(t, []string{"A", "B", "C", "D"}, order(rows))
}

func TestHeadToHeadCircleUsesMiniTable(t *testing.T) {
	// A beats B, B beats C, C beats A; among the three B has the best goal difference
	matches := []*models.Match{
		finished("A", "B", 1, 0),
		finished("B", "C", 3, 0),
		finished("C", "A", 1, 0),
	}
	cfg := models.PhaseConfig{
		TieBreakCriteria: []models.TieBreakCriterion{models.TieBreakPoints, models.TieBreakHeadToHead},
	}

	for _, participants := range [][]string{
		{"A", "B", "C"},
		{"A", "C", "B"},
		{"B", "A", "C"},
		{"B", "C", "A"},
		{"C", "A", "B"},
		{"C", "B", "A"},
	} {
		rows := Compute(participants, matches, cfg)
		assert.Equal(t, []string{"B", "A", "C"}, order(rows), "participants %v", participants)
	}
}

func TestHeadToHeadIgnoresMatchesOutsideTheBlock(t *testing.T) {
	// A and B tie on points; B's big win over D must not count between them
	matches := []*models.Match{
		finished("A", "B", 2, 2),
		finished("A", "C", 1, 0),
		finished("B", "D", 6, 0),
		finished("C", "D", 1, 0),
	}
	cfg := models.PhaseConfig{
		TieBreakCriteria: []models.TieBreakCriterion{models.TieBreakPoints, models.TieBreakHeadToHead, models.TieBreakGoalsAgainst},
	}

	rows := Compute([]string{"D", "C", "B", "A"}, matches, cfg)
	require.Len(t, rows, 4)
	// A conceded 2, B conceded 2: fully level, so registration order decides
	assert.Equal(t, []string{"B", "A", "C", "D"}, order(rows))
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 4, rows[3].Position)
}

func TestGoalsAgainstAndMatchesWon(t *testing.T) {
	matches := []*models.Match{
		finished("A", "C", 3, 2),
		finished("B", "D", 1, 0),
	}
	participants := []string{"A", "B", "C", "D"}

	rows := Compute(participants, matches, models.PhaseConfig{
		TieBreakCriteria: []models.TieBreakCriterion{models.TieBreakMatchesWon, models.TieBreakGoalsAgainst},
	})
	assert.Equal(t, []string{"B", "A", "D", "C"}, order(rows))

	rows = Compute(participants, matches, models.PhaseConfig{
		TieBreakCriteria: []models.TieBreakCriterion{models.TieBreakMatchesWon, models.TieBreakGoalsFor},
	})
	assert.Equal(t, []string{"A", "B", "C", "D"}, order(rows))
}

func TestQualifiers(t *testing.T) {
	rows := Compute([]string{"A", "B", "C", "D"}, scenarioMatches(), models.PhaseConfig{})
	assert.Equal(t, []string{"A", "B"}, Qualifiers(rows, 2))
	assert.Len(t, Qualifiers(rows, 10), 4)
	assert.Empty(t, Qualifiers(rows, 0))
}

func TestGroupTables(t *testing.T) {
	// A: team-0, team-2; B: team-1, team-3
	participants := []string{"t0", "t1", "t2", "t3"}
	matches := []*models.Match{
		finished("t0", "t2", 0, 2),
		finished("t1", "t3", 4, 1),
	}
	matches[0].Group = "A"
	matches[1].Group = "B"

	tables := ComputeGroups(participants, matches, models.PhaseConfig{NumberOfGroups: 2, TeamsPerGroup: 2})
	require.Len(t, tables, 2)
	assert.Equal(t, "A", tables[0].Group)
	assert.Equal(t, []string{"t2", "t0"}, order(tables[0].Rows))
	assert.Equal(t, "A", tables[0].Rows[0].Group)
	assert.Equal(t, []string{"t1", "t3"}, order(tables[1].Rows))

	assert.Equal(t, []string{"t2", "t1"}, GroupQualifiers(tables, 1))
	assert.Equal(t, []string{"t2", "t1", "t0", "t3"}, GroupQualifiers(tables, 2))
}
