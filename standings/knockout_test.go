package standings

import (
	"testing"

	"github.com/Dosada05/football-tournament/models"
	"github.com/stretchr/testify/assert"
)

func knockout(m *models.Match) *models.Match {
	m.Knockout = true
	return m
}

func TestKnockoutWinnersSingleLeg(t *testing.T) {
	penalties := "D"
	drawn := knockout(finished("C", "D", 1, 1))
	drawn.Result.PenaltyWinnerTeamID = &penalties

	matches := []*models.Match{
		knockout(finished("A", "B", 0, 2)),
		drawn,
		knockout(&models.Match{HomeTeamID: "E", AwayTeamID: "F", Status: models.MatchStatusScheduled}),
	}

	assert.Equal(t, []string{"B", "D"}, KnockoutWinners(matches))
}

func TestKnockoutWinnersTwoLegsAggregate(t *testing.T) {
	matches := []*models.Match{
		knockout(finished("A", "B", 2, 0)),
		knockout(finished("B", "A", 1, 0)),
		knockout(finished("C", "D", 1, 0)),
		knockout(&models.Match{HomeTeamID: "D", AwayTeamID: "C", Status: models.MatchStatusInProgress}),
	}

	// C-D ещё не доиграна
	assert.Equal(t, []string{"A"}, KnockoutWinners(matches))
}

func TestKnockoutWinnersAggregateDrawNeedsPenalties(t *testing.T) {
	penalties := "A"
	second := knockout(finished("B", "A", 1, 1))
	second.Result.PenaltyWinnerTeamID = &penalties

	matches := []*models.Match{
		knockout(finished("A", "B", 0, 0)),
		second,
	}
	assert.Equal(t, []string{"A"}, KnockoutWinners(matches))

	second.Result.PenaltyWinnerTeamID = nil
	assert.Empty(t, KnockoutWinners(matches))
}

func TestKnockoutWinnersPenaltiesAfterLevelAggregate(t *testing.T) {
	// 2:0 и 0:2, ответный матч не ничейный, но сумма равна
	penalties := "B"
	first := knockout(finished("A", "B", 2, 0))
	first.Leg = 1
	second := knockout(finished("B", "A", 2, 0))
	second.Leg = 2
	second.Result.PenaltyWinnerTeamID = &penalties

	assert.Equal(t, []string{"B"}, KnockoutWinners([]*models.Match{second, first}))
	assert.Equal(t, []string{"B"}, KnockoutWinners([]*models.Match{first, second}))
}
