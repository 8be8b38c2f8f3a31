package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/football-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchFixture struct {
	env        *testEnv
	phase      *models.Phase
	home, away *models.Team
	homePlayer *models.Player
	awayPlayer *models.Player
	outsider   *models.Player
	match      *models.Match
}

func newMatchFixture(t *testing.T, knockout bool) *matchFixture {
	t.Helper()
	env := newTestEnv(t)
	f := &matchFixture{env: env}
	f.home = env.createTeam(t, "Home")
	f.away = env.createTeam(t, "Away")
	other := env.createTeam(t, "Other")
	f.homePlayer = env.createPlayer(t, f.home.ID, 9, models.CategoryResidentOwner, "1990-03-10")
	f.awayPlayer = env.createPlayer(t, f.away.ID, 4, models.CategoryResidentOwner, "1992-07-01")
	f.outsider = env.createPlayer(t, other.ID, 1, models.CategoryResidentOwner, "1992-07-01")

	f.phase = env.createPhase(t, models.FormatLeague, 1, []string{f.home.ID, f.away.ID}, models.PhaseConfig{})

	match, err := env.matches.CreateMatch(context.Background(), CreateMatchInput{
		PhaseID:    f.phase.ID,
		HomeTeamID: f.home.ID,
		AwayTeamID: f.away.ID,
		Matchday:   1,
		Knockout:   knockout,
	})
	require.NoError(t, err)
	f.match = match
	return f
}

func TestCreateMatchAppendsToPhase(t *testing.T) {
	f := newMatchFixture(t, false)
	ctx := context.Background()

	phase, err := f.env.phases.GetPhase(ctx, f.phase.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.match.ID}, phase.MatchIDs)
	assert.Equal(t, models.MatchStatusScheduled, f.match.Status)

	_, err = f.env.matches.CreateMatch(ctx, CreateMatchInput{PhaseID: f.phase.ID, HomeTeamID: f.home.ID, AwayTeamID: f.home.ID})
	assert.ErrorIs(t, err, models.ErrSameTeams)

	_, err = f.env.matches.CreateMatch(ctx, CreateMatchInput{PhaseID: f.phase.ID, HomeTeamID: f.home.ID, AwayTeamID: "ghost"})
	assert.ErrorIs(t, err, ErrTeamNotFound)

	_, err = f.env.matches.CreateMatch(ctx, CreateMatchInput{PhaseID: "ghost", HomeTeamID: f.home.ID, AwayTeamID: f.away.ID})
	assert.ErrorIs(t, err, ErrPhaseNotFound)
}

func TestRecordGoalRequiresInProgress(t *testing.T) {
	f := newMatchFixture(t, false)
	ctx := context.Background()

	_, err := f.env.matches.RecordGoal(ctx, f.match.ID, RecordGoalInput{PlayerID: f.homePlayer.ID, Minute: 10})
	assert.ErrorIs(t, err, models.ErrMatchNotInProgress)

	stored, err := f.env.matches.GetMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Goals)
	assert.Nil(t, stored.Result)
}

func TestMatchLiveFlow(t *testing.T) {
	f := newMatchFixture(t, false)
	ctx := context.Background()
	svc := f.env.matches

	started, err := svc.StartMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	assert.Equal(t, testNow, *started.StartedAt)

	_, err = svc.StartMatch(ctx, f.match.ID)
	assert.ErrorIs(t, err, models.ErrMatchNotScheduled)

	m, err := svc.RecordGoal(ctx, f.match.ID, RecordGoalInput{PlayerID: f.homePlayer.ID, Minute: 12})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Result.GoalsHome)

	m, err = svc.RecordGoal(ctx, f.match.ID, RecordGoalInput{PlayerID: f.homePlayer.ID, Minute: 40, OwnGoal: true})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Result.GoalsAway)
	assert.Equal(t, f.away.ID, m.Goals[1].CreditedTeamID)
	assert.Equal(t, f.home.ID, m.Goals[1].ScorerTeamID)

	_, err = svc.RecordGoal(ctx, f.match.ID, RecordGoalInput{PlayerID: f.outsider.ID, Minute: 50})
	assert.ErrorIs(t, err, ErrPlayerNotInMatch)

	_, err = svc.RecordGoal(ctx, f.match.ID, RecordGoalInput{PlayerID: "ghost", Minute: 50})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = svc.RecordGoal(ctx, f.match.ID, RecordGoalInput{PlayerID: f.awayPlayer.ID, Minute: 121})
	assert.ErrorIs(t, err, models.ErrInvalidMinute)

	m, err = svc.RecordCard(ctx, f.match.ID, RecordCardInput{PlayerID: f.awayPlayer.ID, Minute: 55, Color: models.CardYellow})
	require.NoError(t, err)
	require.Len(t, m.Cards, 1)
	assert.Equal(t, f.away.ID, m.Cards[0].TeamID)

	_, err = svc.RecordCard(ctx, f.match.ID, RecordCardInput{PlayerID: f.awayPlayer.ID, Minute: 56, Color: "blue"})
	assert.ErrorIs(t, err, models.ErrInvalidCardColor)

	finished, err := svc.FinishMatch(ctx, f.match.ID, FinishMatchInput{GoalsHome: 3, GoalsAway: 1})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, finished.Status)
	require.NotNil(t, finished.Winner())
	assert.Equal(t, f.home.ID, *finished.Winner())
	assert.Len(t, finished.Goals, 2, "final score replaces the running score but keeps events")

	_, err = svc.FinishMatch(ctx, f.match.ID, FinishMatchInput{GoalsHome: 0, GoalsAway: 0})
	assert.ErrorIs(t, err, models.ErrMatchAlreadyFinished)
	_, err = svc.CancelMatch(ctx, f.match.ID, "rain")
	assert.ErrorIs(t, err, models.ErrMatchAlreadyFinished)

	// создание + старт + 2 гола + карточка + финиш
	assert.Equal(t, 6, f.env.notifier.count(EventMatchUpdated))
}

func TestPenaltyWinnerOnlyForKnockoutDraw(t *testing.T) {
	league := newMatchFixture(t, false)
	ctx := context.Background()
	_, err := league.env.matches.StartMatch(ctx, league.match.ID)
	require.NoError(t, err)
	winner := league.home.ID
	_, err = league.env.matches.FinishMatch(ctx, league.match.ID, FinishMatchInput{GoalsHome: 1, GoalsAway: 1, PenaltyWinnerTeamID: &winner})
	assert.ErrorIs(t, err, models.ErrPenaltyNotAllowed)

	cup := newMatchFixture(t, true)
	_, err = cup.env.matches.StartMatch(ctx, cup.match.ID)
	require.NoError(t, err)
	winner = cup.away.ID
	m, err := cup.env.matches.FinishMatch(ctx, cup.match.ID, FinishMatchInput{GoalsHome: 2, GoalsAway: 2, PenaltyWinnerTeamID: &winner})
	require.NoError(t, err)
	assert.Equal(t, cup.away.ID, *m.Winner())
}

func TestReturnLegPenaltiesOnLevelAggregate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ids := env.createTeams(t, "A", "B")
	phase := env.createPhase(t, models.FormatKnockout, 1, ids, models.PhaseConfig{DoubleRoundRobin: true})

	matches, err := env.phases.GenerateSchedule(ctx, phase.ID, GenerateScheduleInput{})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	first, second := matches[0], matches[1]
	require.Equal(t, 2, second.Leg)
	require.Equal(t, ids[1], second.HomeTeamID)

	_, err = env.matches.FinishMatch(ctx, first.ID, FinishMatchInput{GoalsHome: 2, GoalsAway: 0})
	require.NoError(t, err)

	winner := ids[1]
	_, err = env.matches.FinishMatch(ctx, second.ID, FinishMatchInput{GoalsHome: 1, GoalsAway: 0, PenaltyWinnerTeamID: &winner})
	assert.ErrorIs(t, err, models.ErrPenaltyNotAllowed)

	m, err := env.matches.FinishMatch(ctx, second.ID, FinishMatchInput{GoalsHome: 2, GoalsAway: 0, PenaltyWinnerTeamID: &winner})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, m.Status)

	winners, err := env.phases.GetKnockoutWinners(ctx, phase.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[1]}, winners)
}

func TestSuspendAndCancel(t *testing.T) {
	f := newMatchFixture(t, false)
	ctx := context.Background()
	svc := f.env.matches

	_, err := svc.SuspendMatch(ctx, f.match.ID, "storm")
	assert.ErrorIs(t, err, models.ErrMatchNotInProgress)

	_, err = svc.StartMatch(ctx, f.match.ID)
	require.NoError(t, err)
	suspended, err := svc.SuspendMatch(ctx, f.match.ID, "storm")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusSuspended, suspended.Status)
	require.NotNil(t, suspended.Notes)
	assert.Equal(t, "storm", *suspended.Notes)

	_, err = svc.FinishMatch(ctx, f.match.ID, FinishMatchInput{GoalsHome: 1, GoalsAway: 0})
	assert.ErrorIs(t, err, models.ErrMatchSuspended)

	cancelled, err := svc.CancelMatch(ctx, f.match.ID, "field closed")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCancelled, cancelled.Status)
}

func TestUpdateAndDeleteMatch(t *testing.T) {
	f := newMatchFixture(t, false)
	ctx := context.Background()
	svc := f.env.matches

	venue := "Cancha 2"
	kickoff := time.Date(2025, time.July, 1, 18, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateMatch(ctx, f.match.ID, UpdateMatchInput{Venue: &venue, ScheduledAt: &kickoff})
	require.NoError(t, err)
	assert.Equal(t, &venue, updated.Venue)
	assert.Equal(t, kickoff, *updated.ScheduledAt)

	require.NoError(t, svc.DeleteMatch(ctx, f.match.ID))
	_, err = svc.GetMatch(ctx, f.match.ID)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	phase, err := f.env.phases.GetPhase(ctx, f.phase.ID)
	require.NoError(t, err)
	assert.Empty(t, phase.MatchIDs)
}

func TestDeleteFinishedMatchForbidden(t *testing.T) {
	f := newMatchFixture(t, false)
	ctx := context.Background()
	_, err := f.env.matches.StartMatch(ctx, f.match.ID)
	require.NoError(t, err)
	_, err = f.env.matches.FinishMatch(ctx, f.match.ID, FinishMatchInput{GoalsHome: 0, GoalsAway: 0})
	require.NoError(t, err)

	assert.ErrorIs(t, f.env.matches.DeleteMatch(ctx, f.match.ID), models.ErrMatchAlreadyFinished)
}

func TestStartDueMatches(t *testing.T) {
	f := newMatchFixture(t, false)
	ctx := context.Background()
	svc := f.env.matches

	past := testNow.Add(-time.Hour)
	future := testNow.Add(24 * time.Hour)
	_, err := svc.UpdateMatch(ctx, f.match.ID, UpdateMatchInput{ScheduledAt: &past})
	require.NoError(t, err)

	later, err := svc.CreateMatch(ctx, CreateMatchInput{
		PhaseID:     f.phase.ID,
		HomeTeamID:  f.away.ID,
		AwayTeamID:  f.home.ID,
		ScheduledAt: &future,
		Matchday:    2,
	})
	require.NoError(t, err)

	upcoming, err := svc.ListUpcomingMatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, later.ID, upcoming[0].ID)

	started, err := svc.StartDueMatches(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, started)

	m, err := svc.GetMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, m.Status)

	m, err = svc.GetMatch(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, m.Status)

	started, err = svc.StartDueMatches(ctx, testNow)
	require.NoError(t, err)
	assert.Zero(t, started)

	byTeam, err := svc.ListMatchesByTeam(ctx, f.home.ID)
	require.NoError(t, err)
	assert.Len(t, byTeam, 2)
}
