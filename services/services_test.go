package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/repositories/memory"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type publishedEvent struct {
	PhaseID string
	Type    string
	Payload interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *recordingNotifier) Publish(phaseID, eventType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{PhaseID: phaseID, Type: eventType, Payload: payload})
}

func (n *recordingNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, e := range n.events {
		if e.Type == eventType {
			total++
		}
	}
	return total
}

type recordingArchiver struct {
	snapshots []*StandingsSnapshot
	err       error
}

func (a *recordingArchiver) ArchiveStandings(ctx context.Context, snapshot *StandingsSnapshot) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.snapshots = append(a.snapshots, snapshot)
	return "standings/" + snapshot.Phase.ID + ".json", nil
}

type testEnv struct {
	teamRepo   *memory.TeamRepository
	playerRepo *memory.PlayerRepository
	phaseRepo  *memory.PhaseRepository
	matchRepo  *memory.MatchRepository

	teams    TeamService
	players  *playerService
	phases   *phaseService
	matches  *matchService
	notifier *recordingNotifier
	archiver *recordingArchiver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		teamRepo:   memory.NewTeamRepository(),
		playerRepo: memory.NewPlayerRepository(),
		phaseRepo:  memory.NewPhaseRepository(),
		matchRepo:  memory.NewMatchRepository(),
		notifier:   &recordingNotifier{},
		archiver:   &recordingArchiver{},
	}
	tx := memory.NewTransactor()

	env.teams = NewTeamService(env.teamRepo, env.playerRepo, logger)
	env.players = newPlayerService(env.playerRepo, env.teamRepo, tx, fixedClock, logger)

	phases := NewPhaseService(env.phaseRepo, env.matchRepo, env.teamRepo, tx, env.notifier, env.archiver, logger).(*phaseService)
	phases.clock = fixedClock
	env.phases = phases

	matches := NewMatchService(env.matchRepo, env.phaseRepo, env.teamRepo, env.playerRepo, tx, env.notifier, logger).(*matchService)
	matches.clock = fixedClock
	env.matches = matches
	return env
}

func (e *testEnv) createTeam(t *testing.T, name string) *models.Team {
	t.Helper()
	team, err := e.teams.CreateTeam(context.Background(), CreateTeamInput{Name: name})
	require.NoError(t, err)
	return team
}

var nationalIDSeq int

func playerInput(shirt int, category models.PlayerCategory, birthDate string) CreatePlayerInput {
	nationalID := fmt.Sprintf("V-%08d", nationalIDSeq)
	nationalIDSeq++
	return CreatePlayerInput{
		FirstName:   "Player",
		LastName:    fmt.Sprintf("N%d", shirt),
		NationalID:  nationalID,
		BirthDate:   birthDate,
		ShirtNumber: shirt,
		Category:    category,
	}
}

func (e *testEnv) createPlayer(t *testing.T, teamID string, shirt int, category models.PlayerCategory, birthDate string) *models.Player {
	t.Helper()
	player, err := e.players.CreatePlayer(context.Background(), teamID, playerInput(shirt, category, birthDate))
	require.NoError(t, err)
	return player
}

func (e *testEnv) createTeams(t *testing.T, names ...string) []string {
	t.Helper()
	ids := make([]string, len(names))
	for i, name := range names {
		ids[i] = e.createTeam(t, name).ID
	}
	return ids
}
