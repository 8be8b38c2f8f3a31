package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/football-tournament/handlers"
	"github.com/Dosada05/football-tournament/live"
	"github.com/Dosada05/football-tournament/repositories/memory"
	"github.com/Dosada05/football-tournament/routes"
	"github.com/Dosada05/football-tournament/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiTest struct {
	t      *testing.T
	server *httptest.Server
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	teams := memory.NewTeamRepository()
	players := memory.NewPlayerRepository()
	phases := memory.NewPhaseRepository()
	matches := memory.NewMatchRepository()
	tx := memory.NewTransactor()
	hub := live.NewHub(logger)

	teamService := services.NewTeamService(teams, players, logger)
	playerService := services.NewPlayerService(players, teams, tx, logger)
	phaseService := services.NewPhaseService(phases, matches, teams, tx, hub, nil, logger)
	matchService := services.NewMatchService(matches, phases, teams, players, tx, hub, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(router, []string{"http://localhost:3000"}, routes.Handlers{
		Team:      handlers.NewTeamHandler(teamService, playerService, matchService),
		Player:    handlers.NewPlayerHandler(playerService),
		Phase:     handlers.NewPhaseHandler(phaseService),
		Match:     handlers.NewMatchHandler(matchService),
		WebSocket: handlers.NewWebSocketHandler(hub, phaseService, nil, logger),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &apiTest{t: t, server: server}
}

// do выполняет запрос и декодирует JSON-ответ в map.
func (a *apiTest) do(method, path string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	var decoded map[string]interface{}
	if len(bytes.TrimSpace(raw)) > 0 {
		require.NoError(a.t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func (a *apiTest) createTeam(name string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/teams", map[string]string{"name": name})
	require.Equal(a.t, http.StatusCreated, status, body)
	return body["team"].(map[string]interface{})["id"].(string)
}

var nationalIDSeq int

func (a *apiTest) createPlayer(teamID string, shirt int, category, birthDate string) (int, map[string]interface{}) {
	a.t.Helper()
	nationalID := fmt.Sprintf("V-%08d", nationalIDSeq)
	nationalIDSeq++
	return a.do(http.MethodPost, "/teams/"+teamID+"/players", map[string]interface{}{
		"first_name":   "Luis",
		"last_name":    "Pérez",
		"national_id":  nationalID,
		"birth_date":   birthDate,
		"shirt_number": shirt,
		"category":     category,
	})
}

func field(body map[string]interface{}, key, name string) interface{} {
	return body[key].(map[string]interface{})[name]
}

func TestTeamAndPlayerEndpoints(t *testing.T) {
	api := newAPITest(t)
	teamID := api.createTeam("Los Samanes")

	status, body := api.do(http.MethodPost, "/teams", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])

	status, body = api.createPlayer(teamID, 7, "RESIDENT_OWNER", "1991-05-20")
	require.Equal(t, http.StatusCreated, status, body)
	playerID := field(body, "player", "id").(string)
	assert.Equal(t, "pending", field(body, "player", "status"))

	status, body = api.createPlayer(teamID, 7, "RESIDENT_OWNER", "1991-05-20")
	assert.Equal(t, http.StatusConflict, status, body)

	status, body = api.do(http.MethodGet, "/teams/"+teamID+"/can-add-player", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, field(body, "decision", "allowed"))

	status, body = api.do(http.MethodGet, "/players?status=pending", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["players"], 1)

	status, body = api.do(http.MethodPatch, "/players/"+playerID+"/validation", map[string]string{
		"status":       "validated",
		"validator_id": "admin-1",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "validated", field(body, "player", "status"))

	status, _ = api.do(http.MethodDelete, "/players/"+playerID, nil)
	assert.Equal(t, http.StatusConflict, status, "validated players are locked")

	status, body = api.do(http.MethodGet, "/teams/"+teamID+"/stats", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, field(body, "stats", "validated"))
}

func TestValidationReturnsViolations(t *testing.T) {
	api := newAPITest(t)
	teamID := api.createTeam("Los Araguaneyes")

	status, body := api.createPlayer(teamID, 9, "POLICE", "2010-01-15")
	require.Equal(t, http.StatusCreated, status, body)
	playerID := field(body, "player", "id").(string)

	status, body = api.do(http.MethodPatch, "/players/"+playerID+"/validation", map[string]string{
		"status":       "validated",
		"validator_id": "admin-1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.NotEmpty(t, body["violations"])

	status, body = api.do(http.MethodGet, "/players/"+playerID+"/regulation", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, field(body, "regulation", "valid"))
}

func TestBadIdentifiers(t *testing.T) {
	api := newAPITest(t)

	status, _ := api.do(http.MethodGet, "/teams/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodGet, "/teams/7c1d9c1e-4d3b-4bde-9a8e-1c4c1f1a2b3c", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := api.do(http.MethodPost, "/teams", map[string]interface{}{"name": "X", "colour": "red"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "unknown key")
}

func TestLeagueFlowOverHTTP(t *testing.T) {
	api := newAPITest(t)
	a := api.createTeam("A")
	b := api.createTeam("B")
	c := api.createTeam("C")

	status, body := api.do(http.MethodPost, "/phases", map[string]interface{}{
		"tournament_id": "copa-2025",
		"name":          "Liga",
		"format":        "LEAGUE",
		"order":         1,
		"participants":  []string{a, b, c},
	})
	require.Equal(t, http.StatusCreated, status, body)
	phaseID := field(body, "phase", "id").(string)

	status, body = api.do(http.MethodPost, "/phases/"+phaseID+"/schedule", nil)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Len(t, body["matches"], 3)

	status, _ = api.do(http.MethodPost, "/phases/"+phaseID+"/schedule", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = api.do(http.MethodGet, "/phases/"+phaseID+"/matches?matchday=1", nil)
	require.Equal(t, http.StatusOK, status)
	firstDay := body["matches"].([]interface{})
	require.Len(t, firstDay, 1)
	matchID := firstDay[0].(map[string]interface{})["id"].(string)

	status, _ = api.do(http.MethodGet, "/phases/"+phaseID+"/matches?matchday=x", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = api.do(http.MethodPost, "/matches/"+matchID+"/goals", map[string]interface{}{"player_id": "nobody", "minute": 10})
	assert.Equal(t, http.StatusConflict, status, body)

	status, _ = api.do(http.MethodPatch, "/matches/"+matchID+"/start", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodPatch, "/matches/"+matchID+"/start", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = api.do(http.MethodPatch, "/matches/"+matchID+"/finish", map[string]int{"goals_home": -1, "goals_away": 0})
	assert.Equal(t, http.StatusBadRequest, status, body)

	status, body = api.do(http.MethodPatch, "/matches/"+matchID+"/finish", map[string]int{"goals_home": 2, "goals_away": 0})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "finished", field(body, "match", "status"))

	status, body = api.do(http.MethodGet, "/phases/"+phaseID+"/standings", nil)
	require.Equal(t, http.StatusOK, status)
	rows := body["standings"].([]interface{})
	require.Len(t, rows, 3)
	leader := rows[0].(map[string]interface{})
	assert.EqualValues(t, 3, leader["points"])

	status, body = api.do(http.MethodGet, "/phases/"+phaseID+"/qualifiers?count=1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["qualified_teams"], 1)

	status, _ = api.do(http.MethodGet, "/phases/"+phaseID+"/qualifiers", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodGet, "/phases/"+phaseID+"/knockout-winners", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodGet, "/phases/"+phaseID+"/group-qualifiers?per_group=1", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodGet, "/phases?tournament_id=copa-2025", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodGet, "/phases", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCancelMatchWithoutBody(t *testing.T) {
	api := newAPITest(t)
	a := api.createTeam("Ceibas")
	b := api.createTeam("Bucares")

	status, body := api.do(http.MethodPost, "/phases", map[string]interface{}{
		"tournament_id": "copa-2025",
		"name":          "Amistoso",
		"format":        "LEAGUE",
		"order":         1,
		"participants":  []string{a, b},
	})
	require.Equal(t, http.StatusCreated, status, body)
	phaseID := field(body, "phase", "id").(string)

	status, body = api.do(http.MethodPost, "/matches", map[string]interface{}{
		"phase_id":     phaseID,
		"home_team_id": a,
		"away_team_id": b,
		"matchday":     1,
	})
	require.Equal(t, http.StatusCreated, status, body)
	matchID := field(body, "match", "id").(string)

	status, body = api.do(http.MethodPatch, "/matches/"+matchID+"/cancel", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "cancelled", field(body, "match", "status"))

	status, _ = api.do(http.MethodGet, "/teams/"+a+"/matches", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestKnockoutWinnersOverHTTP(t *testing.T) {
	api := newAPITest(t)
	ids := []string{api.createTeam("K1"), api.createTeam("K2"), api.createTeam("K3"), api.createTeam("K4")}

	status, body := api.do(http.MethodPost, "/phases", map[string]interface{}{
		"tournament_id": "copa-2025",
		"name":          "Cuartos",
		"format":        "KNOCKOUT",
		"order":         2,
		"participants":  ids,
	})
	require.Equal(t, http.StatusCreated, status, body)
	phaseID := field(body, "phase", "id").(string)

	status, body = api.do(http.MethodPost, "/phases/"+phaseID+"/schedule", nil)
	require.Equal(t, http.StatusCreated, status, body)

	// K1-K2 1:0, K3-K4 4:0
	for _, raw := range body["matches"].([]interface{}) {
		match := raw.(map[string]interface{})
		goals := map[string]int{"goals_home": 1, "goals_away": 0}
		if match["home_team_id"] == ids[2] {
			goals["goals_home"] = 4
		}
		status, resp := api.do(http.MethodPatch, "/matches/"+match["id"].(string)+"/finish", goals)
		require.Equal(t, http.StatusOK, status, resp)
	}

	status, body = api.do(http.MethodGet, "/phases/"+phaseID+"/knockout-winners", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, []interface{}{ids[0], ids[2]}, body["winners"])

	status, body = api.do(http.MethodGet, "/phases/"+phaseID+"/qualifiers?count=1", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, []interface{}{ids[2]}, body["qualified_teams"])
}
