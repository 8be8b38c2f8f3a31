package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/repositories"
	"github.com/Dosada05/football-tournament/services"
)

type PhaseHandler struct {
	phaseService services.PhaseService
}

func NewPhaseHandler(ps services.PhaseService) *PhaseHandler {
	return &PhaseHandler{phaseService: ps}
}

func (h *PhaseHandler) CreatePhase(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePhaseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phase, err := h.phaseService.CreatePhase(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"phase": phase})
}

func (h *PhaseHandler) ListPhases(w http.ResponseWriter, r *http.Request) {
	tournamentID := r.URL.Query().Get("tournament_id")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("query parameter tournament_id is required"))
		return
	}

	phases, err := h.phaseService.ListPhases(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"phases": phases})
}

func (h *PhaseHandler) GetPhase(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phase, err := h.phaseService.GetPhase(r.Context(), phaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"phase": phase})
}

func (h *PhaseHandler) SetParticipants(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Participants []string `json:"participants"`
	}
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phase, err := h.phaseService.SetParticipants(r.Context(), phaseID, input.Participants)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"phase": phase})
}

// GenerateSchedule строит календарь фазы. Тело запроса необязательно.
func (h *PhaseHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateScheduleInput
	if r.ContentLength != 0 {
		if err = readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	matches, err := h.phaseService.GenerateSchedule(r.Context(), phaseID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"matches": matches})
}

func (h *PhaseHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.phaseService.GetStandings(r.Context(), phaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, standings)
}

func (h *PhaseHandler) GetQualifiers(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	count, err := queryInt(r, "count")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	n := 0
	if count != nil {
		n = *count
	}

	qualifiers, err := h.phaseService.GetQualifiers(r.Context(), phaseID, n)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"qualified_teams": qualifiers})
}

func (h *PhaseHandler) GetGroupQualifiers(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	perGroup, err := queryInt(r, "per_group")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	n := 0
	if perGroup != nil {
		n = *perGroup
	}

	qualifiers, err := h.phaseService.GetGroupQualifiers(r.Context(), phaseID, n)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"qualified_teams": qualifiers})
}

func (h *PhaseHandler) GetKnockoutWinners(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	winners, err := h.phaseService.GetKnockoutWinners(r.Context(), phaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"winners": winners})
}

func (h *PhaseHandler) FinishPhase(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.FinishPhaseInput
	if r.ContentLength != 0 {
		if err = readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	phase, err := h.phaseService.FinishPhase(r.Context(), phaseID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"phase": phase})
}

// ListPhaseMatches поддерживает фильтры ?matchday=&group=&status=.
func (h *PhaseHandler) ListPhaseMatches(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var filter repositories.MatchFilter
	if filter.Matchday, err = queryInt(r, "matchday"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if group := r.URL.Query().Get("group"); group != "" {
		filter.Group = &group
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := models.MatchStatus(status)
		filter.Status = &s
	}

	matches, err := h.phaseService.ListPhaseMatches(r.Context(), phaseID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"matches": matches})
}
