package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtside/tennis-tournament-system/models"
	"github.com/courtside/tennis-tournament-system/repositories"
	"github.com/courtside/tennis-tournament-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTournamentMatches supports optional segment, round and status query
// filters.
func (h *MatchHandler) ListTournamentMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var filter repositories.MatchFilter
	if segment := r.URL.Query().Get("segment"); segment != "" {
		matchSegment := models.Segment(segment)
		filter.Segment = &matchSegment
	}
	if roundStr := r.URL.Query().Get("round"); roundStr != "" {
		round, err := strconv.Atoi(roundStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("round must be an integer"))
			return
		}
		filter.Round = &round
	}
	if status := r.URL.Query().Get("status"); status != "" {
		matchStatus := models.MatchStatus(status)
		filter.Status = &matchStatus
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Start(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AwardPoint scores a single point for one side of an in-progress match.
func (h *MatchHandler) AwardPoint(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Side models.Side `json:"side"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Side != models.SideTeam1 && input.Side != models.SideTeam2 {
		badRequestResponse(w, r, errors.New("side must be team1 or team2"))
		return
	}

	result, err := h.matchService.AwardPoint(r.Context(), matchID, input.Side)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
