package handlers

import (
	"net/http"

	"github.com/Dosada05/bracket-pools/services"
)

type ResolutionHandler struct {
	resolutionService services.ResolutionService
	correctionService services.CorrectionService
}

func NewResolutionHandler(resolutionService services.ResolutionService, correctionService services.CorrectionService) *ResolutionHandler {
	return &ResolutionHandler{
		resolutionService: resolutionService,
		correctionService: correctionService,
	}
}

type resolveMatchupRequest struct {
	HomeScore                 *int    `json:"home_score"`
	AwayScore                 *int    `json:"away_score"`
	ManualWinnerParticipantID *int    `json:"manual_winner_participant_id"`
	Note                      *string `json:"note"`
}

func (h *ResolutionHandler) ResolveMatchupHandler(w http.ResponseWriter, r *http.Request) {
	matchupID, err := getIDFromURL(r, "matchupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input resolveMatchupRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.resolutionService.ResolveMatchup(r.Context(), services.ResolveMatchupInput{
		MatchupID:                 matchupID,
		HomeScore:                 input.HomeScore,
		AwayScore:                 input.AwayScore,
		ManualWinnerParticipantID: input.ManualWinnerParticipantID,
		Note:                      input.Note,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"resolution": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type resolveEventRequest struct {
	HomeScore int     `json:"home_score"`
	AwayScore int     `json:"away_score"`
	Note      *string `json:"note"`
}

func (h *ResolutionHandler) ResolveEventHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input resolveEventRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	batch, err := h.resolutionService.ResolveEvent(r.Context(), eventID, input.HomeScore, input.AwayScore, input.Note)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"resolved_count": len(batch.Resolutions),
		"resolutions":    batch.Resolutions,
		"failures":       batch.Failures,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResolutionHandler) ReResolveEventHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	batch, err := h.correctionService.ReResolveEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"re_resolved_count": len(batch.Resolutions),
		"resolutions":       batch.Resolutions,
		"failures":          batch.Failures,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type reResolveMatchupRequest struct {
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`
}

func (h *ResolutionHandler) ReResolveMatchupHandler(w http.ResponseWriter, r *http.Request) {
	matchupID, err := getIDFromURL(r, "matchupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input reResolveMatchupRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.correctionService.ReResolveMatchup(r.Context(), matchupID, input.HomeScore, input.AwayScore)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"resolution": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
