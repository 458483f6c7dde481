package handlers

import (
	"net/http"

	"github.com/Dosada05/bracket-pools/services"
)

type PoolHandler struct {
	poolService  services.PoolService
	auditService services.AuditService
}

func NewPoolHandler(poolService services.PoolService, auditService services.AuditService) *PoolHandler {
	return &PoolHandler{
		poolService:  poolService,
		auditService: auditService,
	}
}

func (h *PoolHandler) ListMatchupsHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchups, err := h.poolService.ListMatchups(r.Context(), poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matchups": matchups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PoolHandler) ListOwnershipHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	records, err := h.poolService.ListOwnership(r.Context(), poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ownership": records}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PoolHandler) ListAuditTrailHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	trail, err := h.auditService.ListPoolTrail(r.Context(), poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"audit_trail": trail}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PoolHandler) ArchiveAuditTrailHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.auditService.ArchivePoolTrail(r.Context(), poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"archive": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
