package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/bracket-pools/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"matchup not found", services.ErrMatchupNotFound, http.StatusNotFound},
		{"event not found", services.ErrEventNotFound, http.StatusNotFound},
		{"already resolved", services.ErrAlreadyResolved, http.StatusConflict},
		{"awaiting manual", services.ErrAwaitingManualDecision, http.StatusConflict},
		{"not resolved yet", services.ErrMatchupNotResolved, http.StatusConflict},
		{"incomplete score", services.ErrIncompleteScore, http.StatusUnprocessableEntity},
		{"missing spread", services.ErrMissingSpread, http.StatusUnprocessableEntity},
		{"validation", services.ErrValidationFailed, http.StatusBadRequest},
		{"manual winner outside pool", services.ErrManualWinnerNotInPool, http.StatusBadRequest},
		{"unknown", fmt.Errorf("database is on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/matchups/9/resolve", nil)

			// Wrapped errors must map the same as bare sentinels.
			mapServiceErrorToHTTP(rec, req, fmt.Errorf("context: %w", tt.err))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetIDFromURL_Invalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/pools/abc/matchups", nil)
	if _, err := getIDFromURL(req, "poolID"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
