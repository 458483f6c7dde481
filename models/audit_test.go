package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validPayload() *MatchupResolvedPayload {
	winner := 11
	loser := 12
	homeSpread := decimal.RequireFromString("-7")
	awaySpread := decimal.RequireFromString("7")
	eliminated := "KC"
	return &MatchupResolvedPayload{
		MatchupID:           9,
		EventID:             5,
		PoolID:              1,
		WinnerParticipantID: &winner,
		LoserParticipantID:  &loser,
		ResultType:          ResultAdvances,
		HomeTeamCode:        "NE",
		AwayTeamCode:        "KC",
		HomeScore:           31,
		AwayScore:           21,
		HomeSpread:          &homeSpread,
		AwaySpread:          &awaySpread,
		EliminatedTeamCode:  &eliminated,
	}
}

func TestMatchupResolvedPayload_RoundTrip(t *testing.T) {
	raw, err := validPayload().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	parsed, err := ParseMatchupResolvedPayload(raw)
	if err != nil {
		t.Fatalf("ParseMatchupResolvedPayload: %v", err)
	}
	if parsed.MatchupID != 9 || parsed.ResultType != ResultAdvances {
		t.Errorf("parsed payload mismatch: %+v", parsed)
	}
	if parsed.HomeSpread == nil || !parsed.HomeSpread.Equal(decimal.RequireFromString("-7")) {
		t.Errorf("home spread = %v, want -7", parsed.HomeSpread)
	}
	if parsed.WinnerParticipantID == nil || *parsed.WinnerParticipantID != 11 {
		t.Errorf("winner = %v, want 11", parsed.WinnerParticipantID)
	}
}

func TestMatchupResolvedPayload_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *MatchupResolvedPayload)
	}{
		{"missing matchup id", func(p *MatchupResolvedPayload) { p.MatchupID = 0 }},
		{"missing event id", func(p *MatchupResolvedPayload) { p.EventID = 0 }},
		{"missing team code", func(p *MatchupResolvedPayload) { p.HomeTeamCode = "" }},
		{"negative score", func(p *MatchupResolvedPayload) { p.AwayScore = -1 }},
		{"unknown result type", func(p *MatchupResolvedPayload) { p.ResultType = "coinflip" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidAuditPayload) {
				t.Errorf("Validate() = %v, want ErrInvalidAuditPayload", err)
			}
		})
	}
}

func TestParseMatchupResolvedPayload_RejectsMalformedJSON(t *testing.T) {
	if _, err := ParseMatchupResolvedPayload([]byte(`{"matchup_id": "nope"`)); !errors.Is(err, ErrInvalidAuditPayload) {
		t.Errorf("error = %v, want ErrInvalidAuditPayload", err)
	}
}

func TestMatchupResolvedPayload_PushHasNoWinner(t *testing.T) {
	p := validPayload()
	p.ResultType = ResultPush
	p.WinnerParticipantID = nil
	p.LoserParticipantID = nil
	p.EliminatedTeamCode = nil
	if err := p.Validate(); err != nil {
		t.Errorf("push payload without a winner must validate, got %v", err)
	}
}
