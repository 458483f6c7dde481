// Package outcome contains the pure matchup classification logic: given a
// final score, the locked spread and the pool's scoring regime, it decides
// which side wins the round and how. No I/O, no clocks, no state.
package outcome

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Dosada05/bracket-pools/models"
)

type Side string

const (
	SideNone Side = ""
	SideHome Side = "home"
	SideAway Side = "away"
)

func (s Side) Opposite() Side {
	switch s {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	}
	return SideNone
}

type ResultType string

const (
	// Advances: the favorite (or the raw-score winner outside capture/ats)
	// wins the round outright. No ownership change for the winner.
	Advances ResultType = "advances"
	// Upset: the underdog covered and did not lose the game outright.
	// The underdog keeps its team; nothing is captured.
	Upset ResultType = "upset"
	// Captured: the underdog covered but lost the game. The favorite still
	// advances on the scoreboard, yet ownership of the favorite's team
	// transfers to the underdog's owner.
	Captured ResultType = "captured"
	// Push: the adjusted score ties exactly. Only reachable with
	// whole-number spreads; the matchup stays undecided.
	Push ResultType = "push"
)

var (
	ErrNegativeScore = errors.New("scores must be non-negative")
	// ErrTiedScore: straight scoring has no draw concept; a tied final score
	// is not a valid terminal state for resolution.
	ErrTiedScore = errors.New("tied final score cannot be settled by straight scoring")
)

type Input struct {
	HomeScore  int
	AwayScore  int
	HomeSpread decimal.Decimal
	AwaySpread decimal.Decimal
	Mode       models.PoolMode
	Rule       models.ScoringRule
}

type Outcome struct {
	// WinningSide is the side whose owner wins the round. For Captured this
	// is the underdog's side: its owner takes the favorite's team even
	// though the favorite won the game.
	WinningSide Side
	ResultType  ResultType
	// CoveredSide is set only under ats scoring.
	CoveredSide Side
}

func (o Outcome) IsPush() bool { return o.ResultType == Push }

// Classify maps a final score and a locked spread to a resolution outcome.
//
// Capture mode with ats scoring compares home score + home spread against
// the raw away score. The covering side is then split by its own spread:
// favorites (spread <= 0) simply advance; underdogs advance on an outright
// win (upset) or capture the favorite's team on an outright loss. Any other
// mode/rule combination is straight win/loss on the raw score.
func Classify(in Input) (Outcome, error) {
	if in.HomeScore < 0 || in.AwayScore < 0 {
		return Outcome{}, fmt.Errorf("%w: got %d-%d", ErrNegativeScore, in.HomeScore, in.AwayScore)
	}

	if in.Mode != models.PoolModeCapture || in.Rule != models.ScoringRuleATS {
		return classifyStraight(in)
	}
	return classifyATS(in)
}

func classifyStraight(in Input) (Outcome, error) {
	switch {
	case in.HomeScore > in.AwayScore:
		return Outcome{WinningSide: SideHome, ResultType: Advances}, nil
	case in.AwayScore > in.HomeScore:
		return Outcome{WinningSide: SideAway, ResultType: Advances}, nil
	default:
		return Outcome{}, ErrTiedScore
	}
}

func classifyATS(in Input) (Outcome, error) {
	homeAdjusted := decimal.NewFromInt(int64(in.HomeScore)).Add(in.HomeSpread)
	away := decimal.NewFromInt(int64(in.AwayScore))

	cmp := homeAdjusted.Cmp(away)
	if cmp == 0 {
		// Half-point spreads can never land here: an integer score plus a
		// half-point can't equal an integer.
		return Outcome{ResultType: Push}, nil
	}

	covered := SideHome
	coveredSpread := in.HomeSpread
	ownScore, oppScore := in.HomeScore, in.AwayScore
	if cmp < 0 {
		covered = SideAway
		coveredSpread = in.AwaySpread
		ownScore, oppScore = in.AwayScore, in.HomeScore
	}

	// Spread of exactly zero counts as favorite: covering a pick'em line
	// means winning outright, so there is no underdog bonus to apply.
	if !coveredSpread.IsPositive() {
		return Outcome{WinningSide: covered, ResultType: Advances, CoveredSide: covered}, nil
	}

	if ownScore < oppScore {
		return Outcome{WinningSide: covered, ResultType: Captured, CoveredSide: covered}, nil
	}
	// Outright win, or a tied game: the underdog never lost, so this is an
	// upset, not a capture.
	return Outcome{WinningSide: covered, ResultType: Upset, CoveredSide: covered}, nil
}
