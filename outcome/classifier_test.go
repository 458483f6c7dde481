package outcome

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Dosada05/bracket-pools/models"
)

func spread(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func captureATSInput(home, away int, homeSpread string) Input {
	hs := spread(homeSpread)
	return Input{
		HomeScore:  home,
		AwayScore:  away,
		HomeSpread: hs,
		AwaySpread: hs.Neg(),
		Mode:       models.PoolModeCapture,
		Rule:       models.ScoringRuleATS,
	}
}

func TestClassify_CaptureATS(t *testing.T) {
	tests := []struct {
		name        string
		home        int
		away        int
		homeSpread  string
		wantWinner  Side
		wantResult  ResultType
		wantCovered Side
	}{
		// Quadrant: home favorite.
		{
			name: "home favorite covers", home: 31, away: 21, homeSpread: "-7.5",
			wantWinner: SideHome, wantResult: Advances, wantCovered: SideHome,
		},
		{
			name: "home favorite wins but fails to cover", home: 31, away: 21, homeSpread: "-14",
			// Away (underdog) covers and lost outright: away's owner
			// captures the home team.
			wantWinner: SideAway, wantResult: Captured, wantCovered: SideAway,
		},
		{
			name: "home favorite beats the line", home: 31, away: 21, homeSpread: "-7",
			// 31-7=24 > 21: margin 10 beats the 7-point line.
			wantWinner: SideHome, wantResult: Advances, wantCovered: SideHome,
		},
		{
			name: "home favorite wins by three against seven line", home: 24, away: 21, homeSpread: "-7",
			// 24-7=17 < 21: away covers while losing outright, so away's
			// owner captures the home team.
			wantWinner: SideAway, wantResult: Captured, wantCovered: SideAway,
		},
		{
			name: "home favorite loses outright", home: 17, away: 24, homeSpread: "-3",
			wantWinner: SideAway, wantResult: Upset, wantCovered: SideAway,
		},
		// Quadrant: away favorite.
		{
			name: "away favorite covers", home: 10, away: 27, homeSpread: "6.5",
			wantWinner: SideAway, wantResult: Advances, wantCovered: SideAway,
		},
		{
			name: "away favorite wins without covering", home: 20, away: 23, homeSpread: "6.5",
			// Home +6.5 covers (26.5 > 23) and lost 20-23 outright.
			wantWinner: SideHome, wantResult: Captured, wantCovered: SideHome,
		},
		{
			name: "away favorite upset outright", home: 28, away: 24, homeSpread: "10",
			wantWinner: SideHome, wantResult: Upset, wantCovered: SideHome,
		},
		// Half-point line from the distilled score table: home -3.5,
		// final 20-17. Home adjusted 16.5 < 17, away covers, away lost
		// outright -> capture.
		{
			name: "half point line denies home cover", home: 20, away: 17, homeSpread: "-3.5",
			wantWinner: SideAway, wantResult: Captured, wantCovered: SideAway,
		},
		// Pick'em: zero spread carries no underdog bonus on either side.
		{
			name: "pick em home wins", home: 21, away: 14, homeSpread: "0",
			wantWinner: SideHome, wantResult: Advances, wantCovered: SideHome,
		},
		{
			name: "pick em away wins", home: 14, away: 21, homeSpread: "0",
			wantWinner: SideAway, wantResult: Advances, wantCovered: SideAway,
		},
		// Tied game with a spread: underdog covers but never lost.
		{
			name: "tied game underdog covers", home: 20, away: 20, homeSpread: "3",
			wantWinner: SideHome, wantResult: Upset, wantCovered: SideHome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(captureATSInput(tt.home, tt.away, tt.homeSpread))
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if got.WinningSide != tt.wantWinner {
				t.Errorf("WinningSide = %q, want %q", got.WinningSide, tt.wantWinner)
			}
			if got.ResultType != tt.wantResult {
				t.Errorf("ResultType = %q, want %q", got.ResultType, tt.wantResult)
			}
			if got.CoveredSide != tt.wantCovered {
				t.Errorf("CoveredSide = %q, want %q", got.CoveredSide, tt.wantCovered)
			}
		})
	}
}

func TestClassify_Push(t *testing.T) {
	// Home -7, final 28-21: margin lands exactly on the line.
	got, err := Classify(captureATSInput(28, 21, "-7"))
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got.ResultType != Push || !got.IsPush() {
		t.Fatalf("ResultType = %q, want push", got.ResultType)
	}
	if got.WinningSide != SideNone {
		t.Errorf("push must not name a winning side, got %q", got.WinningSide)
	}
}

// Pushes happen iff the spread is a whole number and the adjusted score ties
// exactly; half-point lines can never push. Sweep a grid of scores and lines
// and check the property instead of enumerating cases.
func TestClassify_PushProperty(t *testing.T) {
	lines := []string{"-10", "-7.5", "-7", "-3.5", "-3", "-0.5", "0", "0.5", "3", "3.5", "7", "7.5", "10"}

	for _, line := range lines {
		hs := spread(line)
		halfPoint := !hs.Equal(hs.Truncate(0))
		for home := 0; home <= 45; home += 3 {
			for away := 0; away <= 45; away += 3 {
				got, err := Classify(captureATSInput(home, away, line))
				if err != nil {
					t.Fatalf("Classify(%d-%d %s) error: %v", home, away, line, err)
				}

				adjustedTie := decimal.NewFromInt(int64(home)).Add(hs).Equal(decimal.NewFromInt(int64(away)))
				if got.IsPush() != adjustedTie {
					t.Fatalf("Classify(%d-%d %s): push=%v, adjusted tie=%v", home, away, line, got.IsPush(), adjustedTie)
				}
				if got.IsPush() && halfPoint {
					t.Fatalf("half-point line %s pushed at %d-%d", line, home, away)
				}

				switch got.ResultType {
				case Advances, Upset, Captured, Push:
				default:
					t.Fatalf("unexpected result type %q", got.ResultType)
				}

				// The favorite covering can only advance; a covering
				// underdog never merely advances.
				if !got.IsPush() {
					coveredSpread := hs
					if got.CoveredSide == SideAway {
						coveredSpread = hs.Neg()
					}
					if !coveredSpread.IsPositive() && got.ResultType != Advances {
						t.Fatalf("favorite cover at %d-%d %s produced %q", home, away, line, got.ResultType)
					}
					if coveredSpread.IsPositive() && got.ResultType == Advances {
						t.Fatalf("underdog cover at %d-%d %s produced advances", home, away, line)
					}
				}
			}
		}
	}
}

func TestClassify_Straight(t *testing.T) {
	tests := []struct {
		name string
		mode models.PoolMode
		rule models.ScoringRule
		home int
		away int
		want Side
	}{
		{"standard pool", models.PoolModeStandard, models.ScoringRuleStraight, 24, 10, SideHome},
		{"standard pool away wins", models.PoolModeStandard, models.ScoringRuleStraight, 3, 9, SideAway},
		// Capture mode without ats still scores straight.
		{"capture without ats", models.PoolModeCapture, models.ScoringRuleStraight, 14, 13, SideHome},
		{"standard with ats rule", models.PoolModeStandard, models.ScoringRuleATS, 7, 21, SideAway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(Input{HomeScore: tt.home, AwayScore: tt.away, Mode: tt.mode, Rule: tt.rule})
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if got.WinningSide != tt.want || got.ResultType != Advances {
				t.Errorf("got (%q, %q), want (%q, advances)", got.WinningSide, got.ResultType, tt.want)
			}
			if got.CoveredSide != SideNone {
				t.Errorf("straight scoring must not set a covered side, got %q", got.CoveredSide)
			}
		})
	}
}

func TestClassify_Errors(t *testing.T) {
	_, err := Classify(Input{HomeScore: -1, AwayScore: 3, Mode: models.PoolModeStandard, Rule: models.ScoringRuleStraight})
	if !errors.Is(err, ErrNegativeScore) {
		t.Errorf("negative score: got %v, want ErrNegativeScore", err)
	}

	_, err = Classify(Input{HomeScore: 21, AwayScore: 21, Mode: models.PoolModeStandard, Rule: models.ScoringRuleStraight})
	if !errors.Is(err, ErrTiedScore) {
		t.Errorf("tied straight score: got %v, want ErrTiedScore", err)
	}
}
