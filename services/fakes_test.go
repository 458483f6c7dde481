package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dosada05/bracket-pools/models"
	"github.com/Dosada05/bracket-pools/repositories"
)

// In-memory doubles for the repository layer. They ignore the SQLExecutor
// argument, so service tests run the real transaction flow against a nil tx.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type memStore struct {
	mu sync.Mutex

	pools        map[int]*models.Pool
	events       map[int]*models.Event
	spreads      map[int]*models.LockedSpread
	matchups     map[int]*models.Matchup
	participants map[int]*models.Participant
	ownership    map[string]*models.OwnershipRecord
	audit        []*models.AuditLogEntry

	nextOwnershipID int
	nextAuditID     int
}

func newMemStore() *memStore {
	return &memStore{
		pools:           make(map[int]*models.Pool),
		events:          make(map[int]*models.Event),
		spreads:         make(map[int]*models.LockedSpread),
		matchups:        make(map[int]*models.Matchup),
		participants:    make(map[int]*models.Participant),
		ownership:       make(map[string]*models.OwnershipRecord),
		nextOwnershipID: 1,
		nextAuditID:     1,
	}
}

func ownershipKey(poolID int, teamCode string) string {
	return fmt.Sprintf("%d:%s", poolID, teamCode)
}

func (s *memStore) setOwner(poolID int, teamCode string, participantID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownership[ownershipKey(poolID, teamCode)] = &models.OwnershipRecord{
		ID:            s.nextOwnershipID,
		PoolID:        poolID,
		TeamCode:      teamCode,
		ParticipantID: participantID,
		AcquiredVia:   models.AcquiredInitial,
		CreatedAt:     time.Now().UTC(),
	}
	s.nextOwnershipID++
}

func (s *memStore) owner(poolID int, teamCode string) *models.OwnershipRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.ownership[ownershipKey(poolID, teamCode)]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

func (s *memStore) matchup(id int) *models.Matchup {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.matchups[id]
	return &cp
}

func (s *memStore) auditEntriesForPool(poolID int) []*models.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.AuditLogEntry, 0)
	for _, e := range s.audit {
		if e.PoolID == poolID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

type fakePoolRepo struct{ s *memStore }

func (r fakePoolRepo) GetByID(ctx context.Context, id int) (*models.Pool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pool, ok := r.s.pools[id]
	if !ok {
		return nil, repositories.ErrPoolNotFound
	}
	cp := *pool
	return &cp, nil
}

type fakeEventRepo struct{ s *memStore }

func (r fakeEventRepo) GetByID(ctx context.Context, id int) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event, ok := r.s.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	cp := *event
	return &cp, nil
}

func (r fakeEventRepo) SetFinalScore(ctx context.Context, exec repositories.SQLExecutor, id int, homeScore, awayScore int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event, ok := r.s.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	event.FinalHomeScore = &homeScore
	event.FinalAwayScore = &awayScore
	event.Status = models.EventStatusFinal
	return nil
}

type fakeSpreadRepo struct{ s *memStore }

func (r fakeSpreadRepo) GetLockedSpread(ctx context.Context, exec repositories.SQLExecutor, eventID int) (*models.LockedSpread, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	spread, ok := r.s.spreads[eventID]
	if !ok {
		return nil, repositories.ErrSpreadNotFound
	}
	cp := *spread
	return &cp, nil
}

type fakeMatchupRepo struct{ s *memStore }

func (r fakeMatchupRepo) GetByID(ctx context.Context, id int) (*models.Matchup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matchup, ok := r.s.matchups[id]
	if !ok {
		return nil, repositories.ErrMatchupNotFound
	}
	cp := *matchup
	return &cp, nil
}

func (r fakeMatchupRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Matchup, error) {
	return r.GetByID(ctx, id)
}

func (r fakeMatchupRepo) ListByPool(ctx context.Context, poolID int) ([]*models.Matchup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Matchup, 0)
	for _, m := range r.s.matchups {
		if m.PoolID == poolID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeMatchupRepo) ListIDsByEvent(ctx context.Context, eventID int, statuses []models.MatchupStatus) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int, 0)
	for _, m := range r.s.matchups {
		if m.EventID != eventID {
			continue
		}
		for _, status := range statuses {
			if m.Status == status {
				ids = append(ids, m.ID)
				break
			}
		}
	}
	return ids, nil
}

func (r fakeMatchupRepo) FreezeParticipants(ctx context.Context, exec repositories.SQLExecutor, id int, homeParticipantID, awayParticipantID *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matchup, ok := r.s.matchups[id]
	if !ok {
		return repositories.ErrMatchupNotFound
	}
	if matchup.HomeParticipantID != nil || matchup.AwayParticipantID != nil {
		return nil
	}
	matchup.HomeParticipantID = homeParticipantID
	matchup.AwayParticipantID = awayParticipantID
	return nil
}

func (r fakeMatchupRepo) SetResolution(ctx context.Context, exec repositories.SQLExecutor, id int, winnerParticipantID *int, status models.MatchupStatus, decidedBy *models.DecisionMethod, decidedAt *time.Time, note *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matchup, ok := r.s.matchups[id]
	if !ok {
		return repositories.ErrMatchupNotFound
	}
	matchup.WinnerParticipantID = winnerParticipantID
	matchup.Status = status
	matchup.DecidedBy = decidedBy
	matchup.DecidedAt = decidedAt
	matchup.Note = note
	return nil
}

type fakeOwnershipRepo struct{ s *memStore }

func (r fakeOwnershipRepo) GetOwner(ctx context.Context, exec repositories.SQLExecutor, poolID int, teamCode string) (*models.OwnershipRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.ownership[ownershipKey(poolID, teamCode)]
	if !ok {
		return nil, repositories.ErrOwnershipNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r fakeOwnershipRepo) ListByPool(ctx context.Context, poolID int) ([]*models.OwnershipRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.OwnershipRecord, 0)
	for _, rec := range r.s.ownership {
		if rec.PoolID == poolID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeOwnershipRepo) Transfer(ctx context.Context, exec repositories.SQLExecutor, poolID int, teamCode string, toParticipantID int, via models.AcquisitionKind, fromMatchupID *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ownership[ownershipKey(poolID, teamCode)] = &models.OwnershipRecord{
		ID:            r.s.nextOwnershipID,
		PoolID:        poolID,
		TeamCode:      teamCode,
		ParticipantID: toParticipantID,
		AcquiredVia:   via,
		FromMatchupID: fromMatchupID,
		CreatedAt:     time.Now().UTC(),
	}
	r.s.nextOwnershipID++
	return nil
}

func (r fakeOwnershipRepo) Remove(ctx context.Context, exec repositories.SQLExecutor, poolID int, teamCode string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.ownership, ownershipKey(poolID, teamCode))
	return nil
}

func (r fakeOwnershipRepo) DeleteCaptureByMatchup(ctx context.Context, exec repositories.SQLExecutor, matchupID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for key, rec := range r.s.ownership {
		if rec.AcquiredVia == models.AcquiredCapture && rec.FromMatchupID != nil && *rec.FromMatchupID == matchupID {
			delete(r.s.ownership, key)
			deleted++
		}
	}
	return deleted, nil
}

type fakeAuditRepo struct{ s *memStore }

func (r fakeAuditRepo) Append(ctx context.Context, exec repositories.SQLExecutor, entry *models.AuditLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.nextAuditID
	entry.CreatedAt = time.Now().UTC()
	r.s.nextAuditID++
	cp := *entry
	r.s.audit = append(r.s.audit, &cp)
	return nil
}

func (r fakeAuditRepo) ListByPool(ctx context.Context, poolID int) ([]*models.AuditLogEntry, error) {
	return r.s.auditEntriesForPool(poolID), nil
}

func (r fakeAuditRepo) DeleteByMatchup(ctx context.Context, exec repositories.SQLExecutor, matchupID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	kept := r.s.audit[:0]
	for _, entry := range r.s.audit {
		var ref struct {
			MatchupID int `json:"matchup_id"`
		}
		if entry.ActionType == models.AuditActionMatchupResolved &&
			json.Unmarshal(entry.Payload, &ref) == nil &&
			ref.MatchupID == matchupID {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	r.s.audit = kept
	return deleted, nil
}

type fakeParticipantRepo struct{ s *memStore }

func (r fakeParticipantRepo) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (r fakeParticipantRepo) ListByPool(ctx context.Context, poolID int) ([]*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Participant, 0)
	for _, p := range r.s.participants {
		if p.PoolID == poolID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []struct {
		Room    string
		Message interface{}
	}
}

func (n *fakeNotifier) BroadcastToRoom(roomID string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, struct {
		Room    string
		Message interface{}
	}{Room: roomID, Message: message})
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func decimalFromString(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// assertOwnershipConserved checks the ledger invariant: live ownership
// records plus eliminated teams account for every team in the pool. Captures
// move records, eliminations remove them; nothing else may change the sum.
func assertOwnershipConserved(t *testing.T, s *memStore, poolID, eliminated int) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	live := 0
	for _, rec := range s.ownership {
		if rec.PoolID == poolID {
			live++
		}
	}
	teamCount := s.pools[poolID].TeamCount
	if live+eliminated != teamCount {
		t.Errorf("ownership not conserved: %d live + %d eliminated, want %d teams total", live, eliminated, teamCount)
	}
}

// fixture wires both orchestrators over one shared in-memory store with a
// single capture/ats pool: Alice holds the home team, Bob the away team.
type fixture struct {
	store      *memStore
	hub        *fakeNotifier
	resolution ResolutionService
	correction CorrectionService
}

const (
	fixturePoolID    = 1
	fixtureEventID   = 5
	fixtureMatchupID = 9
	fixtureAliceID   = 11
	fixtureBobID     = 12
	fixtureHomeTeam  = "NE"
	fixtureAwayTeam  = "KC"
)

func newFixture() *fixture {
	store := newMemStore()

	store.pools[fixturePoolID] = &models.Pool{
		ID:          fixturePoolID,
		Name:        "Playoff Capture",
		Mode:        models.PoolModeCapture,
		ScoringRule: models.ScoringRuleATS,
		Status:      models.PoolStatusActive,
		TeamCount:   2,
	}
	store.events[fixtureEventID] = &models.Event{
		ID:           fixtureEventID,
		HomeTeamCode: fixtureHomeTeam,
		AwayTeamCode: fixtureAwayTeam,
		Status:       models.EventStatusLive,
		StartTime:    time.Now().UTC().Add(-3 * time.Hour),
	}
	store.spreads[fixtureEventID] = &models.LockedSpread{
		EventID:    fixtureEventID,
		HomeSpread: decimalFromString("-7"),
		AwaySpread: decimalFromString("7"),
		LockedAt:   time.Now().UTC().Add(-4 * time.Hour),
	}
	store.matchups[fixtureMatchupID] = &models.Matchup{
		ID:           fixtureMatchupID,
		PoolID:       fixturePoolID,
		Round:        1,
		EventID:      fixtureEventID,
		HomeTeamCode: fixtureHomeTeam,
		AwayTeamCode: fixtureAwayTeam,
		Status:       models.MatchupStatusPending,
	}
	store.participants[fixtureAliceID] = &models.Participant{ID: fixtureAliceID, PoolID: fixturePoolID, DisplayName: "Alice"}
	store.participants[fixtureBobID] = &models.Participant{ID: fixtureBobID, PoolID: fixturePoolID, DisplayName: "Bob"}
	store.setOwner(fixturePoolID, fixtureHomeTeam, fixtureAliceID)
	store.setOwner(fixturePoolID, fixtureAwayTeam, fixtureBobID)

	return buildFixture(store)
}

func buildFixture(store *memStore) *fixture {
	hub := &fakeNotifier{}
	logger := testLogger()

	resolution := NewResolutionService(
		fakeTxManager{},
		fakePoolRepo{store},
		fakeEventRepo{store},
		fakeSpreadRepo{store},
		fakeMatchupRepo{store},
		fakeOwnershipRepo{store},
		fakeAuditRepo{store},
		fakeParticipantRepo{store},
		hub,
		logger,
	)
	correction := NewCorrectionService(
		fakeTxManager{},
		fakePoolRepo{store},
		fakeEventRepo{store},
		fakeSpreadRepo{store},
		fakeMatchupRepo{store},
		fakeOwnershipRepo{store},
		fakeAuditRepo{store},
		fakeParticipantRepo{store},
		hub,
		logger,
	)

	return &fixture{store: store, hub: hub, resolution: resolution, correction: correction}
}
