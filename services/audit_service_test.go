package services

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/Dosada05/bracket-pools/storage"
)

type fakeUploader struct {
	lastKey         string
	lastContentType string
	lastBody        []byte
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.lastKey = key
	u.lastContentType = contentType
	u.lastBody = body
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key, ETag: "test"}, nil
}

func (u *fakeUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

func newAuditFixture(f *fixture, uploader *fakeUploader) AuditService {
	return NewAuditService(
		fakePoolRepo{f.store},
		fakeAuditRepo{f.store},
		fakeParticipantRepo{f.store},
		uploader,
		testLogger(),
	)
}

func TestListPoolTrail_DescribesResults(t *testing.T) {
	f := newFixture()
	audit := newAuditFixture(f, &fakeUploader{})

	if _, err := f.resolution.ResolveMatchup(context.Background(), ResolveMatchupInput{
		MatchupID: fixtureMatchupID,
		HomeScore: intPtr(24),
		AwayScore: intPtr(21),
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	trail, err := audit.ListPoolTrail(context.Background(), fixturePoolID)
	if err != nil {
		t.Fatalf("ListPoolTrail: %v", err)
	}
	if len(trail) != 1 {
		t.Fatalf("trail entries = %d, want 1", len(trail))
	}

	desc := trail[0].Description
	for _, fragment := range []string{"Bob", "Alice", fixtureHomeTeam, "captured"} {
		if !strings.Contains(desc, fragment) {
			t.Errorf("description %q missing %q", desc, fragment)
		}
	}
}

func TestListPoolTrail_PoolNotFound(t *testing.T) {
	f := newFixture()
	audit := newAuditFixture(f, &fakeUploader{})

	if _, err := audit.ListPoolTrail(context.Background(), 404); err == nil {
		t.Fatal("expected error for unknown pool")
	}
}

func TestArchivePoolTrail_UploadsSnapshot(t *testing.T) {
	f := newFixture()
	uploader := &fakeUploader{}
	audit := newAuditFixture(f, uploader)

	if _, err := f.resolution.ResolveMatchup(context.Background(), ResolveMatchupInput{
		MatchupID: fixtureMatchupID,
		HomeScore: intPtr(31),
		AwayScore: intPtr(21),
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	result, err := audit.ArchivePoolTrail(context.Background(), fixturePoolID)
	if err != nil {
		t.Fatalf("ArchivePoolTrail: %v", err)
	}

	if !strings.HasPrefix(result.Key, "audit/pool_1/") || !strings.HasSuffix(result.Key, ".json") {
		t.Errorf("archive key = %q", result.Key)
	}
	if uploader.lastContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", uploader.lastContentType)
	}

	var doc struct {
		PoolID  int               `json:"pool_id"`
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(uploader.lastBody, &doc); err != nil {
		t.Fatalf("archive body is not JSON: %v", err)
	}
	if doc.PoolID != fixturePoolID || len(doc.Entries) != 1 {
		t.Errorf("archive document = pool %d with %d entries, want pool %d with 1", doc.PoolID, len(doc.Entries), fixturePoolID)
	}
}
