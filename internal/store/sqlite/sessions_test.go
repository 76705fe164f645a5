package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orbjournal/orb-server/internal/domain"
	"github.com/orbjournal/orb-server/internal/store"
)

// makeTestSession creates a domain.Session for testing. It also creates the
// owning user to satisfy the FK constraint.
func makeTestSession(t *testing.T, s *Store, sessionID, userID string) *domain.Session {
	t.Helper()
	ctx := context.Background()

	user := makeTestUser(userID, userID+"@example.com")
	if err := s.CreateUser(ctx, user); err != nil {
		// User may already exist from a previous call.
		if !errors.Is(err, store.ErrAlreadyExists) {
			t.Fatalf("makeTestSession: CreateUser(%s): %v", userID, err)
		}
	}

	now := time.Now()
	return &domain.Session{
		ID:               sessionID,
		UserID:           userID,
		RefreshTokenHash: "fakehash-" + sessionID,
		ExpiresAt:        now.Add(24 * time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
}

func TestCreateAndGetSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := makeTestSession(t, s, "sess-1", "user-sess-1")
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.UserID != session.UserID {
		t.Errorf("UserID: got %q, want %q", got.UserID, session.UserID)
	}
	if got.RefreshTokenHash != session.RefreshTokenHash {
		t.Errorf("RefreshTokenHash: got %q, want %q", got.RefreshTokenHash, session.RefreshTokenHash)
	}
	if got.ExpiresAt.Unix() != session.ExpiresAt.Unix() {
		t.Errorf("ExpiresAt: got %v, want %v", got.ExpiresAt, session.ExpiresAt)
	}
}

func TestGetSessionByRefreshToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := makeTestSession(t, s, "sess-1", "user-1")
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSessionByRefreshToken(ctx, session.RefreshTokenHash)
	if err != nil {
		t.Fatalf("GetSessionByRefreshToken: %v", err)
	}
	if got.ID != "sess-1" {
		t.Errorf("ID: got %q, want sess-1", got.ID)
	}

	_, err = s.GetSessionByRefreshToken(ctx, "unknown-hash")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateSessionRotation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := makeTestSession(t, s, "sess-1", "user-1")
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	session.RefreshTokenHash = "rotated-hash"
	session.LastSeenAt = time.Now()
	if err := s.UpdateSession(ctx, session); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}

	got, err := s.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.RefreshTokenHash != "rotated-hash" {
		t.Errorf("RefreshTokenHash: got %q, want rotated-hash", got.RefreshTokenHash)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := makeTestSession(t, s, "sess-1", "user-1")
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := s.DeleteSession(ctx, "sess-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteAllUserSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"sess-1", "sess-2"} {
		session := makeTestSession(t, s, id, "user-1")
		if err := s.CreateSession(ctx, session); err != nil {
			t.Fatalf("CreateSession(%s): %v", id, err)
		}
	}
	other := makeTestSession(t, s, "sess-other", "user-2")
	if err := s.CreateSession(ctx, other); err != nil {
		t.Fatalf("CreateSession(sess-other): %v", err)
	}

	if err := s.DeleteAllUserSessions(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteAllUserSessions: %v", err)
	}

	if _, err := s.GetSession(ctx, "sess-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("sess-1 should be deleted, got %v", err)
	}
	if _, err := s.GetSession(ctx, "sess-other"); err != nil {
		t.Errorf("sess-other should survive, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	expired := makeTestSession(t, s, "sess-old", "user-1")
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	if err := s.CreateSession(ctx, expired); err != nil {
		t.Fatalf("CreateSession(expired): %v", err)
	}

	live := makeTestSession(t, s, "sess-live", "user-1")
	if err := s.CreateSession(ctx, live); err != nil {
		t.Fatalf("CreateSession(live): %v", err)
	}

	n, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if _, err := s.GetSession(ctx, "sess-live"); err != nil {
		t.Errorf("live session should survive, got %v", err)
	}
}
