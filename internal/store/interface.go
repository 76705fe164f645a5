// Package store defines the persistence interface for the orb journaling server.
package store

import (
	"context"
	"time"

	"github.com/orbjournal/orb-server/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Every orb operation is scoped to a userID: callers can only ever reach
// their own rows, so ownership is enforced at the lowest layer rather than
// by after-the-fact checks.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Orbs. Dates must be normalized to UTC midnight before they reach the
	// store; see domain.NormalizeDate.
	CreateOrb(ctx context.Context, orb *domain.Orb) error
	GetOrb(ctx context.Context, userID, id string) (*domain.Orb, error)
	GetOrbByDate(ctx context.Context, userID string, date time.Time) (*domain.Orb, error)
	ListOrbsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Orb, error)
	UpdateOrb(ctx context.Context, orb *domain.Orb) error
	DeleteOrb(ctx context.Context, userID, id string) error
	GetEmotionStats(ctx context.Context, userID string, start, end time.Time) ([]domain.EmotionStat, error)
}
