// Package main provides a tool to seed the database with demo orb data.
//
// It creates a demo user (if needed) and fills the past weeks with orbs
// carrying random emotion mixtures, for exercising the range and stats
// endpoints against realistic data.
//
// Usage:
//
//	go run ./cmd/seed --data-path ~/.orbjournal --days 60
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/orbjournal/orb-server/internal/auth"
	"github.com/orbjournal/orb-server/internal/domain"
	"github.com/orbjournal/orb-server/internal/id"
	"github.com/orbjournal/orb-server/internal/store"
	"github.com/orbjournal/orb-server/internal/store/sqlite"
)

var (
	dataPath = flag.String("data-path", "", "Base path for data storage (default: ~/.orbjournal)")
	days     = flag.Int("days", 30, "Number of past days to fill with orbs")
	email    = flag.String("email", "demo@orbjournal.dev", "Demo user email")
	password = flag.String("password", "DemoPassword1!", "Demo user password")
)

func main() {
	flag.Parse()

	base := *dataPath
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		base = filepath.Join(home, ".orbjournal")
	}

	dbPath := filepath.Join(base, "orbjournal.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	user, err := ensureDemoUser(ctx, s)
	if err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	fmt.Printf("Demo user: %s (%s)\n", user.Email, user.ID)

	created := 0
	today := domain.NormalizeDate(time.Now())
	for i := 0; i < *days; i++ {
		day := today.AddDate(0, 0, -i)

		orb, err := randomOrb(user.ID, day)
		if err != nil {
			log.Fatalf("Failed to build orb: %v", err)
		}

		if err := s.CreateOrb(ctx, orb); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				continue // day already filled, leave it alone
			}
			log.Fatalf("Failed to create orb for %s: %v", day.Format("2006-01-02"), err)
		}
		created++
	}

	fmt.Printf("Seeded %d orbs over the past %d days\n", created, *days)
}

func ensureDemoUser(ctx context.Context, s store.Store) (*domain.User, error) {
	if user, err := s.GetUserByEmail(ctx, *email); err == nil {
		return user, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return nil, err
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           userID,
		Email:        *email,
		PasswordHash: hash,
		DisplayName:  "Demo User",
	}
	user.InitTimestamps()

	if err := s.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// randomOrb builds an orb with 2-4 emotions whose percentages sum to 100.
func randomOrb(userID string, day time.Time) (*domain.Orb, error) {
	orbID, err := id.Generate("orb")
	if err != nil {
		return nil, err
	}

	count := 2 + rand.Intn(3)
	picks := rand.Perm(len(domain.EmotionTypes))[:count]

	remaining := 100
	emotions := make([]domain.EmotionEntry, count)
	for i, p := range picks {
		pct := remaining
		if i < count-1 {
			// leave at least 1 point for each remaining slot
			pct = 1 + rand.Intn(remaining-(count-1-i))
		}
		emotions[i] = domain.EmotionEntry{
			Type:       domain.EmotionTypes[p],
			Percentage: pct,
		}
		remaining -= pct
	}

	now := time.Now().UTC()
	return &domain.Orb{
		ID:        orbID,
		UserID:    userID,
		Date:      day,
		Emotions:  emotions,
		Note:      fmt.Sprintf("seeded entry for %s", day.Format("Jan 2")),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
