// Package service implements the application's business logic on top of the
// store layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/orbjournal/orb-server/internal/domain"
	domainerrors "github.com/orbjournal/orb-server/internal/errors"
	"github.com/orbjournal/orb-server/internal/id"
	"github.com/orbjournal/orb-server/internal/store"
	"github.com/orbjournal/orb-server/internal/validation"
)

// OrbService handles the daily orb lifecycle: one orb per user per calendar
// day, carrying a weighted emotion mixture.
type OrbService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewOrbService creates a new orb service.
func NewOrbService(store store.Store, validator *validation.Validator, logger *slog.Logger) *OrbService {
	return &OrbService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// EmotionInput is one weighted emotion in a create or update request.
type EmotionInput struct {
	Type       string `json:"type" validate:"required,emotion"`
	Percentage int    `json:"percentage" validate:"required,gte=1,lte=100"`
}

// CreateOrbRequest contains the data for creating a day's orb.
type CreateOrbRequest struct {
	Date          string         `json:"date" validate:"required"`
	Emotions      []EmotionInput `json:"emotions" validate:"required,min=2,dive"`
	Note          string         `json:"note" validate:"omitempty,max=500"`
	AnimationSeed *float64       `json:"animationSeed"`
}

// UpdateOrbRequest contains the data for updating an existing orb. There is
// deliberately no date field: an orb's day is fixed at creation. All fields
// are optional, but at least one must be present. A nil Note leaves the note
// unchanged; an empty-string Note clears it.
type UpdateOrbRequest struct {
	Emotions      []EmotionInput `json:"emotions,omitempty" validate:"omitempty,min=2,dive"`
	Note          *string        `json:"note,omitempty" validate:"omitempty,max=500"`
	AnimationSeed *float64       `json:"animationSeed,omitempty"`
}

// checkEmotionSum enforces the rule that an orb's percentages always total
// exactly 100. Runs after structural validation so every entry is already
// known to be in range.
func checkEmotionSum(emotions []EmotionInput) error {
	total := 0
	for _, e := range emotions {
		total += e.Percentage
	}
	if total != 100 {
		return domainerrors.Validation("The sum of emotion percentages must equal 100%")
	}
	return nil
}

// toEntries converts request emotion inputs to domain entries, preserving
// order.
func toEntries(emotions []EmotionInput) []domain.EmotionEntry {
	entries := make([]domain.EmotionEntry, len(emotions))
	for i, e := range emotions {
		entries[i] = domain.EmotionEntry{
			Type:       domain.EmotionType(e.Type),
			Percentage: e.Percentage,
		}
	}
	return entries
}

// parseRequestDate parses a client-supplied date, surfacing parse failures
// as validation errors.
func parseRequestDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, domainerrors.Validationf("%s is required", field)
	}
	t, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, domainerrors.Validationf("%s must be a valid date (YYYY-MM-DD)", field)
	}
	return t, nil
}

// checkOrbID rejects malformed orb IDs before any store access.
func checkOrbID(orbID string) error {
	if !id.IsWellFormed("orb", orbID) {
		return domainerrors.InvalidArgument("Invalid orb id")
	}
	return nil
}

// Create validates and persists a new orb for the given user. The date is
// normalized to its calendar day; the store's uniqueness constraint on
// (user, day) is the sole arbiter of duplicates, so two concurrent creates
// for the same day can never both succeed.
func (s *OrbService) Create(ctx context.Context, userID string, req CreateOrbRequest) (*domain.Orb, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := checkEmotionSum(req.Emotions); err != nil {
		return nil, err
	}

	date, err := parseRequestDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	orbID, err := id.Generate("orb")
	if err != nil {
		return nil, fmt.Errorf("generate orb ID: %w", err)
	}

	now := time.Now().UTC()
	orb := &domain.Orb{
		ID:            orbID,
		UserID:        userID,
		Date:          domain.NormalizeDate(date),
		Emotions:      toEntries(req.Emotions),
		Note:          req.Note,
		AnimationSeed: req.AnimationSeed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateOrb(ctx, orb); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("Orb already exists for this date")
		}
		return nil, fmt.Errorf("create orb: %w", err)
	}

	s.logger.Info("orb created",
		"orb_id", orb.ID,
		"user_id", userID,
		"date", orb.Date.Format("2006-01-02"),
	)

	return orb, nil
}

// GetByDate returns the user's orb for a single calendar day.
func (s *OrbService) GetByDate(ctx context.Context, userID, date string) (*domain.Orb, error) {
	parsed, err := parseRequestDate("date", date)
	if err != nil {
		return nil, err
	}

	orb, err := s.store.GetOrbByDate(ctx, userID, domain.NormalizeDate(parsed))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Orb not found")
		}
		return nil, fmt.Errorf("get orb by date: %w", err)
	}
	return orb, nil
}

// GetByID returns one of the user's orbs by its identifier. An orb owned by
// another user is indistinguishable from a missing one.
func (s *OrbService) GetByID(ctx context.Context, userID, orbID string) (*domain.Orb, error) {
	if err := checkOrbID(orbID); err != nil {
		return nil, err
	}

	orb, err := s.store.GetOrb(ctx, userID, orbID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Orb not found")
		}
		return nil, fmt.Errorf("get orb: %w", err)
	}
	return orb, nil
}

// GetByRange returns the user's orbs with startDate <= date <= endDate,
// ordered by date ascending. An empty range is a valid, empty result.
func (s *OrbService) GetByRange(ctx context.Context, userID, startDate, endDate string) ([]*domain.Orb, error) {
	start, err := parseRequestDate("startDate", startDate)
	if err != nil {
		return nil, err
	}
	end, err := parseRequestDate("endDate", endDate)
	if err != nil {
		return nil, err
	}

	orbs, err := s.store.ListOrbsByDateRange(ctx, userID,
		domain.NormalizeDate(start), domain.NormalizeDate(end))
	if err != nil {
		return nil, fmt.Errorf("list orbs: %w", err)
	}
	if orbs == nil {
		orbs = []*domain.Orb{}
	}
	return orbs, nil
}

// Update applies the supplied fields to an existing orb. Only fields present
// in the request change; the orb's date and owner never do. The write is
// read-modify-write against a single row.
func (s *OrbService) Update(ctx context.Context, userID, orbID string, req UpdateOrbRequest) (*domain.Orb, error) {
	if err := checkOrbID(orbID); err != nil {
		return nil, err
	}
	if req.Emotions == nil && req.Note == nil && req.AnimationSeed == nil {
		return nil, domainerrors.Validation("at least one field must be provided")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Emotions != nil {
		if err := checkEmotionSum(req.Emotions); err != nil {
			return nil, err
		}
	}

	orb, err := s.store.GetOrb(ctx, userID, orbID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Orb not found")
		}
		return nil, fmt.Errorf("get orb: %w", err)
	}

	if req.Emotions != nil {
		orb.Emotions = toEntries(req.Emotions)
	}
	if req.Note != nil {
		orb.Note = *req.Note
	}
	if req.AnimationSeed != nil {
		orb.AnimationSeed = req.AnimationSeed
	}
	orb.Touch()

	if err := s.store.UpdateOrb(ctx, orb); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Orb not found")
		}
		return nil, fmt.Errorf("update orb: %w", err)
	}

	s.logger.Info("orb updated", "orb_id", orb.ID, "user_id", userID)

	return orb, nil
}

// Delete removes one of the user's orbs.
func (s *OrbService) Delete(ctx context.Context, userID, orbID string) error {
	if err := checkOrbID(orbID); err != nil {
		return err
	}

	if err := s.store.DeleteOrb(ctx, userID, orbID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("Orb not found")
		}
		return fmt.Errorf("delete orb: %w", err)
	}

	s.logger.Info("orb deleted", "orb_id", orbID, "user_id", userID)

	return nil
}

// GetStats aggregates the user's emotion entries over a date range: for each
// emotion type that appears at least once, the summed percentage and the
// number of contributing entries.
func (s *OrbService) GetStats(ctx context.Context, userID, startDate, endDate string) ([]domain.EmotionStat, error) {
	start, err := parseRequestDate("startDate", startDate)
	if err != nil {
		return nil, err
	}
	end, err := parseRequestDate("endDate", endDate)
	if err != nil {
		return nil, err
	}

	stats, err := s.store.GetEmotionStats(ctx, userID,
		domain.NormalizeDate(start), domain.NormalizeDate(end))
	if err != nil {
		return nil, fmt.Errorf("get emotion stats: %w", err)
	}
	return stats, nil
}
