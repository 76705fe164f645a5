package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/orbjournal/orb-server/internal/domain"
	"github.com/orbjournal/orb-server/internal/store"
)

// orbColumns is the ordered list of columns selected in orb queries.
// Must match the scan order in scanOrb.
const orbColumns = `id, user_id, date, note, animation_seed, is_locked, created_at, updated_at`

// scanOrb scans a sql.Row (or sql.Rows via its Scan method) into a domain.Orb.
// Emotion entries live in their own table and are attached separately.
func scanOrb(scanner interface{ Scan(dest ...any) error }) (*domain.Orb, error) {
	var o domain.Orb

	var (
		date          string
		animationSeed sql.NullFloat64
		isLocked      int
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&o.ID,
		&o.UserID,
		&date,
		&o.Note,
		&animationSeed,
		&isLocked,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Date, err = parseDate(date)
	if err != nil {
		return nil, err
	}
	o.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	o.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if animationSeed.Valid {
		o.AnimationSeed = &animationSeed.Float64
	}
	o.IsLocked = isLocked != 0

	return &o, nil
}

// CreateOrb inserts a new orb and its emotion entries in one transaction.
// Returns store.ErrAlreadyExists if the user already has an orb for the
// orb's date.
func (s *Store) CreateOrb(ctx context.Context, orb *domain.Orb) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orbs (
			id, user_id, date, note, animation_seed, is_locked, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		orb.ID,
		orb.UserID,
		formatDate(orb.Date),
		orb.Note,
		nullFloat(orb.AnimationSeed),
		boolToInt(orb.IsLocked),
		formatTime(orb.CreatedAt),
		formatTime(orb.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := insertEmotions(ctx, tx, orb.ID, orb.Emotions); err != nil {
		return err
	}

	return tx.Commit()
}

// insertEmotions inserts an orb's emotion entries, preserving client order
// via the position column.
func insertEmotions(ctx context.Context, tx *sql.Tx, orbID string, emotions []domain.EmotionEntry) error {
	for i, e := range emotions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO orb_emotions (orb_id, position, emotion, percentage)
			VALUES (?, ?, ?, ?)`,
			orbID, i, string(e.Type), e.Percentage,
		); err != nil {
			return err
		}
	}
	return nil
}

// GetOrb retrieves an orb by ID, scoped to the owning user.
// Returns store.ErrNotFound if no such orb exists for this user.
func (s *Store) GetOrb(ctx context.Context, userID, id string) (*domain.Orb, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orbColumns+` FROM orbs WHERE id = ? AND user_id = ?`, id, userID)

	orb, err := scanOrb(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachEmotions(ctx, []*domain.Orb{orb}); err != nil {
		return nil, err
	}
	return orb, nil
}

// GetOrbByDate retrieves a user's orb for a single calendar day.
// The date must be normalized; returns store.ErrNotFound if no orb exists.
func (s *Store) GetOrbByDate(ctx context.Context, userID string, date time.Time) (*domain.Orb, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orbColumns+` FROM orbs WHERE user_id = ? AND date = ?`,
		userID, formatDate(date))

	orb, err := scanOrb(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachEmotions(ctx, []*domain.Orb{orb}); err != nil {
		return nil, err
	}
	return orb, nil
}

// ListOrbsByDateRange returns a user's orbs with start <= date <= end,
// ordered by date ascending. An empty range yields an empty slice, not an
// error.
func (s *Store) ListOrbsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Orb, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orbColumns+` FROM orbs
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		userID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orbs []*domain.Orb
	for rows.Next() {
		orb, err := scanOrb(rows)
		if err != nil {
			return nil, err
		}
		orbs = append(orbs, orb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachEmotions(ctx, orbs); err != nil {
		return nil, err
	}
	return orbs, nil
}

// attachEmotions loads emotion entries for the given orbs in a single query.
func (s *Store) attachEmotions(ctx context.Context, orbs []*domain.Orb) error {
	if len(orbs) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Orb, len(orbs))
	placeholders := make([]string, len(orbs))
	args := make([]any, len(orbs))
	for i, orb := range orbs {
		byID[orb.ID] = orb
		placeholders[i] = "?"
		args[i] = orb.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT orb_id, emotion, percentage FROM orb_emotions
		WHERE orb_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY orb_id, position`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orbID      string
			emotion    string
			percentage int
		)
		if err := rows.Scan(&orbID, &emotion, &percentage); err != nil {
			return err
		}
		orb := byID[orbID]
		orb.Emotions = append(orb.Emotions, domain.EmotionEntry{
			Type:       domain.EmotionType(emotion),
			Percentage: percentage,
		})
	}
	return rows.Err()
}

// UpdateOrb performs a full row update on an existing orb, replacing its
// emotion entries. The orb is matched by (ID, UserID).
// Returns store.ErrNotFound if no such orb exists for this user, and
// store.ErrAlreadyExists if moving the orb to its new date would collide
// with another orb.
func (s *Store) UpdateOrb(ctx context.Context, orb *domain.Orb) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orbs SET
			date = ?,
			note = ?,
			animation_seed = ?,
			is_locked = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		formatDate(orb.Date),
		orb.Note,
		nullFloat(orb.AnimationSeed),
		boolToInt(orb.IsLocked),
		formatTime(orb.UpdatedAt),
		orb.ID,
		orb.UserID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM orb_emotions WHERE orb_id = ?`, orb.ID); err != nil {
		return err
	}
	if err := insertEmotions(ctx, tx, orb.ID, orb.Emotions); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteOrb performs a hard delete of an orb, scoped to the owning user.
// Emotion entries go with it via ON DELETE CASCADE.
// Returns store.ErrNotFound if no such orb exists for this user.
func (s *Store) DeleteOrb(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM orbs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetEmotionStats aggregates a user's emotion entries over a date range:
// per emotion type, the sum of percentages and the count of contributing
// entries. Emotions that never appear in the range produce no row. Results
// are ordered by total percentage descending, then emotion name for
// determinism.
func (s *Store) GetEmotionStats(ctx context.Context, userID string, start, end time.Time) ([]domain.EmotionStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.emotion, SUM(e.percentage) AS total, COUNT(*) AS days
		FROM orb_emotions e
		JOIN orbs o ON o.id = e.orb_id
		WHERE o.user_id = ? AND o.date >= ? AND o.date <= ?
		GROUP BY e.emotion
		ORDER BY total DESC, e.emotion ASC`,
		userID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []domain.EmotionStat{}
	for rows.Next() {
		var (
			emotion string
			total   int
			days    int
		)
		if err := rows.Scan(&emotion, &total, &days); err != nil {
			return nil, err
		}
		stats = append(stats, domain.EmotionStat{
			Emotion:         domain.EmotionType(emotion),
			TotalPercentage: total,
			DaysCount:       days,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
