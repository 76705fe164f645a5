// Package domain contains the core entities of the orb journaling server.
package domain

import (
	"fmt"
	"time"
)

// EmotionType is one of the fixed set of named emotions an orb can carry.
type EmotionType string

// The closed emotion enumeration. Shared by the validator and the storage
// schema so the two can never drift.
const (
	EmotionJoy           EmotionType = "joy"
	EmotionSadness       EmotionType = "sadness"
	EmotionAnger         EmotionType = "anger"
	EmotionDisgust       EmotionType = "disgust"
	EmotionFear          EmotionType = "fear"
	EmotionAnxiety       EmotionType = "anxiety"
	EmotionEnvy          EmotionType = "envy"
	EmotionEnnui         EmotionType = "ennui"
	EmotionEmbarrassment EmotionType = "embarrassment"
)

// EmotionTypes lists every valid emotion type, in canonical order.
var EmotionTypes = []EmotionType{
	EmotionJoy,
	EmotionSadness,
	EmotionAnger,
	EmotionDisgust,
	EmotionFear,
	EmotionAnxiety,
	EmotionEnvy,
	EmotionEnnui,
	EmotionEmbarrassment,
}

// EmotionTypeNames returns the enumeration as plain strings, in canonical
// order. Used for validation messages and schema generation.
func EmotionTypeNames() []string {
	names := make([]string, len(EmotionTypes))
	for i, t := range EmotionTypes {
		names[i] = string(t)
	}
	return names
}

// IsValid reports whether t is a member of the emotion enumeration.
func (t EmotionType) IsValid() bool {
	for _, v := range EmotionTypes {
		if t == v {
			return true
		}
	}
	return false
}

// EmotionEntry is one weighted emotion within an orb. Percentages across an
// orb's entries must sum to exactly 100; duplicates of the same type are
// allowed.
type EmotionEntry struct {
	Type       EmotionType `json:"type"`
	Percentage int         `json:"percentage"`
}

// Orb is one user's emotional journal entry for a single calendar day.
// Date is always normalized to UTC midnight; (UserID, Date) is unique.
type Orb struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	Date          time.Time      `json:"date"`
	Emotions      []EmotionEntry `json:"emotions"`
	Note          string         `json:"note,omitempty"`
	AnimationSeed *float64       `json:"animationSeed,omitempty"`
	IsLocked      bool           `json:"isLocked"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Touch updates the UpdatedAt timestamp.
func (o *Orb) Touch() {
	o.UpdatedAt = time.Now().UTC()
}

// EmotionStat is one aggregated row of a stats query: the summed percentage
// and the number of contributing entries for a single emotion type across a
// date range. Types that never appear in the range produce no row.
type EmotionStat struct {
	Emotion         EmotionType `json:"emotion"`
	TotalPercentage int         `json:"totalPercentage"`
	DaysCount       int         `json:"daysCount"`
}

// NormalizeDate truncates a timestamp to the start of its represented
// calendar day at UTC. Every path that reads or writes an orb date goes
// through this, which is what makes the (user, day) uniqueness constraint
// meaningful: two timestamps on the same calendar day normalize to the same
// stored value.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a client-supplied date string. Plain calendar dates
// ("2025-03-02") and RFC3339 timestamps are both accepted.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
}
