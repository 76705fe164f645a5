package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmotionType_IsValid(t *testing.T) {
	for _, e := range EmotionTypes {
		assert.True(t, e.IsValid(), "%s should be valid", e)
	}

	invalid := []EmotionType{"", "rage", "Joy", "JOY", "happiness"}
	for _, e := range invalid {
		assert.False(t, e.IsValid(), "%q should be invalid", e)
	}
}

func TestEmotionTypeNames(t *testing.T) {
	names := EmotionTypeNames()
	require.Len(t, names, len(EmotionTypes))
	assert.Equal(t, "joy", names[0])
	assert.Equal(t, "embarrassment", names[len(names)-1])
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "already midnight UTC",
			in:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "mid-day UTC",
			in:   time.Date(2024, 3, 10, 14, 30, 59, 123, time.UTC),
			want: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "keeps the wall-clock day of a zoned timestamp",
			// 23:00 in UTC+5 is 18:00 UTC the same day; the represented
			// calendar day is what counts, not the UTC instant.
			in:   time.Date(2024, 3, 10, 23, 0, 0, 0, time.FixedZone("UTC+5", 5*3600)),
			want: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, NormalizeDate(tt.in).Equal(tt.want))
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 10, got.Day())

	got, err = ParseDate("2024-03-10T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Hour())

	for _, bad := range []string{"", "not-a-date", "03/10/2024", "2024-13-45"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, "%q should not parse", bad)
	}
}

func TestOrb_Touch(t *testing.T) {
	orb := &Orb{UpdatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	before := orb.UpdatedAt

	orb.Touch()
	assert.True(t, orb.UpdatedAt.After(before))
	assert.Equal(t, time.UTC, orb.UpdatedAt.Location())
}
