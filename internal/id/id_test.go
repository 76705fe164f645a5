package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("orb")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "orb-"))
	assert.Len(t, got, len("orb-")+nanoidLength)
	assert.True(t, IsWellFormed("orb", got))
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		got, err := Generate("user")
		require.NoError(t, err)
		require.False(t, seen[got], "duplicate ID: %s", got)
		seen[got] = true
	}
}

func TestIsWellFormed(t *testing.T) {
	valid := MustGenerate("orb")

	tests := []struct {
		name   string
		prefix string
		id     string
		want   bool
	}{
		{"generated ID", "orb", valid, true},
		{"wrong prefix", "user", valid, false},
		{"empty string", "orb", "", false},
		{"prefix only", "orb", "orb-", false},
		{"too short", "orb", "orb-abc", false},
		{"too long", "orb", valid + "x", false},
		{"illegal character", "orb", "orb-" + strings.Repeat("!", nanoidLength), false},
		{"prefix is not a separator match", "or", valid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWellFormed(tt.prefix, tt.id))
		})
	}
}
