package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/orbjournal/orb-server/internal/errors"
)

type sampleRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Mood     string   `json:"mood" validate:"omitempty,emotion"`
	Tags     []string `json:"tags,omitempty" validate:"omitempty,min=2"`
	Strength int      `json:"strength" validate:"omitempty,gte=1,lte=100"`
}

func details(t *testing.T, err error) map[string]string {
	t.Helper()

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok, "details should carry field messages")
	return fields
}

func TestValidate_Passes(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{
		Email:    "user@example.com",
		Mood:     "ennui",
		Strength: 50,
	})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{})
	fields := details(t, err)

	msg, ok := fields["email"]
	require.True(t, ok, "errors should be keyed by json name, got %v", fields)
	assert.Equal(t, "is required", msg)
}

func TestValidate_EmotionTag(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{Email: "user@example.com", Mood: "rage"})
	fields := details(t, err)

	assert.Contains(t, fields["mood"], "must be one of:")
	assert.Contains(t, fields["mood"], "ennui")
}

func TestValidate_SliceMinMessage(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{Email: "user@example.com", Tags: []string{"one"}})
	fields := details(t, err)

	assert.Equal(t, "must contain at least 2 items", fields["tags"])
}

func TestValidate_RangeMessages(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{Email: "user@example.com", Strength: 101})
	fields := details(t, err)
	assert.Equal(t, "must be less than or equal to 100", fields["strength"])
}
