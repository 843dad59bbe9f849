package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInvite(t *testing.T) {
	cases := []struct {
		name    string
		email   string
		percent float64
		want    error
	}{
		{"valid", "collab@example.com", 30, nil},
		{"valid full share", "collab@example.com", 100, nil},
		{"valid tiny share", "collab@example.com", 0.01, nil},
		{"bad email", "not-an-email", 30, ErrInvalidEmail},
		{"empty email", "", 30, ErrInvalidEmail},
		{"zero percent", "collab@example.com", 0, ErrInvalidPercent},
		{"negative percent", "collab@example.com", -5, ErrInvalidPercent},
		{"over hundred", "collab@example.com", 100.01, ErrInvalidPercent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateInvite(tc.email, tc.percent)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestCheckCeiling(t *testing.T) {
	assert.NoError(t, CheckCeiling(0, 100))
	assert.NoError(t, CheckCeiling(80, 20))
	assert.NoError(t, CheckCeiling(99.99, 0.01))
	assert.Error(t, CheckCeiling(80, 20.01))
	assert.Error(t, CheckCeiling(100, 0.01))
}

// The rejection message must state the current total so the caller
// can compute the remaining headroom.
func TestCeilingErrorStatesCurrentTotal(t *testing.T) {
	err := CheckCeiling(80, 50)
	require.Error(t, err)

	var ce *CeilingError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 80.0, ce.Current)
	assert.Equal(t, 50.0, ce.Requested)
	assert.Contains(t, err.Error(), "current total: 80%")
	assert.Contains(t, err.Error(), "requested: 50%")
}

func TestCeilingAllowsExactlyHundred(t *testing.T) {
	// DECIMAL round-trips can land a hair above the stored sum;
	// exactly-100 configurations must not be rejected
	assert.NoError(t, CheckCeiling(33.33+33.33, 33.34))
}

func TestRandomTokenLengthAndUniqueness(t *testing.T) {
	a, err := randomToken(32)
	require.NoError(t, err)
	b, err := randomToken(32)
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.Len(t, b, 64)
	assert.NotEqual(t, a, b)
}
