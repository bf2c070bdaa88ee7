package utils

import (
	"testing"

	"wanderlust-service/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWeekdays(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"unordered", []string{"Wed", "Mon", "Fri"}, "135"},
		{"week wraps", []string{"Sun", "Mon"}, "17"},
		{"duplicates", []string{"mon", "MON", "Monday"}, "1"},
		{"full week", []string{"sun", "sat", "fri", "thu", "wed", "tue", "mon"}, "1234567"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeWeekdays(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NormalizeWeekdays([]string{"Funday"})
	assert.ErrorIs(t, err, errs.ErrUnknownWeekday)
}
