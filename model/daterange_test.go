package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientbook/model"
)

func TestParseDateRangeCoversWholeDays(t *testing.T) {
	r, err := model.ParseDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.True(t, r.Contains(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateRangeSingleDay(t *testing.T) {
	r, err := model.ParseDateRange("2024-02-29", "2024-02-29")
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)))
}

func TestParseDateRangeErrors(t *testing.T) {
	_, err := model.ParseDateRange("2024-02-01", "2024-01-01")
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = model.ParseDateRange("01/02/2024", "2024-01-01")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)

	_, err = model.ParseDate("2024-13-01")
	assert.ErrorIs(t, err, model.ErrValidation)
}
