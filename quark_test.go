package quark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitsToQuarks(t *testing.T) {
	tests := []struct {
		units string
		want  int64
	}{
		{"1", 100_000},
		{"0.00001", 1},
		{"1.5", 150_000},
		{"10.00015", 1_000_015},
		{"0", 0},
	}
	for _, tc := range tests {
		quarks, err := UnitsToQuarks(tc.units)
		require.NoError(t, err, tc.units)
		assert.Equal(t, tc.want, quarks, tc.units)
	}
}

func TestUnitsToQuarks_Invalid(t *testing.T) {
	for _, units := range []string{"abc", "0.000001", "1.123456", "99999999999999999999"} {
		_, err := UnitsToQuarks(units)
		assert.Error(t, err, units)
	}
}

func TestQuarksToUnits(t *testing.T) {
	tests := []struct {
		quarks int64
		want   string
	}{
		{100_000, "1"},
		{1, "0.00001"},
		{150_000, "1.5"},
		{0, "0"},
		{-50_000, "-0.5"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, QuarksToUnits(tc.quarks))
	}
}

func TestConversions_Roundtrip(t *testing.T) {
	for _, quarks := range []int64{1, 99_999, 100_000, 123_456_789} {
		back, err := UnitsToQuarks(QuarksToUnits(quarks))
		require.NoError(t, err)
		assert.Equal(t, quarks, back)
	}
}

func TestNewDedupeID(t *testing.T) {
	a, err := NewDedupeID()
	require.NoError(t, err)
	b, err := NewDedupeID()
	require.NoError(t, err)

	assert.Len(t, a, DedupeIDSize)
	assert.Len(t, b, DedupeIDSize)
	assert.NotEqual(t, a, b)
}
