package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func noCrit() float64     { return 0.99 }
func alwaysCrit() float64 { return 0.0 }

func TestComputeBaseReward(t *testing.T) {
	calc := NewRewardCalculatorWithRoll(noCrit)

	reward, critical := calc.Compute(0)
	require.Equal(t, int64(10), reward)
	require.False(t, critical)
}

func TestComputeComboBonus(t *testing.T) {
	calc := NewRewardCalculatorWithRoll(noCrit)

	tests := []struct {
		name   string
		combo  int
		reward int64
	}{
		{"no streak", 0, 10},
		{"short streak", 5, 20},
		{"bonus at cap", 25, 60},
		{"bonus capped", 100, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reward, critical := calc.Compute(tt.combo)
			require.Equal(t, tt.reward, reward)
			require.False(t, critical)
		})
	}
}

func TestComputeCriticalDoublesTotal(t *testing.T) {
	calc := NewRewardCalculatorWithRoll(alwaysCrit)

	reward, critical := calc.Compute(0)
	require.True(t, critical)
	require.Equal(t, int64(20), reward)

	// The doubling applies after the capped bonus.
	reward, critical = calc.Compute(100)
	require.True(t, critical)
	require.Equal(t, int64(120), reward)
}
