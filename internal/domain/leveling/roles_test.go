package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFromRoleName(t *testing.T) {
	tests := []struct {
		name      string
		wantLevel int
		wantOK    bool
	}{
		{"Level 1", 1, true},
		{"Level 10", 10, true},
		{"Level 0", 0, false},
		{"Level 11", 0, false},
		{"level 3", 0, false},
		{"Level three", 0, false},
		{"Level 3 ", 0, false},
		{"Super Level 3", 0, false},
		{"Level ", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := TierFromRoleName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestTierRoleNameRoundTrip(t *testing.T) {
	for level := MinLevel; level <= MaxLevel; level++ {
		got, ok := TierFromRoleName(TierRoleName(level))
		assert.True(t, ok)
		assert.Equal(t, level, got)
	}
}

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		name string
		want RoleCategory
	}{
		{"badge-collector", CategoryBadge},
		{"Gold BADGE", CategoryBadge},
		{"7 Day Streak", CategoryStreak},
		{"STREAKER", CategoryStreak},
		{"badge streak", CategoryBadge},
		{"Moderator", CategoryNone},
		{"badg", CategoryNone},
		{"", CategoryNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRole(tt.name))
		})
	}
}

func TestTierRoleColor(t *testing.T) {
	assert.Equal(t, 0x0099ff, TierRoleColor(1))
	assert.Equal(t, 0xffd700, TierRoleColor(10))
	assert.Less(t, TierRoleColor(2), TierRoleColor(9))
}
