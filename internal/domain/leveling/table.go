package leveling

import "fmt"

const (
	// MinLevel is the floor every member starts at.
	MinLevel = 1
	// MaxLevel is the last tier of the table.
	MaxLevel = 10
)

// Tier is one row of the level table.
type Tier struct {
	Level int
	MinXP int
}

// tiers is strictly increasing in both columns and starts at 0 XP.
var tiers = [MaxLevel]Tier{
	{Level: 1, MinXP: 0},
	{Level: 2, MinXP: 100},
	{Level: 3, MinXP: 500},
	{Level: 4, MinXP: 1200},
	{Level: 5, MinXP: 2200},
	{Level: 6, MinXP: 3500},
	{Level: 7, MinXP: 5100},
	{Level: 8, MinXP: 7000},
	{Level: 9, MinXP: 9200},
	{Level: 10, MinXP: 11700},
}

// Tiers returns a copy of the level table, lowest level first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers[:])
	return out
}

// LevelFor returns the greatest level whose threshold is <= xp.
// Negative input is treated as 0.
func LevelFor(xp int) int {
	for i := len(tiers) - 1; i >= 0; i-- {
		if xp >= tiers[i].MinXP {
			return tiers[i].Level
		}
	}
	return MinLevel
}

// ThresholdFor returns the minimum XP of level. Levels outside the table are
// clamped to its bounds.
func ThresholdFor(level int) int {
	return tiers[Clamp(level)-1].MinXP
}

// Clamp forces level into [MinLevel, MaxLevel].
func Clamp(level int) int {
	return max(MinLevel, min(level, MaxLevel))
}

// Valid reports whether level is a tier of the table.
func Valid(level int) bool {
	return level >= MinLevel && level <= MaxLevel
}

// Progress describes how far a member is into their current level.
type Progress struct {
	XP        int
	Level     int
	NextLevel int
	// NextXP is the threshold of NextLevel. Equal to the max threshold at MaxLevel.
	NextXP int
	// Needed is the XP still missing for NextLevel; 0 at MaxLevel.
	Needed  int
	Percent float64
}

// Maxed reports whether the member sits on the top tier.
func (p Progress) Maxed() bool {
	return p.Level >= MaxLevel
}

// ProgressFor computes level progress for an XP total.
func ProgressFor(xp int) Progress {
	xp = max(0, xp)
	level := LevelFor(xp)
	p := Progress{XP: xp, Level: level, NextLevel: level, NextXP: ThresholdFor(level), Percent: 100}
	if level >= MaxLevel {
		return p
	}

	p.NextLevel = level + 1
	p.NextXP = ThresholdFor(p.NextLevel)
	p.Needed = max(0, p.NextXP-xp)

	floor := ThresholdFor(level)
	if span := p.NextXP - floor; span > 0 {
		p.Percent = min(100, max(0, float64(xp-floor)/float64(span)*100))
	}
	return p
}

func (t Tier) String() string {
	return fmt.Sprintf("Level %d: %d XP", t.Level, t.MinXP)
}
