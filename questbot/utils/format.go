package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ellavondegurechaff/questbot/internal/domain/leveling"
	"github.com/ellavondegurechaff/questbot/questbot/config"
)

func Ptr[T any](v T) *T {
	return &v
}

// FormatNumber renders n with thousands separators.
func FormatNumber(n int) string {
	str := strconv.Itoa(n)
	neg := n < 0
	if neg {
		str = str[1:]
	}

	var b strings.Builder
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// ProgressBar draws percent (0-100) as a fixed-width bar.
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	percent = min(100, max(0, percent))
	filled := int(percent / 100 * float64(width))
	return strings.Repeat(config.ProgressBarFilled, filled) + strings.Repeat(config.ProgressBarEmpty, width-filled)
}

// Medal is the rank marker of a 1-based leaderboard position.
func Medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("#%d", rank)
	}
}

// LevelRequirements lists every tier threshold, one per line.
func LevelRequirements() string {
	var b strings.Builder
	b.WriteString("**Level Requirements:**\n")
	for _, tier := range leveling.Tiers() {
		fmt.Fprintf(&b, "Level %d: %s XP\n", tier.Level, FormatNumber(tier.MinXP))
	}
	return b.String()
}

// Truncate cuts s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
