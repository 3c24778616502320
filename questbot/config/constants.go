package config

import "time"

// Colors
const (
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00
	GoldColor    = 0xFFD700
	QuestColor   = 0xFF9900
)

// Pagination
const (
	LeaderboardPerPage = 10
	MaxAutocomplete    = 25
)

// Timeouts
const (
	CommandTimeout      = 10 * time.Second
	SlowCommand         = 2 * time.Second
	EventTimeout        = 15 * time.Second
	AutocompleteTimeout = 2 * time.Second
	ReadyTimeout        = 2 * time.Minute
	LongCommandTimeout  = ReadyTimeout + 5*time.Second
	ShutdownTimeout     = 10 * time.Second
)

// Expiring messages
const (
	CompletionNoticeTTL = 10 * time.Second
	RoleXPNoticeTTL     = 15 * time.Second
	QuestPingTTL        = 2 * time.Second
)

const (
	QuestEmoji        = "✅"
	DefaultPingRole   = "Quests"
	ProgressBarWidth  = 20
	ProgressBarFilled = "█"
	ProgressBarEmpty  = "░"
)

// StaffRoleNames may adjust XP in addition to members with Manage Roles.
var StaffRoleNames = []string{"staff", "Staff", "STAFF", "admin", "Admin", "ADMIN"}
