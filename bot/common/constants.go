package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x00FF00 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFF9900 // Orange
	ColorInfo    = 0x3498DB // Blue
	ColorGame    = 0x9B59B6 // Purple
)

// Command names
const (
	CommandVerification = "verification"
	CommandGameRoles    = "gameroles"
)
