package tui

// Color constants for invigil TUI theme
const (
	// Base Colors
	ColorAppBackground  = ""        // Use terminal default background
	ColorCardBackground = "#1B1530" // Dark purple
	ColorBorder         = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Primary text (headers, desk rows)
	ColorSecondaryText = "#B1B8C7" // Secondary text - subtle purple-tinted grey
	ColorDisabledText  = "#6D7383" // Disabled/muted text
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Accent elements, active borders
	ColorAccentBright = "#A78BFA" // Highlights, selected row

	// State Colors
	ColorError   = "#EF4444" // Validation errors, red urgency band
	ColorSuccess = "#22C55E" // Green urgency band
	ColorWarning = "#F59E0B" // Amber urgency band
)
