package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "habitual"
	DefaultKeyringUser = "session-cookies"
	DefaultConfigPath  = "~/.config/habitual/habitual.db"
	DefaultAPIURL      = "http://localhost:5000/api"
	Version            = "v0.3.0"

	// HTTP client constants
	RequestTimeout      = 15 * time.Second
	RequestIDHeader     = "X-Request-ID"
	SessionCookieName   = "habitual_session"
	SignOutGuardTimeout = 2 * time.Second

	// Store notification messages
	MsgLoadHabitsFailed  = "Failed to load habits"
	MsgLoadTodayFailed   = "Failed to load today's progress"
	MsgHabitCreated      = "Habit created successfully!"
	MsgHabitUpdated      = "Habit updated successfully!"
	MsgHabitDeleted      = "Habit deleted successfully!"
	MsgToggleFailed      = "Failed to update progress"
	MsgCreateFailed      = "Failed to create habit"
	MsgUpdateFailed      = "Failed to update habit"
	MsgDeleteFailed      = "Failed to delete habit"
	MsgSignedIn          = "Welcome back!"
	MsgSignedUp          = "Account created successfully!"
	MsgSignedOut         = "Logged out successfully"
	MsgSignInFailed      = "Login failed"
	MsgSignUpFailed      = "Registration failed"
	MsgShareLinkCreated  = "Share link created"
	MsgShareLinkDeleted  = "Share link deleted"
	MsgProfileUpdated    = "Profile updated!"
	MsgRequestFailedBase = "request failed"

	// Local state keys
	KeySessionUser   = "session.user"
	KeyCachedHabits  = "cache.habits"
	KeyCachedToday   = "cache.today"
	KeyCachedSavedAt = "cache.saved_at"
)

// Session States
const (
	StateToday SessionState = iota
	StateHabits
	StateStats
	StateAddHabit
	StateEditHabit
	StateSignIn
	StateConfirmDelete
)
