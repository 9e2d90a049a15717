// Package apperrors provides the structured error taxonomy of the season
// engine: string-based error codes for debuggability and natural JSON
// serialization, and a domain error type that carries a code alongside the
// wrapped cause.
package apperrors

// Code identifies a specific failure condition surfaced to callers.
type Code string

const (
	// Validation errors. The caller must change its input; retrying is useless.

	CodeInsufficientTeams           Code = "INSUFFICIENT_TEAMS"
	CodeTooManyTeams                Code = "TOO_MANY_TEAMS"
	CodeNotEnoughTeamsToSchedule    Code = "NOT_ENOUGH_TEAMS_TO_SCHEDULE"
	CodeScheduleExceedsSeasonWindow Code = "SCHEDULE_EXCEEDS_SEASON_WINDOW"
	CodeDuplicateRegistration       Code = "DUPLICATE_REGISTRATION"
	CodeRegistrationClosed          Code = "REGISTRATION_CLOSED"
	CodeSeasonFull                  Code = "SEASON_FULL"
	CodeInvalidConfig               Code = "INVALID_CONFIG"
	CodeUnsupportedFormat           Code = "UNSUPPORTED_FORMAT"

	// State errors. Recoverable by re-reading current state and retrying.

	CodeInvalidStateTransition Code = "INVALID_STATE_TRANSITION"
	CodeGenerationInProgress   Code = "GENERATION_IN_PROGRESS"
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"

	// Resource errors.

	CodeSeasonNotFound Code = "SEASON_NOT_FOUND"
	CodeTeamNotFound   Code = "TEAM_NOT_FOUND"

	// Infrastructure errors.

	CodeInternal Code = "INTERNAL_ERROR"
)
