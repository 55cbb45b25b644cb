package services

import "errors"

// Shared service errors, mapped to HTTP status codes by the handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules.
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrTeamNameRequired     = errors.New("team name is required")
	ErrRegistrationNotOpen  = errors.New("tournament registration is not open")
	ErrTournamentFull       = errors.New("tournament registration is full")
	ErrTournamentNotActive  = errors.New("tournament is not active")
	ErrBracketAlreadyExists = errors.New("bracket has already been generated")
	ErrBracketNotGenerated  = errors.New("bracket has not been generated yet")
	ErrMatchNotPlayable     = errors.New("match does not have both teams resolved")
	ErrMatchNotInProgress   = errors.New("match is not in progress")

	// Consistency faults: fatal, never auto-resolved.
	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrAdvancementConflict   = errors.New("bracket advancement conflict")

	// Conflicts.
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrTeamAlreadyRegistered  = errors.New("player is already registered for this tournament")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Authentication and authorization.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors.
	ErrUserNotFound       = errors.New("user not found")
	ErrClubNotFound       = errors.New("club not found")
	ErrCourtNotFound      = errors.New("court not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrScheduleNotFound   = errors.New("schedule not found")

	// Tournament lifecycle.
	ErrTournamentDatesRequired           = errors.New("tournament dates are required")
	ErrTournamentInvalidRegDate          = errors.New("tournament registration close must precede the start date")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidCapacity         = errors.New("tournament capacity must be positive")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
)
