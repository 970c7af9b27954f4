package service

import "errors"

// Typed failures returned to handlers, which map them onto HTTP status
// codes and machine-readable reason codes. Start denials are specific so
// the caller can render an accurate message.
var (
	ErrSeriesNotFound          = errors.New("series not found")
	ErrSeriesNotAvailable      = errors.New("series is outside its availability window")
	ErrAttemptLimitExceeded    = errors.New("maximum attempts for this series reached")
	ErrCooldownActive          = errors.New("cooldown between attempts has not elapsed")
	ErrAttemptInProgress       = errors.New("an attempt is already in progress for this series")
	ErrStartConflict           = errors.New("a concurrent start consumed this attempt slot")
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadyCompleted = errors.New("attempt has already been completed")
	ErrNoActiveAttempt         = errors.New("no active attempt for this series")
)
