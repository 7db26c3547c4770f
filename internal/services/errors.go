package services

import "errors"

// Domain errors for the ride lifecycle. Handlers map these onto HTTP status
// codes; everything else surfaces as a 500.
var (
	ErrRideNotFound      = errors.New("ride not found")
	ErrSelfJoin          = errors.New("you cannot join your own ride")
	ErrAlreadyJoined     = errors.New("you already joined this ride")
	ErrRideFull          = errors.New("ride is full")
	ErrRideClosed        = errors.New("ride is no longer accepting passengers")
	ErrNotRideCreator    = errors.New("only the ride creator may do this")
	ErrAlreadyCompleted  = errors.New("ride is already completed")
	ErrNotAPassenger     = errors.New("only passengers of this ride may do this")
	ErrNotParticipant    = errors.New("only ride participants may do this")
	ErrAlreadyRated      = errors.New("you have already rated this ride")
	ErrInvalidStars      = errors.New("stars must be an integer between 1 and 5")
	ErrHasPassengers     = errors.New("ride still has passengers")
	ErrInvalidTransition = errors.New("status transition not allowed")
)
