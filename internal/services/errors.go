package services

import "errors"

// Sentinel errors surfaced by the dispatch engine. Controllers map these to
// HTTP status codes; anything else is treated as an internal error.
var (
	ErrInvalidTimeFormat = errors.New("invalid boarding time format")
	ErrInvalidTransition = errors.New("invalid trip status transition")
	ErrNoActiveTrip      = errors.New("no active trip")
	ErrTripIntegrity     = errors.New("driver has more than one unfinished trip")
	ErrTokenNotFound     = errors.New("boarding token not found")
	ErrPassengerNotOnBus = errors.New("passenger is not assigned to this bus")
	ErrNoScheduledTrip   = errors.New("no scheduled trip for that date")
	ErrUnknownAction     = errors.New("unknown attendance action")
	ErrUnknownTarget     = errors.New("unknown broadcast target")
	ErrNoPassengers      = errors.New("no active passengers assigned to this bus")
)
