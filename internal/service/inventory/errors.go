package inventory

import "errors"

var (
	ErrShowNotFound       = errors.New("show not found")
	ErrNoTicketsAvailable = errors.New("no tickets available")
	ErrDateNotFuture      = errors.New("show date must be in the future")
	ErrInvalidShow        = errors.New("invalid show")
	ErrRateLimited        = errors.New("rate limited")
)
