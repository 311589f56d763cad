package services

import "errors"

var (
	// ErrRouteProvider wraps a failed routing request for one landmark.
	ErrRouteProvider = errors.New("route provider error")
	// ErrNoRoutes marks a provider answer with no usable route or leg.
	ErrNoRoutes = errors.New("no routes found")
	// ErrAllRoutesFailed is returned when every request in a batch failed.
	ErrAllRoutesFailed = errors.New("all route requests failed")

	ErrNoPendingSelection = errors.New("no pending selection to commit")
	ErrHomesDisabled      = errors.New("homes are disabled while routes are computing")
	ErrUnknownHome        = errors.New("unknown home")
	ErrNoActiveHome       = errors.New("no active home")
	ErrUnknownLandmark    = errors.New("unknown landmark")
	ErrIndexOutOfRange    = errors.New("landmark index out of range")
)
