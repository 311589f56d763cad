package handlers

import (
	"context"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/services"
)

// Engine is the part of the selection controller the HTTP adapter drives.
type Engine interface {
	View() services.View
	SelectPlace(ctx context.Context, sel domain.PlaceSelection) error
	CanCommit() bool
	CommitHome(ctx context.Context) (domain.Home, error)
	CommitLandmark(ctx context.Context) (domain.Landmark, error)
	SetActiveHome(ctx context.Context, address string) error
	RenameLandmark(ctx context.Context, id, name string) error
	RemoveLandmark(ctx context.Context, name string) int
	RemoveLandmarkByID(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
}

var _ Engine = (*services.Controller)(nil)
