package services

import (
	"context"

	"studydash/internal/domain/models"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// SessionService manages the cosmetic signed-in user. No credentials are checked.
type SessionService interface {
	SignIn(ctx context.Context, req *SignInRequest) (*models.User, error)

	// CurrentUser returns a NotFoundError when nobody is signed in
	CurrentUser(ctx context.Context) (*models.User, error)

	SignOut(ctx context.Context) error
}
