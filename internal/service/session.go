package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"studydash/internal/domain"
	"studydash/internal/domain/models"
	"studydash/internal/domain/repositories"
	"studydash/internal/domain/services"
)

// sessionService implements the SessionService interface
type sessionService struct {
	repo   repositories.CourseRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(repo repositories.CourseRepository, logger *slog.Logger) services.SessionService {
	return &sessionService{repo: repo, logger: logger, now: time.Now}
}

// SignIn records the user as signed in. The username defaults to the
// local part of the email address.
func (s *sessionService) SignIn(ctx context.Context, req *services.SignInRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Username, validation.Length(0, 64)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user := models.User{
		ID:       strconv.FormatInt(s.now().UnixMilli(), 10),
		Email:    req.Email,
		Username: req.Username,
	}
	if user.Username == "" {
		user.Username, _, _ = strings.Cut(user.Email, "@")
	}

	if err := s.repo.SaveCurrentUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user signed in", "user_id", user.ID, "username", user.Username)
	return &user, nil
}

func (s *sessionService) CurrentUser(ctx context.Context) (*models.User, error) {
	user, err := s.repo.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &domain.NotFoundError{Message: "nobody is signed in"}
	}
	return user, nil
}

// SignOut forgets the current user. Courses are kept.
func (s *sessionService) SignOut(ctx context.Context) error {
	if err := s.repo.ClearCurrentUser(ctx); err != nil {
		return err
	}
	s.logger.Info("user signed out")
	return nil
}
