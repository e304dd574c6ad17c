package users

import (
	"context"
	"errors"
	"log/slog"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/storage"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserStorage interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Verifier restarts email verification when an address changes.
type Verifier interface {
	NewVerification(user *models.User) error
	QueueVerificationEmail(user *models.User)
}

type UserService struct {
	log        *slog.Logger
	storage    UserStorage
	verifier   Verifier
	bcryptCost int
}

func New(log *slog.Logger, storage UserStorage, bcryptCost int, verifier Verifier) *UserService {
	return &UserService{
		log:        log,
		storage:    storage,
		verifier:   verifier,
		bcryptCost: bcryptCost,
	}
}

// UpdateParams is a partial update, nil fields are left untouched.
type UpdateParams struct {
	Name     *string
	Email    *string
	Password *string
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	const op = "users.UserService.List"
	users, err := s.storage.List(ctx)
	if err != nil {
		s.log.With("op", op).Error("Error listing users", "errMsg", err.Error())
		return nil, err
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "users.UserService.Get"
	log := s.log.With("op", op, "id", id)
	user, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return nil, ErrUserNotFound
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, callerID, id uuid.UUID, params UpdateParams) (*models.User, error) {
	const op = "users.UserService.Update"
	log := s.log.With("op", op, "id", id, "caller_id", callerID)
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerID != user.ID {
		log.Warn("attempt to update someone else's account")
		return nil, ErrForbidden
	}
	if params.Name != nil {
		user.Name = strings.TrimSpace(*params.Name)
	}
	emailChanged := false
	if params.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*params.Email))
		if email != user.Email {
			user.Email = email
			emailChanged = true
			if err := s.verifier.NewVerification(user); err != nil {
				log.Error("Error generating verification token", "errMsg", err.Error())
				return nil, err
			}
		}
	}
	if params.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password), s.bcryptCost)
		if err != nil {
			log.Error("Error hashing password", "errMsg", err.Error())
			return nil, err
		}
		user.PasswordHash = hash
	}
	updated, err := s.storage.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("email already registered", "email", user.Email)
			return nil, ErrUserAlreadyExists
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrUserNotFound
		}
		log.Error("Error updating user", "errMsg", err.Error())
		return nil, err
	}
	if emailChanged {
		log.Info("email changed, verification restarted")
		s.verifier.QueueVerificationEmail(updated)
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	const op = "users.UserService.Delete"
	log := s.log.With("op", op, "id", id, "caller_id", callerID)
	if callerID != id {
		// 404 takes precedence over 403
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		log.Warn("attempt to delete someone else's account")
		return ErrForbidden
	}
	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return ErrUserNotFound
		}
		log.Error("Error deleting user", "errMsg", err.Error())
		return err
	}
	log.Info("user deleted")
	return nil
}
