package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"mbox/proj/internal/domain/models"
	"mbox/proj/internal/lib/jwt"
	"mbox/proj/internal/storage"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const verificationEmailTmpl = "user_verification.html"

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type TaskExecutor interface {
	Add(task func()) error
}

type UserStorage interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

type TokenBlacklist interface {
	Add(ctx context.Context, token string, expiresAt *time.Time) error
	Exists(ctx context.Context, token string) (bool, error)
}

type Options struct {
	Secret          string
	AccessTokenTTL  time.Duration
	VerificationTTL time.Duration
	BcryptCost      int
	// VerificationURL is the base the verification token is appended to.
	VerificationURL string
}

type AuthService struct {
	log          *slog.Logger
	mailer       MailProvider
	taskExecutor TaskExecutor
	users        UserStorage
	blacklist    TokenBlacklist
	opts         Options
	now          func() time.Time
}

func New(
	log *slog.Logger,
	mailer MailProvider,
	taskExecutor TaskExecutor,
	users UserStorage,
	blacklist TokenBlacklist,
	opts Options,
) *AuthService {
	return &AuthService{
		log:          log,
		mailer:       mailer,
		taskExecutor: taskExecutor,
		users:        users,
		blacklist:    blacklist,
		opts:         opts,
		now:          time.Now,
	}
}

type SignupParams struct {
	Name     string
	Email    string
	Password string
}

type verificationEmailData struct {
	name            string
	verificationURL string
}

func (a *AuthService) sendVerificationEmail(email string, data verificationEmailData) {
	const op = "auth.AuthService.sendVerificationEmail"
	log := a.log.With("op", op, "email", email)
	log.Info("sending verification email")
	err := a.mailer.Send(
		email,
		verificationEmailTmpl,
		map[string]any{
			"name":            data.name,
			"verificationURL": data.verificationURL,
			"expiresIn":       a.opts.VerificationTTL.String(),
		})
	if err != nil {
		log.Error("Error sending verification email", "errMsg", err.Error())
	}
}

func newVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *AuthService) Signup(ctx context.Context, params SignupParams) (*models.User, error) {
	const op = "auth.AuthService.Signup"
	email := NormalizeEmail(params.Email)
	log := a.log.With("op", op, "email", email)

	if _, err := a.users.GetByEmail(ctx, email); err == nil {
		log.Info("email already registered")
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Error("Error looking up user", "errMsg", err.Error())
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), a.opts.BcryptCost)
	if err != nil {
		log.Error("Error hashing password", "errMsg", err.Error())
		return nil, err
	}
	newUser := &models.User{
		Name:         strings.TrimSpace(params.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := a.NewVerification(newUser); err != nil {
		log.Error("Error generating verification token", "errMsg", err.Error())
		return nil, err
	}
	user, err := a.users.Insert(ctx, newUser)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("email already registered")
			return nil, ErrUserAlreadyExists
		}
		log.Error("Error inserting user", "errMsg", err.Error())
		return nil, err
	}
	a.QueueVerificationEmail(newUser)
	return user, nil
}

// NewVerification marks the user unverified and stamps a fresh one-time
// token on it. The caller persists the user.
func (a *AuthService) NewVerification(user *models.User) error {
	token, err := newVerificationToken()
	if err != nil {
		return err
	}
	expiresAt := a.now().Add(a.opts.VerificationTTL)
	user.IsVerified = false
	user.VerificationToken = &token
	user.VerificationExpiresAt = &expiresAt
	return nil
}

// QueueVerificationEmail mails the link for the user's current token on the
// task pool. Failures are logged only.
func (a *AuthService) QueueVerificationEmail(user *models.User) {
	const op = "auth.AuthService.QueueVerificationEmail"
	log := a.log.With("op", op, "email", user.Email)
	if user.VerificationToken == nil {
		log.Warn("user has no verification token")
		return
	}
	emailData := verificationEmailData{
		name:            user.Name,
		verificationURL: strings.TrimRight(a.opts.VerificationURL, "/") + "/" + url.PathEscape(*user.VerificationToken),
	}
	email := user.Email
	if err := a.taskExecutor.Add(func() { a.sendVerificationEmail(email, emailData) }); err != nil {
		log.Warn("verification email not queued", "errMsg", err.Error())
	}
}

func (a *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.AuthService.VerifyEmail"
	log := a.log.With("op", op)
	user, err := a.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("verification token not found")
			return nil, ErrVerificationTokenNotFound
		}
		log.Error("Error getting user by verification token", "errMsg", err.Error())
		return nil, err
	}
	log = log.With("user_id", user.ID)
	if user.VerificationExpiresAt == nil || a.now().After(*user.VerificationExpiresAt) {
		log.Info("verification token expired")
		return nil, ErrVerificationTokenExpired
	}
	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationExpiresAt = nil
	updated, err := a.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrVerificationTokenNotFound
		}
		log.Error("Error updating user", "errMsg", err.Error())
		return nil, err
	}
	log.Info("email verified")
	return updated, nil
}

func (a *AuthService) SignIn(ctx context.Context, email, password string) (*models.AuthToken, *models.User, error) {
	const op = "auth.AuthService.SignIn"
	email = NormalizeEmail(email)
	log := a.log.With("op", op, "email", email)
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("unknown email")
			return nil, nil, ErrInvalidCredentials
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		log.Info("password mismatch")
		return nil, nil, ErrInvalidCredentials
	}
	token, expiresAt, err := jwt.NewToken(user.ID, user.Email, a.opts.Secret, a.opts.AccessTokenTTL)
	if err != nil {
		log.Error("Error signing token", "errMsg", err.Error())
		return nil, nil, err
	}
	return &models.AuthToken{AccessToken: token, ExpiresAt: expiresAt}, user, nil
}

func (a *AuthService) LogOut(ctx context.Context, token string) error {
	const op = "auth.AuthService.LogOut"
	log := a.log.With("op", op)
	var expiresAt *time.Time
	if claims, err := jwt.ParseToken(token, a.opts.Secret); err == nil && claims.ExpiresAt != nil {
		expiresAt = &claims.ExpiresAt.Time
	}
	if err := a.blacklist.Add(ctx, token, expiresAt); err != nil {
		log.Error("Error blacklisting token", "errMsg", err.Error())
		return err
	}
	return nil
}

// Authenticate resolves a bearer token to its user. Blacklisted tokens are
// rejected even when they have not expired yet.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.AuthService.Authenticate"
	log := a.log.With("op", op)
	claims, err := jwt.ParseToken(token, a.opts.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	blacklisted, err := a.blacklist.Exists(ctx, token)
	if err != nil {
		log.Error("Error checking token blacklist", "errMsg", err.Error())
		return nil, err
	}
	if blacklisted {
		log.Info("blacklisted token used", "user_id", claims.UserID)
		return nil, ErrTokenInvalid
	}
	user, err := a.users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Warn("user not found", "user_id", claims.UserID)
			return nil, ErrUserNotFound
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return nil, err
	}
	return user, nil
}
