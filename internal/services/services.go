package services

import (
	"log/slog"
	"mbox/proj/internal/config"
	"mbox/proj/internal/mails"
	"mbox/proj/internal/services/auth"
	"mbox/proj/internal/services/favorites"
	"mbox/proj/internal/services/movies"
	"mbox/proj/internal/services/reviews"
	"mbox/proj/internal/services/users"
	"mbox/proj/internal/storage/postgres/models"
	"net/http"
	"strings"
)

type Services struct {
	Auth      *auth.AuthService
	Users     *users.UserService
	Movies    *movies.MovieService
	Reviews   *reviews.ReviewService
	Favorites *favorites.FavoriteService
}

func newMailer(cfg *config.Config) auth.MailProvider {
	if cfg.SMTPServer.ApiToken != "" {
		return &mails.ApiMailer{
			ApiURL:       cfg.SMTPServer.ApiURL,
			ApiToken:     cfg.SMTPServer.ApiToken,
			Sender:       cfg.SMTPServer.Sender,
			RetriesCount: cfg.SMTPServer.RetriesCount,
			Client:       &http.Client{Timeout: cfg.SMTPServer.Timeout},
		}
	}
	return mails.New(
		cfg.SMTPServer.Host,
		cfg.SMTPServer.Port,
		cfg.SMTPServer.Timeout,
		cfg.SMTPServer.Username,
		cfg.SMTPServer.Password,
		cfg.SMTPServer.Sender,
		cfg.SMTPServer.RetriesCount,
	)
}

func New(
	log *slog.Logger,
	cfg *config.Config,
	storage *models.Models,
	taskExecutor auth.TaskExecutor,
	images movies.ImageStore,
) *Services {
	authService := auth.New(log, newMailer(cfg), taskExecutor, storage.User, storage.Blacklist, auth.Options{
		Secret:          cfg.AppSecret,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		VerificationTTL: cfg.Auth.VerificationTTL,
		BcryptCost:      cfg.Auth.BcryptCost,
		VerificationURL: strings.TrimRight(cfg.PublicURL, "/") + "/user/verify/",
	})
	return &Services{
		Auth:      authService,
		Users:     users.New(log, storage.User, cfg.Auth.BcryptCost, authService),
		Movies:    movies.New(log, storage.Movie, images),
		Reviews:   reviews.New(log, storage.Review, storage.Movie),
		Favorites: favorites.New(log, storage.Favorite),
	}
}
